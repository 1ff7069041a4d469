package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/portfolio/internal/model"
)

// PostgresCredentialsRepo はcredentialsテーブルを使用したCredentialsRepository実装。
type PostgresCredentialsRepo struct {
	db *sql.DB
}

// NewPostgresCredentialsRepo はPostgresCredentialsRepoを生成する。
func NewPostgresCredentialsRepo(db *sql.DB) *PostgresCredentialsRepo {
	return &PostgresCredentialsRepo{db: db}
}

// Find は保存済みのレコードを取得する。未作成の場合はnilを返す。
func (r *PostgresCredentialsRepo) Find(ctx context.Context) (*model.Credentials, error) {
	var (
		data      []byte
		createdAt time.Time
		updatedAt time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT data, created_at, updated_at FROM credentials WHERE id = $1`,
		singletonID,
	).Scan(&data, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credentials: %w", err)
	}

	creds := model.EmptyCredentials()
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to decode credentials: %w", err)
	}
	creds.CreatedAt = &createdAt
	creds.UpdatedAt = &updatedAt
	return &creds, nil
}

// Save はレコードをUPSERTし、保存後のタイムスタンプをcredsに反映する。
func (r *PostgresCredentialsRepo) Save(ctx context.Context, creds *model.Credentials) error {
	payload := *creds
	payload.CreatedAt = nil
	payload.UpdatedAt = nil
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	var createdAt, updatedAt time.Time
	now := time.Now().UTC()
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO credentials (id, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
		 RETURNING created_at, updated_at`,
		singletonID, data, now,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	creds.CreatedAt = &createdAt
	creds.UpdatedAt = &updatedAt
	return nil
}

// compile-time interface check
var _ CredentialsRepository = (*PostgresCredentialsRepo)(nil)
