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

// singletonID はsite/credentialsテーブルで使う固定の主キー。
const singletonID = 1

// PostgresSiteRepo はsiteテーブルを使用したSiteRepository実装。
// プロフィール本体はJSONBのdataカラムに保存する。
type PostgresSiteRepo struct {
	db *sql.DB
}

// NewPostgresSiteRepo はPostgresSiteRepoを生成する。
func NewPostgresSiteRepo(db *sql.DB) *PostgresSiteRepo {
	return &PostgresSiteRepo{db: db}
}

// Find は保存済みのサイト情報を取得する。未作成の場合はnilを返す。
func (r *PostgresSiteRepo) Find(ctx context.Context) (*model.Site, error) {
	var (
		data      []byte
		createdAt time.Time
		updatedAt time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT data, created_at, updated_at FROM site WHERE id = $1`,
		singletonID,
	).Scan(&data, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find site: %w", err)
	}

	site := &model.Site{}
	if err := json.Unmarshal(data, site); err != nil {
		return nil, fmt.Errorf("failed to decode site: %w", err)
	}
	site.CreatedAt = createdAt
	site.UpdatedAt = updatedAt
	return site, nil
}

// CreateIfAbsent はsiteが未作成の場合のみ保存する。
// ON CONFLICT DO NOTHINGで同時作成を1件に抑え、最後に保存済みのレコードを読み直す。
func (r *PostgresSiteRepo) CreateIfAbsent(ctx context.Context, site *model.Site) (*model.Site, error) {
	data, err := json.Marshal(site)
	if err != nil {
		return nil, fmt.Errorf("failed to encode site: %w", err)
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO site (id, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (id) DO NOTHING`,
		singletonID, data, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create site: %w", err)
	}

	stored, err := r.Find(ctx)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("site missing after insert")
	}
	return stored, nil
}

// Save はサイト情報をUPSERTする。
func (r *PostgresSiteRepo) Save(ctx context.Context, site *model.Site) error {
	data, err := json.Marshal(site)
	if err != nil {
		return fmt.Errorf("failed to encode site: %w", err)
	}

	now := time.Now().UTC()
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO site (id, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
		 RETURNING created_at, updated_at`,
		singletonID, data, now,
	).Scan(&site.CreatedAt, &site.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save site: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SiteRepository = (*PostgresSiteRepo)(nil)
