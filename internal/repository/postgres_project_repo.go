package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/portfolio/internal/model"
)

// uniqueViolation はPostgreSQLのunique_violationエラーコード。
const uniqueViolation = "23505"

const projectColumns = `id, slug, name, tagline, description, tags, stack, featured,
		        links, gallery, sections, sort_order, created_at, updated_at`

// PostgresProjectRepo はPostgreSQLを使用したプロジェクトリポジトリ。
// タグ・スタック・ギャラリーはtext[]、リンクとセクションはJSONBで保存する。
type PostgresProjectRepo struct {
	db *sql.DB
}

// NewPostgresProjectRepo はPostgresProjectRepoを生成する。
func NewPostgresProjectRepo(db *sql.DB) *PostgresProjectRepo {
	return &PostgresProjectRepo{db: db}
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*model.Project, error) {
	p := &model.Project{}
	var links, sections []byte
	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.Tagline, &p.Description,
		pq.Array(&p.Tags), pq.Array(&p.Stack), &p.Featured,
		&links, pq.Array(&p.Gallery), &sections, &p.Order,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(links, &p.Links); err != nil {
		return nil, fmt.Errorf("failed to decode project links: %w", err)
	}
	if err := json.Unmarshal(sections, &p.Sections); err != nil {
		return nil, fmt.Errorf("failed to decode project sections: %w", err)
	}
	normalizeProject(p)
	return p, nil
}

// normalizeProject はnilスライスを空スライスに揃え、JSONで常に [] を返すようにする。
func normalizeProject(p *model.Project) {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Stack == nil {
		p.Stack = []string{}
	}
	if p.Gallery == nil {
		p.Gallery = []string{}
	}
	if p.Sections.Features == nil {
		p.Sections.Features = []string{}
	}
	if p.Sections.Learnings == nil {
		p.Sections.Learnings = []string{}
	}
}

func (r *PostgresProjectRepo) findOne(ctx context.Context, where string, arg any) (*model.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE `+where,
		arg,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return p, nil
}

// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
func (r *PostgresProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	return r.findOne(ctx, "id = $1", id)
}

// FindBySlug はslugでプロジェクトを検索する。見つからない場合はnilを返す。
func (r *PostgresProjectRepo) FindBySlug(ctx context.Context, slug string) (*model.Project, error) {
	return r.findOne(ctx, "slug = $1", slug)
}

// List は全プロジェクトをsort_order昇順、created_at降順で返す。
func (r *PostgresProjectRepo) List(ctx context.Context) ([]*model.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+`
		 FROM projects
		 ORDER BY sort_order ASC, created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

// Create はプロジェクトを作成する。
func (r *PostgresProjectRepo) Create(ctx context.Context, p *model.Project) error {
	links, sections, err := encodeProjectJSON(p)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO projects (id, slug, name, tagline, description, tags, stack, featured,
		                       links, gallery, sections, sort_order, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.Slug, p.Name, p.Tagline, p.Description,
		pq.Array(p.Tags), pq.Array(p.Stack), p.Featured,
		links, pq.Array(p.Gallery), sections, p.Order,
		p.CreatedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateSlug
	}
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// Update はプロジェクトを上書き更新する。created_atは変更しない。
func (r *PostgresProjectRepo) Update(ctx context.Context, p *model.Project) (bool, error) {
	links, sections, err := encodeProjectJSON(p)
	if err != nil {
		return false, err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE projects
		 SET slug = $2, name = $3, tagline = $4, description = $5, tags = $6, stack = $7,
		     featured = $8, links = $9, gallery = $10, sections = $11, sort_order = $12,
		     updated_at = $13
		 WHERE id = $1`,
		p.ID, p.Slug, p.Name, p.Tagline, p.Description,
		pq.Array(p.Tags), pq.Array(p.Stack), p.Featured,
		links, pq.Array(p.Gallery), sections, p.Order,
		p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return false, ErrDuplicateSlug
	}
	if err != nil {
		return false, fmt.Errorf("failed to update project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count updated projects: %w", err)
	}
	return n > 0, nil
}

// Delete は指定IDのプロジェクトを削除する。
func (r *PostgresProjectRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count deleted projects: %w", err)
	}
	return n > 0, nil
}

// encodeProjectJSON はJSONBカラム用の値を生成する。
// pq.Arrayはnilスライスを NULL として送るため、先に空スライスへ正規化する。
func encodeProjectJSON(p *model.Project) (links, sections []byte, err error) {
	normalizeProject(p)
	links, err = json.Marshal(p.Links)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode project links: %w", err)
	}
	sections, err = json.Marshal(p.Sections)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode project sections: %w", err)
	}
	return links, sections, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// compile-time interface check
var _ ProjectRepository = (*PostgresProjectRepo)(nil)
