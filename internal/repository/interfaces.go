// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/portfolio/internal/model"
)

// ErrDuplicateSlug はslugのユニーク制約違反を表す。
var ErrDuplicateSlug = errors.New("duplicate project slug")

// SiteRepository はサイトプロフィール（シングルトン）の永続化インターフェース。
type SiteRepository interface {
	// Find は保存済みのサイト情報を取得する。未作成の場合はnilを返す。
	Find(ctx context.Context) (*model.Site, error)

	// CreateIfAbsent はレコードが存在しない場合のみsiteを保存し、保存済みのレコードを返す。
	// 同時に呼ばれても作成されるレコードは1件のみ。
	CreateIfAbsent(ctx context.Context, site *model.Site) (*model.Site, error)

	// Save はサイト情報を上書き保存する。未作成の場合は作成する。
	// 保存後のCreatedAt/UpdatedAtをsiteに反映する。
	Save(ctx context.Context, site *model.Site) error
}

// CredentialsRepository は資格・学歴・スキル（シングルトン）の永続化インターフェース。
type CredentialsRepository interface {
	// Find は保存済みのレコードを取得する。未作成の場合はnilを返す。
	Find(ctx context.Context) (*model.Credentials, error)

	// Save はレコードを上書き保存する。未作成の場合は作成する。
	Save(ctx context.Context, creds *model.Credentials) error
}

// ProjectRepository はプロジェクトの永続化インターフェース。
type ProjectRepository interface {
	// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Project, error)

	// FindBySlug はslugでプロジェクトを検索する。見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.Project, error)

	// List は全プロジェクトをorder昇順、createdAt降順で返す。
	List(ctx context.Context) ([]*model.Project, error)

	// Create はプロジェクトを作成する。slugが重複する場合はErrDuplicateSlugを返す。
	Create(ctx context.Context, project *model.Project) error

	// Update はプロジェクトを上書き更新する。
	// 対象が存在しない場合はfalseを返す。slugが重複する場合はErrDuplicateSlugを返す。
	Update(ctx context.Context, project *model.Project) (bool, error)

	// Delete は指定IDのプロジェクトを削除する。対象が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id string) (bool, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
