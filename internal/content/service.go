// Package content はサイト・資格・プロジェクトの読み書きを仲介するコンテンツアクセス層を提供する。
// 公開ページ、管理画面、REST APIはすべてこのパッケージを経由してレコードストアにアクセスする。
package content

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/portfolio/internal/model"
	"github.com/hitoshi/portfolio/internal/repository"
)

// Gate は呼び出し元が認証済みの管理者かどうかを判定する。
// 更新系の操作はすべて最初にGateを確認する。
type Gate interface {
	IsAuthenticated(ctx context.Context) bool
}

// GateFunc は関数をGateとして扱うためのアダプタ。
type GateFunc func(ctx context.Context) bool

// IsAuthenticated はf(ctx)を返す。
func (f GateFunc) IsAuthenticated(ctx context.Context) bool { return f(ctx) }

// MutationRecorder はコンテンツ更新の記録先。metrics.Collectorが満たす。
type MutationRecorder interface {
	RecordContentMutation(kind, op string)
}

// Service はコンテンツアクセス層のサービス。
type Service struct {
	sites    repository.SiteRepository
	creds    repository.CredentialsRepository
	projects repository.ProjectRepository
	gate     Gate
	recorder MutationRecorder
	now      func() time.Time
	newID    func() string
}

// Option はServiceの生成オプション。
type Option func(*Service)

// WithMutationRecorder は更新操作の記録先を設定する。
func WithMutationRecorder(r MutationRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock は現在時刻の取得関数を差し替える。
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator はプロジェクトIDの生成関数を差し替える。
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	sites repository.SiteRepository,
	creds repository.CredentialsRepository,
	projects repository.ProjectRepository,
	gate Gate,
	opts ...Option,
) *Service {
	s := &Service{
		sites:    sites,
		creds:    creds,
		projects: projects,
		gate:     gate,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// authorize は更新系操作の冒頭で呼び、未認証ならUnauthorizedを返す。
func (s *Service) authorize(ctx context.Context) error {
	if s.gate == nil || !s.gate.IsAuthenticated(ctx) {
		return model.NewUnauthorizedError()
	}
	return nil
}

func (s *Service) record(kind, op string) {
	if s.recorder != nil {
		s.recorder.RecordContentMutation(kind, op)
	}
}
