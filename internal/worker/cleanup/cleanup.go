// Package cleanup は期限切れセッションの定期削除ジョブを提供する。
// PostgreSQLのセッションストアは期限切れの行を自動では削除しないため、
// workerコマンドがこのジョブを一定間隔で実行する。Redisストアでは
// キーのTTLで失効するため、削除件数は常に0になる。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionStore は期限切れセッションを削除できるストア。
// repository.SessionRepository が満たす。
type SessionStore interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Recorder は削除件数の記録先。metrics.Collector が満たす。
type Recorder interface {
	RecordSessionsSwept(count int64)
}

// SessionSweeper は期限切れセッションの削除ジョブ。
type SessionSweeper struct {
	store    SessionStore
	recorder Recorder
	logger   *slog.Logger
}

// NewSessionSweeper はSessionSweeperを生成する。recorderはnilでもよい。
func NewSessionSweeper(store SessionStore, recorder Recorder, logger *slog.Logger) *SessionSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionSweeper{
		store:    store,
		recorder: recorder,
		logger:   logger,
	}
}

// Run は期限切れセッションを1回削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (s *SessionSweeper) Run(ctx context.Context) error {
	start := time.Now()

	deleted, err := s.store.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("session sweep failed",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("sweep expired sessions: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordSessionsSwept(deleted)
	}
	s.logger.Info("session sweep completed",
		slog.Int64("deleted_count", deleted),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return nil
}

// Start は起動直後に1回実行し、その後intervalごとにRunを繰り返す。
// ctxがキャンセルされると戻る。個々の実行の失敗はログに残して次回に持ち越す。
func (s *SessionSweeper) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("session sweeper started", slog.Duration("interval", interval))

	_ = s.Run(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			_ = s.Run(ctx)
		}
	}
}
