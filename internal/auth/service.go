// Package auth は管理者のパスワード認証とセッション管理を提供する。
// 管理者は設定で与えられた1名のみで、パスワードはbcryptハッシュとの照合のみ行う。
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/portfolio/internal/model"
	"github.com/hitoshi/portfolio/internal/repository"
)

// ErrInvalidCredentials はメールアドレスまたはパスワードが一致しないことを表す。
// どちらが誤っているかは区別しない。
var ErrInvalidCredentials = errors.New("invalid email or password")

// PasswordCost はhash-passwordコマンドで使うbcryptのコスト。
const PasswordCost = 12

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	AdminEmail        string
	AdminPasswordHash string
	SessionMaxAge     int // セッション有効期間（秒）
}

// LoginRecorder はログイン試行の記録先。metrics.Collectorが満たす。
type LoginRecorder interface {
	RecordLoginAttempt(success bool)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	sessionRepo repository.SessionRepository
	config      ServiceConfig
	recorder    LoginRecorder
	now         func() time.Time
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(sessionRepo repository.SessionRepository, config ServiceConfig, recorder LoginRecorder) *Service {
	return &Service{
		sessionRepo: sessionRepo,
		config:      config,
		recorder:    recorder,
		now:         time.Now,
	}
}

// Login はメールアドレスとパスワードを検証し、セッションを発行する。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, error) {
	emailOK := subtle.ConstantTimeCompare(
		[]byte(normalizeEmail(email)),
		[]byte(normalizeEmail(s.config.AdminEmail)),
	) == 1
	// メールアドレスが違っても照合は行い、応答時間から推測されないようにする
	passwordErr := bcrypt.CompareHashAndPassword([]byte(s.config.AdminPasswordHash), []byte(password))

	if !emailOK || passwordErr != nil {
		s.recordLogin(false)
		if passwordErr != nil && !errors.Is(passwordErr, bcrypt.ErrMismatchedHashAndPassword) {
			slog.Error("admin password hash is unusable", slog.String("error", passwordErr.Error()))
		}
		slog.Warn("admin login failed", slog.Bool("email_matched", emailOK))
		return nil, ErrInvalidCredentials
	}

	session, err := s.createSession(ctx, s.config.AdminEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.recordLogin(true)
	slog.Info("admin logged in", slog.String("admin", s.config.AdminEmail))
	return session, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("admin logged out")
	return nil
}

// ResolveSession は有効なセッションを返す。
// 存在しない・期限切れ・設定中の管理者と異なるSubjectのセッションはnilを返す。
func (s *Service) ResolveSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}
	if !session.ExpiresAt.After(s.now()) {
		return nil, nil
	}
	// ADMIN_EMAILを変更した場合、以前のセッションは無効になる
	if normalizeEmail(session.Subject) != normalizeEmail(s.config.AdminEmail) {
		return nil, nil
	}
	return session, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, subject string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := s.now().UTC()
	session := &model.Session{
		ID:        sessionID,
		Subject:   subject,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

func (s *Service) recordLogin(success bool) {
	if s.recorder != nil {
		s.recorder.RecordLoginAttempt(success)
	}
}

// HashPassword は管理者パスワードのbcryptハッシュを生成する。
// 生成した値をADMIN_PASSWORD_HASHに設定する。
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
