// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, content, system
	Action   string // ユーザー向け対処方法
	Err      error  // 原因となったエラー。レスポンスには含めずログにのみ出力する
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap は原因エラーを返す。
func (e *APIError) Unwrap() error {
	return e.Err
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeProjectNotFound  = "PROJECT_NOT_FOUND"
	ErrCodeSlugConflict     = "SLUG_CONFLICT"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeCSRF             = "CSRF_TOKEN_INVALID"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Unauthorized",
		Category: "auth",
		Action:   "Sign in as the site administrator and retry.",
	}
}

// NewLoginFailedError はログイン失敗エラーを生成する。
// メールアドレスとパスワードのどちらが誤っていたかは明かさない。
func NewLoginFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Invalid email or password",
		Category: "auth",
		Action:   "Check your credentials and retry.",
	}
}

// NewProjectNotFoundError はプロジェクト未検出エラーを生成する。
func NewProjectNotFoundError(idOrSlug string) *APIError {
	return &APIError{
		Code:     ErrCodeProjectNotFound,
		Message:  fmt.Sprintf("Project not found: %s", idOrSlug),
		Category: "content",
		Action:   "Check the project id or slug.",
	}
}

// NewSlugConflictError はslug重複エラーを生成する。
func NewSlugConflictError(slug string) *APIError {
	return &APIError{
		Code:     ErrCodeSlugConflict,
		Message:  fmt.Sprintf("A project with slug %q already exists", slug),
		Category: "content",
		Action:   "Choose a different name or provide an explicit slug.",
	}
}

// NewValidationError は必須項目不足などの入力エラーを生成する。
// fieldsには不足している項目名をJSONのパス表記で渡す。
func NewValidationError(fields ...string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("Missing required fields: %s", strings.Join(fields, ", ")),
		Category: "validation",
		Action:   "Fill in the required fields and retry.",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("Invalid request body: %s", reason),
		Category: "validation",
		Action:   "Send a well-formed JSON body.",
	}
}

// NewStoreUnavailableError は永続化層の障害を表すエラーを生成する。
// 原因はErrに保持し、レスポンスには出さない。
func NewStoreUnavailableError(op string, err error) *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  fmt.Sprintf("Failed to %s", op),
		Category: "system",
		Action:   "Please wait a moment and retry.",
		Err:      err,
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests",
		Category: "system",
		Action:   "Please wait a moment and retry.",
	}
}

// NewCSRFError はCSRFトークン検証失敗エラーを生成する。
func NewCSRFError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRF,
		Message:  "CSRF token validation failed",
		Category: "auth",
		Action:   "Reload the page and retry.",
	}
}

// NewInternalError は内部エラーを生成する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Internal server error",
		Category: "system",
		Action:   "Please wait a moment and retry.",
	}
}

// IsCode はerrがAPIErrorであり、指定コードを持つかを判定する。
func IsCode(err error, code string) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == code
}
