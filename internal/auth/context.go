package auth

import "context"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var adminContextKey = contextKey("admin_email")

// ContextWithAdmin は認証済み管理者のメールアドレスをコンテキストに注入する。
// セッションミドルウェアとテストで使用する。
func ContextWithAdmin(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, adminContextKey, email)
}

// AdminFromContext はコンテキストから管理者のメールアドレスを取得する。
func AdminFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(adminContextKey).(string)
	return email, ok && email != ""
}

// IsAuthenticated はリクエストが認証済み管理者からのものかを返す。
// content.GateFuncとしてコンテンツアクセス層に渡す。
func IsAuthenticated(ctx context.Context) bool {
	_, ok := AdminFromContext(ctx)
	return ok
}
