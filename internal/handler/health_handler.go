package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// HealthCheckFunc はストアへの疎通を確認する。
type HealthCheckFunc func(ctx context.Context) error

type healthResponse struct {
	Status string `json:"status"`
}

// NewHealthHandler はヘルスチェックエンドポイントのハンドラーを返す。
// GET /health
// checkがnilの場合は常に200を返す。
func NewHealthHandler(check HealthCheckFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				slog.Warn("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
