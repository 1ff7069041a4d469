// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/portfolio/internal/auth"
	"github.com/hitoshi/portfolio/internal/middleware"
	"github.com/hitoshi/portfolio/internal/model"
)

// maxRequestBodyBytes はJSONリクエストボディの上限。
const maxRequestBodyBytes = 1 << 20

// writeJSON はステータスコードとJSONボディを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// requireAdmin は管理者セッションがなければ401を書き込みfalseを返す。
// 更新系ハンドラーはボディを読む前に呼び、入力エラーより認可エラーを優先する。
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if auth.IsAuthenticated(r.Context()) {
		return true
	}
	middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
	return false
}

// decodeJSON はリクエストボディを厳密にデコードする。
// 未知のフィールド、複数のJSON値、上限超過はINVALID_REQUESTとして扱う。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return model.NewInvalidRequestError("body is empty")
		case errors.As(err, &maxErr):
			return model.NewInvalidRequestError(fmt.Sprintf("body exceeds %d bytes", maxErr.Limit))
		default:
			return model.NewInvalidRequestError(err.Error())
		}
	}
	if dec.More() {
		return model.NewInvalidRequestError("body must contain a single JSON object")
	}
	return nil
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		if statusCode >= http.StatusInternalServerError {
			slog.Error("request failed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("code", apiErr.Code),
				slog.String("error", apiErr.Error()),
			)
		}
		middleware.WriteErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w, r)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeProjectNotFound:
		return http.StatusNotFound
	case model.ErrCodeSlugConflict:
		return http.StatusConflict
	case model.ErrCodeValidation, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeCSRF:
		return http.StatusForbidden
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case model.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// notFoundError は存在しないAPIパスへのレスポンス。
func notFoundError() *model.APIError {
	return &model.APIError{
		Code:     "NOT_FOUND",
		Message:  "Resource not found",
		Category: "system",
		Action:   "Check the request path.",
	}
}
