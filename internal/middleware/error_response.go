package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hitoshi/portfolio/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// Errorは既存の管理画面クライアントが読む {"error": "..."} 形式との互換用で、Messageと同じ値が入る。
type ErrorResponseBody struct {
	Error    string `json:"error"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// WriteErrorResponse はAPIErrorをJSONで書き込む。原因エラー（Err）は含めない。
// エラー応答はキャッシュさせない。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponseBody{
		Error:    apiErr.Message,
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// WriteInternalServerError は内部エラーを書き込む。
// /api配下はJSON、それ以外（HTMLページ）はプレーンテキストで返す。
func WriteInternalServerError(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
		return
	}
	http.Error(w, "Something went wrong. Please try again later.", http.StatusInternalServerError)
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}
