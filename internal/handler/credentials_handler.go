package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/portfolio/internal/content"
	"github.com/hitoshi/portfolio/internal/model"
)

// CredentialsServiceInterface は資格情報ハンドラーが必要とするサービスインターフェース。
type CredentialsServiceInterface interface {
	GetCredentials(ctx context.Context) (*model.Credentials, error)
	UpdateCredentials(ctx context.Context, patch content.CredentialsPatch) (*model.Credentials, error)
}

// CredentialsHandler は資格情報のHTTPハンドラー。
type CredentialsHandler struct {
	service CredentialsServiceInterface
}

// NewCredentialsHandler はCredentialsHandlerを生成する。
func NewCredentialsHandler(service CredentialsServiceInterface) *CredentialsHandler {
	return &CredentialsHandler{service: service}
}

type updateCredentialsRequest struct {
	content.CredentialsPatch
	CreatedAt json.RawMessage `json:"createdAt,omitempty"`
	UpdatedAt json.RawMessage `json:"updatedAt,omitempty"`
}

// Get は資格情報を返す。未作成の場合は空のシーケンスを返す。
// GET /api/credentials
func (h *CredentialsHandler) Get(w http.ResponseWriter, r *http.Request) {
	creds, err := h.service.GetCredentials(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, creds)
}

// Update は資格情報を更新する。指定されたシーケンスは丸ごと置き換える。
// PUT /api/credentials
func (h *CredentialsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var req updateCredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	creds, err := h.service.UpdateCredentials(r.Context(), req.CredentialsPatch)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, creds)
}
