package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/portfolio/internal/content"
	"github.com/hitoshi/portfolio/internal/model"
)

// SiteServiceInterface はサイト情報ハンドラーが必要とするサービスインターフェース。
type SiteServiceInterface interface {
	GetSite(ctx context.Context) (*model.Site, error)
	UpdateSite(ctx context.Context, patch content.SitePatch) (*model.Site, error)
}

// SiteHandler はサイト情報のHTTPハンドラー。
type SiteHandler struct {
	service SiteServiceInterface
}

// NewSiteHandler はSiteHandlerを生成する。
func NewSiteHandler(service SiteServiceInterface) *SiteHandler {
	return &SiteHandler{service: service}
}

// updateSiteRequest はサイト情報更新リクエストのボディ。
// GETのレスポンスをそのまま送り返せるよう、サーバー管理のタイムスタンプは受け取って無視する。
type updateSiteRequest struct {
	content.SitePatch
	CreatedAt json.RawMessage `json:"createdAt,omitempty"`
	UpdatedAt json.RawMessage `json:"updatedAt,omitempty"`
}

// Get はサイト情報を返す。
// GET /api/site
func (h *SiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	site, err := h.service.GetSite(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

// Update はサイト情報を部分更新する。
// PUT /api/site
func (h *SiteHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var req updateSiteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	site, err := h.service.UpdateSite(r.Context(), req.SitePatch)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}
