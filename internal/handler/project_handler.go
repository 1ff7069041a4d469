package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/portfolio/internal/content"
	"github.com/hitoshi/portfolio/internal/model"
)

// ProjectServiceInterface はプロジェクトハンドラーが必要とするサービスインターフェース。
type ProjectServiceInterface interface {
	ListProjects(ctx context.Context) ([]*model.Project, error)
	GetProject(ctx context.Context, idOrSlug string) (*model.Project, error)
	CreateProject(ctx context.Context, in content.ProjectInput) (*model.Project, error)
	UpdateProject(ctx context.Context, idOrSlug string, patch content.ProjectPatch) (*model.Project, error)
	DeleteProject(ctx context.Context, idOrSlug string) error
}

// ProjectHandler はプロジェクト管理のHTTPハンドラー。
type ProjectHandler struct {
	service ProjectServiceInterface
}

// NewProjectHandler はProjectHandlerを生成する。
func NewProjectHandler(service ProjectServiceInterface) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// updateProjectRequest はプロジェクト更新リクエストのボディ。
// id とタイムスタンプはサーバー管理のため受け取って無視する。
type updateProjectRequest struct {
	content.ProjectPatch
	ID        json.RawMessage `json:"id,omitempty"`
	CreatedAt json.RawMessage `json:"createdAt,omitempty"`
	UpdatedAt json.RawMessage `json:"updatedAt,omitempty"`
}

// deleteProjectResponse はプロジェクト削除のレスポンス。
type deleteProjectResponse struct {
	Message string `json:"message"`
}

// List はプロジェクト一覧をorder昇順、作成日時の新しい順で返す。
// GET /api/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListProjects(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// Create はプロジェクトを作成する。
// POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var in content.ProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleServiceError(w, r, err)
		return
	}

	project, err := h.service.CreateProject(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// Get はIDまたはslugでプロジェクトを返す。
// GET /api/projects/{idOrSlug}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.GetProject(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Update はプロジェクトを部分更新する。
// PUT /api/projects/{idOrSlug}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var req updateProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	project, err := h.service.UpdateProject(r.Context(), chi.URLParam(r, "idOrSlug"), req.ProjectPatch)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Delete はプロジェクトを削除する。
// DELETE /api/projects/{idOrSlug}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	if err := h.service.DeleteProject(r.Context(), chi.URLParam(r, "idOrSlug")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteProjectResponse{Message: "Project deleted successfully"})
}
