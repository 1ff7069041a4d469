package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/portfolio/internal/auth"
	"github.com/hitoshi/portfolio/internal/content"
	"github.com/hitoshi/portfolio/internal/middleware"
	"github.com/hitoshi/portfolio/internal/model"
)

// --- モック定義 ---

type mockSiteService struct {
	getSiteFn    func(ctx context.Context) (*model.Site, error)
	updateSiteFn func(ctx context.Context, patch content.SitePatch) (*model.Site, error)
}

func (m *mockSiteService) GetSite(ctx context.Context) (*model.Site, error) {
	if m.getSiteFn != nil {
		return m.getSiteFn(ctx)
	}
	return nil, nil
}

func (m *mockSiteService) UpdateSite(ctx context.Context, patch content.SitePatch) (*model.Site, error) {
	if m.updateSiteFn != nil {
		return m.updateSiteFn(ctx, patch)
	}
	return nil, nil
}

type mockCredentialsService struct {
	getCredentialsFn    func(ctx context.Context) (*model.Credentials, error)
	updateCredentialsFn func(ctx context.Context, patch content.CredentialsPatch) (*model.Credentials, error)
}

func (m *mockCredentialsService) GetCredentials(ctx context.Context) (*model.Credentials, error) {
	if m.getCredentialsFn != nil {
		return m.getCredentialsFn(ctx)
	}
	return nil, nil
}

func (m *mockCredentialsService) UpdateCredentials(ctx context.Context, patch content.CredentialsPatch) (*model.Credentials, error) {
	if m.updateCredentialsFn != nil {
		return m.updateCredentialsFn(ctx, patch)
	}
	return nil, nil
}

type mockProjectService struct {
	listProjectsFn  func(ctx context.Context) ([]*model.Project, error)
	getProjectFn    func(ctx context.Context, idOrSlug string) (*model.Project, error)
	createProjectFn func(ctx context.Context, in content.ProjectInput) (*model.Project, error)
	updateProjectFn func(ctx context.Context, idOrSlug string, patch content.ProjectPatch) (*model.Project, error)
	deleteProjectFn func(ctx context.Context, idOrSlug string) error
}

func (m *mockProjectService) ListProjects(ctx context.Context) ([]*model.Project, error) {
	if m.listProjectsFn != nil {
		return m.listProjectsFn(ctx)
	}
	return []*model.Project{}, nil
}

func (m *mockProjectService) GetProject(ctx context.Context, idOrSlug string) (*model.Project, error) {
	if m.getProjectFn != nil {
		return m.getProjectFn(ctx, idOrSlug)
	}
	return nil, model.NewProjectNotFoundError(idOrSlug)
}

func (m *mockProjectService) CreateProject(ctx context.Context, in content.ProjectInput) (*model.Project, error) {
	if m.createProjectFn != nil {
		return m.createProjectFn(ctx, in)
	}
	return nil, nil
}

func (m *mockProjectService) UpdateProject(ctx context.Context, idOrSlug string, patch content.ProjectPatch) (*model.Project, error) {
	if m.updateProjectFn != nil {
		return m.updateProjectFn(ctx, idOrSlug, patch)
	}
	return nil, nil
}

func (m *mockProjectService) DeleteProject(ctx context.Context, idOrSlug string) error {
	if m.deleteProjectFn != nil {
		return m.deleteProjectFn(ctx, idOrSlug)
	}
	return nil
}

type mockAuthService struct {
	loginFn  func(ctx context.Context, email, password string) (*model.Session, error)
	logoutFn func(ctx context.Context, sessionID string) error
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

var (
	_ SiteServiceInterface        = (*mockSiteService)(nil)
	_ CredentialsServiceInterface = (*mockCredentialsService)(nil)
	_ ProjectServiceInterface     = (*mockProjectService)(nil)
	_ AuthServiceInterface        = (*mockAuthService)(nil)

	_ SiteServiceInterface        = (*content.Service)(nil)
	_ CredentialsServiceInterface = (*content.Service)(nil)
	_ ProjectServiceInterface     = (*content.Service)(nil)
)

// --- テストヘルパー ---

// jsonRequest はJSONボディ付きのリクエストを生成する。
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	default:
		if err := json.NewEncoder(&buf).Encode(v); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return asAdmin(req)
}

// withURLParam はchiのURLパラメータを設定したリクエストを返す。
// asAdmin はセッションミドルウェア通過後と同じく管理者コンテキストを付与する。
func asAdmin(req *http.Request) *http.Request {
	return req.WithContext(auth.ContextWithAdmin(req.Context(), "admin@example.com"))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorBody はエラーレスポンスを読み取る。
func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()

	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v\nraw: %s", err, w.Body.String())
	}
	return body
}
