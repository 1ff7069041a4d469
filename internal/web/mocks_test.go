package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/portfolio/internal/auth"
	"github.com/hitoshi/portfolio/internal/content"
	"github.com/hitoshi/portfolio/internal/model"
)

// --- モック定義 ---

// mockContentService は未設定の読み取り操作に空でない既定値を返す。
// 未設定の更新操作は入力をそのまま反映した値を返す。
type mockContentService struct {
	getSiteFn           func(ctx context.Context) (*model.Site, error)
	updateSiteFn        func(ctx context.Context, patch content.SitePatch) (*model.Site, error)
	getCredentialsFn    func(ctx context.Context) (*model.Credentials, error)
	updateCredentialsFn func(ctx context.Context, patch content.CredentialsPatch) (*model.Credentials, error)
	listProjectsFn      func(ctx context.Context) ([]*model.Project, error)
	getProjectFn        func(ctx context.Context, idOrSlug string) (*model.Project, error)
	createProjectFn     func(ctx context.Context, in content.ProjectInput) (*model.Project, error)
	updateProjectFn     func(ctx context.Context, idOrSlug string, patch content.ProjectPatch) (*model.Project, error)
	deleteProjectFn     func(ctx context.Context, idOrSlug string) error
}

func (m *mockContentService) GetSite(ctx context.Context) (*model.Site, error) {
	if m.getSiteFn != nil {
		return m.getSiteFn(ctx)
	}
	s := model.DefaultSite()
	return &s, nil
}

func (m *mockContentService) UpdateSite(ctx context.Context, patch content.SitePatch) (*model.Site, error) {
	if m.updateSiteFn != nil {
		return m.updateSiteFn(ctx, patch)
	}
	s := content.ApplySitePatch(model.Site{}, patch)
	return &s, nil
}

func (m *mockContentService) GetCredentials(ctx context.Context) (*model.Credentials, error) {
	if m.getCredentialsFn != nil {
		return m.getCredentialsFn(ctx)
	}
	c := model.EmptyCredentials()
	return &c, nil
}

func (m *mockContentService) UpdateCredentials(ctx context.Context, patch content.CredentialsPatch) (*model.Credentials, error) {
	if m.updateCredentialsFn != nil {
		return m.updateCredentialsFn(ctx, patch)
	}
	c := model.EmptyCredentials()
	return &c, nil
}

func (m *mockContentService) ListProjects(ctx context.Context) ([]*model.Project, error) {
	if m.listProjectsFn != nil {
		return m.listProjectsFn(ctx)
	}
	return []*model.Project{}, nil
}

func (m *mockContentService) GetProject(ctx context.Context, idOrSlug string) (*model.Project, error) {
	if m.getProjectFn != nil {
		return m.getProjectFn(ctx, idOrSlug)
	}
	return nil, model.NewProjectNotFoundError(idOrSlug)
}

func (m *mockContentService) CreateProject(ctx context.Context, in content.ProjectInput) (*model.Project, error) {
	if m.createProjectFn != nil {
		return m.createProjectFn(ctx, in)
	}
	return &model.Project{ID: "new-id", Name: in.Name, Slug: in.Slug}, nil
}

func (m *mockContentService) UpdateProject(ctx context.Context, idOrSlug string, patch content.ProjectPatch) (*model.Project, error) {
	if m.updateProjectFn != nil {
		return m.updateProjectFn(ctx, idOrSlug, patch)
	}
	p := content.ApplyProjectPatch(model.Project{ID: idOrSlug}, patch)
	return &p, nil
}

func (m *mockContentService) DeleteProject(ctx context.Context, idOrSlug string) error {
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
	return nil, auth.ErrInvalidCredentials
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

// コンパイル時チェック
var (
	_ ContentService = (*mockContentService)(nil)
	_ ContentService = (*content.Service)(nil)
	_ AuthService    = (*mockAuthService)(nil)
	_ AuthService    = (*auth.Service)(nil)
)

// --- テストヘルパー ---

const testAdmin = "admin@example.com"

// newTestRouter はPagesのルートを登録したルーターを返す。
// adminが空でなければ全リクエストを認証済みとして扱う。
func newTestRouter(t *testing.T, svc ContentService, authSvc AuthService, admin string) http.Handler {
	t.Helper()
	pages, err := New(Config{Content: svc, Auth: authSvc})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if admin != "" {
				r = r.WithContext(auth.ContextWithAdmin(r.Context(), admin))
			}
			next.ServeHTTP(w, r)
		})
	})
	pages.RegisterRoutes(r)
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postForm(t *testing.T, h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body does not contain %q", want)
		}
	}
}

func assertNotContains(t *testing.T, body string, absents ...string) {
	t.Helper()
	for _, absent := range absents {
		if strings.Contains(body, absent) {
			t.Errorf("body should not contain %q", absent)
		}
	}
}

func storeDown() error {
	return model.NewStoreUnavailableError("load", context.DeadlineExceeded)
}

func newFormRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
