// Package web は公開ページと管理画面をサーバーサイドレンダリングで提供する。
//
// 公開ページはコンテンツアクセス層の読み取り操作のみを使い、読み取りに失敗した場合は
// 固定のフォールバック表示に切り替えてページ全体をエラーにしない。
// 管理画面はフォームを編集中の下書き値にデコードし、保存はすべてコンテンツアクセス層を経由する。
package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/portfolio/internal/content"
	"github.com/hitoshi/portfolio/internal/middleware"
	"github.com/hitoshi/portfolio/internal/model"
	"github.com/hitoshi/portfolio/internal/security"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// LoginPath は管理画面のログインページのパス。
const LoginPath = "/admin/login"

// ContentService はページが必要とするコンテンツアクセス層の操作。
// *content.Service が満たす。
type ContentService interface {
	GetSite(ctx context.Context) (*model.Site, error)
	UpdateSite(ctx context.Context, patch content.SitePatch) (*model.Site, error)
	GetCredentials(ctx context.Context) (*model.Credentials, error)
	UpdateCredentials(ctx context.Context, patch content.CredentialsPatch) (*model.Credentials, error)
	ListProjects(ctx context.Context) ([]*model.Project, error)
	GetProject(ctx context.Context, idOrSlug string) (*model.Project, error)
	CreateProject(ctx context.Context, in content.ProjectInput) (*model.Project, error)
	UpdateProject(ctx context.Context, idOrSlug string, patch content.ProjectPatch) (*model.Project, error)
	DeleteProject(ctx context.Context, idOrSlug string) error
}

// AuthService は管理画面のログイン・ログアウトに使う認証サービス。
type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// Config はPagesの依存関係。
type Config struct {
	Content     ContentService
	Auth        AuthService
	Renderer    security.Renderer
	RateLimiter *middleware.RateLimiter
	Cookie      middleware.CookieConfig
	Logger      *slog.Logger
}

// Pages は公開ページと管理画面のハンドラー群。handler.PageRoutes を満たす。
type Pages struct {
	content ContentService
	auth    AuthService
	limiter *middleware.RateLimiter
	cookie  middleware.CookieConfig
	logger  *slog.Logger
	views   *views
	statics http.Handler
}

// New はテンプレートを解析してPagesを生成する。
func New(cfg Config) (*Pages, error) {
	if cfg.Content == nil {
		return nil, fmt.Errorf("web: content service is required")
	}
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = security.NewMarkdownRenderer()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	v, err := parseViews(renderer)
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("web: static assets: %w", err)
	}

	return &Pages{
		content: cfg.Content,
		auth:    cfg.Auth,
		limiter: cfg.RateLimiter,
		cookie:  cfg.Cookie,
		logger:  logger,
		views:   v,
		statics: http.StripPrefix("/static/", http.FileServer(http.FS(static))),
	}, nil
}

// RegisterRoutes は公開ページと管理画面のルートを登録する。
func (p *Pages) RegisterRoutes(r chi.Router) {
	r.Handle("/static/*", p.statics)

	r.Get("/", p.home)
	r.Get("/about", p.about)
	r.Get("/projects", p.projects)
	r.Get("/projects/{slug}", p.projectDetail)
	r.Get("/credentials", p.credentials)
	r.Get("/resume", p.resume)
	r.Get("/contact", p.contact)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NewRequireAdminMiddleware(LoginPath))

		r.Get("/login", p.loginForm)
		if p.limiter != nil {
			r.With(p.limiter.LoginMiddleware()).Post("/login", p.login)
		} else {
			r.Post("/login", p.login)
		}
		r.Post("/logout", p.logout)

		r.Get("/", p.dashboard)

		r.Get("/site", p.siteForm)
		r.Post("/site", p.saveSite)

		r.Get("/credentials", p.credentialsForm)
		r.Post("/credentials", p.saveCredentials)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", p.projectList)
			r.Get("/new", p.newProjectForm)
			r.Post("/new", p.createProject)
			r.Get("/{id}", p.editProjectForm)
			r.Post("/{id}", p.updateProject)
			r.Post("/{id}/delete", p.deleteProject)
		})
	})

	r.NotFound(p.notFound)
}
