package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/portfolio/internal/middleware"
)

// PageRoutes はHTMLページ（公開ページと管理画面）のルートを登録する。
type PageRoutes interface {
	RegisterRoutes(r chi.Router)
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionResolver   middleware.SessionResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	TrustProxy        bool
	Logger            *slog.Logger
	HTTPRecorder      middleware.HTTPRecorder

	// 運用
	HealthCheck    HealthCheckFunc
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// コンテンツ
	SiteService        SiteServiceInterface
	CredentialsService CredentialsServiceInterface
	ProjectService     ProjectServiceInterface

	// HTMLページ。nilの場合はAPIのみを提供する。
	Pages PageRoutes
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → (RealIP) → Session → Logging → RateLimit(General) → CSRF
//
// /health と /metrics はレート制限とCSRFの外に配置する。
// 更新系APIはハンドラーがボディを読む前に認可を確認し、コンテンツアクセス層も再度確認する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.NewSessionMiddleware(deps.SessionResolver))
	r.Use(middleware.NewLoggingMiddleware(logger, deps.HTTPRecorder))

	r.Get("/health", NewHealthHandler(deps.HealthCheck))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	siteHandler := NewSiteHandler(deps.SiteService)
	credsHandler := NewCredentialsHandler(deps.CredentialsService)
	projectHandler := NewProjectHandler(deps.ProjectService)

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

			r.Get("/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

			// 認証
			r.Route("/auth", func(r chi.Router) {
				r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
			})

			// サイト情報
			r.Get("/site", siteHandler.Get)
			r.Put("/site", siteHandler.Update)

			// 資格情報
			r.Get("/credentials", credsHandler.Get)
			r.Put("/credentials", credsHandler.Update)

			// プロジェクト
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Post("/", projectHandler.Create)

				r.Route("/{idOrSlug}", func(r chi.Router) {
					r.Get("/", projectHandler.Get)
					r.Put("/", projectHandler.Update)
					r.Delete("/", projectHandler.Delete)
				})
			})

			r.NotFound(func(w http.ResponseWriter, r *http.Request) {
				middleware.WriteErrorResponse(w, http.StatusNotFound, notFoundError())
			})
		})

		if deps.Pages != nil {
			deps.Pages.RegisterRoutes(r)
		}
	})

	return r
}
