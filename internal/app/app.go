package app

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/portfolio/internal/auth"
	"github.com/hitoshi/portfolio/internal/config"
	"github.com/hitoshi/portfolio/internal/content"
	"github.com/hitoshi/portfolio/internal/database"
	"github.com/hitoshi/portfolio/internal/handler"
	"github.com/hitoshi/portfolio/internal/logger"
	"github.com/hitoshi/portfolio/internal/metrics"
	"github.com/hitoshi/portfolio/internal/middleware"
	"github.com/hitoshi/portfolio/internal/repository"
	"github.com/hitoshi/portfolio/internal/security"
	"github.com/hitoshi/portfolio/internal/seed"
	"github.com/hitoshi/portfolio/internal/web"
	"github.com/hitoshi/portfolio/internal/worker/cleanup"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("initialization failed: failed to load config: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// argsにはos.Args[1:]を渡す。サブコマンドを省略した場合はserveとして起動する。
func Run(w io.Writer, args []string) error {
	root := NewRootCommand(w)
	root.SetArgs(args)
	return root.Execute()
}

// stores はDBとセッションストアへの接続をまとめたもの。
type stores struct {
	db       *sql.DB
	redis    *redis.Client
	sessions repository.SessionRepository
}

// openStores はDB接続を開き、REDIS_URLが設定されていればRedisにも接続する。
// セッションはRedis接続時はRedisに、それ以外はPostgreSQLに保存する。
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Ping(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("database connection established")

	s := &stores{db: db, sessions: repository.NewPostgresSessionRepo(db)}
	if cfg.RedisURL == "" {
		return s, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		db.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	slog.Info("redis connection established, sessions are stored in redis")

	s.redis = client
	s.sessions = repository.NewRedisSessionRepo(client)
	return s, nil
}

// healthCheck はDB（とRedis）への疎通を確認する。
func (s *stores) healthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return err
	}
	if s.redis != nil {
		return s.redis.Ping(ctx).Err()
	}
	return nil
}

func (s *stores) Close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			slog.Warn("failed to close redis", slog.String("error", err.Error()))
		}
	}
	if err := s.db.Close(); err != nil {
		slog.Warn("failed to close database", slog.String("error", err.Error()))
	}
}

// newContentService はPostgreSQLのリポジトリでコンテンツアクセス層を構築する。
func newContentService(db *sql.DB, opts ...content.Option) *content.Service {
	return content.NewService(
		repository.NewPostgresSiteRepo(db),
		repository.NewPostgresCredentialsRepo(db),
		repository.NewPostgresProjectRepo(db),
		content.GateFunc(auth.IsAuthenticated),
		opts...,
	)
}

// signalContext はSIGINT/SIGTERMでキャンセルされるコンテキストを返す。
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// runServe はWebサーバーモードで起動する。
// 未適用のマイグレーションを適用し、全依存関係をワイヤリングしてHTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx, stop := signalContext()
	defer stop()

	// 1. マイグレーションとストア接続
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	// 2. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 3. ドメインサービスの初期化
	authService := auth.NewService(st.sessions, auth.ServiceConfig{
		AdminEmail:        cfg.AdminEmail,
		AdminPasswordHash: cfg.AdminPasswordHash,
		SessionMaxAge:     cfg.SessionMaxAge,
	}, collector)
	contentService := newContentService(st.db, content.WithMutationRecorder(collector))

	// 4. HTMLページ
	authConfig := handler.AuthHandlerConfig{
		CookieDomain:  cfg.CookieDomain,
		CookieSecure:  cfg.CookieSecure,
		SessionMaxAge: cfg.SessionMaxAge,
	}
	rateLimiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitLogin))
	defer rateLimiter.Stop()

	pages, err := web.New(web.Config{
		Content:     contentService,
		Auth:        authService,
		Renderer:    security.NewMarkdownRenderer(),
		RateLimiter: rateLimiter,
		Cookie:      authConfig.CookieConfig(),
		Logger:      slog.Default(),
	})
	if err != nil {
		return fmt.Errorf("failed to build pages: %w", err)
	}

	// 5. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		SessionResolver:   authService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		TrustProxy:   cfg.TrustProxy,
		Logger:       slog.Default(),
		HTTPRecorder: collector,

		HealthCheck:    st.healthCheck,
		MetricsHandler: metrics.Handler(reg),

		AuthService: authService,
		AuthConfig:  authConfig,

		SiteService:        contentService,
		CredentialsService: contentService,
		ProjectService:     contentService,

		Pages: pages,
	})

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("web server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	slog.Info("shutting down web server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("web server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 期限切れセッションの定期削除をシグナル受信まで実行する。
func runWorker(cfg *config.Config) error {
	ctx, stop := signalContext()
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	sweeper := cleanup.NewSessionSweeper(st.sessions, metrics.Nop{}, slog.Default())

	slog.Info("worker starting",
		slog.Duration("session_cleanup_interval", cfg.SessionCleanupInterval),
	)
	sweeper.Start(ctx, cfg.SessionCleanupInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrateUp はすべての未適用マイグレーションを順番に適用する。
func runMigrateUp(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runMigrateDown は適用済みマイグレーションをsteps件ロールバックする。
func runMigrateDown(cfg *config.Config, steps int) error {
	if steps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", steps)
	}
	slog.Info("rolling back database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		slog.Int("steps", steps),
	)

	if err := database.RollbackMigrations(cfg.DatabaseURL, steps); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	slog.Info("database rollback completed successfully")
	return nil
}

// runMigrateVersion は現在のスキーマバージョンを出力する。
func runMigrateVersion(cfg *config.Config, out io.Writer) error {
	version, dirty, err := database.MigrationVersion(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	_, err = fmt.Fprintf(out, "version=%d dirty=%t\n", version, dirty)
	return err
}

// runSeed はコンテンツディレクトリの内容を取り込む。
// 管理者として実行するため、設定済みの管理者メールアドレスをコンテキストに注入する。
func runSeed(cfg *config.Config, dir string) error {
	ctx, stop := signalContext()
	defer stop()

	bundle, err := seed.LoadDir(dir)
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := newContentService(st.db)
	result, err := seed.Apply(auth.ContextWithAdmin(ctx, cfg.AdminEmail), svc, bundle, slog.Default())
	if err != nil {
		return err
	}

	slog.Info("content seeded",
		slog.String("dir", dir),
		slog.Bool("site_updated", result.SiteUpdated),
		slog.Bool("credentials_updated", result.CredentialsUpdated),
		slog.Int("projects_created", result.ProjectsCreated),
		slog.Int("projects_updated", result.ProjectsUpdated),
	)
	return nil
}

// runHashPassword はinから読んだパスワードのbcryptハッシュをoutに出力する。
// 出力はADMIN_PASSWORD_HASHにそのまま設定できる。
func runHashPassword(in io.Reader, out io.Writer) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("password must not be empty")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// logStart は起動時の共通ログを出力する。
func logStart(command string, cfg *config.Config) {
	slog.Info("starting application",
		slog.String("command", command),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)
}

// healthcheckPort はSERVER_PORTを返す。未設定なら8080。
func healthcheckPort() string {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		return port
	}
	return "8080"
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
