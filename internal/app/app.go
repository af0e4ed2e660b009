// Package app はコマンドの解析と依存関係の組み立てを行い、各起動モードを実行する。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/hitoshi/accountdash/internal/account"
	"github.com/hitoshi/accountdash/internal/config"
	"github.com/hitoshi/accountdash/internal/dashboard"
	"github.com/hitoshi/accountdash/internal/database"
	"github.com/hitoshi/accountdash/internal/handler"
	"github.com/hitoshi/accountdash/internal/logger"
	"github.com/hitoshi/accountdash/internal/metrics"
	"github.com/hitoshi/accountdash/internal/middleware"
	"github.com/hitoshi/accountdash/internal/provider"
	"github.com/hitoshi/accountdash/internal/repository"
	"github.com/hitoshi/accountdash/internal/security"
	"github.com/hitoshi/accountdash/internal/view"
	"github.com/hitoshi/accountdash/internal/worker/cleanup"
)

const (
	dbConnectTimeout = 5 * time.Second
	shutdownTimeout  = 30 * time.Second
)

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、環境変数からConfigを読み込む。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// ログは設定読み込み前に使えるようにする
	logger.SetupDefault(w)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// argsにはos.Args[1:]を渡す。SIGINTまたはSIGTERMでグレースフルに終了する。
func Run(w io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return RunContext(ctx, w, args)
}

// RunContext はctxがキャンセルされるまで指定のコマンドを実行する。
func RunContext(ctx context.Context, w io.Writer, args []string) error {
	cmd, err := ParseCommand(args)
	if err != nil {
		return err
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.String("provider_project", cfg.ProviderProjectID),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(ctx, cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// newRegistry はプロセス情報を含むPrometheusレジストリを生成する。
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// rateLimiterConfig は設定値（req/min）からレート制限設定を組み立てる。
func rateLimiterConfig(cfg *config.Config) middleware.RateLimiterConfig {
	rl := middleware.DefaultRateLimiterConfig()
	rl.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rl.GeneralBurst = cfg.RateLimitGeneral
	rl.CredentialRate = rate.Limit(float64(cfg.RateLimitCredentials) / 60.0)
	rl.CredentialBurst = cfg.RateLimitCredentials
	return rl
}

// server はWebサーバーモードの組み立て済み依存関係。
type server struct {
	handler http.Handler
	service *account.Service
	limiter *middleware.RateLimiter
	stop    func()
}

// close はバックグラウンド処理を停止し、実行中の最終ログイン更新を待つ。
func (s *server) close() {
	s.stop()
	s.limiter.Stop()
	s.service.Wait()
}

// newServer はDB接続からWebサーバーのハンドラーを組み立てる。
func newServer(cfg *config.Config, db *sql.DB) (*server, error) {
	sessionRepo := repository.NewPostgresSessionRepo(db)
	docs := repository.NewPostgresDocumentStore(db)

	identity := provider.NewIdentityClient(provider.IdentityConfig{
		APIKey:  cfg.ProviderAPIKey,
		BaseURL: cfg.ProviderBaseURL,
		Timeout: cfg.ProviderTimeout,
	})
	auth := provider.NewAuth(identity, sessionRepo, provider.AuthConfig{SessionMaxAge: cfg.SessionMaxAge})

	reg := newRegistry()
	collector := metrics.NewCollector(reg)

	service := account.NewService(auth, docs, security.NewNameSanitizer(), collector)
	controller := dashboard.NewController(service, cfg.Location)

	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	limiter := middleware.NewRateLimiter(rateLimiterConfig(cfg))
	stop := service.Initialize()

	router := handler.NewRouter(&handler.RouterDeps{
		SessionRestorer: auth,
		Cookies: middleware.CookieConfig{
			Secure: cfg.CookieSecure,
			Domain: cfg.CookieDomain,
			MaxAge: cfg.SessionMaxAge,
		},
		CSRF: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       limiter,
		Metrics:           collector,
		DefaultLanguage:   cfg.DefaultLanguage,
		Logger:            slog.Default(),
		HealthChecker:     db,
		MetricsHandler:    metrics.Handler(reg),
		Renderer:          renderer,
		AccountService:    service,
		Dashboard:         controller,
	})

	return &server{handler: router, service: service, limiter: limiter, stop: stop}, nil
}

// runServe はWebサーバーモードで起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	db, err := database.Connect(ctx, cfg.DatabaseURL, database.DefaultPoolConfig(), dbConnectTimeout)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database connection established")

	srv, err := newServer(cfg, db)
	if err != nil {
		return err
	}
	defer srv.close()

	return serveHTTP(ctx, &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	})
}

// serveHTTP はctxがキャンセルされるまでHTTPサーバーを実行する。
func serveHTTP(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	slog.Info("HTTP server stopped gracefully")
	return nil
}

// newWorkerHandler はワーカーのヘルスチェックとメトリクスのハンドラーを返す。
func newWorkerHandler(db handler.HealthChecker, reg prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /health", handler.NewHealthHandler(db))
	mux.Handle("GET /metrics", metrics.Handler(reg))
	return mux
}

// runWorker はワーカーモードで起動する。
// 期限切れセッションを定期的に削除し、ヘルスチェックとメトリクスを公開する。
func runWorker(ctx context.Context, cfg *config.Config) error {
	pool := database.DefaultPoolConfig()
	pool.MaxOpenConns = 2
	pool.MaxIdleConns = 1
	db, err := database.Connect(ctx, cfg.DatabaseURL, pool, dbConnectTimeout)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database connection established (worker)")

	reg := newRegistry()
	collector := metrics.NewCollector(reg)
	job := cleanup.NewCleanupJob(db, slog.Default(), collector)

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.SessionCleanupInterval),
	)

	jobCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		job.Start(jobCtx, cfg.SessionCleanupInterval)
	}()

	err = serveHTTP(ctx, &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           newWorkerHandler(db, reg),
		ReadHeaderTimeout: 5 * time.Second,
	})
	cancel()
	<-done
	slog.Info("worker stopped gracefully")
	return err
}

// runMigrate はすべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	result, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if !result.Applied() {
		slog.Info("database schema is up to date", slog.Uint64("version", uint64(result.To)))
		return nil
	}
	slog.Info("database migrations completed successfully",
		slog.Uint64("from_version", uint64(result.From)),
		slog.Uint64("to_version", uint64(result.To)),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
func runHealthcheck(port string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(fmt.Sprintf("http://localhost:%s/health", port))
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
