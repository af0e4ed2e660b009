package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"

	"github.com/hitoshi/accountdash/internal/i18n"
	"github.com/hitoshi/accountdash/internal/metrics"
	"github.com/hitoshi/accountdash/internal/middleware"
	"github.com/hitoshi/accountdash/internal/view"
)

// Dashboard はダッシュボード画面とサインアウト確認を扱うコントローラー。
type Dashboard interface {
	DashboardController
	LogoutController
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionRestorer   middleware.SessionRestorer
	Cookies           middleware.CookieConfig
	CSRF              middleware.CSRFConfig
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Metrics           metrics.MetricsCollector
	DefaultLanguage   language.Tag
	Logger            *slog.Logger

	// 公開エンドポイント
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// 画面
	Renderer       PageRenderer
	AccountService AccountService
	Dashboard      Dashboard
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → RealIP → SecurityHeaders → Metrics → CORS
//	  画面・API: i18n → Session → Logging → CSRF
//	    API: RequireAPISession → RateLimit(General)
//
// 静的ファイル・ヘルスチェック・メトリクスはセッション復元の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(chimw.RealIP)
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewMetricsMiddleware(collector))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AccountService, deps.Dashboard, deps.Renderer, deps.Cookies)
	dashboardHandler := NewDashboardHandler(deps.Dashboard, deps.Renderer)
	profileHandler := NewProfileHandler(deps.AccountService)
	indexHandler := NewIndexHandler(deps.Renderer)

	// --- セッション復元の外のルート ---
	r.Handle("/static/*", http.StripPrefix("/static/", view.StaticHandler()))
	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(i18n.NewMiddleware(deps.DefaultLanguage))
		r.Use(middleware.NewSessionMiddleware(deps.SessionRestorer, deps.Cookies))
		r.Use(middleware.NewLoggingMiddleware(logger))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRF))

		// --- 画面 ---
		r.Get("/", indexHandler.ServeHTTP)

		r.Get("/login", authHandler.LoginPage)
		r.With(deps.RateLimiter.CredentialMiddleware()).Post("/login", authHandler.Login)
		r.Get("/register", authHandler.RegisterPage)
		r.With(deps.RateLimiter.CredentialMiddleware()).Post("/register", authHandler.Register)

		r.Get("/logout", authHandler.LogoutPage)
		r.Post("/logout", authHandler.Logout)

		r.Get("/dashboard", dashboardHandler.Show)
		r.Post("/dashboard/refresh", dashboardHandler.Refresh)

		r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRF).ServeHTTP)

		// --- 認証が必要なAPI ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPISession)
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Get("/auth/me", authHandler.Me)
			r.Get("/api/profile", profileHandler.Get)
		})
	})

	return r
}
