package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/accountdash/internal/dashboard"
	"github.com/hitoshi/accountdash/internal/middleware"
	"github.com/hitoshi/accountdash/internal/model"
	"github.com/hitoshi/accountdash/internal/provider"
	"github.com/hitoshi/accountdash/internal/view"
)

// DashboardController はダッシュボード画面のコントローラーのインターフェース。
type DashboardController interface {
	Init(ctx context.Context, page dashboard.Page) error
	Refresh(ctx context.Context, page dashboard.Page) error
	HighlightNavigation(page dashboard.Page, currentPath string)
}

// dashboardElements はダッシュボード画面が持つ要素のID。
var dashboardElements = []string{
	view.IDUserName,
	view.IDUserEmail,
	view.IDUserRegistration,
	view.IDUserLastLogin,
	view.IDWelcomeMessage,
	view.IDUserAvatar,
	view.IDLogoutButton,
	view.IDRefreshButton,
}

// DashboardHandler はダッシュボード画面のハンドラー。
type DashboardHandler struct {
	pageWriter
	ctrl DashboardController
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(ctrl DashboardController, renderer PageRenderer) *DashboardHandler {
	return &DashboardHandler{
		pageWriter: pageWriter{renderer: renderer},
		ctrl:       ctrl,
	}
}

// Show はダッシュボードを表示する。未サインインならサインイン画面へ遷移する。
// GET /dashboard
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	page := newPage(r, dashboardElements...)
	err := h.ctrl.Init(r.Context(), page)
	if err != nil {
		slog.Warn("failed to load dashboard",
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
			slog.String("error", err.Error()),
		)
	}
	h.ctrl.HighlightNavigation(page, r.URL.Path)
	h.respond(w, r, page, pageDashboard, "page.dashboard", pageStatus(err), nil)
}

// Refresh はプロフィールを再取得してダッシュボードを表示する。
// POST /dashboard/refresh
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if provider.SessionFromContext(r.Context()) == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	page := newPage(r, dashboardElements...)
	err := h.ctrl.Refresh(r.Context(), page)
	h.ctrl.HighlightNavigation(page, "/dashboard")
	h.respond(w, r, page, pageDashboard, "page.dashboard", pageStatus(err), nil)
}

// ProfileHandler はプロフィールAPIのハンドラー。
type ProfileHandler struct {
	service AccountService
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service AccountService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Get はサインイン中のユーザーのプロフィールレコードを返す。
// GET /api/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	profile, err := h.service.GetProfile(r.Context(), uid)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			middleware.WriteErrorResponse(w, middleware.StatusForError(apiErr), apiErr)
			return
		}
		slog.Error("failed to get profile",
			slog.String("uid", uid),
			slog.String("error", err.Error()),
		)
		middleware.WriteInternalServerError(w)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
