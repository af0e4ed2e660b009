package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/accountdash/internal/account"
	"github.com/hitoshi/accountdash/internal/dashboard"
	"github.com/hitoshi/accountdash/internal/middleware"
	"github.com/hitoshi/accountdash/internal/model"
	"github.com/hitoshi/accountdash/internal/provider"
	"github.com/hitoshi/accountdash/internal/view"
)

// AccountService は認証画面が必要とするアカウントサービスのインターフェース。
type AccountService interface {
	Register(ctx context.Context, page account.Page, email, password, fullName string) (*model.Session, error)
	Login(ctx context.Context, page account.Page, email, password string) (*model.Session, error)
	RequireSession(ctx context.Context, nav account.Navigator, fallbackPath string) account.GuardResult
	RedirectIfSessionExists(ctx context.Context, nav account.Navigator, targetPath string) account.GuardResult
	CurrentSession(ctx context.Context) *model.Session
	GetProfile(ctx context.Context, uid string) (*model.Profile, error)
}

// LogoutController はサインアウト確認を扱うコントローラーのインターフェース。
type LogoutController interface {
	Logout(ctx context.Context, page dashboard.Page, sessionID string, confirmed bool) error
}

// AuthHandler はサインイン・登録・サインアウト画面とセッション情報APIのハンドラー。
type AuthHandler struct {
	pageWriter
	service AccountService
	logout  LogoutController
	cookies middleware.CookieConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AccountService, logout LogoutController, renderer PageRenderer, cookies middleware.CookieConfig) *AuthHandler {
	return &AuthHandler{
		pageWriter: pageWriter{renderer: renderer},
		service:    service,
		logout:     logout,
		cookies:    cookies,
	}
}

// LoginPage はサインイン画面を表示する。サインイン済みならダッシュボードへ遷移する。
// GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	page := newPage(r)
	h.service.RedirectIfSessionExists(r.Context(), page, "")
	h.respond(w, r, page, pageLogin, "page.login", http.StatusOK, nil)
}

// Login はサインインフォームを処理する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	page := newPage(r)
	if h.service.RedirectIfSessionExists(r.Context(), page, "") == account.GuardRedirected {
		h.respond(w, r, page, pageLogin, "page.login", http.StatusOK, nil)
		return
	}

	email := r.PostFormValue("email")
	session, err := h.service.Login(r.Context(), page, email, r.PostFormValue("password"))
	if session != nil {
		middleware.SetSessionCookie(w, session, h.cookies)
	}

	h.respond(w, r, page, pageLogin, "page.login", pageStatus(err), &view.PageData{
		Session: session,
		Form:    view.FormValues{Email: email},
	})
}

// RegisterPage は登録画面を表示する。サインイン済みならダッシュボードへ遷移する。
// GET /register
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	page := newPage(r)
	h.service.RedirectIfSessionExists(r.Context(), page, "")
	h.respond(w, r, page, pageRegister, "page.register", http.StatusOK, nil)
}

// Register は登録フォームを処理する。
// アカウント作成後の手順で失敗した場合もセッションCookieは設定する。
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	page := newPage(r)
	if h.service.RedirectIfSessionExists(r.Context(), page, "") == account.GuardRedirected {
		h.respond(w, r, page, pageRegister, "page.register", http.StatusOK, nil)
		return
	}

	email := r.PostFormValue("email")
	fullName := r.PostFormValue("fullName")
	session, err := h.service.Register(r.Context(), page, email, r.PostFormValue("password"), fullName)
	if session != nil {
		middleware.SetSessionCookie(w, session, h.cookies)
	}

	h.respond(w, r, page, pageRegister, "page.register", pageStatus(err), &view.PageData{
		Session: session,
		Form:    view.FormValues{Email: email, FullName: fullName},
	})
}

// LogoutPage はサインアウトの確認画面を表示する。
// GET /logout
func (h *AuthHandler) LogoutPage(w http.ResponseWriter, r *http.Request) {
	page := newPage(r, view.IDLogoutButton)
	h.service.RequireSession(r.Context(), page, "")
	h.respond(w, r, page, pageLogout, "page.logout", http.StatusOK, nil)
}

// Logout はサインアウトを実行する。confirm=yes がない場合はダッシュボードへ戻す。
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := newPage(r, view.IDLogoutButton)
	if h.service.RequireSession(ctx, page, "") == account.GuardBlocked {
		h.respond(w, r, page, pageLogout, "page.logout", http.StatusOK, nil)
		return
	}

	confirmed := r.PostFormValue("confirm") == "yes"
	if !confirmed {
		http.Redirect(w, r, account.DashboardPath, http.StatusSeeOther)
		return
	}

	session := provider.SessionFromContext(ctx)
	if err := h.logout.Logout(ctx, page, session.ID, true); err != nil {
		h.respond(w, r, page, pageLogout, "page.logout", http.StatusInternalServerError, nil)
		return
	}

	middleware.ClearSessionCookie(w, h.cookies)
	h.respond(w, r, page, pageLogout, "page.logout", http.StatusOK, &view.PageData{})
}

// meResponse は現在のセッション情報のレスポンス。
type meResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// Me は現在のセッション情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := h.service.CurrentSession(r.Context())
	if session == nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		UID:         session.UID,
		Email:       session.Email,
		DisplayName: session.DisplayName,
	})
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
