// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/accountdash/internal/i18n"
	"github.com/hitoshi/accountdash/internal/middleware"
	"github.com/hitoshi/accountdash/internal/model"
	"github.com/hitoshi/accountdash/internal/provider"
	"github.com/hitoshi/accountdash/internal/view"
)

// 画面テンプレート名
const (
	pageIndex     = "index"
	pageLogin     = "login"
	pageRegister  = "register"
	pageDashboard = "dashboard"
	pageLogout    = "logout"
)

// PageRenderer は画面テンプレートを描画するインターフェース。
type PageRenderer interface {
	Render(w http.ResponseWriter, status int, name string, data *view.PageData) error
}

// pageWriter は画面の生成と応答をまとめる。
type pageWriter struct {
	renderer PageRenderer
}

// newPage は通知・ローディング要素とナビゲーションを持つ画面を生成する。
func newPage(r *http.Request, ids ...string) *view.Page {
	page := view.NewPage(append([]string{view.IDMessage, view.IDLoading}, ids...)...)
	ctx := r.Context()
	page.AddNavItem("/", i18n.T(ctx, "page.home"))
	if provider.SessionFromContext(ctx) != nil {
		page.AddNavItem("/dashboard", i18n.T(ctx, "page.dashboard"))
		page.AddNavItem("/logout", i18n.T(ctx, "page.logout"))
	} else {
		page.AddNavItem("/login", i18n.T(ctx, "page.login"))
		page.AddNavItem("/register", i18n.T(ctx, "page.register"))
	}
	page.ShowLoading(false)
	page.HideMessage()
	return page
}

// respond は画面を描画する。
// 即時の画面遷移（遅延0）が予約されている場合は303リダイレクトで応答する。
func (pw *pageWriter) respond(w http.ResponseWriter, r *http.Request, page *view.Page, name, titleKey string, status int, data *view.PageData) {
	if nav := page.Navigation(); nav != nil && nav.Delay == 0 {
		http.Redirect(w, r, nav.Path, http.StatusSeeOther)
		return
	}

	ctx := r.Context()
	if data == nil {
		data = &view.PageData{Session: provider.SessionFromContext(ctx)}
	}
	data.Page = page
	data.Title = i18n.T(ctx, titleKey)
	data.CSRFToken = middleware.CSRFTokenFromContext(ctx)
	data.Lang = i18n.TagFromContext(ctx).String()
	data.Printer = i18n.Printer(ctx)

	if err := pw.renderer.Render(w, status, name, data); err != nil {
		slog.Error("failed to render page",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
		middleware.WriteInternalServerError(w)
	}
}

// pageStatus は操作の結果に対応する画面のHTTPステータスを返す。
// 画面は失敗時も通知付きで描画する。
func pageStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return middleware.StatusForError(apiErr)
	}

	switch provider.CodeOf(err) {
	case provider.CodeWrongPassword, provider.CodeUserNotFound, provider.CodeInvalidCredential, provider.CodeUserDisabled:
		return http.StatusUnauthorized
	case provider.CodeEmailAlreadyInUse:
		return http.StatusConflict
	case provider.CodeInvalidEmail, provider.CodeWeakPassword:
		return http.StatusUnprocessableEntity
	case provider.CodeOperationNotAllowed:
		return http.StatusForbidden
	case provider.CodeTooManyRequests:
		return http.StatusTooManyRequests
	case provider.CodeNetworkRequestFailed, provider.CodeInternalError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IndexHandler はトップ画面のハンドラー。
type IndexHandler struct {
	pageWriter
}

// NewIndexHandler はIndexHandlerを生成する。
func NewIndexHandler(renderer PageRenderer) *IndexHandler {
	return &IndexHandler{pageWriter: pageWriter{renderer: renderer}}
}

// ServeHTTP はトップ画面を表示する。
// GET /
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, newPage(r), pageIndex, "page.home", http.StatusOK, nil)
}
