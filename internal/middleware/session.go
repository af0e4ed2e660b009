// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/accountdash/internal/model"
	"github.com/hitoshi/accountdash/internal/provider"
)

// SessionCookieName はセッションIDを保持するCookieの名前。
const SessionCookieName = "session_id"

// SessionRestorer はCookieのセッションIDからセッションを復元するインターフェース。
// provider.Authが実装する。復元のたびにセッション変化のリスナーへ通知される。
type SessionRestorer interface {
	Restore(ctx context.Context, sessionID string) (*model.Session, error)
}

// CookieConfig はセッションCookieの設定。
type CookieConfig struct {
	Secure bool
	Domain string
	MaxAge int // 秒
}

// NewSessionMiddleware はHTTP Only Cookieからセッションを復元し、
// リクエストコンテキストに注入するミドルウェアを返す。
// セッションがなくても拒否せず、未認証のままハンドラーへ渡す。
// 失効したCookieは削除する。
func NewSessionMiddleware(restorer SessionRestorer, config CookieConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := restorer.Restore(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to restore session",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}
			if session == nil {
				ClearSessionCookie(w, config)
				next.ServeHTTP(w, r)
				return
			}

			ctx := provider.WithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAPISession はセッションのないAPIリクエストに401を返すミドルウェア。
// NewSessionMiddlewareの後に配置する。
func RequireAPISession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if provider.SessionFromContext(r.Context()) == nil {
			WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie はセッションIDをHTTP Only Cookieに設定する。
func SetSessionCookie(w http.ResponseWriter, session *model.Session, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   config.MaxAge,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie はセッションCookieを削除する。
func ClearSessionCookie(w http.ResponseWriter, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionIDFromRequest はCookieのセッションIDを返す。なければ空文字列。
func SessionIDFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// UserIDFromContext はリクエストコンテキストのセッションからアカウントIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	session := provider.SessionFromContext(ctx)
	if session == nil || session.UID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return session.UID, nil
}
