// Package i18n は画面文言の多言語化とリクエストごとの言語選択を提供する。
// en-USを基準ロケールとし、es-ESを追加ロケールとして持つ。
package i18n

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// LangParam は言語選択用のクエリパラメータ名。
	LangParam = "lang"
	// LangCookieName は言語設定を保持するCookie名。
	LangCookieName = "lang"
)

var supported = []language.Tag{
	language.AmericanEnglish,
	language.EuropeanSpanish,
}

var matcher = language.NewMatcher(supported)

type contextKey struct{}

// Supported は対応言語の一覧を返す。
func Supported() []language.Tag {
	return supported
}

// Default は既定の言語を返す。
func Default() language.Tag {
	return supported[0]
}

// Match は任意の言語タグを対応言語に丸める。
func Match(tags ...language.Tag) language.Tag {
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

// Parse は文字列を対応言語に変換する。解釈できない場合はfalseを返す。
func Parse(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Und, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Und, false
	}
	return Match(tag), true
}

// ResolveTag はリクエストに最適な言語を決定する。
// 優先順位: クエリパラメータ → Cookie → Accept-Language → fallback。
// boolはクエリで指定された言語をCookieに保存すべきかを示す。
func ResolveTag(r *http.Request, fallback language.Tag) (language.Tag, bool) {
	if r == nil {
		return fallback, false
	}

	if tag, ok := Parse(r.URL.Query().Get(LangParam)); ok {
		return tag, true
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := Parse(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return Match(tags...), false
		}
	}

	return fallback, false
}

// SetLanguageCookie は選択された言語をCookieに保存する。
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// WithTag はコンテキストに言語タグを注入する。
func WithTag(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, contextKey{}, tag)
}

// TagFromContext はコンテキストの言語タグを返す。未設定の場合は既定言語。
func TagFromContext(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(contextKey{}).(language.Tag); ok {
		return tag
	}
	return Default()
}

// Printer はコンテキストの言語に対応するメッセージプリンタを返す。
func Printer(ctx context.Context) *message.Printer {
	return message.NewPrinter(TagFromContext(ctx))
}

// T は翻訳キーをコンテキストの言語で解決する。
func T(ctx context.Context, key string, args ...any) string {
	return Printer(ctx).Sprintf(key, args...)
}

// NewMiddleware はリクエストの言語を解決しコンテキストに注入するミドルウェアを返す。
func NewMiddleware(fallback language.Tag) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tag, persist := ResolveTag(r, fallback)
			if persist {
				SetLanguageCookie(w, tag)
			}
			next.ServeHTTP(w, r.WithContext(WithTag(r.Context(), tag)))
		})
	}
}
