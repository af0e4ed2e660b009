package provider

import (
	"context"

	"github.com/hitoshi/accountdash/internal/model"
)

type sessionContextKey struct{}

// WithSession は現在のリクエストのセッションをコンテキストに注入する。
func WithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext はコンテキストのセッションを返す。存在しない場合はnil。
func SessionFromContext(ctx context.Context) *model.Session {
	session, _ := ctx.Value(sessionContextKey{}).(*model.Session)
	return session
}
