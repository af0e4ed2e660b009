package account

import (
	"context"

	"github.com/hitoshi/accountdash/internal/model"
	"github.com/hitoshi/accountdash/internal/provider"
)

// GuardResult はガードの判定結果。
type GuardResult int

const (
	// GuardAllowed はセッションがあり、処理を続行できる。
	GuardAllowed GuardResult = iota
	// GuardBlocked はセッションがなく、フォールバック先へ遷移した。
	GuardBlocked
	// GuardRedirected はセッションがあり、遷移先へ遷移した。
	GuardRedirected
	// GuardNotRedirected はセッションがなく、遷移しなかった。
	GuardNotRedirected
)

// String はGuardResultの文字列表現を返す。
func (r GuardResult) String() string {
	switch r {
	case GuardAllowed:
		return "allowed"
	case GuardBlocked:
		return "blocked"
	case GuardRedirected:
		return "redirected"
	case GuardNotRedirected:
		return "not_redirected"
	default:
		return "unknown"
	}
}

// IsAuthenticated はリクエストにセッションがあるかを返す。
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	return provider.SessionFromContext(ctx) != nil
}

// CurrentSession はリクエストのセッションを返す。なければnil。
func (s *Service) CurrentSession(ctx context.Context) *model.Session {
	return provider.SessionFromContext(ctx)
}

// RequireSession はセッションがなければfallbackPath（既定は/login）へ遷移させる。
func (s *Service) RequireSession(ctx context.Context, nav Navigator, fallbackPath string) GuardResult {
	if fallbackPath == "" {
		fallbackPath = LoginPath
	}
	if !s.IsAuthenticated(ctx) {
		nav.Navigate(fallbackPath, 0)
		return GuardBlocked
	}
	return GuardAllowed
}

// RedirectIfSessionExists はセッションがあればtargetPath（既定は/dashboard）へ遷移させる。
func (s *Service) RedirectIfSessionExists(ctx context.Context, nav Navigator, targetPath string) GuardResult {
	if targetPath == "" {
		targetPath = DashboardPath
	}
	if s.IsAuthenticated(ctx) {
		nav.Navigate(targetPath, 0)
		return GuardRedirected
	}
	return GuardNotRedirected
}
