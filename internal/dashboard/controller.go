// Package dashboard はダッシュボード画面の表示制御を提供する。
// ページ読み込み時のガード、プロフィール表示、更新・サインアウト操作、
// ナビゲーションの強調表示を扱う。
package dashboard

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/accountdash/internal/account"
	"github.com/hitoshi/accountdash/internal/i18n"
	"github.com/hitoshi/accountdash/internal/model"
	"github.com/hitoshi/accountdash/internal/view"
)

const avatarClass = "w-16 h-16 bg-blue-500 text-white rounded-full flex items-center justify-center text-2xl font-bold"

// activeNavClasses は現在のページに対応するナビゲーション項目に付与するクラス。
var activeNavClasses = []string{"bg-blue-100", "text-blue-700"}

// ProfileService はダッシュボードが利用するアカウントサービスのインターフェース。
type ProfileService interface {
	RequireSession(ctx context.Context, nav account.Navigator, fallbackPath string) account.GuardResult
	CurrentSession(ctx context.Context) *model.Session
	GetProfile(ctx context.Context, uid string) (*model.Profile, error)
	Logout(ctx context.Context, page account.Page, sessionID string) error
}

// Page はダッシュボードが描画する画面。
type Page interface {
	account.Page
	Element(id string) *view.Element
	NavItems() []*view.NavItem
}

// Controller はダッシュボード画面のコントローラー。
type Controller struct {
	service  ProfileService
	location *time.Location

	// Now は挨拶の時間帯判定に使う現在時刻。
	Now func() time.Time
}

// NewController はControllerを生成する。locは日時表示と挨拶のタイムゾーン（nilはUTC）。
func NewController(service ProfileService, loc *time.Location) *Controller {
	if loc == nil {
		loc = time.UTC
	}
	return &Controller{
		service:  service,
		location: loc,
		Now:      time.Now,
	}
}

// Init はダッシュボードを初期化する。
// セッションがなければログイン画面への遷移を予約してnilを返す。
// プロフィールの取得に失敗した場合は読み込みエラーを通知し、描画を中断する。
func (c *Controller) Init(ctx context.Context, page Page) error {
	if c.service.RequireSession(ctx, page, account.LoginPath) == account.GuardBlocked {
		return nil
	}

	page.ShowLoading(true)
	defer page.ShowLoading(false)

	session := c.service.CurrentSession(ctx)
	if session == nil {
		err := model.NewInconsistentStateError()
		slog.Error("dashboard init failed", slog.String("error", err.Error()))
		page.ShowMessage(i18n.T(ctx, err.MessageKey), model.MessageError)
		return err
	}

	if err := c.load(ctx, page, session); err != nil {
		slog.Error("dashboard init failed",
			slog.String("uid", session.UID),
			slog.String("error", err.Error()),
		)
		page.ShowMessage(i18n.T(ctx, "dashboard.load_error"), model.MessageError)
		return err
	}
	return nil
}

// Refresh はプロフィールを再取得して描画し直す。セッションがなければ何もしない。
func (c *Controller) Refresh(ctx context.Context, page Page) error {
	session := c.service.CurrentSession(ctx)
	if session == nil {
		return nil
	}

	if err := c.load(ctx, page, session); err != nil {
		slog.Warn("dashboard refresh failed",
			slog.String("uid", session.UID),
			slog.String("error", err.Error()),
		)
		page.ShowMessage(i18n.T(ctx, "dashboard.refresh_error"), model.MessageError)
		return err
	}
	page.ShowMessage(i18n.T(ctx, "dashboard.refreshed"), model.MessageSuccess)
	return nil
}

// Logout は確認済みの場合のみサインアウトする。
func (c *Controller) Logout(ctx context.Context, page Page, sessionID string, confirmed bool) error {
	if !confirmed {
		return nil
	}
	return c.service.Logout(ctx, page, sessionID)
}

// HighlightNavigation は現在のパスの末尾セグメントを含むナビゲーション項目を強調表示する。
// ルート（末尾セグメントが空）の場合はhrefが完全一致する項目のみ対象とする。
func (c *Controller) HighlightNavigation(page Page, currentPath string) {
	segment := currentPath
	if i := strings.LastIndex(currentPath, "/"); i >= 0 {
		segment = currentPath[i+1:]
	}

	for _, item := range page.NavItems() {
		if item.Href == "" {
			continue
		}
		if segment == "" {
			if item.Href == currentPath {
				item.AddClass(activeNavClasses...)
			}
			continue
		}
		if strings.Contains(item.Href, segment) {
			item.AddClass(activeNavClasses...)
		}
	}
}

// load はプロフィールを取得して描画する。
func (c *Controller) load(ctx context.Context, page Page, session *model.Session) error {
	profile, err := c.service.GetProfile(ctx, session.UID)
	if err != nil {
		return err
	}
	c.render(ctx, page, session, profile)
	return nil
}

// render はセッションとプロフィールを画面に反映する。存在しない要素は飛ばす。
func (c *Controller) render(ctx context.Context, page Page, session *model.Session, profile *model.Profile) {
	name := displayName(ctx, session, profile)

	if el := page.Element(view.IDUserName); el != nil {
		el.SetText(name)
	}
	if el := page.Element(view.IDUserEmail); el != nil {
		el.SetText(session.Email)
	}
	if el := page.Element(view.IDUserRegistration); el != nil && profile.CreatedAt != nil {
		el.SetText(FormatDate(ctx, profile.CreatedAt, c.location))
	}
	if el := page.Element(view.IDUserLastLogin); el != nil && profile.LastLogin != nil {
		el.SetText(FormatDate(ctx, profile.LastLogin, c.location))
	}
	if el := page.Element(view.IDWelcomeMessage); el != nil {
		el.SetText(Greeting(ctx, c.Now().In(c.location).Hour(), name))
	}
	if el := page.Element(view.IDUserAvatar); el != nil {
		el.SetText(GetInitials(name))
		el.SetClassName(avatarClass)
	}
}

// displayName はセッション → プロフィール → 既定値の順に表示名を決める。
func displayName(ctx context.Context, session *model.Session, profile *model.Profile) string {
	if session.DisplayName != "" {
		return session.DisplayName
	}
	if profile != nil && profile.DisplayName != "" {
		return profile.DisplayName
	}
	return i18n.T(ctx, "dashboard.user_fallback")
}

// compile-time interface checks
var _ ProfileService = (*account.Service)(nil)
var _ Page = (*view.Page)(nil)
