package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/accountdash/internal/account"
	"github.com/hitoshi/accountdash/internal/dashboard"
	"github.com/hitoshi/accountdash/internal/model"
	"github.com/hitoshi/accountdash/internal/provider"
	"github.com/hitoshi/accountdash/internal/view"
)

// --- モック定義 ---

// recordingRenderer は描画内容を記録するPageRenderer。
type recordingRenderer struct {
	calls  int
	status int
	name   string
	data   *view.PageData
	err    error
}

func (r *recordingRenderer) Render(w http.ResponseWriter, status int, name string, data *view.PageData) error {
	r.calls++
	r.status = status
	r.name = name
	r.data = data
	if r.err != nil {
		return r.err
	}
	w.WriteHeader(status)
	_, err := w.Write([]byte(name))
	return err
}

// mockAccountService はAccountServiceのモック。
// ガードは未設定の場合、コンテキストのセッションで判定する。
type mockAccountService struct {
	registerFn   func(ctx context.Context, page account.Page, email, password, fullName string) (*model.Session, error)
	loginFn      func(ctx context.Context, page account.Page, email, password string) (*model.Session, error)
	getProfileFn func(ctx context.Context, uid string) (*model.Profile, error)

	registerCalls int
	loginCalls    int
}

func (m *mockAccountService) Register(ctx context.Context, page account.Page, email, password, fullName string) (*model.Session, error) {
	m.registerCalls++
	if m.registerFn != nil {
		return m.registerFn(ctx, page, email, password, fullName)
	}
	return nil, nil
}

func (m *mockAccountService) Login(ctx context.Context, page account.Page, email, password string) (*model.Session, error) {
	m.loginCalls++
	if m.loginFn != nil {
		return m.loginFn(ctx, page, email, password)
	}
	return nil, nil
}

func (m *mockAccountService) RequireSession(ctx context.Context, nav account.Navigator, fallbackPath string) account.GuardResult {
	if provider.SessionFromContext(ctx) == nil {
		nav.Navigate(account.LoginPath, 0)
		return account.GuardBlocked
	}
	return account.GuardAllowed
}

func (m *mockAccountService) RedirectIfSessionExists(ctx context.Context, nav account.Navigator, targetPath string) account.GuardResult {
	if provider.SessionFromContext(ctx) != nil {
		nav.Navigate(account.DashboardPath, 0)
		return account.GuardRedirected
	}
	return account.GuardNotRedirected
}

func (m *mockAccountService) CurrentSession(ctx context.Context) *model.Session {
	return provider.SessionFromContext(ctx)
}

func (m *mockAccountService) GetProfile(ctx context.Context, uid string) (*model.Profile, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, uid)
	}
	return nil, nil
}

// mockDashboard はDashboardのモック。
type mockDashboard struct {
	initFn    func(ctx context.Context, page dashboard.Page) error
	refreshFn func(ctx context.Context, page dashboard.Page) error
	logoutFn  func(ctx context.Context, page dashboard.Page, sessionID string, confirmed bool) error

	highlightedPath string
	logoutCalls     int
}

func (m *mockDashboard) Init(ctx context.Context, page dashboard.Page) error {
	if m.initFn != nil {
		return m.initFn(ctx, page)
	}
	return nil
}

func (m *mockDashboard) Refresh(ctx context.Context, page dashboard.Page) error {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, page)
	}
	return nil
}

func (m *mockDashboard) HighlightNavigation(page dashboard.Page, currentPath string) {
	m.highlightedPath = currentPath
}

func (m *mockDashboard) Logout(ctx context.Context, page dashboard.Page, sessionID string, confirmed bool) error {
	m.logoutCalls++
	if m.logoutFn != nil {
		return m.logoutFn(ctx, page, sessionID, confirmed)
	}
	return nil
}

// コンパイル時チェック
var (
	_ AccountService = (*mockAccountService)(nil)
	_ AccountService = (*account.Service)(nil)
	_ Dashboard      = (*mockDashboard)(nil)
	_ Dashboard      = (*dashboard.Controller)(nil)
	_ PageRenderer   = (*recordingRenderer)(nil)
	_ PageRenderer   = (*view.Renderer)(nil)
)

// --- ヘルパー ---

var testSession = &model.Session{ID: "sess-1", UID: "uid-1", Email: "a@b.com", DisplayName: "Jane Doe"}

// withSession はリクエストにセッションを注入する。
func withSession(r *http.Request, session *model.Session) *http.Request {
	return r.WithContext(provider.WithSession(r.Context(), session))
}

// findCookie はレスポンスから指定名のCookieを返す。
func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// assertRedirect はレスポンスが303で指定パスへ遷移することを確認する。
func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, path string) {
	t.Helper()
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if got := w.Header().Get("Location"); got != path {
		t.Errorf("Location = %q, want %q", got, path)
	}
}
