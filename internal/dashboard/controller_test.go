package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/accountdash/internal/account"
	"github.com/hitoshi/accountdash/internal/model"
	"github.com/hitoshi/accountdash/internal/provider"
	"github.com/hitoshi/accountdash/internal/provider/providertest"
	"github.com/hitoshi/accountdash/internal/security"
	"github.com/hitoshi/accountdash/internal/view"
)

// --- モック定義 ---

type mockProfileService struct {
	requireSessionFn func(ctx context.Context, nav account.Navigator, fallbackPath string) account.GuardResult
	currentSessionFn func(ctx context.Context) *model.Session
	getProfileFn     func(ctx context.Context, uid string) (*model.Profile, error)
	logoutFn         func(ctx context.Context, page account.Page, sessionID string) error

	getProfileCalls int
	logoutCalls     int
}

func (m *mockProfileService) RequireSession(ctx context.Context, nav account.Navigator, fallbackPath string) account.GuardResult {
	if m.requireSessionFn != nil {
		return m.requireSessionFn(ctx, nav, fallbackPath)
	}
	return account.GuardAllowed
}

func (m *mockProfileService) CurrentSession(ctx context.Context) *model.Session {
	if m.currentSessionFn != nil {
		return m.currentSessionFn(ctx)
	}
	return nil
}

func (m *mockProfileService) GetProfile(ctx context.Context, uid string) (*model.Profile, error) {
	m.getProfileCalls++
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, uid)
	}
	return nil, model.NewProfileNotFoundError(uid)
}

func (m *mockProfileService) Logout(ctx context.Context, page account.Page, sessionID string) error {
	m.logoutCalls++
	if m.logoutFn != nil {
		return m.logoutFn(ctx, page, sessionID)
	}
	return nil
}

var _ ProfileService = (*mockProfileService)(nil)

func dashboardPage() *view.Page {
	return view.NewPage(
		view.IDMessage, view.IDLoading,
		view.IDUserName, view.IDUserEmail, view.IDUserRegistration, view.IDUserLastLogin,
		view.IDWelcomeMessage, view.IDUserAvatar, view.IDLogoutButton, view.IDRefreshButton,
	)
}

func sessionService(session *model.Session, profile *model.Profile) *mockProfileService {
	return &mockProfileService{
		currentSessionFn: func(context.Context) *model.Session { return session },
		getProfileFn: func(context.Context, string) (*model.Profile, error) {
			return profile, nil
		},
	}
}

func newTestController(svc ProfileService, hour int) *Controller {
	c := NewController(svc, time.UTC)
	c.Now = func() time.Time { return time.Date(2024, 5, 1, hour, 0, 0, 0, time.UTC) }
	return c
}

func text(t *testing.T, page *view.Page, id string) string {
	t.Helper()
	el := page.Element(id)
	if el == nil {
		t.Fatalf("element %q missing", id)
	}
	return el.Text
}

// --- Init ---

func TestInit_Blocked_StopsWithoutLoading(t *testing.T) {
	svc := &mockProfileService{
		requireSessionFn: func(_ context.Context, nav account.Navigator, fallback string) account.GuardResult {
			nav.Navigate(fallback, 0)
			return account.GuardBlocked
		},
	}
	c := newTestController(svc, 9)
	page := dashboardPage()

	if err := c.Init(context.Background(), page); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if nav := page.Navigation(); nav == nil || nav.Path != account.LoginPath {
		t.Errorf("navigation = %+v, want %s", nav, account.LoginPath)
	}
	if svc.getProfileCalls != 0 {
		t.Error("profile should not be fetched when blocked")
	}
	if _, _, ok := page.Message(); ok {
		t.Error("no message expected when blocked")
	}
}

func TestInit_RendersProfile(t *testing.T) {
	created := model.NewTimestamp(time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC))
	svc := sessionService(
		&model.Session{UID: "uid-1", Email: "a@b.com"},
		&model.Profile{UID: "uid-1", Email: "a@b.com", DisplayName: "Jane Doe", CreatedAt: &created, LastLogin: &model.Timestamp{}},
	)
	c := newTestController(svc, 15)
	page := dashboardPage()

	if err := c.Init(context.Background(), page); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	checks := map[string]string{
		view.IDUserName:         "Jane Doe",
		view.IDUserEmail:        "a@b.com",
		view.IDUserRegistration: "March 5, 2024 at 14:07",
		view.IDUserLastLogin:    "January 1, 1970 at 00:00",
		view.IDWelcomeMessage:   "Good afternoon, Jane Doe!",
		view.IDUserAvatar:       "JD",
	}
	for id, want := range checks {
		if got := text(t, page, id); got != want {
			t.Errorf("%s = %q, want %q", id, got, want)
		}
	}
	if !page.Element(view.IDUserAvatar).HasClass("rounded-full") {
		t.Error("avatar classes not applied")
	}
	if !page.Element(view.IDLoading).Hidden {
		t.Error("loading should be hidden after init")
	}
	if _, _, ok := page.Message(); ok {
		t.Error("no message expected on success")
	}
}

func TestInit_DisplayNamePrecedence(t *testing.T) {
	tests := []struct {
		name    string
		session string
		profile string
		want    string
	}{
		{"session first", "Session Name", "Profile Name", "Session Name"},
		{"profile fallback", "", "Profile Name", "Profile Name"},
		{"literal fallback", "", "", "User"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := sessionService(
				&model.Session{UID: "uid-1", DisplayName: tt.session},
				&model.Profile{UID: "uid-1", DisplayName: tt.profile},
			)
			c := newTestController(svc, 9)
			page := dashboardPage()

			if err := c.Init(context.Background(), page); err != nil {
				t.Fatalf("Init() error = %v", err)
			}
			if got := text(t, page, view.IDUserName); got != tt.want {
				t.Errorf("userName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInit_SkipsMissingElementsAndDates(t *testing.T) {
	svc := sessionService(
		&model.Session{UID: "uid-1", Email: "a@b.com"},
		&model.Profile{UID: "uid-1", DisplayName: "Jane Doe"},
	)
	c := newTestController(svc, 9)
	page := view.NewPage(view.IDUserName, view.IDUserRegistration, view.IDUserLastLogin)

	if err := c.Init(context.Background(), page); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if text(t, page, view.IDUserName) != "Jane Doe" {
		t.Error("userName not rendered")
	}
	if text(t, page, view.IDUserRegistration) != "" || text(t, page, view.IDUserLastLogin) != "" {
		t.Error("dates without values should stay empty")
	}
	if page.Has(view.IDUserAvatar) {
		t.Error("missing elements should not be created")
	}
}

func TestInit_MissingSession_InconsistentState(t *testing.T) {
	svc := &mockProfileService{}
	c := newTestController(svc, 9)
	page := dashboardPage()

	err := c.Init(context.Background(), page)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInconsistentState {
		t.Fatalf("error = %v, want INCONSISTENT_STATE", err)
	}
	if msg, kind, ok := page.Message(); !ok || msg != "Could not load dashboard" || kind != model.MessageError {
		t.Errorf("message = %q %q %v", msg, kind, ok)
	}
	if svc.getProfileCalls != 0 {
		t.Error("profile should not be fetched without a session")
	}
}

func TestInit_ProfileFailure_AbortsRendering(t *testing.T) {
	svc := &mockProfileService{
		currentSessionFn: func(context.Context) *model.Session {
			return &model.Session{UID: "uid-1", Email: "a@b.com", DisplayName: "Jane"}
		},
		getProfileFn: func(context.Context, string) (*model.Profile, error) {
			return nil, errors.New("connection reset")
		},
	}
	c := newTestController(svc, 9)
	page := dashboardPage()

	if err := c.Init(context.Background(), page); err == nil {
		t.Fatal("expected error")
	}
	if msg, _, _ := page.Message(); msg != "Could not load dashboard" {
		t.Errorf("message = %q", msg)
	}
	if text(t, page, view.IDUserName) != "" {
		t.Error("rendering should be aborted")
	}
	if !page.Element(view.IDLoading).Hidden {
		t.Error("loading should be cleared on failure")
	}
}

// --- Refresh ---

func TestRefresh(t *testing.T) {
	svc := sessionService(&model.Session{UID: "uid-1"}, &model.Profile{DisplayName: "Jane Doe"})
	c := newTestController(svc, 20)
	page := dashboardPage()

	if err := c.Refresh(context.Background(), page); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if msg, kind, _ := page.Message(); msg != "Information updated" || kind != model.MessageSuccess {
		t.Errorf("message = %q %q", msg, kind)
	}
	if got := text(t, page, view.IDWelcomeMessage); got != "Good evening, Jane Doe!" {
		t.Errorf("welcome = %q", got)
	}
}

func TestRefresh_Failure(t *testing.T) {
	svc := &mockProfileService{
		currentSessionFn: func(context.Context) *model.Session { return &model.Session{UID: "uid-1"} },
	}
	c := newTestController(svc, 9)
	page := dashboardPage()

	if err := c.Refresh(context.Background(), page); err == nil {
		t.Fatal("expected error")
	}
	if msg, kind, _ := page.Message(); msg != "Error updating information" || kind != model.MessageError {
		t.Errorf("message = %q %q", msg, kind)
	}
}

func TestRefresh_NoSession_Silent(t *testing.T) {
	svc := &mockProfileService{}
	c := newTestController(svc, 9)
	page := dashboardPage()

	if err := c.Refresh(context.Background(), page); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if svc.getProfileCalls != 0 {
		t.Error("profile should not be fetched without a session")
	}
	if _, _, ok := page.Message(); ok {
		t.Error("no message expected without a session")
	}
}

// --- Logout ---

func TestLogout_RequiresConfirmation(t *testing.T) {
	svc := &mockProfileService{}
	c := newTestController(svc, 9)

	if err := c.Logout(context.Background(), dashboardPage(), "sess-1", false); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if svc.logoutCalls != 0 {
		t.Error("unconfirmed logout should not sign out")
	}

	if err := c.Logout(context.Background(), dashboardPage(), "sess-1", true); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if svc.logoutCalls != 1 {
		t.Errorf("logout calls = %d, want 1", svc.logoutCalls)
	}
}

// --- HighlightNavigation ---

func TestHighlightNavigation(t *testing.T) {
	c := newTestController(&mockProfileService{}, 9)

	page := view.NewPage()
	home := page.AddNavItem("/", "Home")
	dash := page.AddNavItem("/dashboard", "Dashboard")
	logout := page.AddNavItem("/logout", "Sign out")

	c.HighlightNavigation(page, "/dashboard")
	if !dash.HasClass("bg-blue-100") || !dash.HasClass("text-blue-700") {
		t.Error("dashboard entry should be highlighted")
	}
	if home.HasClass("bg-blue-100") || logout.HasClass("bg-blue-100") {
		t.Error("other entries should not be highlighted")
	}
	if !dash.HasClass(view.NavItemClass) {
		t.Error("nav-item class should be kept")
	}

	page = view.NewPage()
	home = page.AddNavItem("/", "Home")
	dash = page.AddNavItem("/dashboard", "Dashboard")
	c.HighlightNavigation(page, "/")
	if !home.HasClass("bg-blue-100") || dash.HasClass("bg-blue-100") {
		t.Error("root path should only highlight the exact entry")
	}
}

// --- End to end ---

type fakeAuth struct{}

func (fakeAuth) CreateAccount(_ context.Context, email, _ string) (*model.Session, error) {
	return &model.Session{ID: "sess-1", UID: "uid-1", Email: email, IDToken: "token"}, nil
}
func (fakeAuth) SignIn(_ context.Context, email, _ string) (*model.Session, error) {
	return &model.Session{ID: "sess-1", UID: "uid-1", Email: email}, nil
}
func (fakeAuth) SignOut(context.Context, string) error { return nil }
func (fakeAuth) UpdateDisplayName(_ context.Context, s *model.Session, name string) error {
	s.DisplayName = name
	return nil
}
func (fakeAuth) OnSessionChanged(provider.SessionListener) func() { return func() {} }

func TestRegisterThenDashboard(t *testing.T) {
	store := providertest.NewMemoryStore()
	svc := account.NewService(fakeAuth{}, store, security.NewNameSanitizer(), nil)

	session, err := svc.Register(context.Background(), view.NewPage(), "a@b.com", "secret1", "Jane Doe")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// 次のリクエストではCookieから復元されたセッションのみを持つ
	restored := &model.Session{ID: session.ID, UID: session.UID, Email: session.Email}
	ctx := provider.WithSession(context.Background(), restored)

	c := newTestController(svc, 9)
	page := dashboardPage()
	if err := c.Init(ctx, page); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if got := text(t, page, view.IDUserName); got != "Jane Doe" {
		t.Errorf("userName = %q, want %q", got, "Jane Doe")
	}
	if got := text(t, page, view.IDUserAvatar); got != "JD" {
		t.Errorf("avatar = %q, want %q", got, "JD")
	}
	if got := text(t, page, view.IDUserRegistration); got == "" || got == "Date unavailable" {
		t.Errorf("registration = %q, want a formatted date", got)
	}
}
