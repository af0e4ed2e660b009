package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/accountdash/internal/account"
	"github.com/hitoshi/accountdash/internal/dashboard"
	"github.com/hitoshi/accountdash/internal/middleware"
	"github.com/hitoshi/accountdash/internal/model"
	"github.com/hitoshi/accountdash/internal/provider"
)

var testCookies = middleware.CookieConfig{MaxAge: 3600}

func newTestAuthHandler(svc *mockAccountService, dash *mockDashboard) (*AuthHandler, *recordingRenderer) {
	renderer := &recordingRenderer{}
	return NewAuthHandler(svc, dash, renderer, testCookies), renderer
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAuthHandler_LoginPage_RendersForm(t *testing.T) {
	h, renderer := newTestAuthHandler(&mockAccountService{}, &mockDashboard{})

	w := httptest.NewRecorder()
	h.LoginPage(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if renderer.name != pageLogin {
		t.Errorf("page = %q, want %q", renderer.name, pageLogin)
	}
	if renderer.data.Title != "Sign in" {
		t.Errorf("title = %q, want %q", renderer.data.Title, "Sign in")
	}
}

func TestAuthHandler_LoginPage_WithSession_RedirectsToDashboard(t *testing.T) {
	h, renderer := newTestAuthHandler(&mockAccountService{}, &mockDashboard{})

	w := httptest.NewRecorder()
	h.LoginPage(w, withSession(httptest.NewRequest(http.MethodGet, "/login", nil), testSession))

	assertRedirect(t, w, "/dashboard")
	if renderer.calls != 0 {
		t.Errorf("renderer called %d times, want 0", renderer.calls)
	}
}

func TestAuthHandler_Login_Success_SetsCookieAndSchedulesNavigation(t *testing.T) {
	svc := &mockAccountService{
		loginFn: func(ctx context.Context, page account.Page, email, password string) (*model.Session, error) {
			if email != "a@b.com" || password != "secret1" {
				t.Errorf("Login(%q, %q)", email, password)
			}
			page.ShowMessage("Signed in successfully", model.MessageSuccess)
			page.Navigate("/dashboard", 1500*time.Millisecond)
			return testSession, nil
		},
	}
	h, renderer := newTestAuthHandler(svc, &mockDashboard{})

	w := httptest.NewRecorder()
	h.Login(w, postForm("/login", url.Values{"email": {"a@b.com"}, "password": {"secret1"}}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	cookie := findCookie(w.Result(), middleware.SessionCookieName)
	if cookie == nil || cookie.Value != "sess-1" {
		t.Fatalf("session cookie = %v, want sess-1", cookie)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
	nav := renderer.data.Page.Navigation()
	if nav == nil || nav.Path != "/dashboard" || nav.Delay != 1500*time.Millisecond {
		t.Errorf("navigation = %+v, want /dashboard after 1.5s", nav)
	}
	if renderer.data.Session != testSession {
		t.Error("rendered page should carry the new session")
	}
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", model.NewValidationError(model.MsgEmailAndPasswordRequired), http.StatusUnprocessableEntity},
		{"wrong password", &provider.Error{Code: provider.CodeWrongPassword}, http.StatusUnauthorized},
		{"invalid credential", &provider.Error{Code: provider.CodeInvalidCredential}, http.StatusUnauthorized},
		{"too many requests", &provider.Error{Code: provider.CodeTooManyRequests}, http.StatusTooManyRequests},
		{"network", &provider.Error{Code: provider.CodeNetworkRequestFailed}, http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAccountService{
				loginFn: func(context.Context, account.Page, string, string) (*model.Session, error) {
					return nil, tt.err
				},
			}
			h, renderer := newTestAuthHandler(svc, &mockDashboard{})

			w := httptest.NewRecorder()
			h.Login(w, postForm("/login", url.Values{"email": {"a@b.com"}, "password": {"x"}}))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if findCookie(w.Result(), middleware.SessionCookieName) != nil {
				t.Error("session cookie should not be set on failure")
			}
			if renderer.data.Form.Email != "a@b.com" {
				t.Errorf("form email = %q, want it preserved", renderer.data.Form.Email)
			}
		})
	}
}

func TestAuthHandler_Login_WithSession_SkipsService(t *testing.T) {
	svc := &mockAccountService{}
	h, _ := newTestAuthHandler(svc, &mockDashboard{})

	w := httptest.NewRecorder()
	h.Login(w, withSession(postForm("/login", url.Values{"email": {"a@b.com"}}), testSession))

	assertRedirect(t, w, "/dashboard")
	if svc.loginCalls != 0 {
		t.Errorf("Login called %d times, want 0", svc.loginCalls)
	}
}

func TestAuthHandler_Register_PassesFormValues(t *testing.T) {
	var gotName string
	svc := &mockAccountService{
		registerFn: func(_ context.Context, page account.Page, email, password, fullName string) (*model.Session, error) {
			gotName = fullName
			page.Navigate("/dashboard", 2*time.Second)
			return testSession, nil
		},
	}
	h, renderer := newTestAuthHandler(svc, &mockDashboard{})

	w := httptest.NewRecorder()
	h.Register(w, postForm("/register", url.Values{
		"email":    {"a@b.com"},
		"password": {"secret1"},
		"fullName": {"Jane Doe"},
	}))

	if gotName != "Jane Doe" {
		t.Errorf("fullName = %q, want %q", gotName, "Jane Doe")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if renderer.name != pageRegister {
		t.Errorf("page = %q, want %q", renderer.name, pageRegister)
	}
	if findCookie(w.Result(), middleware.SessionCookieName) == nil {
		t.Error("session cookie should be set")
	}
}

func TestAuthHandler_Register_PartialFailure_StillSetsCookie(t *testing.T) {
	svc := &mockAccountService{
		registerFn: func(context.Context, account.Page, string, string, string) (*model.Session, error) {
			return testSession, &provider.Error{Code: provider.CodeNetworkRequestFailed}
		},
	}
	h, _ := newTestAuthHandler(svc, &mockDashboard{})

	w := httptest.NewRecorder()
	h.Register(w, postForm("/register", url.Values{"email": {"a@b.com"}, "password": {"secret1"}, "fullName": {"Jane"}}))

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
	if findCookie(w.Result(), middleware.SessionCookieName) == nil {
		t.Error("session cookie should be set once the account exists")
	}
}

func TestAuthHandler_Register_EmailInUse_Returns409(t *testing.T) {
	svc := &mockAccountService{
		registerFn: func(context.Context, account.Page, string, string, string) (*model.Session, error) {
			return nil, &provider.Error{Code: provider.CodeEmailAlreadyInUse}
		},
	}
	h, renderer := newTestAuthHandler(svc, &mockDashboard{})

	w := httptest.NewRecorder()
	h.Register(w, postForm("/register", url.Values{"email": {"a@b.com"}, "password": {"secret1"}, "fullName": {"Jane"}}))

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if renderer.data.Form.FullName != "Jane" {
		t.Errorf("form fullName = %q, want it preserved", renderer.data.Form.FullName)
	}
}

func TestAuthHandler_LogoutPage_WithoutSession_RedirectsToLogin(t *testing.T) {
	h, _ := newTestAuthHandler(&mockAccountService{}, &mockDashboard{})

	w := httptest.NewRecorder()
	h.LogoutPage(w, httptest.NewRequest(http.MethodGet, "/logout", nil))

	assertRedirect(t, w, "/login")
}

func TestAuthHandler_LogoutPage_RendersConfirmation(t *testing.T) {
	h, renderer := newTestAuthHandler(&mockAccountService{}, &mockDashboard{})

	w := httptest.NewRecorder()
	h.LogoutPage(w, withSession(httptest.NewRequest(http.MethodGet, "/logout", nil), testSession))

	if renderer.name != pageLogout {
		t.Errorf("page = %q, want %q", renderer.name, pageLogout)
	}
	if renderer.data.Session != testSession {
		t.Error("confirmation page should carry the session")
	}
}

func TestAuthHandler_Logout_WithoutConfirmation_ReturnsToDashboard(t *testing.T) {
	dash := &mockDashboard{}
	h, _ := newTestAuthHandler(&mockAccountService{}, dash)

	w := httptest.NewRecorder()
	h.Logout(w, withSession(postForm("/logout", url.Values{}), testSession))

	assertRedirect(t, w, "/dashboard")
	if dash.logoutCalls != 0 {
		t.Errorf("Logout called %d times, want 0", dash.logoutCalls)
	}
}

func TestAuthHandler_Logout_Confirmed_ClearsCookie(t *testing.T) {
	var gotID string
	dash := &mockDashboard{
		logoutFn: func(_ context.Context, page dashboard.Page, sessionID string, confirmed bool) error {
			gotID = sessionID
			if !confirmed {
				t.Error("confirmed = false, want true")
			}
			page.ShowMessage("Signed out successfully", model.MessageSuccess)
			page.Navigate("/", time.Second)
			return nil
		},
	}
	h, renderer := newTestAuthHandler(&mockAccountService{}, dash)

	w := httptest.NewRecorder()
	h.Logout(w, withSession(postForm("/logout", url.Values{"confirm": {"yes"}}), testSession))

	if gotID != "sess-1" {
		t.Errorf("sessionID = %q, want sess-1", gotID)
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	cookie := findCookie(w.Result(), middleware.SessionCookieName)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Errorf("session cookie = %v, want a deletion", cookie)
	}
	if renderer.data.Session != nil {
		t.Error("page after sign out should not carry a session")
	}
}

func TestAuthHandler_Logout_Failure_KeepsCookie(t *testing.T) {
	dash := &mockDashboard{
		logoutFn: func(context.Context, dashboard.Page, string, bool) error {
			return errors.New("provider down")
		},
	}
	h, renderer := newTestAuthHandler(&mockAccountService{}, dash)

	w := httptest.NewRecorder()
	h.Logout(w, withSession(postForm("/logout", url.Values{"confirm": {"yes"}}), testSession))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if findCookie(w.Result(), middleware.SessionCookieName) != nil {
		t.Error("session cookie should not be touched on failure")
	}
	if renderer.data.Page.Navigation() != nil {
		t.Error("no navigation expected on failure")
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h, _ := newTestAuthHandler(&mockAccountService{}, &mockDashboard{})

	t.Run("no session", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Me(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("with session", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Me(w, withSession(httptest.NewRequest(http.MethodGet, "/auth/me", nil), testSession))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		var body meResponse
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.UID != "uid-1" || body.Email != "a@b.com" || body.DisplayName != "Jane Doe" {
			t.Errorf("body = %+v", body)
		}
	})
}
