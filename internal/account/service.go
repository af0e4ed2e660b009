// Package account はアカウント登録・サインイン・サインアウトと
// プロフィールレコード（usersコレクション）のライフサイクルを提供する。
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/accountdash/internal/i18n"
	"github.com/hitoshi/accountdash/internal/metrics"
	"github.com/hitoshi/accountdash/internal/model"
	"github.com/hitoshi/accountdash/internal/provider"
	"github.com/hitoshi/accountdash/internal/security"
)

// 画面遷移先
const (
	IndexPath     = "/"
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// UsersCollection はプロフィールレコードのコレクション名。
const UsersCollection = "users"

const (
	registerRedirectDelay = 2 * time.Second
	loginRedirectDelay    = 1500 * time.Millisecond
	logoutRedirectDelay   = time.Second

	defaultLastLoginTimeout = 10 * time.Second
)

// Notifier は画面通知とローディング表示のハンドル。
type Notifier interface {
	ShowMessage(text string, kind model.MessageKind)
	HideMessage()
	ShowLoading(show bool)
}

// Navigator は遅延付き画面遷移のハンドル。
type Navigator interface {
	Navigate(path string, delay time.Duration)
}

// Page は各操作に渡される画面ハンドル。
type Page interface {
	Notifier
	Navigator
}

// AuthClient はプロバイダーの認証クライアントのインターフェース。
type AuthClient interface {
	CreateAccount(ctx context.Context, email, password string) (*model.Session, error)
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignOut(ctx context.Context, sessionID string) error
	UpdateDisplayName(ctx context.Context, session *model.Session, displayName string) error
	OnSessionChanged(listener provider.SessionListener) func()
}

// Service はセッションとプロフィールのサービス層。
type Service struct {
	auth      AuthClient
	docs      provider.DocumentStore
	sanitizer security.TextSanitizer
	metrics   metrics.MetricsCollector

	// LastLoginTimeout はバックグラウンドの最終ログイン更新のタイムアウト。
	LastLoginTimeout time.Duration

	wg sync.WaitGroup
}

// NewService はServiceを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewService(
	auth AuthClient,
	docs provider.DocumentStore,
	sanitizer security.TextSanitizer,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		auth:             auth,
		docs:             docs,
		sanitizer:        sanitizer,
		metrics:          collector,
		LastLoginTimeout: defaultLastLoginTimeout,
	}
}

// Initialize はセッション変化のリスナーを登録する。
// セッションが通知されるたびに最終ログイン日時をバックグラウンドで更新する。
// 返り値の関数で登録を解除する。複数回呼んでも安全。
func (s *Service) Initialize() func() {
	unsubscribe := s.auth.OnSessionChanged(func(session *model.Session) {
		if session == nil {
			return
		}
		s.wg.Add(1)
		go func(uid string) {
			defer s.wg.Done()
			s.updateLastLogin(uid)
		}(session.UID)
	})

	var once sync.Once
	return func() { once.Do(unsubscribe) }
}

// Wait は実行中のバックグラウンド更新の完了を待つ。
func (s *Service) Wait() {
	s.wg.Wait()
}

// updateLastLogin はプロフィールレコードのlastLoginをサーバー時刻で更新する。
// 失敗はログに残すのみで、利用者には通知せず再試行もしない。
func (s *Service) updateLastLogin(uid string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.LastLoginTimeout)
	defer cancel()

	err := s.docs.Update(ctx, provider.Doc(UsersCollection, uid), provider.Fields{
		"lastLogin": provider.ServerTimestamp,
	})
	if err != nil {
		slog.Warn("failed to update last login",
			slog.String("uid", uid),
			slog.String("error", err.Error()),
		)
		s.metrics.RecordLastLoginUpdate(false)
		return
	}
	s.metrics.RecordLastLoginUpdate(true)
}

// Register はアカウントを作成し、表示名の設定とプロフィールレコードの作成を行う。
// 入力検証に失敗した場合はプロバイダーを呼び出さない。
// アカウント作成後の手順で失敗した場合もセッションは返す（サインイン済みのため）。
func (s *Service) Register(ctx context.Context, page Page, email, password, fullName string) (*model.Session, error) {
	page.ShowLoading(true)
	defer page.ShowLoading(false)
	page.HideMessage()

	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)

	if err := validateRegistration(email, password, fullName); err != nil {
		s.fail(ctx, page, err, s.metrics.RecordRegistration)
		return nil, err
	}

	displayName := s.sanitizer.Sanitize(fullName)
	if displayName == "" {
		err := model.NewValidationError(model.MsgAllFieldsRequired)
		s.fail(ctx, page, err, s.metrics.RecordRegistration)
		return nil, err
	}

	session, err := s.auth.CreateAccount(ctx, email, password)
	if err != nil {
		s.fail(ctx, page, err, s.metrics.RecordRegistration)
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.auth.UpdateDisplayName(ctx, session, displayName); err != nil {
		s.fail(ctx, page, err, s.metrics.RecordRegistration)
		return session, fmt.Errorf("failed to set display name: %w", err)
	}

	err = s.docs.Set(ctx, provider.Doc(UsersCollection, session.UID), provider.Fields{
		"uid":         session.UID,
		"email":       session.Email,
		"displayName": displayName,
		"createdAt":   provider.ServerTimestamp,
		"lastLogin":   provider.ServerTimestamp,
	})
	if err != nil {
		slog.Error("failed to save profile",
			slog.String("uid", session.UID),
			slog.String("error", err.Error()),
		)
		s.fail(ctx, page, err, s.metrics.RecordRegistration)
		return session, fmt.Errorf("failed to save profile: %w", err)
	}

	slog.Info("account registered", slog.String("uid", session.UID))
	s.metrics.RecordRegistration(metrics.ResultSuccess)
	page.ShowMessage(i18n.T(ctx, "register.success"), model.MessageSuccess)
	page.Navigate(IndexPath, registerRedirectDelay)
	return session, nil
}

// Login はパスワードでサインインする。
// 最終ログイン日時はセッション変化の通知経由で更新する。
func (s *Service) Login(ctx context.Context, page Page, email, password string) (*model.Session, error) {
	page.ShowLoading(true)
	defer page.ShowLoading(false)
	page.HideMessage()

	email = strings.TrimSpace(email)

	if err := validateLogin(email, password); err != nil {
		s.fail(ctx, page, err, s.metrics.RecordLogin)
		return nil, err
	}

	session, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		s.fail(ctx, page, err, s.metrics.RecordLogin)
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	slog.Info("user signed in", slog.String("uid", session.UID))
	s.metrics.RecordLogin(metrics.ResultSuccess)
	page.ShowMessage(i18n.T(ctx, "login.success"), model.MessageSuccess)
	page.Navigate(IndexPath, loginRedirectDelay)
	return session, nil
}

// Logout はセッションを終了する。失敗した場合は汎用のエラーメッセージのみ表示し、遷移しない。
func (s *Service) Logout(ctx context.Context, page Page, sessionID string) error {
	page.ShowLoading(true)
	defer page.ShowLoading(false)

	if err := s.auth.SignOut(ctx, sessionID); err != nil {
		slog.Error("failed to sign out", slog.String("error", err.Error()))
		s.metrics.RecordLogout(metrics.ResultError)
		page.ShowMessage(i18n.T(ctx, "logout.error"), model.MessageError)
		return fmt.Errorf("failed to sign out: %w", err)
	}

	s.metrics.RecordLogout(metrics.ResultSuccess)
	page.ShowMessage(i18n.T(ctx, "logout.success"), model.MessageSuccess)
	page.Navigate(IndexPath, logoutRedirectDelay)
	return nil
}

// GetProfile はプロフィールレコードを取得する。
// レコードがない場合はPROFILE_NOT_FOUNDエラー、通信エラーはそのまま返す。
func (s *Service) GetProfile(ctx context.Context, uid string) (*model.Profile, error) {
	doc, err := s.docs.Get(ctx, provider.Doc(UsersCollection, uid))
	if err != nil {
		s.metrics.RecordProfileLoad(false)
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if doc == nil {
		s.metrics.RecordProfileLoad(false)
		return nil, model.NewProfileNotFoundError(uid)
	}

	var profile model.Profile
	if err := doc.DataTo(&profile); err != nil {
		s.metrics.RecordProfileLoad(false)
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	s.metrics.RecordProfileLoad(true)
	return &profile, nil
}

// fail はエラーを1件の通知に変換し、結果をメトリクスに記録する。
func (s *Service) fail(ctx context.Context, page Notifier, err error, record func(result string)) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeValidation {
		record(metrics.ResultValidation)
		page.ShowMessage(i18n.T(ctx, apiErr.MessageKey), model.MessageError)
		return
	}

	code := provider.CodeOf(err)
	if code != "" {
		record(metrics.ResultProviderError)
		s.metrics.RecordProviderError(string(code))
		slog.Warn("provider request failed",
			slog.String("code", string(code)),
			slog.String("error", err.Error()),
		)
	} else {
		record(metrics.ResultError)
	}
	page.ShowMessage(i18n.T(ctx, ErrorMessageKey(code)), model.MessageError)
}
