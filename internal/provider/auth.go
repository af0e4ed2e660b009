package provider

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/accountdash/internal/model"
)

// IdentityProvider はアカウント操作を行う外部プロバイダーのインターフェース。
type IdentityProvider interface {
	// SignUp はアカウントを作成する。
	SignUp(ctx context.Context, email, password string) (*Credential, error)
	// SignInWithPassword はパスワードでサインインする。
	SignInWithPassword(ctx context.Context, email, password string) (*Credential, error)
	// UpdateProfile は表示名を更新する。
	UpdateProfile(ctx context.Context, idToken, displayName string) error
}

// SessionStore はセッションの永続化インターフェース。
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	// FindByID は有効なセッションを返す。期限切れ・未存在の場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
	DeleteByID(ctx context.Context, id string) error
}

// SessionListener はセッション変化の通知を受け取る関数。
// セッションが存在しない場合はnilが渡される。
type SessionListener func(session *model.Session)

// AuthConfig は認証クライアントの設定。
type AuthConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Auth はプロバイダーの認証セッションを保持し、変化をリスナーへ通知するクライアント。
// セッションの作成・復元・終了のたびに登録済みリスナーを呼び出す。
type Auth struct {
	identity IdentityProvider
	sessions SessionStore
	config   AuthConfig

	mu        sync.RWMutex
	listeners map[uint64]SessionListener
	nextID    uint64
}

// NewAuth はAuthを生成する。
func NewAuth(identity IdentityProvider, sessions SessionStore, config AuthConfig) *Auth {
	return &Auth{
		identity:  identity,
		sessions:  sessions,
		config:    config,
		listeners: make(map[uint64]SessionListener),
	}
}

// CreateAccount はアカウントを作成し、新しいセッションを開始する。
func (a *Auth) CreateAccount(ctx context.Context, email, password string) (*model.Session, error) {
	cred, err := a.identity.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return a.startSession(ctx, cred)
}

// SignIn はパスワードでサインインし、新しいセッションを開始する。
func (a *Auth) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	cred, err := a.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return a.startSession(ctx, cred)
}

// SignOut はセッションを破棄する。
func (a *Auth) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	if err := a.sessions.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("session ended", slog.String("session_id", sessionID))
	a.notify(nil)
	return nil
}

// UpdateDisplayName はアカウントとセッションの表示名を更新する。
// 発行直後のIDトークンを保持するセッションに対してのみ実行できる。
func (a *Auth) UpdateDisplayName(ctx context.Context, session *model.Session, displayName string) error {
	if session == nil || session.IDToken == "" {
		return &Error{Code: CodeInvalidCredential, Message: "id token is not available for this session"}
	}
	if err := a.identity.UpdateProfile(ctx, session.IDToken, displayName); err != nil {
		return err
	}
	if err := a.sessions.UpdateDisplayName(ctx, session.ID, displayName); err != nil {
		return fmt.Errorf("failed to update session display name: %w", err)
	}
	session.DisplayName = displayName
	return nil
}

// Restore はCookieのセッションIDからセッションを復元し、リスナーへ通知する。
// 有効なセッションがない場合はnilを返す。
func (a *Auth) Restore(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := a.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	a.notify(session)
	return session, nil
}

// OnSessionChanged はセッション変化のリスナーを登録し、登録解除関数を返す。
func (a *Auth) OnSessionChanged(listener SessionListener) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = listener
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// startSession は認証結果からセッションを作成・永続化し、リスナーへ通知する。
func (a *Auth) startSession(ctx context.Context, cred *Credential) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:           sessionID,
		UID:          cred.UID,
		Email:        cred.Email,
		DisplayName:  cred.DisplayName,
		RefreshToken: cred.RefreshToken,
		IDToken:      cred.IDToken,
		ExpiresAt:    now.Add(time.Duration(a.config.SessionMaxAge) * time.Second),
		CreatedAt:    now,
	}

	if err := a.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	slog.Info("session started", slog.String("uid", session.UID))
	a.notify(session)
	return session, nil
}

// notify は登録済みの全リスナーを呼び出す。
func (a *Auth) notify(session *model.Session) {
	a.mu.RLock()
	listeners := make([]SessionListener, 0, len(a.listeners))
	for _, l := range a.listeners {
		listeners = append(listeners, l)
	}
	a.mu.RUnlock()

	for _, l := range listeners {
		l(session)
	}
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
