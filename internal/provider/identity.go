// Package provider は外部の認証・ドキュメントストアプロバイダーとの境界を提供する。
// パスワードのハッシュ化やトークン発行はすべてプロバイダー側で行い、
// このパッケージはREST呼び出しとセッションの保持・通知のみを担う。
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultIdentityBaseURL = "https://identitytoolkit.googleapis.com"

// IdentityConfig はIdentity REST APIクライアントの設定。
type IdentityConfig struct {
	APIKey string

	// エミュレーターやテスト用にオーバーライド可能なURL
	BaseURL string

	Timeout time.Duration
}

// Credential はアカウント作成・サインインの結果を表す。
type Credential struct {
	UID          string
	Email        string
	DisplayName  string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// IdentityClient はIdentity REST API（accounts:*）のクライアント。
type IdentityClient struct {
	config IdentityConfig
	client *http.Client
}

// NewIdentityClient はIdentityClientを生成する。
func NewIdentityClient(config IdentityConfig) *IdentityClient {
	if config.BaseURL == "" {
		config.BaseURL = defaultIdentityBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &IdentityClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// identityTokenResponse はsignUp/signInWithPasswordのレスポンス。
type identityTokenResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// identityErrorResponse はエラーレスポンスのボディ。
type identityErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignUp はメールアドレスとパスワードでアカウントを作成する。
func (c *IdentityClient) SignUp(ctx context.Context, email, password string) (*Credential, error) {
	var resp identityTokenResponse
	err := c.post(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return toCredential(resp)
}

// SignInWithPassword はメールアドレスとパスワードでサインインする。
func (c *IdentityClient) SignInWithPassword(ctx context.Context, email, password string) (*Credential, error) {
	var resp identityTokenResponse
	err := c.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return toCredential(resp)
}

// UpdateProfile はアカウントの表示名を更新する。
func (c *IdentityClient) UpdateProfile(ctx context.Context, idToken, displayName string) error {
	return c.post(ctx, "accounts:update", map[string]any{
		"idToken":           idToken,
		"displayName":       displayName,
		"returnSecureToken": false,
	}, nil)
}

// post はAPIキー付きでJSONをPOSTし、レスポンスをoutにデコードする。
// 通信エラーはCodeNetworkRequestFailed、APIエラーはメッセージから変換したコードで返す。
func (c *IdentityClient) post(ctx context.Context, method string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/v1/%s?key=%s", c.config.BaseURL, method, url.QueryEscape(c.config.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Code: CodeNetworkRequestFailed, Message: method + " request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Code: CodeNetworkRequestFailed, Message: "failed to read " + method + " response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return parseIdentityError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Code: CodeInternalError, Message: "failed to parse " + method + " response", Err: err}
	}
	return nil
}

// parseIdentityError はエラーレスポンスをErrorに変換する。
func parseIdentityError(status int, body []byte) *Error {
	var errResp identityErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		code := CodeInternalError
		if status == http.StatusTooManyRequests {
			code = CodeTooManyRequests
		}
		return &Error{Code: code, Message: fmt.Sprintf("unexpected status %d: %s", status, string(body))}
	}
	return &Error{
		Code:    codeFromIdentityMessage(errResp.Error.Message),
		Message: errResp.Error.Message,
	}
}

// toCredential はトークンレスポンスをCredentialに変換する。
func toCredential(resp identityTokenResponse) (*Credential, error) {
	if resp.LocalID == "" {
		return nil, &Error{Code: CodeInternalError, Message: "empty localId in response"}
	}

	expiresIn := time.Hour
	if secs, err := strconv.Atoi(resp.ExpiresIn); err == nil && secs > 0 {
		expiresIn = time.Duration(secs) * time.Second
	}

	return &Credential{
		UID:          resp.LocalID,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// compile-time interface check
var _ IdentityProvider = (*IdentityClient)(nil)
