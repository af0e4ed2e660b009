package provider

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode はプロバイダーが返す認証エラーの種別。
type ErrorCode string

// プロバイダーエラーコード
const (
	CodeEmailAlreadyInUse    ErrorCode = "auth/email-already-in-use"
	CodeInvalidEmail         ErrorCode = "auth/invalid-email"
	CodeOperationNotAllowed  ErrorCode = "auth/operation-not-allowed"
	CodeWeakPassword         ErrorCode = "auth/weak-password"
	CodeUserDisabled         ErrorCode = "auth/user-disabled"
	CodeUserNotFound         ErrorCode = "auth/user-not-found"
	CodeWrongPassword        ErrorCode = "auth/wrong-password"
	CodeInvalidCredential    ErrorCode = "auth/invalid-credential"
	CodeTooManyRequests      ErrorCode = "auth/too-many-requests"
	CodeNetworkRequestFailed ErrorCode = "auth/network-request-failed"
	CodeInternalError        ErrorCode = "auth/internal-error"
)

// Error はプロバイダー呼び出しの失敗を表す。
type Error struct {
	Code    ErrorCode
	Message string // プロバイダーが返した生のメッセージ
	Err     error
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap は原因エラーを返す。
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf はエラーチェーンからプロバイダーエラーコードを取り出す。
// プロバイダーエラーでない場合は空文字列を返す。
func CodeOf(err error) ErrorCode {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Code
	}
	return ""
}

// codeFromIdentityMessage はIdentity REST APIのエラーメッセージをエラーコードに変換する。
// メッセージは "WEAK_PASSWORD : Password should be at least 6 characters" のように
// 詳細が付与される場合があるため、先頭のトークンのみで判定する。
func codeFromIdentityMessage(msg string) ErrorCode {
	token := strings.TrimSpace(msg)
	if i := strings.IndexAny(token, " :"); i >= 0 {
		token = token[:i]
	}

	switch token {
	case "EMAIL_EXISTS":
		return CodeEmailAlreadyInUse
	case "INVALID_EMAIL", "MISSING_EMAIL":
		return CodeInvalidEmail
	case "OPERATION_NOT_ALLOWED", "PASSWORD_LOGIN_DISABLED":
		return CodeOperationNotAllowed
	case "WEAK_PASSWORD":
		return CodeWeakPassword
	case "USER_DISABLED":
		return CodeUserDisabled
	case "EMAIL_NOT_FOUND":
		return CodeUserNotFound
	case "INVALID_PASSWORD":
		return CodeWrongPassword
	case "INVALID_LOGIN_CREDENTIALS", "INVALID_ID_TOKEN":
		return CodeInvalidCredential
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return CodeTooManyRequests
	default:
		return CodeInternalError
	}
}
