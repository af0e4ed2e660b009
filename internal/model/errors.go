// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code       string // エラーコード
	Message    string // エラーメッセージ（ログ・API向け）
	Category   string // カテゴリ: auth, validation, profile, system
	Action     string // ユーザー向け対処方法
	MessageKey string // 画面通知用の翻訳キー
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation        = "VALIDATION_FAILED"
	ErrCodeProfileNotFound   = "PROFILE_NOT_FOUND"
	ErrCodeInconsistentState = "INCONSISTENT_STATE"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
)

// 入力検証の翻訳キー
const (
	MsgAllFieldsRequired        = "validation.all_fields_required"
	MsgEmailAndPasswordRequired = "validation.email_password_required"
	MsgPasswordTooShort         = "validation.password_too_short"
	MsgInvalidEmailFormat       = "validation.invalid_email"
)

// NewValidationError は入力検証エラーを生成する。
// messageKeyは画面に表示する翻訳キー。
func NewValidationError(messageKey string) *APIError {
	return &APIError{
		Code:       ErrCodeValidation,
		Message:    fmt.Sprintf("invalid input: %s", messageKey),
		Category:   "validation",
		Action:     "Check the entered values.",
		MessageKey: messageKey,
	}
}

// NewProfileNotFoundError はプロフィールレコード未検出エラーを生成する。
func NewProfileNotFoundError(uid string) *APIError {
	return &APIError{
		Code:       ErrCodeProfileNotFound,
		Message:    fmt.Sprintf("profile not found: %s", uid),
		Category:   "profile",
		Action:     "Sign in again or contact support.",
		MessageKey: "dashboard.load_error",
	}
}

// NewInconsistentStateError はガード通過後にセッションが見つからない場合のエラーを生成する。
// プロバイダーが正しく動作していれば発生しない。
func NewInconsistentStateError() *APIError {
	return &APIError{
		Code:       ErrCodeInconsistentState,
		Message:    "session guard passed but no session was observed",
		Category:   "system",
		Action:     "Reload the page.",
		MessageKey: "dashboard.load_error",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "authentication required",
		Category: "auth",
		Action:   "Sign in.",
	}
}
