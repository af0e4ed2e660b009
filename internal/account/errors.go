package account

import (
	"regexp"
	"unicode/utf8"

	"github.com/hitoshi/accountdash/internal/model"
	"github.com/hitoshi/accountdash/internal/provider"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail はメールアドレスが local@domain.tld 形式かどうかを判定する。
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ErrorMessageKey はプロバイダーエラーコードに対応する翻訳キーを返す。
// 未知のコードは汎用メッセージになる。
func ErrorMessageKey(code provider.ErrorCode) string {
	switch code {
	case provider.CodeEmailAlreadyInUse:
		return "auth.error.email_in_use"
	case provider.CodeInvalidEmail:
		return "auth.error.invalid_email"
	case provider.CodeOperationNotAllowed:
		return "auth.error.operation_not_allowed"
	case provider.CodeWeakPassword:
		return "auth.error.weak_password"
	case provider.CodeUserDisabled:
		return "auth.error.user_disabled"
	case provider.CodeUserNotFound:
		return "auth.error.user_not_found"
	case provider.CodeWrongPassword:
		return "auth.error.wrong_password"
	case provider.CodeInvalidCredential:
		return "auth.error.invalid_credential"
	case provider.CodeTooManyRequests:
		return "auth.error.too_many_requests"
	case provider.CodeNetworkRequestFailed:
		return "auth.error.network"
	default:
		return "auth.error.unexpected"
	}
}

// validateRegistration は登録入力を検証する。
func validateRegistration(email, password, fullName string) error {
	if email == "" || password == "" || fullName == "" {
		return model.NewValidationError(model.MsgAllFieldsRequired)
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return model.NewValidationError(model.MsgPasswordTooShort)
	}
	if !IsValidEmail(email) {
		return model.NewValidationError(model.MsgInvalidEmailFormat)
	}
	return nil
}

// validateLogin はサインイン入力を検証する。
func validateLogin(email, password string) error {
	if email == "" || password == "" {
		return model.NewValidationError(model.MsgEmailAndPasswordRequired)
	}
	if !IsValidEmail(email) {
		return model.NewValidationError(model.MsgInvalidEmailFormat)
	}
	return nil
}
