// Package security はアプリケーションのセキュリティ機能を提供する。
//
// NameSanitizer はユーザーが入力した表示名からHTMLを取り除き、
// プロバイダーやプロフィールレコードへプレーンテキストのみを渡す。
// bluemondayのStrictPolicyを使用し、すべてのタグと属性を除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// MaxDisplayNameLength は表示名の最大文字数（rune数）。
const MaxDisplayNameLength = 255

// TextSanitizer はプレーンテキスト化のインターフェース。
type TextSanitizer interface {
	// Sanitize はHTMLを除去したプレーンテキストを返す。
	Sanitize(input string) string
}

// NameSanitizer は表示名用のTextSanitizer実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type NameSanitizer struct {
	policy *bluemonday.Policy
}

// NewNameSanitizer はNameSanitizerを生成する。
func NewNameSanitizer() *NameSanitizer {
	return &NameSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はタグを除去し、エンティティを戻し、連続する空白を1つにまとめる。
// 結果はMaxDisplayNameLength文字で切り詰める。
func (s *NameSanitizer) Sanitize(input string) string {
	stripped := html.UnescapeString(s.policy.Sanitize(input))
	normalized := strings.Join(strings.Fields(stripped), " ")

	if r := []rune(normalized); len(r) > MaxDisplayNameLength {
		normalized = strings.TrimSpace(string(r[:MaxDisplayNameLength]))
	}
	return normalized
}

// compile-time interface check
var _ TextSanitizer = (*NameSanitizer)(nil)
