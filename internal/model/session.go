// Package model はドメインモデルを定義する。
package model

import "time"

// Session はプロバイダーが発行した認証済みセッションを表す。
// サインイン・登録で作成され、Cookie経由で毎リクエスト復元され、サインアウトで破棄される。
type Session struct {
	ID           string // サーバー側セッションID（Cookie値）
	UID          string // プロバイダー上のアカウントID
	Email        string
	DisplayName  string
	RefreshToken string
	IDToken      string // 発行直後のみ保持する。永続化しない
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// MessageKind は画面通知の種別を表す。
type MessageKind string

const (
	// MessageSuccess は成功通知。
	MessageSuccess MessageKind = "success"
	// MessageError はエラー通知。
	MessageError MessageKind = "error"
	// MessageInfo は情報通知。
	MessageInfo MessageKind = "info"
)
