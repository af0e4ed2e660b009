package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Profile はusersコレクションに保存されるプロフィールレコード。
// ドキュメントキーはアカウントIDで、1アカウントにつき1件のみ存在する。
type Profile struct {
	UID         string     `json:"uid"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	CreatedAt   *Timestamp `json:"createdAt,omitempty"` // 初回書き込み後は変更しない
	LastLogin   *Timestamp `json:"lastLogin,omitempty"`
}

// Timestamp はドキュメントストアのサーバー時刻を表す。
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

// NewTimestamp はtime.TimeからTimestampを生成する。
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// ToTime はTimestampをtime.Timeに変換する。
func (ts Timestamp) ToTime() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

// MarshalJSON はRFC3339形式の文字列として書き出す。
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.ToTime().Format(time.RFC3339Nano))
}

// UnmarshalJSON はRFC3339文字列または{"seconds":..,"nanos":..}形式を受け付ける。
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		*ts = NewTimestamp(t)
		return nil
	}

	var obj struct {
		Seconds int64 `json:"seconds"`
		Nanos   int32 `json:"nanos"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}
	ts.Seconds = obj.Seconds
	ts.Nanos = obj.Nanos
	return nil
}
