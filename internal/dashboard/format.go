package dashboard

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/hitoshi/accountdash/internal/i18n"
	"github.com/hitoshi/accountdash/internal/model"
)

// GetInitials は表示名の先頭2語の頭文字を大文字で返す。
// "Jane Doe" → "JD"、"Madonna" → "M"、"" → ""。
func GetInitials(fullName string) string {
	var b strings.Builder
	for _, word := range strings.Fields(fullName) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
		if utf8.RuneCountInString(b.String()) == 2 {
			break
		}
	}
	return b.String()
}

// timeConverter はToTimeを持つタイムスタンプ型。
type timeConverter interface {
	ToTime() time.Time
}

// toTime はタイムスタンプ相当の値をtime.Timeに変換する。
func toTime(v any) (time.Time, bool) {
	switch ts := v.(type) {
	case nil:
		return time.Time{}, false
	case model.Timestamp:
		return ts.ToTime(), true
	case *model.Timestamp:
		if ts == nil {
			return time.Time{}, false
		}
		return ts.ToTime(), true
	case time.Time:
		return ts, !ts.IsZero()
	case *time.Time:
		if ts == nil || ts.IsZero() {
			return time.Time{}, false
		}
		return *ts, true
	case timeConverter:
		return ts.ToTime(), true
	case map[string]any:
		// ドキュメントをそのままデコードした {"seconds": .., "nanos": ..} 形式
		return secondsToTime(ts["seconds"])
	default:
		return time.Time{}, false
	}
}

func secondsToTime(v any) (time.Time, bool) {
	switch s := v.(type) {
	case float64:
		return time.Unix(int64(s), 0).UTC(), true
	case int64:
		return time.Unix(s, 0).UTC(), true
	case int:
		return time.Unix(int64(s), 0).UTC(), true
	case json.Number:
		n, err := s.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(n, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

// FormatDate はタイムスタンプを長い日付形式（日時・分まで）で返す。
// 解釈できない値は "Date unavailable" になる。locがnilの場合はUTC。
func FormatDate(ctx context.Context, v any, loc *time.Location) string {
	t, ok := toTime(v)
	if !ok {
		return i18n.T(ctx, "dashboard.date_unavailable")
	}
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	month := i18n.T(ctx, monthKey(t.Month()))
	return i18n.T(ctx, "date.long", month, t.Day(), t.Year(), t.Hour(), t.Minute())
}

func monthKey(m time.Month) string {
	switch m {
	case time.January:
		return "month.1"
	case time.February:
		return "month.2"
	case time.March:
		return "month.3"
	case time.April:
		return "month.4"
	case time.May:
		return "month.5"
	case time.June:
		return "month.6"
	case time.July:
		return "month.7"
	case time.August:
		return "month.8"
	case time.September:
		return "month.9"
	case time.October:
		return "month.10"
	case time.November:
		return "month.11"
	default:
		return "month.12"
	}
}

// TimeOfDayKey は時刻（0-23）に対応する挨拶の翻訳キーを返す。
func TimeOfDayKey(hour int) string {
	switch {
	case hour < 12:
		return "dashboard.greeting.morning"
	case hour < 18:
		return "dashboard.greeting.afternoon"
	default:
		return "dashboard.greeting.evening"
	}
}

// Greeting は時間帯の挨拶と表示名を組み合わせる。
func Greeting(ctx context.Context, hour int, displayName string) string {
	return i18n.T(ctx, "dashboard.greeting", i18n.T(ctx, TimeOfDayKey(hour)), displayName)
}
