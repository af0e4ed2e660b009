package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrDocumentNotFound は更新対象のドキュメントが存在しない場合のエラー。
var ErrDocumentNotFound = errors.New("document not found")

// Fields はドキュメントに書き込むフィールドの集合。
// 値にServerTimestampを指定するとストア側の現在時刻に置き換えられる。
type Fields map[string]any

type serverTimestamp struct{}

// ServerTimestamp はサーバー時刻で置き換えられるセンチネル値。
var ServerTimestamp = serverTimestamp{}

// IsServerTimestamp は値がServerTimestampセンチネルかどうかを判定する。
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// Document はストアから取得したドキュメント。
type Document struct {
	Path string
	Data map[string]any
}

// DataTo はドキュメントのフィールドを構造体にデコードする。
func (d *Document) DataTo(v any) error {
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", d.Path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", d.Path, err)
	}
	return nil
}

// DocumentStore はパス（"collection/id"）をキーとするドキュメントストアのインターフェース。
type DocumentStore interface {
	// Get は指定パスのドキュメントを取得する。存在しない場合はnilを返す。
	Get(ctx context.Context, path string) (*Document, error)
	// Set は指定パスのドキュメントを全置換で書き込む。
	Set(ctx context.Context, path string, fields Fields) error
	// Update は既存ドキュメントにフィールドをマージする。
	// ドキュメントが存在しない場合はErrDocumentNotFoundを返す。
	Update(ctx context.Context, path string, fields Fields) error
}

// Doc はコレクション名とドキュメントIDからパスを組み立てる。
func Doc(collection, id string) string {
	return collection + "/" + id
}

// SplitPath はパスをコレクション名とドキュメントIDに分割する。
func SplitPath(path string) (collection, id string, err error) {
	collection, id, ok := strings.Cut(path, "/")
	if !ok || collection == "" || id == "" || strings.Contains(id, "/") {
		return "", "", fmt.Errorf("invalid document path: %q", path)
	}
	return collection, id, nil
}
