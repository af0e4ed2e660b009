// Package providertest はテスト用のインメモリドキュメントストアを提供する。
package providertest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hitoshi/accountdash/internal/provider"
)

// Call はストアへの書き込み呼び出しの記録。
type Call struct {
	Method string
	Path   string
	Fields provider.Fields
}

// MemoryStore はprovider.DocumentStoreのインメモリ実装。
// ServerTimestampはNowの返す時刻（RFC3339文字列）で置き換える。
type MemoryStore struct {
	mu    sync.Mutex
	docs  map[string]map[string]any
	calls []Call

	// Now はサーバー時刻を返す。nilの場合はtime.Now。
	Now func() time.Time
	// Err が設定されている場合、すべての操作がこのエラーを返す。
	Err error
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]any)}
}

// Get は指定パスのドキュメントを返す。存在しない場合はnil。
func (m *MemoryStore) Get(_ context.Context, path string) (*provider.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	data, ok := m.docs[path]
	if !ok {
		return nil, nil
	}
	copied := make(map[string]any, len(data))
	for k, v := range data {
		copied[k] = v
	}
	return &provider.Document{Path: path, Data: copied}, nil
}

// Set はドキュメントを全置換で書き込む。
func (m *MemoryStore) Set(_ context.Context, path string, fields provider.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Method: "Set", Path: path, Fields: fields})
	if m.Err != nil {
		return m.Err
	}
	data, err := m.resolve(fields)
	if err != nil {
		return err
	}
	m.docs[path] = data
	return nil
}

// Update は既存ドキュメントにフィールドをマージする。
func (m *MemoryStore) Update(_ context.Context, path string, fields provider.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Method: "Update", Path: path, Fields: fields})
	if m.Err != nil {
		return m.Err
	}
	existing, ok := m.docs[path]
	if !ok {
		return fmt.Errorf("%s: %w", path, provider.ErrDocumentNotFound)
	}
	data, err := m.resolve(fields)
	if err != nil {
		return err
	}
	for k, v := range data {
		existing[k] = v
	}
	return nil
}

// Calls は書き込み呼び出しの記録を返す。
func (m *MemoryStore) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Put はテストデータを直接書き込む。呼び出し記録には残らない。
func (m *MemoryStore) Put(path string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[path] = data
}

// resolve はフィールドをJSON相当の値に変換し、ServerTimestampを時刻文字列に置き換える。
func (m *MemoryStore) resolve(fields provider.Fields) (map[string]any, error) {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}

	literal := make(map[string]any, len(fields))
	stamps := make(map[string]any)
	for k, v := range fields {
		if provider.IsServerTimestamp(v) {
			stamps[k] = now().UTC().Format(time.RFC3339Nano)
			continue
		}
		literal[k] = v
	}

	raw, err := json.Marshal(literal)
	if err != nil {
		return nil, err
	}
	data := make(map[string]any)
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	for k, v := range stamps {
		data[k] = v
	}
	return data, nil
}

// compile-time interface check
var _ provider.DocumentStore = (*MemoryStore)(nil)
