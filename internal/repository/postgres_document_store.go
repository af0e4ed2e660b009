package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/lib/pq"

	"github.com/hitoshi/accountdash/internal/provider"
)

// fieldsExpr は$3のJSONオブジェクトに、$4で指定したフィールドをnow()で補完したjsonbを返す式。
const fieldsExpr = `($3::jsonb || COALESCE(
	(SELECT jsonb_object_agg(k, to_jsonb(now())) FROM unnest($4::text[]) AS k),
	'{}'::jsonb))`

// PostgresDocumentStore はdocumentsテーブルを使用したドキュメントストア。
// ドキュメントはcollectionとdoc_idの組で一意に識別され、フィールドはjsonbで保持する。
type PostgresDocumentStore struct {
	db *sql.DB
}

// NewPostgresDocumentStore はPostgresDocumentStoreを生成する。
func NewPostgresDocumentStore(db *sql.DB) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db}
}

// Get は指定パスのドキュメントを取得する。存在しない場合はnilを返す。
func (s *PostgresDocumentStore) Get(ctx context.Context, path string) (*provider.Document, error) {
	collection, id, err := provider.SplitPath(path)
	if err != nil {
		return nil, err
	}

	var raw []byte
	err = s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND doc_id = $2`,
		collection, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", path, err)
	}

	data := make(map[string]any)
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", path, err)
	}
	return &provider.Document{Path: path, Data: data}, nil
}

// Set は指定パスのドキュメントを全置換で書き込む。存在しない場合は作成する。
func (s *PostgresDocumentStore) Set(ctx context.Context, path string, fields provider.Fields) error {
	collection, id, err := provider.SplitPath(path)
	if err != nil {
		return err
	}
	literal, serverTimes, err := splitFields(fields)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", path, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, doc_id, data, created_at, updated_at)
		 VALUES ($1, $2, `+fieldsExpr+`, now(), now())
		 ON CONFLICT (collection, doc_id)
		 DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		collection, id, literal, pq.Array(serverTimes),
	)
	if err != nil {
		return fmt.Errorf("failed to set document %s: %w", path, err)
	}
	return nil
}

// Update は既存ドキュメントにフィールドをマージする。
// ドキュメントが存在しない場合はprovider.ErrDocumentNotFoundを返す。
func (s *PostgresDocumentStore) Update(ctx context.Context, path string, fields provider.Fields) error {
	collection, id, err := provider.SplitPath(path)
	if err != nil {
		return err
	}
	literal, serverTimes, err := splitFields(fields)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", path, err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE documents
		 SET data = data || `+fieldsExpr+`, updated_at = now()
		 WHERE collection = $1 AND doc_id = $2`,
		collection, id, literal, pq.Array(serverTimes),
	)
	if err != nil {
		return fmt.Errorf("failed to update document %s: %w", path, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", path, provider.ErrDocumentNotFound)
	}
	return nil
}

// splitFields はフィールドをJSONエンコードする値とサーバー時刻で補完するフィールド名に分ける。
func splitFields(fields provider.Fields) ([]byte, []string, error) {
	literal := make(map[string]any, len(fields))
	var serverTimes []string
	for k, v := range fields {
		if provider.IsServerTimestamp(v) {
			serverTimes = append(serverTimes, k)
			continue
		}
		literal[k] = v
	}
	sort.Strings(serverTimes)

	encoded, err := json.Marshal(literal)
	if err != nil {
		return nil, nil, err
	}
	return encoded, serverTimes, nil
}

// compile-time interface check
var _ provider.DocumentStore = (*PostgresDocumentStore)(nil)
