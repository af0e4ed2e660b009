package cleanup

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeResult struct {
	rowsAffected int64
	err          error
}

func (r *fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r *fakeResult) RowsAffected() (int64, error) { return r.rowsAffected, r.err }

// mockExecutor はExecutorのモック。実行されたクエリを記録する。
type mockExecutor struct {
	mu      sync.Mutex
	queries []string
	result  sql.Result
	err     error
}

func (m *mockExecutor) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	return m.result, m.err
}

func (m *mockExecutor) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

type mockRecorder struct {
	counts []int64
}

func (m *mockRecorder) RecordSessionsCleaned(count int64) {
	m.counts = append(m.counts, count)
}

var _ Executor = (*sql.DB)(nil)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func TestCleanupJob_Run_DeletesExpiredSessions(t *testing.T) {
	var buf bytes.Buffer
	exec := &mockExecutor{result: &fakeResult{rowsAffected: 3}}
	rec := &mockRecorder{}
	job := NewCleanupJob(exec, newTestLogger(&buf), rec)

	deleted, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}

	query := exec.queries[0]
	if !strings.Contains(query, "DELETE FROM sessions") || !strings.Contains(query, "expires_at < now()") {
		t.Errorf("query = %q, want a delete of expired sessions", query)
	}
	if len(rec.counts) != 1 || rec.counts[0] != 3 {
		t.Errorf("recorded counts = %v, want [3]", rec.counts)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v", err)
	}
	if entry["deleted_count"] != float64(3) {
		t.Errorf("deleted_count = %v, want 3", entry["deleted_count"])
	}
}

func TestCleanupJob_Run_NothingToDelete(t *testing.T) {
	var buf bytes.Buffer
	exec := &mockExecutor{result: &fakeResult{}}
	job := NewCleanupJob(exec, newTestLogger(&buf), nil)

	deleted, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}

func TestCleanupJob_Run_ExecError(t *testing.T) {
	var buf bytes.Buffer
	exec := &mockExecutor{err: errors.New("connection reset")}
	rec := &mockRecorder{}
	job := NewCleanupJob(exec, newTestLogger(&buf), rec)

	if _, err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(rec.counts) != 0 {
		t.Errorf("nothing should be recorded on failure, got %v", rec.counts)
	}
	if !strings.Contains(buf.String(), "connection reset") {
		t.Errorf("error should be logged, got %s", buf.String())
	}
}

func TestCleanupJob_Run_RowsAffectedError(t *testing.T) {
	var buf bytes.Buffer
	exec := &mockExecutor{result: &fakeResult{err: errors.New("not supported")}}
	job := NewCleanupJob(exec, newTestLogger(&buf), nil)

	if _, err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestCleanupJob_Start_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	var buf bytes.Buffer
	exec := &mockExecutor{result: &fakeResult{}}
	job := NewCleanupJob(exec, newTestLogger(&buf), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, time.Hour)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for exec.calls() == 0 {
		select {
		case <-deadline:
			t.Fatal("cleanup did not run on start")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
