package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testJob(id string) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		Task:      "create-learning-path",
		Payload:   json.RawMessage(`{"topic":"Optics"}`),
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testJob("j1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	job, err := store.Get(ctx, "j1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job.Status != StatusQueued {
		t.Fatalf("status = %q, want queued", job.Status)
	}
	if job.Result != nil {
		t.Fatalf("result should be null before terminal, got %s", job.Result)
	}
	if string(job.Payload) != `{"topic":"Optics"}` {
		t.Fatalf("payload roundtrip failed: %s", job.Payload)
	}
}

func TestStore_GetUnknown(t *testing.T) {
	store := testStore(t)
	if _, err := store.Get(context.Background(), "nope"); err != ErrJobNotFound {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestStore_Lifecycle(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testJob("j1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.MarkRunning(ctx, "j1"); err != nil {
		t.Fatalf("mark running: %v", err)
	}

	job, _ := store.Get(ctx, "j1")
	if job.Status != StatusRunning {
		t.Fatalf("status = %q, want running", job.Status)
	}
	if job.StartedAt == nil {
		t.Fatal("started_at should be set")
	}

	if err := store.Complete(ctx, "j1", json.RawMessage(`{"ok":true}`), 1); err != nil {
		t.Fatalf("complete: %v", err)
	}
	job, _ = store.Get(ctx, "j1")
	if job.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed", job.Status)
	}
	if string(job.Result) != `{"ok":true}` {
		t.Fatalf("result = %s", job.Result)
	}
	if job.EndedAt == nil {
		t.Fatal("ended_at should be set")
	}
}

func TestStore_ResultWrittenOnce(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testJob("j1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Complete(ctx, "j1", json.RawMessage(`1`), 1); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// A terminal job must not be rewritten.
	if err := store.Fail(ctx, "j1", "late failure", 2); err == nil {
		t.Fatal("expected rewrite of terminal job to be rejected")
	}
	job, _ := store.Get(ctx, "j1")
	if job.Status != StatusCompleted || string(job.Result) != `1` {
		t.Fatalf("terminal result mutated: %q %s", job.Status, job.Result)
	}
}

func TestStore_FailCarriesDiagnostic(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testJob("j1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Fail(ctx, "j1", "task create-learning-path failed after 3 attempt(s): schema violation", 3); err != nil {
		t.Fatalf("fail: %v", err)
	}

	job, _ := store.Get(ctx, "j1")
	if job.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	var diag string
	if err := json.Unmarshal(job.Result, &diag); err != nil {
		t.Fatalf("result should be a JSON string diagnostic: %v", err)
	}
	if diag == "" {
		t.Fatal("diagnostic should not be empty")
	}
	if job.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", job.Attempts)
	}
}

func TestStore_DeleteExpired(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testJob("old")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Complete(ctx, "old", json.RawMessage(`1`), 1); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := store.Create(ctx, testJob("pending")); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Cutoff in the future: the terminal job is expired, the queued one
	// is never swept regardless of age.
	n, err := store.DeleteExpired(ctx, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}
	if _, err := store.Get(ctx, "old"); err != ErrJobNotFound {
		t.Fatalf("expired job should be gone, got %v", err)
	}
	if _, err := store.Get(ctx, "pending"); err != nil {
		t.Fatalf("queued job should survive: %v", err)
	}
}

func TestStore_DeleteExpiredSubSecondCutoff(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testJob("j1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Complete(ctx, "j1", json.RawMessage(`1`), 1); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Pin the row to a whole-second timestamp. The SQL comparison is
	// lexicographic on stored text, so a whole-second value must still
	// sort before a fractional cutoff within the same second.
	wholeSecond := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if _, err := store.db.ExecContext(ctx, `UPDATE jobs SET updated_at = ? WHERE id = ?`,
		formatTime(wholeSecond), "j1"); err != nil {
		t.Fatalf("pin updated_at: %v", err)
	}

	n, err := store.DeleteExpired(ctx, wholeSecond.Add(500*time.Millisecond))
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}
}
