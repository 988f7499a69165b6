package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prepforge/prepforge/internal/llm"
	"github.com/prepforge/prepforge/internal/questiongen"
)

type echoPayload struct {
	Topic string `json:"topic" validate:"required"`
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testManager(t *testing.T) *Manager {
	t.Helper()
	store, err := OpenStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mgr := NewManager(store, Config{Workers: 2, QueueSize: 8}, testLogger())
	return mgr
}

func echoTask(runs *atomic.Int32, fail func(attempt int32) error) Task {
	return Task{
		Name:       "echo",
		NewPayload: func() any { return &echoPayload{} },
		Run: func(ctx context.Context, payload any) (any, error) {
			attempt := runs.Add(1)
			if fail != nil {
				if err := fail(attempt); err != nil {
					return nil, err
				}
			}
			p := payload.(*echoPayload)
			return map[string]string{"topic": p.Topic}, nil
		},
		MaxAttempts: 3,
		RetryDelay:  time.Millisecond,
	}
}

func waitForTerminal(t *testing.T, mgr *Manager, id string) *Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := mgr.GetJob(context.Background(), id)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal state")
	return nil
}

func TestRegister_Duplicate(t *testing.T) {
	mgr := testManager(t)
	var runs atomic.Int32
	if err := mgr.Register(echoTask(&runs, nil)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := mgr.Register(echoTask(&runs, nil)); err == nil {
		t.Fatal("duplicate registration should fail")
	}
}

func TestSubmit_UnknownTask(t *testing.T) {
	mgr := testManager(t)
	if _, err := mgr.Submit(context.Background(), "nope", nil); err == nil {
		t.Fatal("expected error for unknown task")
	}
}

func TestSubmit_InvalidPayloadRejected(t *testing.T) {
	mgr := testManager(t)
	var runs atomic.Int32
	if err := mgr.Register(echoTask(&runs, nil)); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Missing required topic.
	if _, err := mgr.Submit(context.Background(), "echo", json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected validation error")
	}
	if runs.Load() != 0 {
		t.Fatal("task must not run for a rejected payload")
	}
}

func TestAsync_Completes(t *testing.T) {
	mgr := testManager(t)
	var runs atomic.Int32
	if err := mgr.Register(echoTask(&runs, nil)); err != nil {
		t.Fatalf("register: %v", err)
	}
	mgr.Start()
	defer mgr.Stop(context.Background())

	id, err := mgr.Submit(context.Background(), "echo", json.RawMessage(`{"topic":"Optics"}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	job := waitForTerminal(t, mgr, id)
	if job.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed (error: %s)", job.Status, job.Error)
	}
	if string(job.Result) != `{"topic":"Optics"}` {
		t.Fatalf("unexpected result: %s", job.Result)
	}
	if job.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", job.Attempts)
	}
}

func TestAsync_RetryCeiling(t *testing.T) {
	mgr := testManager(t)
	var runs atomic.Int32
	task := echoTask(&runs, func(int32) error {
		return &llm.ErrSchemaFailure{Err: errors.New("always invalid")}
	})
	if err := mgr.Register(task); err != nil {
		t.Fatalf("register: %v", err)
	}
	mgr.Start()
	defer mgr.Stop(context.Background())

	id, err := mgr.Submit(context.Background(), "echo", json.RawMessage(`{"topic":"Optics"}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	job := waitForTerminal(t, mgr, id)
	if job.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	// Exactly the ceiling, no more.
	if runs.Load() != 3 {
		t.Fatalf("run count = %d, want 3", runs.Load())
	}
	if job.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", job.Attempts)
	}

	// The result is a human-readable diagnostic string.
	var diag string
	if err := json.Unmarshal(job.Result, &diag); err != nil {
		t.Fatalf("result should be a diagnostic string: %v", err)
	}
	if diag == "" {
		t.Fatal("diagnostic should not be empty")
	}
}

func TestAsync_QuestionWorkflowRetryCeiling(t *testing.T) {
	mgr := testManager(t)

	// Every canned response parses but violates the MCQ schema, so each
	// attempt fails at the first step of the workflow.
	provider := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{}`)},
		llm.MockResponse{Content: json.RawMessage(`{}`)},
		llm.MockResponse{Content: json.RawMessage(`{}`)},
		llm.MockResponse{Content: json.RawMessage(`{}`)},
	)
	provider.Validate = true

	generator := questiongen.New(provider, questiongen.DefaultConfig())
	task := Task{
		Name:       "generate-question",
		NewPayload: func() any { return &questiongen.Payload{} },
		Run: func(ctx context.Context, payload any) (any, error) {
			return generator.Generate(ctx, *payload.(*questiongen.Payload))
		},
		RetryDelay: time.Millisecond,
	}
	if err := mgr.Register(task); err != nil {
		t.Fatalf("register: %v", err)
	}
	mgr.Start()
	defer mgr.Stop(context.Background())

	id, err := mgr.Submit(context.Background(), "generate-question", json.RawMessage(`{"query":"projectile motion JEE Mains"}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	job := waitForTerminal(t, mgr, id)
	if job.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	// Three attempts, one LLM call each: the workflow never reached its
	// metadata step, and the ceiling stopped a fourth attempt.
	if provider.CallCount() != 3 {
		t.Fatalf("LLM call count = %d, want 3", provider.CallCount())
	}
	if job.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", job.Attempts)
	}
}

func TestAsync_RetriesThenSucceeds(t *testing.T) {
	mgr := testManager(t)
	var runs atomic.Int32
	task := echoTask(&runs, func(attempt int32) error {
		if attempt < 2 {
			return &llm.ErrProviderUnavailable{Err: errors.New("down")}
		}
		return nil
	})
	if err := mgr.Register(task); err != nil {
		t.Fatalf("register: %v", err)
	}
	mgr.Start()
	defer mgr.Stop(context.Background())

	id, _ := mgr.Submit(context.Background(), "echo", json.RawMessage(`{"topic":"Optics"}`))
	job := waitForTerminal(t, mgr, id)
	if job.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed", job.Status)
	}
	if job.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2", job.Attempts)
	}
}

func TestAsync_ConfigurationFailureNotRetried(t *testing.T) {
	mgr := testManager(t)
	var runs atomic.Int32
	task := echoTask(&runs, func(int32) error {
		return &llm.ErrConfiguration{Reason: "GROQ_API_KEY not set"}
	})
	if err := mgr.Register(task); err != nil {
		t.Fatalf("register: %v", err)
	}
	mgr.Start()
	defer mgr.Stop(context.Background())

	id, _ := mgr.Submit(context.Background(), "echo", json.RawMessage(`{"topic":"Optics"}`))
	job := waitForTerminal(t, mgr, id)
	if job.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	if runs.Load() != 1 {
		t.Fatalf("run count = %d, want 1 (no retry for missing configuration)", runs.Load())
	}
}

func TestAsync_PanicFailsJobNotWorker(t *testing.T) {
	mgr := testManager(t)
	var runs atomic.Int32
	task := Task{
		Name:        "panicky",
		NewPayload:  func() any { return &echoPayload{} },
		MaxAttempts: 1,
		Run: func(ctx context.Context, payload any) (any, error) {
			runs.Add(1)
			panic("boom")
		},
	}
	if err := mgr.Register(task); err != nil {
		t.Fatalf("register: %v", err)
	}
	var echoRuns atomic.Int32
	if err := mgr.Register(echoTask(&echoRuns, nil)); err != nil {
		t.Fatalf("register: %v", err)
	}
	mgr.Start()
	defer mgr.Stop(context.Background())

	id, _ := mgr.Submit(context.Background(), "panicky", json.RawMessage(`{"topic":"Optics"}`))
	job := waitForTerminal(t, mgr, id)
	if job.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}

	// The pool keeps serving jobs afterwards.
	id2, err := mgr.Submit(context.Background(), "echo", json.RawMessage(`{"topic":"Waves"}`))
	if err != nil {
		t.Fatalf("submit after panic: %v", err)
	}
	if job := waitForTerminal(t, mgr, id2); job.Status != StatusCompleted {
		t.Fatalf("worker did not survive the panic: %q", job.Status)
	}
}

func TestGetJob_UnknownID(t *testing.T) {
	mgr := testManager(t)

	job, err := mgr.GetJob(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != StatusUnknown {
		t.Fatalf("status = %q, want unknown", job.Status)
	}
	if job.Result != nil {
		t.Fatalf("result should be null, got %s", job.Result)
	}
}

func TestGetJob_ResultHiddenUntilTerminal(t *testing.T) {
	// Without Start the job stays queued.
	mgr := testManager(t)
	var runs atomic.Int32
	if err := mgr.Register(echoTask(&runs, nil)); err != nil {
		t.Fatalf("register: %v", err)
	}

	id, err := mgr.Submit(context.Background(), "echo", json.RawMessage(`{"topic":"Optics"}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	job, err := mgr.GetJob(context.Background(), id)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Status != StatusQueued {
		t.Fatalf("status = %q, want queued", job.Status)
	}
	if job.Result != nil {
		t.Fatalf("result must be null until terminal, got %s", job.Result)
	}
}

func TestRunSync(t *testing.T) {
	mgr := testManager(t)
	var runs atomic.Int32
	if err := mgr.Register(echoTask(&runs, nil)); err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := mgr.RunSync(context.Background(), "echo", json.RawMessage(`{"topic":"Optics"}`))
	if err != nil {
		t.Fatalf("run sync: %v", err)
	}
	m, ok := result.(map[string]string)
	if !ok || m["topic"] != "Optics" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestRunSync_SharesRetryEnvelope(t *testing.T) {
	mgr := testManager(t)
	var runs atomic.Int32
	task := echoTask(&runs, func(int32) error {
		return fmt.Errorf("transient: %w", &llm.ErrProviderUnavailable{})
	})
	if err := mgr.Register(task); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := mgr.RunSync(context.Background(), "echo", json.RawMessage(`{"topic":"Optics"}`))
	if err == nil {
		t.Fatal("expected error")
	}
	if runs.Load() != 3 {
		t.Fatalf("run count = %d, want 3", runs.Load())
	}
}
