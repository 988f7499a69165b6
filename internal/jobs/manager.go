package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/prepforge/prepforge/internal/llm"
)

// Config tunes the queue runtime.
type Config struct {
	// Workers is the number of concurrent job executors.
	Workers int

	// QueueSize bounds the backlog of accepted-but-not-started jobs.
	QueueSize int

	// Retention is how long terminal jobs are kept before the sweeper
	// removes them.
	Retention time.Duration

	// SweepInterval is how often the retention sweeper runs.
	SweepInterval time.Duration
}

// DefaultConfig returns the runtime defaults. Retention matches the 24h
// result expiry clients are told to expect.
func DefaultConfig() Config {
	return Config{
		Workers:       4,
		QueueSize:     64,
		Retention:     24 * time.Hour,
		SweepInterval: time.Hour,
	}
}

var (
	// ErrUnknownTask is returned when a task name is not registered.
	ErrUnknownTask = errors.New("unknown task")

	// ErrInvalidPayload is returned when a payload fails to decode or
	// validate against the task's payload type.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrQueueFull is returned when the backlog is at capacity. The job
	// is recorded as failed so its id still resolves.
	ErrQueueFull = errors.New("job queue is full")
)

type queued struct {
	jobID   string
	task    Task
	payload any
}

// Manager runs tasks on a fixed worker pool and owns all job status
// transitions. Jobs share no mutable state: each execution receives its
// own decoded payload and produces its own result.
type Manager struct {
	store    Store
	cfg      Config
	log      *logrus.Logger
	validate *validator.Validate

	mu    sync.RWMutex
	tasks map[string]Task

	queue  chan queued
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewManager creates a Manager over the given store.
func NewManager(store Store, cfg Config, log *logrus.Logger) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	return &Manager{
		store:    store,
		cfg:      cfg,
		log:      log,
		validate: validator.New(),
		tasks:    make(map[string]Task),
		queue:    make(chan queued, cfg.QueueSize),
	}
}

// Register adds a task definition. Task names must be unique.
func (m *Manager) Register(task Task) error {
	if task.Name == "" || task.NewPayload == nil || task.Run == nil {
		return fmt.Errorf("task registration requires a name, payload constructor and run function")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tasks[task.Name]; exists {
		return fmt.Errorf("task %q already registered", task.Name)
	}
	m.tasks[task.Name] = task
	return nil
}

// TaskNames returns the registered task names for route construction.
func (m *Manager) TaskNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.tasks))
	for name := range m.tasks {
		names = append(names, name)
	}
	return names
}

// Start launches the worker pool and the retention sweeper.
func (m *Manager) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	for i := 0; i < m.cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker(ctx)
	}

	if m.cfg.Retention > 0 && m.cfg.SweepInterval > 0 {
		m.wg.Add(1)
		go m.sweeper(ctx)
	}
}

// Stop drains the pool. In-flight jobs run to completion unless the
// given context expires first.
func (m *Manager) Stop(ctx context.Context) {
	if m.cancel != nil {
		m.cancel()
	}
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		m.log.Warn("job manager stopped before all workers drained")
	}
}

// decodePayload produces a validated payload value for the task.
func (m *Manager) decodePayload(task Task, raw json.RawMessage) (any, error) {
	payload := task.NewPayload()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, payload); err != nil {
			return nil, fmt.Errorf("%w for task %q: %v", ErrInvalidPayload, task.Name, err)
		}
	}
	if err := m.validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w for task %q: %v", ErrInvalidPayload, task.Name, err)
	}
	return payload, nil
}

func (m *Manager) task(name string) (Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	task, ok := m.tasks[name]
	if !ok {
		return Task{}, fmt.Errorf("%w %q", ErrUnknownTask, name)
	}
	return task, nil
}

// Submit validates the payload, persists a queued job, and hands it to
// the pool. The returned identifier is immediately pollable.
func (m *Manager) Submit(ctx context.Context, taskName string, raw json.RawMessage) (string, error) {
	task, err := m.task(taskName)
	if err != nil {
		return "", err
	}

	payload, err := m.decodePayload(task, raw)
	if err != nil {
		return "", err
	}

	now := time.Now()
	job := &Job{
		ID:        uuid.New().String(),
		Task:      task.Name,
		Payload:   raw,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Create(ctx, job); err != nil {
		return "", err
	}

	select {
	case m.queue <- queued{jobID: job.ID, task: task, payload: payload}:
	default:
		if err := m.store.Fail(ctx, job.ID, ErrQueueFull.Error(), 0); err != nil {
			m.log.WithError(err).WithField("job_id", job.ID).Error("failed to record queue-full failure")
		}
		return "", ErrQueueFull
	}

	m.log.WithFields(logrus.Fields{"job_id": job.ID, "task": task.Name}).Info("job queued")
	return job.ID, nil
}

// RunSync executes the task in the caller's context, through the same
// retry envelope queued execution uses.
func (m *Manager) RunSync(ctx context.Context, taskName string, raw json.RawMessage) (any, error) {
	task, err := m.task(taskName)
	if err != nil {
		return nil, err
	}
	payload, err := m.decodePayload(task, raw)
	if err != nil {
		return nil, err
	}
	result, _, err := m.execute(ctx, task, payload)
	return result, err
}

// GetJob returns the job for polling. Unknown identifiers yield a job
// with StatusUnknown rather than an error: expiry and never-seen are
// indistinguishable to the caller.
func (m *Manager) GetJob(ctx context.Context, id string) (*Job, error) {
	job, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrJobNotFound) {
		return &Job{ID: id, Status: StatusUnknown}, nil
	}
	if err != nil {
		return nil, err
	}
	// Results are visible only in terminal states.
	if !job.Status.Terminal() {
		job.Result = nil
	}
	return job, nil
}

func (m *Manager) worker(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-m.queue:
			m.run(ctx, item)
		}
	}
}

func (m *Manager) run(ctx context.Context, item queued) {
	log := m.log.WithFields(logrus.Fields{"job_id": item.jobID, "task": item.task.Name})

	if err := m.store.MarkRunning(ctx, item.jobID); err != nil {
		log.WithError(err).Error("failed to mark job running")
	}
	log.Info("job started")

	result, attempts, err := m.execute(ctx, item.task, item.payload)
	if err != nil {
		diag := fmt.Sprintf("task %s failed after %d attempt(s): %v", item.task.Name, attempts, err)
		if serr := m.store.Fail(ctx, item.jobID, diag, attempts); serr != nil {
			log.WithError(serr).Error("failed to record job failure")
		}
		log.WithError(err).WithField("attempts", attempts).Warn("job failed")
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		diag := fmt.Sprintf("task %s produced an unserializable result: %v", item.task.Name, err)
		if serr := m.store.Fail(ctx, item.jobID, diag, attempts); serr != nil {
			log.WithError(serr).Error("failed to record job failure")
		}
		return
	}
	if serr := m.store.Complete(ctx, item.jobID, raw, attempts); serr != nil {
		log.WithError(serr).Error("failed to record job completion")
		return
	}
	log.WithField("attempts", attempts).Info("job completed")
}

// execute is the retry envelope: every attempt runs the task from scratch,
// bounded by the task timeout, until success, a non-retryable error, or
// the attempt ceiling.
func (m *Manager) execute(ctx context.Context, task Task, payload any) (any, int, error) {
	max := task.maxAttempts()
	var lastErr error

	for attempt := 1; attempt <= max; attempt++ {
		result, err := m.attempt(ctx, task, payload)
		if err == nil {
			return result, attempt, nil
		}
		lastErr = err

		if !Retryable(err) {
			return nil, attempt, err
		}
		if attempt == max {
			return nil, attempt, lastErr
		}

		m.log.WithFields(logrus.Fields{
			"task":    task.Name,
			"attempt": attempt,
			"max":     max,
		}).WithError(err).Warn("attempt failed, retrying")

		select {
		case <-ctx.Done():
			return nil, attempt, ctx.Err()
		case <-time.After(task.RetryDelay):
		}
	}
	return nil, max, lastErr
}

// attempt runs one execution with the task timeout and panic isolation:
// a panicking task fails its job, never a worker.
func (m *Manager) attempt(ctx context.Context, task Task, payload any) (result any, err error) {
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", task.Name, r)
		}
	}()

	return task.Run(ctx, payload)
}

// Retryable classifies an attempt error. Validation failures of LLM
// output and transport failures are retryable; a missing static input is
// not, since retrying cannot supply it.
func Retryable(err error) bool {
	var cfgErr *llm.ErrConfiguration
	if errors.As(err, &cfgErr) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

func (m *Manager) sweeper(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-m.cfg.Retention)
			n, err := m.store.DeleteExpired(ctx, cutoff)
			if err != nil {
				m.log.WithError(err).Error("retention sweep failed")
				continue
			}
			if n > 0 {
				m.log.WithField("removed", n).Info("expired jobs removed")
			}
		}
	}
}
