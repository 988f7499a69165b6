// Package app wires the service together: configuration, LLM provider,
// job store, task registry, and the HTTP listener.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prepforge/prepforge/internal/ask"
	"github.com/prepforge/prepforge/internal/config"
	"github.com/prepforge/prepforge/internal/jobs"
	"github.com/prepforge/prepforge/internal/learningpath"
	"github.com/prepforge/prepforge/internal/llm"
	"github.com/prepforge/prepforge/internal/questiongen"
	"github.com/prepforge/prepforge/internal/server"
	"github.com/prepforge/prepforge/internal/sketch"
)

// App is the assembled service.
type App struct {
	cfg     *config.Config
	log     *logrus.Logger
	store   *jobs.SQLiteStore
	manager *jobs.Manager
	http    *http.Server
}

// New builds the service from configuration. Fails fast on a missing
// credential for the selected provider rather than on the first job.
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	if err := cfg.LLM.Validate(); err != nil {
		return nil, err
	}
	provider, err := llm.NewProvider(ctx, cfg.LLM, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build LLM provider: %w", err)
	}

	store, err := jobs.OpenStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open job store: %w", err)
	}

	manager := jobs.NewManager(store, cfg.Jobs, log)
	for _, task := range serviceTasks(provider, cfg.LLM, log) {
		if err := manager.Register(task); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to register task %q: %w", task.Name, err)
		}
	}

	return &App{
		cfg:     cfg,
		log:     log,
		store:   store,
		manager: manager,
		http: &http.Server{
			Addr:    cfg.Addr(),
			Handler: server.New(manager, log).Router(),
		},
	}, nil
}

// serviceTasks binds each generation workflow to a route name. Model
// hints come from the LLM config so env overrides reach every workflow.
// Timeouts scale with each workflow's call count: the learning-path
// pipeline makes O(topics × concepts) LLM calls, the others one or two.
func serviceTasks(provider llm.Provider, llmCfg llm.Config, log *logrus.Logger) []jobs.Task {
	pathCfg := learningpath.DefaultConfig()
	pathCfg.SearchModel = llmCfg.Groq.SearchModel
	pathCfg.ReasoningModel = llmCfg.Groq.ReasoningModel
	pipeline := learningpath.New(provider, pathCfg, log)

	questionCfg := questiongen.DefaultConfig()
	questionCfg.Model = llmCfg.Groq.ReasoningModel
	questions := questiongen.New(provider, questionCfg)

	sketchCfg := sketch.DefaultConfig()
	sketchCfg.Model = llmCfg.Groq.ReasoningModel
	sketches := sketch.New(provider, sketchCfg)

	return []jobs.Task{
		{
			Name:       "create-learning-path",
			NewPayload: func() any { return &learningpath.Request{} },
			Run: func(ctx context.Context, payload any) (any, error) {
				return pipeline.Run(ctx, *payload.(*learningpath.Request))
			},
			Timeout:    5 * time.Minute,
			RetryDelay: 15 * time.Second,
		},
		{
			Name:       "generate-question",
			NewPayload: func() any { return &questiongen.Payload{} },
			Run: func(ctx context.Context, payload any) (any, error) {
				return questions.Generate(ctx, *payload.(*questiongen.Payload))
			},
			Timeout:    2 * time.Minute,
			RetryDelay: 15 * time.Second,
		},
		{
			Name:       "generate-sketch-prompt",
			NewPayload: func() any { return &sketch.Payload{} },
			Run: func(ctx context.Context, payload any) (any, error) {
				return sketches.Generate(ctx, *payload.(*sketch.Payload))
			},
			Timeout:    time.Minute,
			RetryDelay: 10 * time.Second,
		},
		{
			Name:       "ask",
			NewPayload: func() any { return &ask.Payload{} },
			Run: func(ctx context.Context, payload any) (any, error) {
				return ask.Run(ctx, provider, *payload.(*ask.Payload))
			},
			Timeout:    time.Minute,
			RetryDelay: 10 * time.Second,
		},
	}
}

// Run serves HTTP until ctx is cancelled, then drains workers and shuts
// the listener down within the configured timeout.
func (a *App) Run(ctx context.Context) error {
	a.manager.Start()

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", a.http.Addr).Info("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.manager.Stop(context.Background())
		a.store.Close()
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	err := a.http.Shutdown(shutdownCtx)
	a.manager.Stop(shutdownCtx)
	if closeErr := a.store.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
