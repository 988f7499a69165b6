package llm

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggingProvider is a decorator that records every LLM call with purpose,
// latency, token usage, and outcome.
type LoggingProvider struct {
	inner Provider
	log   *logrus.Logger
}

// WithLogging wraps a Provider with structured request logging.
func WithLogging(p Provider, log *logrus.Logger) Provider {
	return &LoggingProvider{inner: p, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	fields := logrus.Fields{
		"purpose":    PurposeFrom(ctx),
		"model":      l.inner.ModelID(),
		"latency_ms": time.Since(start).Milliseconds(),
		"structured": req.Schema != nil,
	}
	if req.Model != "" {
		fields["model"] = req.Model
	}
	if resp != nil {
		fields["model"] = resp.Model
		fields["input_tokens"] = resp.Usage.InputTokens
		fields["output_tokens"] = resp.Usage.OutputTokens
	}

	if err != nil {
		l.log.WithFields(fields).WithError(err).Warn("llm request failed")
	} else {
		l.log.WithFields(fields).Debug("llm request completed")
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
