package llm

import (
	"encoding/json"
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrParseFailure indicates the LLM returned text that is not
// syntactically valid JSON.
type ErrParseFailure struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrParseFailure) Error() string {
	return fmt.Sprintf("malformed LLM response: %v", e.Err)
}

func (e *ErrParseFailure) Unwrap() error { return e.Err }

// ErrSchemaFailure indicates the LLM returned JSON that parses but does
// not conform to the requested schema: missing required fields, wrong
// types, or constraint violations. The whole value is rejected; callers
// never see a partially valid result.
type ErrSchemaFailure struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrSchemaFailure) Error() string {
	return fmt.Sprintf("schema violation in LLM response: %v", e.Err)
}

func (e *ErrSchemaFailure) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
// Covers network errors, timeouts, and 5xx responses.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// ErrConfiguration indicates a required credential or input is missing.
// Never retried: re-attempting cannot supply a missing static input.
type ErrConfiguration struct {
	Reason string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}
