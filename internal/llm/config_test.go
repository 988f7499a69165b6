package llm

import (
	"errors"
	"testing"
)

func TestConfigValidate_MissingKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "groq"
	cfg.Groq.APIKey = ""

	err := cfg.Validate()
	var cfgErr *ErrConfiguration
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ErrConfiguration, got %T: %v", err, err)
	}
}

func TestConfigValidate_MockNeedsNoKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfigValidate_UnknownProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"compound", "groq/compound"},
		{"oss-120b", "openai/gpt-oss-120b"},
		{"llama3-70b-8192", "llama3-70b-8192"},
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, groqModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
