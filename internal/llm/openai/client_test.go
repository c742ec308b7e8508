package openai

import "testing"

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "gpt-4o"); err == nil {
		t.Fatalf("expected error without api key")
	}
	if _, err := NewClient("sk-test", ""); err == nil {
		t.Fatalf("expected error without model")
	}
	if _, err := NewClient("sk-test", "gpt-4o"); err != nil {
		t.Fatalf("NewClient: %v", err)
	}
}

func TestNewClientTimeoutOverride(t *testing.T) {
	t.Setenv("OPENAI_TIMEOUT_SECONDS", "30")
	c, err := NewClient("sk-test", "gpt-4o")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if got := c.httpClient.Timeout.Seconds(); got != 30 {
		t.Fatalf("expected 30s timeout, got %v", got)
	}

	t.Setenv("OPENAI_TIMEOUT_SECONDS", "garbage")
	c, err = NewClient("sk-test", "gpt-4o")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if got := c.httpClient.Timeout.Seconds(); got != 120 {
		t.Fatalf("expected default 120s timeout on bad override, got %v", got)
	}
}
