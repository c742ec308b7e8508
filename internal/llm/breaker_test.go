package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

type flakyGenerator struct {
	err error
}

func (f *flakyGenerator) Complete(ctx context.Context, system, user string) (string, error) {
	_ = ctx
	_ = system
	_ = user
	if f.err != nil {
		return "", f.err
	}
	return "ok", nil
}

func (f *flakyGenerator) CompleteJSON(ctx context.Context, system, user string) (json.RawMessage, error) {
	_ = ctx
	_ = system
	_ = user
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{}`), nil
}

func TestBreakerDisabledReturnsNext(t *testing.T) {
	next := &flakyGenerator{}
	got := NewBreakerGenerator(next, BreakerSettings{Enabled: false})
	if got != Generator(next) {
		t.Fatalf("expected disabled breaker to return the wrapped generator unchanged")
	}
}

func TestBreakerTripsAfterFailures(t *testing.T) {
	next := &flakyGenerator{err: errors.New("provider down")}
	gen := NewBreakerGenerator(next, BreakerSettings{
		Enabled:      true,
		MinRequests:  3,
		FailureRatio: 0.6,
		OpenTimeout:  time.Minute,
	})

	for i := 0; i < 3; i++ {
		if _, err := gen.Complete(context.Background(), "sys", "user"); err == nil {
			t.Fatalf("expected failure from provider")
		}
	}

	_, err := gen.Complete(context.Background(), "sys", "user")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected circuit open after repeated failures, got %v", err)
	}
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	next := &flakyGenerator{}
	gen := NewBreakerGenerator(next, BreakerSettings{
		Enabled:      true,
		MinRequests:  3,
		FailureRatio: 0.6,
		OpenTimeout:  time.Minute,
	})

	reply, err := gen.Complete(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != "ok" {
		t.Fatalf("expected reply ok, got %q", reply)
	}

	raw, err := gen.CompleteJSON(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if string(raw) != `{}` {
		t.Fatalf("expected {} reply, got %s", raw)
	}
}
