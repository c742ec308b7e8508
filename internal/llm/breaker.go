package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sony/gobreaker/v2"

	"cvpilot-backend/internal/shared/telemetry"
)

// BreakerSettings configures the generation circuit breaker.
type BreakerSettings struct {
	Enabled      bool
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
}

// BreakerGenerator wraps a Generator with circuit breaker protection so a
// misbehaving provider fails fast instead of piling up blocked pipelines.
type BreakerGenerator struct {
	next   Generator
	textCB *gobreaker.CircuitBreaker[string]
	jsonCB *gobreaker.CircuitBreaker[json.RawMessage]
}

// NewBreakerGenerator wraps next with circuit breakers. Returns next unchanged
// when the breaker is disabled.
func NewBreakerGenerator(next Generator, cfg BreakerSettings) Generator {
	if !cfg.Enabled {
		return next
	}

	readyToTrip := func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio
	}
	onStateChange := func(name string, from gobreaker.State, to gobreaker.State) {
		telemetry.Info("llm.breaker.state", map[string]any{
			"name": name,
			"from": from.String(),
			"to":   to.String(),
		})
	}

	return &BreakerGenerator{
		next: next,
		textCB: gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name:          "llm-text",
			Timeout:       cfg.OpenTimeout,
			ReadyToTrip:   readyToTrip,
			OnStateChange: onStateChange,
		}),
		jsonCB: gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
			Name:          "llm-json",
			Timeout:       cfg.OpenTimeout,
			ReadyToTrip:   readyToTrip,
			OnStateChange: onStateChange,
		}),
	}
}

func (b *BreakerGenerator) Complete(ctx context.Context, system, user string) (string, error) {
	return b.textCB.Execute(func() (string, error) {
		return b.next.Complete(ctx, system, user)
	})
}

func (b *BreakerGenerator) CompleteJSON(ctx context.Context, system, user string) (json.RawMessage, error) {
	return b.jsonCB.Execute(func() (json.RawMessage, error) {
		return b.next.CompleteJSON(ctx, system, user)
	})
}

var _ Generator = (*BreakerGenerator)(nil)
