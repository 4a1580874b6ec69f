package narrative

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/shelfmind-backend/internal/observability"
	"github.com/yungbote/shelfmind-backend/internal/platform/envutil"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

// LLM is the structured-output text generation collaborator.
type LLM interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
}

type Config struct {
	// Timeout bounds every LLM call; a timeout is treated like any other failure.
	Timeout time.Duration
	// BreakerFailures consecutive failures open the breaker for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Timeout:         envutil.Duration("NARRATIVE_TIMEOUT_SECONDS", time.Second, 20*time.Second),
		BreakerFailures: uint32(envutil.Int("NARRATIVE_BREAKER_FAILURES", 5)),
		BreakerCooldown: envutil.Duration("NARRATIVE_BREAKER_COOLDOWN_SECONDS", time.Second, 30*time.Second),
	}
}

// Generator produces narrative output per Kind and never returns an error: every failure
// resolves to the kind's static fallback with Degraded set.
type Generator struct {
	log     *logger.Logger
	llm     LLM
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[Output]
}

// errCallerGone marks a call abandoned because the caller's own context ended. It says nothing
// about the LLM's health, so the breaker ignores it.
var errCallerGone = errors.New("narrative: caller context done")

// NewGenerator accepts a nil llm; every call then degrades to the fallback.
func NewGenerator(baseLog *logger.Logger, llm LLM, cfg Config) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}
	log := baseLog.With("service", "NarrativeGenerator")
	g := &Generator{log: log, llm: llm, timeout: cfg.Timeout}
	g.breaker = gobreaker.NewCircuitBreaker[Output](gobreaker.Settings{
		Name:        "narrative-llm",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, errCallerGone)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("LLM circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return g
}

func (g *Generator) Generate(ctx context.Context, kind Kind, in Input) Output {
	ctx, span := observability.StartSpan(ctx, "narrative.generate", attribute.String("narrative.kind", string(kind)))
	defer span.End()

	spec, ok := kindSpecs[kind]
	if !ok {
		return g.degrade(kind, in, CauseUnknownKind, nil)
	}
	if g.llm == nil {
		return g.degrade(kind, in, CauseUnconfigured, nil)
	}

	user := spec.user(in)
	// Parsing runs inside the breaker: a response that fails validation counts against the
	// upstream like an outage does.
	out, err := g.breaker.Execute(func() (Output, error) {
		obj, err := g.call(ctx, spec, user)
		if err != nil {
			return Output{}, err
		}
		return spec.parse(obj, in)
	})
	if err != nil {
		span.RecordError(err)
		return g.degrade(kind, in, causeOf(err), err)
	}
	out.Kind = kind
	span.SetAttributes(attribute.Bool("narrative.degraded", false))
	return out
}

type llmResult struct {
	obj map[string]any
	err error
}

// call bounds the LLM call by g.timeout even if the collaborator ignores ctx.
func (g *Generator) call(ctx context.Context, spec kindSpec, user string) (map[string]any, error) {
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan llmResult, 1)
	go func() {
		obj, err := g.llm.GenerateJSON(cctx, spec.system, user, spec.schemaName, spec.schema)
		done <- llmResult{obj: obj, err: err}
	}()
	select {
	case r := <-done:
		if r.err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", errCallerGone, ctx.Err())
		}
		if r.err == nil && len(r.obj) == 0 {
			return nil, errors.New("empty llm response")
		}
		return r.obj, r.err
	case <-cctx.Done():
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", errCallerGone, ctx.Err())
		}
		return nil, cctx.Err()
	}
}

func (g *Generator) degrade(kind Kind, in Input, cause string, err error) Output {
	kv := []any{"kind", string(kind), "cause", cause}
	if err != nil {
		kv = append(kv, "error", err.Error())
	}
	g.log.Warn("Narrative degraded to static fallback", kv...)
	observability.Current().IncNarrativeDegraded(string(kind), cause)

	out := fallback(kind, in)
	out.Cause = cause
	return out
}

func causeOf(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return CauseBreakerOpen
	case errors.Is(err, errCallerGone):
		return CauseCanceled
	case errors.Is(err, ErrInvalidResponse):
		return CauseInvalidResponse
	case errors.Is(err, context.DeadlineExceeded):
		return CauseTimeout
	default:
		return CauseUpstream
	}
}
