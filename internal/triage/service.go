package triage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/acuity/internal/acuity"
)

const tracerName = "github.com/linnemanlabs/acuity/internal/triage"

// notifyTimeout bounds a single critical-case notification.
const notifyTimeout = 15 * time.Second

// Notifier delivers critical evaluations to humans.
type Notifier interface {
	Notify(ctx context.Context, ev *Evaluation) error
}

// Hooks observe evaluations. Any field may be nil.
type Hooks struct {
	OnEvaluate func(ev *Evaluation)
	OnNotify   func(ev *Evaluation, err error)
}

// Service is the business boundary for triage operations.
type Service struct {
	engine   *acuity.Engine
	logger   log.Logger
	hooks    Hooks
	notifier Notifier
	latency  time.Duration

	inflight sync.WaitGroup
}

// NewService creates a triage service. notifier may be nil. latency is an
// artificial delay applied before each evaluation; it never changes the
// outcome.
func NewService(engine *acuity.Engine, logger log.Logger, hooks Hooks, notifier Notifier, latency time.Duration) *Service {
	if engine == nil {
		panic(xerrors.New("acuity engine is required"))
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		engine:   engine,
		logger:   logger,
		hooks:    hooks,
		notifier: notifier,
		latency:  latency,
	}
}

// Evaluate runs the engine for in. The only error is ctx ending during the
// configured latency.
func (s *Service) Evaluate(ctx context.Context, in acuity.Input) (*Evaluation, error) {
	if err := s.pause(ctx); err != nil {
		return nil, err
	}

	id := ulid.Make().String()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "acuity.evaluate", trace.WithAttributes(
		attribute.String("acuity.evaluation.id", id),
	))
	defer span.End()

	start := time.Now()
	n := acuity.Normalize(in)
	out := s.engine.EvaluateNormalized(&n)

	ev := &Evaluation{
		ID:              id,
		Outcome:         out,
		AgeInYears:      in.AgeInYears,
		DefaultedVitals: n.Defaulted(),
		EvaluatedAt:     start,
		Duration:        time.Since(start).Seconds(),
	}

	span.SetAttributes(
		attribute.Int("acuity.level", int(out.Level)),
		attribute.String("acuity.rule", out.Rule),
		attribute.Float64("acuity.confidence", out.Confidence),
		attribute.String("acuity.vitals_defaulted", strings.Join(ev.DefaultedVitals, ",")),
	)

	s.logger.Info(ctx, "triage evaluated",
		"evaluation_id", id,
		"level", out.Level.Code(),
		"rule", out.Rule,
		"trigger", out.Trigger,
		"confidence", out.Confidence,
		"age", in.AgeInYears,
		"vitals_defaulted", ev.DefaultedVitals,
	)

	if s.hooks.OnEvaluate != nil {
		s.hooks.OnEvaluate(ev)
	}

	if s.notifier != nil && ev.Critical() {
		s.inflight.Add(1)
		// detached from the request so a client hanging up does not cancel delivery
		go s.notify(context.WithoutCancel(ctx), ev)
	}

	return ev, nil
}

// Wait blocks until in-flight notifications finish or ctx ends.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) pause(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) notify(ctx context.Context, ev *Evaluation) {
	defer s.inflight.Done()

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	err := s.notifier.Notify(ctx, ev)
	if err != nil {
		s.logger.Error(ctx, err, "critical notification failed", "evaluation_id", ev.ID)
	}
	if s.hooks.OnNotify != nil {
		s.hooks.OnNotify(ev, err)
	}
}
