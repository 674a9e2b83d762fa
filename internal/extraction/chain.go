// Package extraction runs the document reading strategies in precedence
// order (MRZ, printed text, vision model) and folds their records into one.
package extraction

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"docverify/internal/document/domain"
	"docverify/pkg/requestcontext"
)

// Attempt records what one strategy produced.
type Attempt struct {
	Strategy string        `json:"strategy"`
	Format   domain.Format `json:"format,omitempty"`
	Valid    bool          `json:"valid"`
	Fields   int           `json:"fields"`
	Used     bool          `json:"used"`
	Skipped  bool          `json:"skipped,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"-"`
}

// Result is the folded record and the attempts behind it.
type Result struct {
	Identity *domain.ExtractedIdentity
	Attempts []Attempt
}

// Sources lists the strategies whose records were folded in.
func (r Result) Sources() []string {
	var out []string
	for _, a := range r.Attempts {
		if a.Used {
			out = append(out, a.Strategy)
		}
	}
	return out
}

// Observer receives per-strategy outcomes.
type Observer interface {
	ObserveStrategy(strategy, outcome string, d time.Duration)
}

// Chain evaluates local strategies concurrently, folds them in order and
// calls the fallback only when the folded record still needs it.
type Chain struct {
	local    []Strategy
	fallback Strategy
	escalate func(*domain.ExtractedIdentity) bool
	logger   *slog.Logger
	tracer   trace.Tracer
	observer Observer
}

// Option configures a Chain.
type Option func(*Chain)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) { c.logger = logger }
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Chain) { c.tracer = t }
}

func WithObserver(o Observer) Option {
	return func(c *Chain) { c.observer = o }
}

// WithEscalation decides when the fallback runs. The default runs it for an
// invalid or incomplete record.
func WithEscalation(fn func(*domain.ExtractedIdentity) bool) Option {
	return func(c *Chain) { c.escalate = fn }
}

// WithFallback sets the strategy tried last, typically VisionStrategy.
func WithFallback(s Strategy) Option {
	return func(c *Chain) { c.fallback = s }
}

// New builds a chain over local strategies, highest precedence first.
func New(local []Strategy, opts ...Option) *Chain {
	c := &Chain{
		local:    local,
		escalate: needsMoreEvidence,
		logger:   slog.Default(),
		tracer:   otel.Tracer("docverify/extraction"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default is MRZ then visual, with fallback as the last resort.
func Default(fallback Strategy, opts ...Option) *Chain {
	return New([]Strategy{MRZStrategy(nil), VisualStrategy()}, append([]Option{WithFallback(fallback)}, opts...)...)
}

// Run never fails: with nothing readable it returns an invalid record.
func (c *Chain) Run(ctx context.Context, in Input) Result {
	ctx, span := c.tracer.Start(ctx, "extraction.Run",
		trace.WithAttributes(attribute.String("document.declared_type", in.DocumentType)))
	defer span.End()

	now := requestcontext.Now(ctx)
	records := make([]*domain.ExtractedIdentity, len(c.local))
	attempts := make([]Attempt, len(c.local))

	var g errgroup.Group
	for i, s := range c.local {
		g.Go(func() error {
			records[i], attempts[i] = c.attempt(ctx, s, in, now)
			return nil
		})
	}
	_ = g.Wait()

	var acc *domain.ExtractedIdentity
	fold := func(rec *domain.ExtractedIdentity, idx int) {
		var f folding
		acc, f = combine(acc, rec)
		switch f {
		case replaced:
			for j := range attempts {
				attempts[j].Used = false
			}
			attempts[idx].Used = true
		case merged:
			attempts[idx].Used = true
		}
	}
	for i := range c.local {
		if records[i] == nil || complete(acc, c.escalate) {
			continue
		}
		fold(records[i], i)
	}

	if c.fallback != nil && (acc == nil || c.escalate(acc)) {
		rec, a := c.attempt(ctx, c.fallback, in, now)
		attempts = append(attempts, a)
		if rec != nil {
			fold(rec, len(attempts)-1)
		}
	}

	if acc == nil {
		acc = domain.NewExtractedIdentity(domain.FormatVisual, domain.DocumentCNI, "")
	}
	span.SetAttributes(
		attribute.String("extraction.format", string(acc.Format())),
		attribute.Bool("extraction.valid", acc.Valid()),
		attribute.Int("extraction.fields", acc.PopulatedFields()),
	)
	c.logger.DebugContext(ctx, "extraction finished",
		"format", acc.Format(),
		"valid", acc.Valid(),
		"fields", acc.PopulatedFields(),
	)
	return Result{Identity: acc, Attempts: attempts}
}

func (c *Chain) attempt(ctx context.Context, s Strategy, in Input, now time.Time) (*domain.ExtractedIdentity, Attempt) {
	ctx, span := c.tracer.Start(ctx, "extraction."+s.Name())
	defer span.End()

	start := time.Now()
	rec, err := s.Extract(ctx, in, now)
	a := Attempt{Strategy: s.Name(), Duration: time.Since(start)}

	outcome := "extracted"
	switch {
	case errors.Is(err, ErrNoInput):
		a.Skipped = true
		outcome = "skipped"
	case err != nil:
		a.Error = err.Error()
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "strategy failed")
		c.logger.WarnContext(ctx, "extraction strategy failed",
			"strategy", s.Name(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	case rec != nil:
		a.Format = rec.Format()
		a.Valid = rec.Valid()
		a.Fields = rec.PopulatedFields()
		if !a.Valid {
			outcome = "invalid"
		}
		span.SetAttributes(
			attribute.String("extraction.format", string(a.Format)),
			attribute.Bool("extraction.valid", a.Valid),
		)
	}
	if c.observer != nil {
		c.observer.ObserveStrategy(s.Name(), outcome, a.Duration)
	}
	if err != nil {
		return nil, a
	}
	return rec, a
}

func needsMoreEvidence(r *domain.ExtractedIdentity) bool {
	return !r.Valid() || r.Incomplete()
}

func complete(acc *domain.ExtractedIdentity, escalate func(*domain.ExtractedIdentity) bool) bool {
	return acc != nil && acc.Valid() && !escalate(acc)
}

type folding int

const (
	kept folding = iota
	merged
	replaced
)

// combine folds next into the running record acc. Precedence belongs to
// acc: a valid acc only takes gaps from a valid next; a partial acc that
// read a surname is completed from next and revalidated; otherwise the
// valid or better-populated record wins.
func combine(acc, next *domain.ExtractedIdentity) (*domain.ExtractedIdentity, folding) {
	switch {
	case acc == nil:
		return next, replaced
	case acc.Valid():
		if !next.Valid() {
			return acc, kept
		}
		domain.Merge(acc, next)
		return acc, merged
	case acc.Surname != nil:
		domain.Merge(acc, next)
		acc.Validate()
		return acc, merged
	case next.Valid(), next.PopulatedFields() > acc.PopulatedFields():
		return next, replaced
	}
	return acc, kept
}
