package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/neurochat-backend/internal/platform/ctxutil"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

// Observer records the outcome of each model call. outcome is "ok" or an ErrorKind.
type Observer interface {
	ObserveModelCall(provider, op, outcome string, dur time.Duration)
}

type instrumented struct {
	base    Client
	log     *logger.Logger
	timeout time.Duration
	tracer  trace.Tracer
	obs     Observer
}

// Instrument wraps base with a per-call timeout (0 disables it), tracing spans and
// error classification. Failures are logged on their own line with the error kind.
// obs may be nil.
func Instrument(base Client, log *logger.Logger, timeout time.Duration, obs Observer) Client {
	return &instrumented{
		base:    base,
		log:     log.With("component", "llm", "provider", base.Provider()),
		timeout: timeout,
		tracer:  otel.Tracer("neurochat/llm"),
		obs:     obs,
	}
}

func (c *instrumented) Provider() string { return c.base.Provider() }

func (c *instrumented) Generate(ctx context.Context, prompt string) (Reply, error) {
	ctx, span, cancel := c.begin(ctx, "llm.generate", prompt)
	defer cancel()
	defer span.End()

	start := time.Now()
	reply, err := c.base.Generate(ctx, prompt)
	return c.finish(ctx, span, "generate", start, reply, err)
}

func (c *instrumented) Stream(ctx context.Context, prompt string, onDelta DeltaFunc) (Reply, error) {
	ctx, span, cancel := c.begin(ctx, "llm.stream", prompt)
	defer cancel()
	defer span.End()

	start := time.Now()
	reply, err := c.base.Stream(ctx, prompt, onDelta)
	return c.finish(ctx, span, "stream", start, reply, err)
}

func (c *instrumented) begin(ctx context.Context, name string, prompt string) (context.Context, trace.Span, context.CancelFunc) {
	ctx = ctxutil.Default(ctx)
	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	ctx, span := c.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("llm.provider", c.base.Provider()),
		attribute.Int("llm.prompt_chars", len(prompt)),
	))
	return ctx, span, cancel
}

func (c *instrumented) finish(ctx context.Context, span trace.Span, op string, start time.Time, reply Reply, err error) (Reply, error) {
	elapsed := time.Since(start)
	if err != nil {
		le := Classify(c.base.Provider(), err)
		c.observe(op, string(le.Kind), elapsed)
		span.RecordError(le)
		span.SetStatus(otelcodes.Error, string(le.Kind))
		span.SetAttributes(attribute.String("llm.error_kind", string(le.Kind)))
		fields := append([]interface{}{"kind", le.Kind, "duration_ms", elapsed.Milliseconds(), "error", le.Err}, ctxutil.LogFields(ctx)...)
		c.log.Warn("model call failed", fields...)
		return Reply{}, le
	}
	span.SetAttributes(
		attribute.String("llm.reply_kind", reply.Kind.String()),
		attribute.Int64("llm.duration_ms", elapsed.Milliseconds()),
	)
	c.observe(op, "ok", elapsed)
	c.log.Debug("model call ok", "kind", reply.Kind.String(), "duration_ms", elapsed.Milliseconds())
	return reply, nil
}

func (c *instrumented) observe(op, outcome string, dur time.Duration) {
	if c.obs != nil {
		c.obs.ObserveModelCall(c.base.Provider(), op, outcome, dur)
	}
}
