package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"goa.design/clue/log"
)

type (
	// ClueLogger delegates to goa.design/clue/log, reading formatting and
	// debug settings from the context (log.Context / log.WithFormat).
	ClueLogger struct{}

	// OtelMetrics delegates counter/timer/gauge recording to an OTEL meter.
	OtelMetrics struct {
		meter metric.Meter
	}

	// OtelTracer delegates span creation to an OTEL tracer.
	OtelTracer struct {
		tracer trace.Tracer
	}

	otelSpan struct {
		span trace.Span
	}
)

const instrumentationName = "github.com/Nuntissura/Handshake-sub002/core"

// NewClueLogger constructs a Logger backed by goa.design/clue/log.
func NewClueLogger() Logger { return ClueLogger{} }

// NewOtelMetrics constructs a Metrics recorder backed by the global OTEL
// MeterProvider. Configure the provider before invoking core entry points.
func NewOtelMetrics() Metrics {
	return &OtelMetrics{meter: otel.Meter(instrumentationName)}
}

// NewOtelTracer constructs a Tracer backed by the global OTEL TracerProvider.
func NewOtelTracer() Tracer {
	return &OtelTracer{tracer: otel.Tracer(instrumentationName)}
}

func (ClueLogger) Debug(ctx context.Context, msg string, keyvals ...any) {
	log.Debug(ctx, append([]log.Fielder{log.KV{K: "msg", V: msg}}, kvToClue(keyvals)...)...)
}

func (ClueLogger) Info(ctx context.Context, msg string, keyvals ...any) {
	log.Info(ctx, append([]log.Fielder{log.KV{K: "msg", V: msg}}, kvToClue(keyvals)...)...)
}

func (ClueLogger) Warn(ctx context.Context, msg string, keyvals ...any) {
	fielders := []log.Fielder{log.KV{K: "msg", V: msg}, log.KV{K: "severity", V: "warning"}}
	log.Warn(ctx, append(fielders, kvToClue(keyvals)...)...)
}

func (ClueLogger) Error(ctx context.Context, msg string, keyvals ...any) {
	log.Error(ctx, nil, append([]log.Fielder{log.KV{K: "msg", V: msg}}, kvToClue(keyvals)...)...)
}

func (m *OtelMetrics) IncCounter(name string, value float64, tags ...string) {
	c, err := m.meter.Float64Counter(name)
	if err != nil {
		return
	}
	c.Add(context.Background(), value, metric.WithAttributes(tagsToAttrs(tags)...))
}

func (m *OtelMetrics) RecordTimer(name string, d time.Duration, tags ...string) {
	h, err := m.meter.Float64Histogram(name)
	if err != nil {
		return
	}
	h.Record(context.Background(), d.Seconds(), metric.WithAttributes(tagsToAttrs(tags)...))
}

func (m *OtelMetrics) RecordGauge(name string, value float64, tags ...string) {
	h, err := m.meter.Float64Histogram(name + "_gauge")
	if err != nil {
		return
	}
	h.Record(context.Background(), value, metric.WithAttributes(tagsToAttrs(tags)...))
}

func (t *OtelTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span) {
	newCtx, span := t.tracer.Start(ctx, name, opts...)
	return newCtx, &otelSpan{span: span}
}

func (t *OtelTracer) Span(ctx context.Context) Span {
	return &otelSpan{span: trace.SpanFromContext(ctx)}
}

func (s *otelSpan) End(opts ...trace.SpanEndOption)       { s.span.End(opts...) }
func (s *otelSpan) AddEvent(name string, attrs ...any)    { s.span.AddEvent(name, trace.WithAttributes(kvToAttrs(attrs)...)) }
func (s *otelSpan) SetStatus(c codes.Code, d string)      { s.span.SetStatus(c, d) }
func (s *otelSpan) RecordError(err error, opts ...trace.EventOption) { s.span.RecordError(err, opts...) }

func kvToClue(keyvals []any) []log.Fielder {
	var out []log.Fielder
	for i := 0; i+1 < len(keyvals); i += 2 {
		k, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		out = append(out, log.KV{K: k, V: keyvals[i+1]})
	}
	return out
}

func tagsToAttrs(tags []string) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for i := 0; i < len(tags); i += 2 {
		v := ""
		if i+1 < len(tags) {
			v = tags[i+1]
		}
		attrs = append(attrs, attribute.String(tags[i], v))
	}
	return attrs
}

func kvToAttrs(keyvals []any) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for i := 0; i+1 < len(keyvals); i += 2 {
		k, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		switch v := keyvals[i+1].(type) {
		case string:
			attrs = append(attrs, attribute.String(k, v))
		case int:
			attrs = append(attrs, attribute.Int(k, v))
		case int64:
			attrs = append(attrs, attribute.Int64(k, v))
		case float64:
			attrs = append(attrs, attribute.Float64(k, v))
		case bool:
			attrs = append(attrs, attribute.Bool(k, v))
		default:
			attrs = append(attrs, attribute.String(k, ""))
		}
	}
	return attrs
}
