package logger

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "captainhub-relay"

// Span attribute keys shared by the ingest and forwarding paths.
const (
	AttrWorkspaceID = attribute.Key("relay.workspace_id")
	AttrEventID     = attribute.Key("relay.event_id")
	AttrFingerprint = attribute.Key("relay.dedup_fingerprint")
	AttrBatchSize   = attribute.Key("relay.batch_size")
)

// SpanContext pairs a span with the context that carries it.
//
//	sc := logger.StartSpan(ctx, "ingest.batch")
//	defer sc.End()
//	ctx = sc.Context()
type SpanContext struct {
	ctx  context.Context
	span trace.Span
}

func start(ctx context.Context, name string, opts []trace.SpanStartOption) *SpanContext {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, opts...)
	return &SpanContext{ctx: ctx, span: span}
}

// StartSpan starts a child of whatever span ctx already carries.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) *SpanContext {
	return start(ctx, name, opts)
}

// StartSpanFromTraceID continues a trace whose id crossed a queue boundary
// as a hex string. An empty or malformed id starts a fresh root span.
func StartSpanFromTraceID(ctx context.Context, traceIDHex string, name string, opts ...trace.SpanStartOption) *SpanContext {
	traceID, err := trace.TraceIDFromHex(traceIDHex)
	if traceIDHex == "" || err != nil {
		return start(ctx, name, opts)
	}

	remote := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	ctx = trace.ContextWithRemoteSpanContext(ctx, remote)
	return start(ctx, name, append(opts, trace.WithLinks(trace.Link{SpanContext: remote})))
}

func (sc *SpanContext) Context() context.Context {
	return sc.ctx
}

// SetEvent tags the span with the event being handled. workspaceID may be nil
// for unowned events.
func (sc *SpanContext) SetEvent(eventID, fingerprint string, workspaceID *int64) {
	if sc.span == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, 3)
	if eventID != "" {
		attrs = append(attrs, AttrEventID.String(eventID))
	}
	if fingerprint != "" {
		attrs = append(attrs, AttrFingerprint.String(fingerprint))
	}
	if workspaceID != nil {
		attrs = append(attrs, AttrWorkspaceID.Int64(*workspaceID))
	}
	sc.span.SetAttributes(attrs...)
}

func (sc *SpanContext) SetAttributes(kv ...attribute.KeyValue) {
	if sc.span != nil {
		sc.span.SetAttributes(kv...)
	}
}

// RecordError records err and marks the span failed. A nil err is ignored.
func (sc *SpanContext) RecordError(err error) {
	if sc.span == nil || err == nil {
		return
	}
	sc.span.RecordError(err)
	sc.span.SetStatus(codes.Error, err.Error())
}

// End is safe to call more than once.
func (sc *SpanContext) End() {
	if sc.span != nil {
		sc.span.End()
	}
}
