package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/runmanager/internal/domain/dataset"
)

// Compile-time check that Loader implements dataset.InfoLoader.
var _ dataset.InfoLoader = (*Loader)(nil)

// Loader records a span around every info load of the wrapped loader.
type Loader struct {
	tracer trace.Tracer
	next   dataset.InfoLoader
}

// WrapLoader returns next unchanged when tracer is nil.
func WrapLoader(tracer trace.Tracer, next dataset.InfoLoader) dataset.InfoLoader {
	if tracer == nil {
		return next
	}
	return &Loader{tracer: tracer, next: next}
}

// LoadInfo implements dataset.InfoLoader.
func (l *Loader) LoadInfo(ctx context.Context, req dataset.LoadRequest) (dataset.Info, error) {
	ctx, span := l.tracer.Start(ctx, SpanLoadInfo, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	span.SetAttributes(
		attribute.String(AttrDatasetName, req.Name),
		attribute.String(AttrDatasetPath, req.Path),
		attribute.Bool(AttrDatasetReload, req.Reload),
	)

	info, err := l.next.LoadInfo(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return info, err
	}

	span.SetAttributes(attribute.Int(AttrDatasetTrials, info.NTrials))
	span.SetStatus(codes.Ok, "")
	return info, nil
}

// StartCollectionSpan opens the parent span for loading a whole collection.
func StartCollectionSpan(ctx context.Context, tracer trace.Tracer, name string, size int) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, SpanLoadCollection,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(AttrCollectionName, name),
			attribute.Int(AttrCollectionSize, size),
		),
	)
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
