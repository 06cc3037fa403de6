// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package serdeotel provides OpenTelemetry instrumentation for arrowserde
// conversions. It implements the [arrowserde.Hook] interface to add
// tracing and metrics to every encode and decode.
//
// Usage:
//
//	cfg := arrowserde.DefaultConfig()
//	cfg.Hook = serdeotel.NewHook(serdeotel.DefaultConfig())
//	batches, err := arrowserde.ToRecordBatches(ctx, cfg, fields, items)
package serdeotel

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Query-farm/arrowserde/arrowserde"
)

const instrumentationName = "arrowserde"

// OtelConfig configures OpenTelemetry instrumentation.
type OtelConfig struct {
	// TracerProvider supplies the tracer. Defaults to otel.GetTracerProvider().
	TracerProvider trace.TracerProvider
	// MeterProvider supplies the meter. Defaults to otel.GetMeterProvider().
	MeterProvider metric.MeterProvider
	// EnableTracing enables span creation. Default true.
	EnableTracing bool
	// EnableMetrics enables counter and histogram recording. Default true.
	EnableMetrics bool
	// RecordExceptions calls RecordError on the span for failed
	// conversions. Default true.
	RecordExceptions bool
	// CustomAttributes are added to every span.
	CustomAttributes []attribute.KeyValue
}

// DefaultConfig returns an OtelConfig with tracing, metrics and exception
// recording enabled. Providers are resolved from the global OTel SDK when
// the hook is created.
func DefaultConfig() OtelConfig {
	return OtelConfig{
		EnableTracing:    true,
		EnableMetrics:    true,
		RecordExceptions: true,
	}
}

// NewHook returns a Hook recording spans and metrics for conversions.
func NewHook(cfg OtelConfig) arrowserde.Hook {
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.MeterProvider == nil {
		cfg.MeterProvider = otel.GetMeterProvider()
	}

	hook := &otelHook{
		cfg:    cfg,
		tracer: cfg.TracerProvider.Tracer(instrumentationName),
	}

	if cfg.EnableMetrics {
		meter := cfg.MeterProvider.Meter(instrumentationName)
		hook.conversionCounter, _ = meter.Int64Counter("arrowserde.conversions",
			metric.WithUnit("{conversion}"),
			metric.WithDescription("Number of conversions"),
		)
		hook.rowCounter, _ = meter.Int64Counter("arrowserde.rows",
			metric.WithUnit("{row}"),
			metric.WithDescription("Rows encoded or decoded"),
		)
		hook.durationHistogram, _ = meter.Float64Histogram("arrowserde.duration",
			metric.WithUnit("s"),
			metric.WithDescription("Duration of conversions"),
		)
	}
	return hook
}

// otelHook implements arrowserde.Hook with OpenTelemetry tracing and metrics.
type otelHook struct {
	cfg               OtelConfig
	tracer            trace.Tracer
	conversionCounter metric.Int64Counter
	rowCounter        metric.Int64Counter
	durationHistogram metric.Float64Histogram
}

// spanToken is the HookToken returned by OnConvertStart.
type spanToken struct {
	span      trace.Span
	startTime time.Time
}

// OnConvertStart starts an internal span for the conversion.
func (h *otelHook) OnConvertStart(ctx context.Context, info arrowserde.ConvertInfo) (context.Context, arrowserde.HookToken) {
	if !h.cfg.EnableTracing {
		return ctx, &spanToken{startTime: time.Now()}
	}

	attrs := []attribute.KeyValue{
		attribute.String("arrowserde.operation", info.Operation),
		attribute.Int("arrowserde.fields", len(info.Fields)),
	}
	attrs = append(attrs, h.cfg.CustomAttributes...)

	ctx, span := h.tracer.Start(ctx, "arrowserde/"+info.Operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, &spanToken{span: span, startTime: time.Now()}
}

// OnConvertEnd records span attributes, metrics, and ends the span.
func (h *otelHook) OnConvertEnd(ctx context.Context, token arrowserde.HookToken, info arrowserde.ConvertInfo, stats *arrowserde.ConvertStatistics, err error) {
	st, ok := token.(*spanToken)
	if !ok {
		return
	}
	duration := time.Since(st.startTime)

	status := "ok"
	if err != nil {
		status = "error"
	}

	if h.cfg.EnableMetrics {
		metricAttrs := metric.WithAttributes(
			attribute.String("arrowserde.operation", info.Operation),
			attribute.String("status", status),
		)
		if h.conversionCounter != nil {
			h.conversionCounter.Add(ctx, 1, metricAttrs)
		}
		if h.rowCounter != nil && stats != nil {
			h.rowCounter.Add(ctx, stats.Rows, metricAttrs)
		}
		if h.durationHistogram != nil {
			h.durationHistogram.Record(ctx, duration.Seconds(), metricAttrs)
		}
	}

	if st.span == nil || !st.span.IsRecording() {
		return
	}
	if stats != nil {
		st.span.SetAttributes(
			attribute.Int64("arrowserde.batches", stats.Batches),
			attribute.Int64("arrowserde.rows", stats.Rows),
			attribute.Int64("arrowserde.columns", stats.Columns),
			attribute.Int64("arrowserde.bytes", stats.Bytes),
		)
	}
	if err != nil {
		st.span.SetStatus(codes.Error, err.Error())
		if h.cfg.RecordExceptions {
			st.span.RecordError(err)
		}
		errType := "Error"
		var e *arrowserde.Error
		if errors.As(err, &e) {
			errType = e.Kind.String()
			if path, ok := e.Annotation("field"); ok {
				st.span.SetAttributes(attribute.String("arrowserde.error_field", path))
			}
		}
		st.span.SetAttributes(attribute.String("arrowserde.error_type", errType))
	} else {
		st.span.SetStatus(codes.Ok, "")
	}
	st.span.End()
}
