package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/skillsenselab/vaani/errors"
	"github.com/skillsenselab/vaani/transcription"
)

// Instruments holds the transcription metric instruments. It implements
// transcription.Observer and is installed on the engine at startup.
type Instruments struct {
	transcriptionTotal    metric.Int64Counter
	transcriptionDuration metric.Float64Histogram
	fallbackTotal         metric.Int64Counter
	errorTotal            metric.Int64Counter
}

var _ transcription.Observer = (*Instruments)(nil)

// NewInstruments creates the transcription instruments on the given meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	transcriptionTotal, err := meter.Int64Counter("transcription.total",
		metric.WithDescription("Completed transcription requests by language, backend, and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.total counter: %w", err)
	}

	transcriptionDuration, err := meter.Float64Histogram("transcription.inference.duration",
		metric.WithDescription("Inference duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.inference.duration histogram: %w", err)
	}

	fallbackTotal, err := meter.Int64Counter("transcription.fallback.total",
		metric.WithDescription("Requests served by a fallback backend"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.fallback.total counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("transcription.error.total",
		metric.WithDescription("Failed transcription requests by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.error.total counter: %w", err)
	}

	return &Instruments{
		transcriptionTotal:    transcriptionTotal,
		transcriptionDuration: transcriptionDuration,
		fallbackTotal:         fallbackTotal,
		errorTotal:            errorTotal,
	}, nil
}

// ObserveTranscription records one completed attempt chain.
func (i *Instruments) ObserveTranscription(language string, backend transcription.Kind, usedFallback bool, inference time.Duration, err error) {
	ctx := context.Background()

	status := "ok"
	if err != nil {
		status = "error"
	}

	attrs := metric.WithAttributes(
		attribute.String("language", language),
		attribute.String("backend", string(backend)),
		attribute.String("status", status),
	)
	i.transcriptionTotal.Add(ctx, 1, attrs)

	if err == nil {
		i.transcriptionDuration.Record(ctx, inference.Seconds(), metric.WithAttributes(
			attribute.String("language", language),
			attribute.String("backend", string(backend)),
		))
		if usedFallback {
			i.fallbackTotal.Add(ctx, 1, metric.WithAttributes(
				attribute.String("language", language),
				attribute.String("backend", string(backend)),
			))
		}
		return
	}

	i.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("language", language),
		attribute.String("code", string(errors.CodeOf(err))),
	))
}
