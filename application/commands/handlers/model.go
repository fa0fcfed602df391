package handlers

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"cloudmap-backend/application/ports"
	pkgerrors "cloudmap-backend/pkg/errors"
)

const tracerName = "cloudmap-backend/application/commands"

// Logger interface for flexible logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// invokeModel performs the single model call of a pass. Any failure comes
// back as a model error; there is no retry here.
func invokeModel(
	ctx context.Context,
	model ports.ModelClient,
	metrics ports.MetricsRecorder,
	prompt string,
	stage ports.Stage,
) (*ports.Suggestion, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "model.suggest")
	defer span.End()
	span.SetAttributes(
		attribute.String("model.stage", string(stage)),
		attribute.Int("model.prompt_length", len(prompt)),
	)

	start := time.Now()
	suggestion, err := model.Suggest(ctx, prompt, stage)
	elapsed := time.Since(start).Seconds()

	if err == nil && suggestion == nil {
		err = pkgerrors.NewModelError(nil)
	}
	if err != nil {
		metrics.ModelInvocation(string(stage), "error", elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "model invocation failed")
		if pkgerrors.IsModelError(err) {
			return nil, err
		}
		return nil, pkgerrors.NewModelError(err)
	}

	metrics.ModelInvocation(string(stage), "success", elapsed)
	return suggestion, nil
}
