package logging

import (
	"context"
	"log/slog"

	"statspub/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldReleaseVersionID is the standardized structured logging key for release version identifiers.
	FieldReleaseVersionID = "release_version_id"
	// FieldReleaseStatusID is the standardized structured logging key for publish attempt identifiers.
	FieldReleaseStatusID = "release_status_id"
	// FieldProcessor is the standardized structured logging key for analytics processor names.
	FieldProcessor = "processor"
	// FieldStage is the standardized structured logging key for publishing stage names.
	FieldStage = "stage"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType tags log lines with a machine-readable event classifier.
	FieldEventType = "event_type"
	// FieldErrorHint carries an operator-facing remediation hint.
	FieldErrorHint = "error_hint"
	// FieldQueue is the standardized structured logging key for message queue names.
	FieldQueue = "queue"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.ReleaseVersionIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldReleaseVersionID, id))
	}
	if id, ok := services.ReleaseStatusIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldReleaseStatusID, id))
	}
	if name, ok := services.ProcessorFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldProcessor, name))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
