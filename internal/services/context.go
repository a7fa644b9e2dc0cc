package services

import "context"

type contextKey string

const (
	releaseVersionIDKey contextKey = "release_version_id"
	releaseStatusIDKey  contextKey = "release_status_id"
	processorKey        contextKey = "processor"
	requestIDKey        contextKey = "request_id"
)

// WithReleaseVersionID annotates context with the release version identifier.
func WithReleaseVersionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, releaseVersionIDKey, id)
}

// ReleaseVersionIDFromContext extracts the release version identifier if present.
func ReleaseVersionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(releaseVersionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithReleaseStatusID annotates context with the publish attempt identifier.
func WithReleaseStatusID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, releaseStatusIDKey, id)
}

// ReleaseStatusIDFromContext extracts the publish attempt identifier if present.
func ReleaseStatusIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(releaseStatusIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithProcessor annotates context with the analytics processor name.
func WithProcessor(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, processorKey, name)
}

// ProcessorFromContext returns the processor name if present.
func ProcessorFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(processorKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
