package services_test

import (
	"errors"
	"testing"

	"statspub/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("boom")
	err := services.Wrap(services.ErrEngine, "engine", "ingest", "file.json", cause)

	if !errors.Is(err, services.ErrEngine) {
		t.Fatalf("expected ErrEngine marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	want := "engine error: engine: ingest: file.json: boom"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
	if err.Error() != "transient failure: service failure" {
		t.Fatalf("message = %q", err.Error())
	}
}
