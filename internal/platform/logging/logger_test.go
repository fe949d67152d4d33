package logging

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapFields(t *testing.T) {
	fields := zapFields([]any{"stage", "ingest", "err", errors.New("boom"), 42, "x", "orphan"})

	if len(fields) != 4 {
		t.Fatalf("expected 4 fields, got %d", len(fields))
	}
	for i, want := range []string{"stage", "err", "arg_2", "orphan"} {
		if fields[i].Key != want {
			t.Fatalf("field %d key = %q, want %q", i, fields[i].Key, want)
		}
	}
	if fields[1].Type != zapcore.ErrorType {
		t.Fatalf("expected err field to carry the error type, got %v", fields[1].Type)
	}
}

func TestTraceFields_NoSpan(t *testing.T) {
	if got := traceFields(nil); got != nil {
		t.Fatalf("expected no fields for nil context, got %v", got)
	}
	if got := traceFields(context.Background()); got != nil {
		t.Fatalf("expected no fields without a span, got %v", got)
	}
}

func TestLogger_WithStage(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	logger.WithStage("ingest").Info("snapshot loaded", "rows", 10)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "snapshot loaded" {
		t.Fatalf("unexpected message: %q", entries[0].Message)
	}
	ctxMap := entries[0].ContextMap()
	if ctxMap["stage"] != "ingest" {
		t.Fatalf("expected stage field, got %v", ctxMap)
	}
	if ctxMap["rows"] != int64(10) {
		t.Fatalf("expected rows field, got %v", ctxMap)
	}
}

func TestLogger_NilReceiverFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("ignored by the nop default")

	if Default() == nil {
		t.Fatalf("expected a usable default logger")
	}
}
