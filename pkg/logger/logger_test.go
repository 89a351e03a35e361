package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"habittracker/pkg/trace"
)

func TestNewLoggerLevel(t *testing.T) {
	l := NewLogger(Config{Level: "warn"})
	if l.Core().Enabled(zap.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !l.Core().Enabled(zap.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
	if Log != l {
		t.Error("NewLogger should set the package logger")
	}
}

func TestWithTrace(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := trace.WithContext(context.Background(), "trace-123")
	WithTrace(ctx, base).Info("hello")
	WithTrace(context.Background(), base).Info("plain")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if got := entries[0].ContextMap()["trace_id"]; got != "trace-123" {
		t.Errorf("trace_id = %v, want trace-123", got)
	}
	if _, ok := entries[1].ContextMap()["trace_id"]; ok {
		t.Error("logger without trace should not carry trace_id")
	}
}
