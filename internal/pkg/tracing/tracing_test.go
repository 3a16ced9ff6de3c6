package tracing

import (
	"context"
	"testing"
)

func TestInitWithoutExporter(t *testing.T) {
	ctx := context.Background()
	tp, shutdown, err := Init(ctx, Config{ServiceName: "websubc-test"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			t.Fatalf("shutdown: %v", err)
		}
	}()

	_, span := tp.Tracer(InstrumentationName).Start(ctx, "test")
	defer span.End()
	if !span.SpanContext().IsValid() {
		t.Fatalf("expected a recording span with valid ids")
	}
	if _, s := Tracer().Start(ctx, "global"); !s.SpanContext().IsValid() {
		t.Fatalf("global tracer should come from the installed provider")
	}
}
