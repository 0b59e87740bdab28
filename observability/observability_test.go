package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
)

func TestNewMetrics(t *testing.T) {
	m, err := NewMetrics(otel.Meter("test"))
	if err != nil {
		t.Fatalf("creating metrics: %v", err)
	}

	// Recording against the no-op global meter must not panic.
	ctx := context.Background()
	m.RecordTranscription(ctx, "whisper", "completed", 3*time.Second)
	m.RecordRetry(ctx, "whisper")
	m.RecordJobStart(ctx)
	m.RecordJobEnd(ctx)
	m.RecordBatchFinalized(ctx, "partial", 0.009)
	m.RecordFallbackStored(ctx, 1024)
}

func TestServiceHealthAggregation(t *testing.T) {
	sh := NewServiceHealth("voiceapi", "1.0.0")
	if sh.Status != HealthStatusUp {
		t.Fatalf("expected up, got %s", sh.Status)
	}

	sh.AddComponent(Health{Name: "database", Status: HealthStatusUp})
	if sh.Status != HealthStatusUp {
		t.Errorf("healthy component should not degrade, got %s", sh.Status)
	}

	sh.AddComponent(Health{Name: "storage", Status: HealthStatusDegraded})
	if sh.Status != HealthStatusDegraded {
		t.Errorf("expected degraded, got %s", sh.Status)
	}

	sh.AddComponent(Health{Name: "provider", Status: HealthStatusDown})
	if sh.Status != HealthStatusDown {
		t.Errorf("expected down, got %s", sh.Status)
	}

	sh.AddComponent(Health{Name: "late", Status: HealthStatusDegraded})
	if sh.Status != HealthStatusDown {
		t.Errorf("down must not be upgraded, got %s", sh.Status)
	}
}
