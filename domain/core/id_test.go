package core

import "testing"

func TestNewID(t *testing.T) {
	a := NewID()
	b := NewID()

	if a.IsEmpty() || b.IsEmpty() {
		t.Error("generated IDs must not be empty")
	}
	if a == b {
		t.Error("generated IDs must be unique")
	}
	// UUID string form.
	if len(a.String()) != 36 {
		t.Errorf("ID length = %d, want 36", len(a.String()))
	}
}

func TestParseRunID(t *testing.T) {
	id, err := ParseRunID("run-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "run-123" {
		t.Errorf("run ID = %s, want run-123", id)
	}

	if _, err := ParseRunID(""); err == nil {
		t.Error("expected error for empty run ID")
	}
	if _, err := ParseRunID("   "); err == nil {
		t.Error("expected error for blank run ID")
	}
}

func TestParseMetricKey(t *testing.T) {
	key, err := ParseMetricKey("latency_ms")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.String() != "latency_ms" {
		t.Errorf("metric key = %s, want latency_ms", key)
	}

	if _, err := ParseMetricKey(""); err == nil {
		t.Error("expected error for empty metric key")
	}
}
