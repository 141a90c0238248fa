package id

import (
	"testing"
	"time"
)

func TestTimestampGenerator_MonotonicWithinMillisecond(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	g := NewTimestampGenerator()
	g.now = func() time.Time { return fixed }

	first := g.NextID()
	second := g.NextID()
	if first != fixed.UnixMilli() {
		t.Fatalf("unexpected first id %d", first)
	}
	if second != first+1 {
		t.Fatalf("expected bumped id, got %d after %d", second, first)
	}
}

func TestTimestampGenerator_Observe(t *testing.T) {
	fixed := time.UnixMilli(1_000)
	g := NewTimestampGenerator()
	g.now = func() time.Time { return fixed }

	g.Observe(5_000)
	if got := g.NextID(); got != 5_001 {
		t.Fatalf("expected id past observed value, got %d", got)
	}
}
