package time

import (
	"testing"
	"time"
)

func TestPtr(t *testing.T) {
	if got := Ptr(time.Time{}); got != nil {
		t.Fatalf("Ptr(zero) = %v, want nil", got)
	}
	ts := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	got := Ptr(ts)
	if got == nil || !got.Equal(ts) {
		t.Fatalf("Ptr(%v) = %v", ts, got)
	}
}
