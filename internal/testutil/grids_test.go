package testutil

import (
	"strings"
	"testing"
)

func TestLogSpace(t *testing.T) {
	g := LogSpace(1e-3, 1e3, 7)
	if len(g) != 7 {
		t.Fatalf("length = %d, want 7", len(g))
	}
	if g[0] != 1e-3 || g[6] != 1e3 {
		t.Fatalf("endpoints = %v, %v", g[0], g[6])
	}
	for i := 1; i < len(g); i++ {
		if g[i] <= g[i-1] {
			t.Fatalf("not increasing at %d: %v <= %v", i, g[i], g[i-1])
		}
	}
	// Uniform ratio between neighbors.
	RequireNearlyEqual(t, g[1]/g[0], 10, 1e-12)
}

func TestBBKSShapeLimits(t *testing.T) {
	if got := BBKSShape(0); got != 1 {
		t.Fatalf("BBKSShape(0) = %v, want 1", got)
	}
	if BBKSShape(10) >= BBKSShape(1) {
		t.Fatal("shape must decay with q")
	}
}

func TestTransferTable(t *testing.T) {
	table := TransferTable(1e-3, 10, 50)
	lines := strings.Split(strings.TrimSpace(table), "\n")
	if len(lines) != 51 {
		t.Fatalf("lines = %d, want header + 50", len(lines))
	}
	if !strings.HasPrefix(lines[0], "#") {
		t.Fatalf("missing header: %q", lines[0])
	}
}
