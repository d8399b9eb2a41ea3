package specfun

import (
	"testing"
)

func BenchmarkSphericalJ2(b *testing.B) {
	x := 0.1
	for b.Loop() {
		SphericalJ2(x)
		x += 1e-9
	}
}

func BenchmarkJOverXnSeries(b *testing.B) {
	for b.Loop() {
		JOverXn(8, 1.5)
	}
}

func BenchmarkJOverXnRecurrence(b *testing.B) {
	for b.Loop() {
		JOverXn(8, 40)
	}
}
