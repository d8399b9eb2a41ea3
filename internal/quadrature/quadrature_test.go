package quadrature

import (
	"errors"
	"math"
	"testing"
)

func TestIntegrateSmooth(t *testing.T) {
	tests := []struct {
		name string
		f    func(float64) float64
		a, b float64
		want float64
	}{
		{"cubic", func(x float64) float64 { return x * x * x }, 0, 2, 4},
		{"sine arch", math.Sin, 0, math.Pi, 2},
		{"exp decay", func(x float64) float64 { return math.Exp(-x) }, 0, 30, 1 - math.Exp(-30)},
		{"log singular-ish", func(x float64) float64 { return math.Log(x) }, 1e-6, 1, -1 + 1e-6 - 1e-6*math.Log(1e-6)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Integrate(tt.f, tt.a, tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if diff := math.Abs(got - tt.want); diff > 1e-8*math.Max(1, math.Abs(tt.want)) {
				t.Fatalf("got %.15g, want %.15g (diff %g)", got, tt.want, diff)
			}
		})
	}
}

func TestIntegrateReversedBounds(t *testing.T) {
	fwd, err := Integrate(math.Cos, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	rev, err := Integrate(math.Cos, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if fwd != -rev {
		t.Fatalf("reversed bounds: %g != %g", fwd, -rev)
	}

	zero, err := Integrate(math.Cos, 3, 3)
	if err != nil || zero != 0 {
		t.Fatalf("empty interval: got %g, %v", zero, err)
	}
}

func TestIntegrateSharpPeak(t *testing.T) {
	// Narrow Gaussian needs the adaptive refinement to resolve.
	sigma := 1e-3
	f := func(x float64) float64 {
		u := (x - 0.5) / sigma
		return math.Exp(-0.5 * u * u)
	}
	want := sigma * math.Sqrt(2*math.Pi)
	got, err := Integrate(f, 0, 1, WithTolerance(1e-10))
	if err != nil {
		t.Fatal(err)
	}
	if diff := math.Abs(got-want) / want; diff > 1e-8 {
		t.Fatalf("got %.15g, want %.15g (rel %g)", got, want, diff)
	}
}

func TestOscillatoryDampedSine(t *testing.T) {
	tests := []struct {
		name string
		f    func(float64) float64
		want float64
	}{
		{
			"exp(-x/5) sin x",
			func(x float64) float64 { return math.Exp(-x/5) * math.Sin(x) },
			1 / (1 + 0.04),
		},
		{
			"x exp(-x) sin x",
			func(x float64) float64 { return x * math.Exp(-x) * math.Sin(x) },
			0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Oscillatory(tt.f, 0, math.Pi)
			if err != nil {
				t.Fatal(err)
			}
			if diff := math.Abs(got-tt.want) / tt.want; diff > 1e-8 {
				t.Fatalf("got %.15g, want %.15g (rel %g)", got, tt.want, diff)
			}
		})
	}
}

func TestOscillatoryBudgetExhausted(t *testing.T) {
	// sin(x)/(1+x) decays far too slowly for a 10-interval budget.
	f := func(x float64) float64 { return math.Sin(x) / (1 + x) }
	_, err := Oscillatory(f, 0, math.Pi, WithMaxIntervals(10))
	if !errors.Is(err, ErrConverge) {
		t.Fatalf("want ErrConverge, got %v", err)
	}
}

func TestOscillatoryRejectsBadHalfPeriod(t *testing.T) {
	_, err := Oscillatory(math.Sin, 0, 0)
	if !errors.Is(err, ErrConverge) {
		t.Fatalf("want ErrConverge, got %v", err)
	}
}

func TestOscillatoryScaleFloor(t *testing.T) {
	// With an external scale of 1e6 the tail criterion becomes absolute:
	// intervals stop once their contribution drops below tol*scale = 1e-3,
	// truncating exp(-x) around x = 9 instead of chasing relative accuracy.
	f := func(x float64) float64 { return math.Exp(-x) }
	got, err := Oscillatory(f, 0, 1, WithTolerance(1e-9), WithScale(1e6))
	if err != nil {
		t.Fatal(err)
	}
	diff := math.Abs(got - 1)
	if diff > 1e-3 {
		t.Fatalf("truncation error %g exceeds tol*scale", diff)
	}
	if diff < 1e-6 {
		t.Fatalf("diff %g suspiciously small; scale floor did not truncate", diff)
	}
}
