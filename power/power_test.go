package power_test

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-cosmo/cosmo"
	"github.com/cwbudde/algo-cosmo/cosmo/background"
	"github.com/cwbudde/algo-cosmo/internal/testutil"
	"github.com/cwbudde/algo-cosmo/power"
)

func newCosmology(t *testing.T) *cosmo.Cosmology {
	t.Helper()
	bg, err := background.New(background.Default())
	if err != nil {
		t.Fatal(err)
	}
	c, err := cosmo.New(bg, cosmo.WithSigma8(0.8))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestLinearShape(t *testing.T) {
	p, err := power.NewLinear(newCosmology(t), 0)
	if err != nil {
		t.Fatal(err)
	}

	peak, err := p.Evaluate(0.015)
	if err != nil {
		t.Fatal(err)
	}
	lowK, err := p.Evaluate(1e-4)
	if err != nil {
		t.Fatal(err)
	}
	highK, err := p.Evaluate(1)
	if err != nil {
		t.Fatal(err)
	}
	if peak <= 0 || lowK <= 0 || highK <= 0 {
		t.Fatalf("power must be positive: %v %v %v", lowK, peak, highK)
	}
	if lowK >= peak || highK >= peak {
		t.Fatalf("expected turnover near k~0.015: P(1e-4)=%v P(0.015)=%v P(1)=%v", lowK, peak, highK)
	}
}

func TestLinearMatchesSigma8(t *testing.T) {
	// Recomputing sigma8 from the normalized spectrum must reproduce
	// the target: sigma8^2 = 1/(2π²) ∫ dk k² P(k) W(8k)².
	p, err := power.NewLinear(newCosmology(t), 0)
	if err != nil {
		t.Fatal(err)
	}

	ks := testutil.LogSpace(1e-5, 500, 4000)
	pk, err := p.EvaluateMany(ks)
	if err != nil {
		t.Fatal(err)
	}

	sum := 0.0
	for i := 1; i < len(ks); i++ {
		dlnk := math.Log(ks[i] / ks[i-1])
		sum += 0.5 * dlnk * (integrandSigma(ks[i], pk[i]) + integrandSigma(ks[i-1], pk[i-1]))
	}
	got := math.Sqrt(sum)
	testutil.RequireNearlyEqual(t, got, 0.8, 1e-3)
}

func integrandSigma(k, pk float64) float64 {
	x := 8 * k
	var w float64
	if x < 1e-2 {
		w = 1 - x*x/10
	} else {
		w = 3 * (math.Sin(x) - x*math.Cos(x)) / (x * x * x)
	}
	return k * k * k * pk * w * w / (2 * math.Pi * math.Pi)
}

func TestLinearGrowthScaling(t *testing.T) {
	c := newCosmology(t)
	p0, err := power.NewLinear(c, 0)
	if err != nil {
		t.Fatal(err)
	}
	p1, err := power.NewLinear(c, 1)
	if err != nil {
		t.Fatal(err)
	}

	a, _ := p0.Evaluate(0.1)
	b, _ := p1.Evaluate(0.1)
	d0 := p0.GrowthFactor()
	d1 := p1.GrowthFactor()
	testutil.RequireNearlyEqual(t, a/b, (d0/d1)*(d0/d1), 1e-12)
}

func TestLinearAmplitudeQuadraticInSigma8(t *testing.T) {
	c := newCosmology(t)
	p, err := power.NewLinear(c, 0)
	if err != nil {
		t.Fatal(err)
	}
	before, _ := p.Evaluate(0.1)
	if err := c.NormalizeTransferFunction(1.6); err != nil {
		t.Fatal(err)
	}
	after, _ := p.Evaluate(0.1)
	testutil.RequireNearlyEqual(t, after/before, 4, 1e-10)
}

func TestLinearDomainErrors(t *testing.T) {
	p, err := power.NewLinear(newCosmology(t), 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []float64{0, -0.1, math.NaN()} {
		if _, err := p.Evaluate(k); !errors.Is(err, power.ErrDomain) {
			t.Fatalf("Evaluate(%v) error = %v, want ErrDomain", k, err)
		}
	}
	if _, err := p.EvaluateMany([]float64{0.1, -1}); !errors.Is(err, power.ErrDomain) {
		t.Fatalf("EvaluateMany with bad k: error = %v, want ErrDomain", err)
	}
}

func TestEvaluateManyMatchesEvaluate(t *testing.T) {
	p, err := power.NewLinear(newCosmology(t), 0.5)
	if err != nil {
		t.Fatal(err)
	}
	ks := []float64{2, 0.001, 0.5, 0.03, 0.1}
	many, err := p.EvaluateMany(ks)
	if err != nil {
		t.Fatal(err)
	}
	for i, k := range ks {
		one, err := p.Evaluate(k)
		if err != nil {
			t.Fatal(err)
		}
		testutil.RequireNearlyEqual(t, many[i], one, 1e-13)
	}
}

func TestSetRedshift(t *testing.T) {
	p, err := power.NewLinear(newCosmology(t), 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetRedshift(2); err != nil {
		t.Fatal(err)
	}
	if p.Redshift() != 2 {
		t.Fatalf("redshift = %v", p.Redshift())
	}
	if err := p.SetRedshift(-3); err == nil {
		t.Fatal("expected error for z <= -1")
	}
}
