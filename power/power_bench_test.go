package power_test

import (
	"testing"

	"github.com/cwbudde/algo-cosmo/cosmo"
	"github.com/cwbudde/algo-cosmo/cosmo/background"
	"github.com/cwbudde/algo-cosmo/internal/testutil"
	"github.com/cwbudde/algo-cosmo/power"
)

func benchLinear(b *testing.B) *power.Linear {
	b.Helper()
	bg, err := background.New(background.Default())
	if err != nil {
		b.Fatal(err)
	}
	c, err := cosmo.New(bg, cosmo.WithSigma8(0.8))
	if err != nil {
		b.Fatal(err)
	}
	p, err := power.NewLinear(c, 0)
	if err != nil {
		b.Fatal(err)
	}
	return p
}

func BenchmarkLinearEvaluate(b *testing.B) {
	p := benchLinear(b)

	b.ResetTimer()

	for b.Loop() {
		if _, err := p.Evaluate(0.1); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLinearEvaluateMany(b *testing.B) {
	p := benchLinear(b)
	ks := testutil.LogSpace(1e-4, 10, 1024)

	b.ResetTimer()

	for b.Loop() {
		if _, err := p.EvaluateMany(ks); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCorrelationBuild(b *testing.B) {
	p := benchLinear(b)

	b.ResetTimer()

	for b.Loop() {
		if _, err := power.NewCorrelation(p, power.WithSamples(2048)); err != nil {
			b.Fatal(err)
		}
	}
}
