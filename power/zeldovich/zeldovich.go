package zeldovich

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-cosmo/internal/quadrature"
	"github.com/cwbudde/algo-cosmo/internal/specfun"
	"github.com/cwbudde/algo-cosmo/power"
)

const (
	maxSeriesTerms = 256
	seriesEps      = 1e-15

	stageBTolerance = 1e-8
	stageBTailEps   = 1e-9
	maxStageBSteps  = 100000
)

// momentKind selects the stage-(b) integrand.
type momentKind int

const (
	momentDensity  momentKind = iota // P00
	momentMomentum                   // P01
)

// transform is the state shared by all moment evaluators: the linear
// input, the stage-(a) kernel, and the rescaling captured from the
// owning cosmology at construction. Redshift and amplitude moves only
// touch the prefactor; the kernel is rebuilt solely when the owning
// cosmology has been renormalized underneath it.
type transform struct {
	lin    power.Spectrum
	kernel *RealSpaceKernel
	opts   []Option

	z, z0       float64
	growth0     float64 // D(z0) of the linear input
	sigma8      float64
	growthRatio float64 // D(z)/D(z0)
	rate        float64 // f(z)
}

func newTransform(lin power.Spectrum, opts ...Option) (*transform, error) {
	kernel, err := NewRealSpaceKernel(lin, opts...)
	if err != nil {
		return nil, err
	}

	z0 := 0.0
	if r, ok := lin.(interface{ Redshift() float64 }); ok {
		z0 = r.Redshift()
	}
	bg := lin.Cosmology().Background()
	growth0, err := bg.GrowthD(z0)
	if err != nil {
		return nil, err
	}
	rate, err := bg.GrowthRate(z0)
	if err != nil {
		return nil, err
	}

	return &transform{
		lin:         lin,
		kernel:      kernel,
		opts:        opts,
		z:           z0,
		z0:          z0,
		growth0:     growth0,
		sigma8:      kernel.Sigma8(),
		growthRatio: 1,
		rate:        rate,
	}, nil
}

// setRedshift moves the evaluator to redshift z by updating the growth
// prefactor. Idempotent: setting the current redshift changes nothing.
func (t *transform) setRedshift(z float64) error {
	bg := t.lin.Cosmology().Background()
	d, err := bg.GrowthD(z)
	if err != nil {
		return err
	}
	f, err := bg.GrowthRate(z)
	if err != nil {
		return err
	}
	t.z = z
	t.growthRatio = d / t.growth0
	t.rate = f
	return nil
}

// setSigma8 retargets the amplitude. Quadratic in power, prefactor only.
func (t *transform) setSigma8(sigma8 float64) error {
	if sigma8 <= 0 || math.IsNaN(sigma8) || math.IsInf(sigma8, 0) {
		return fmt.Errorf("%w: sigma8 = %g must be positive and finite", ErrDomain, sigma8)
	}
	t.sigma8 = sigma8
	return nil
}

// refresh rebuilds the kernel when the owning cosmology's normalization
// has moved since the kernel was built. The amplitude target resets to
// the cosmology's current value, as on fresh construction.
func (t *transform) refresh() error {
	if t.lin.Cosmology().Sigma8() == t.kernel.Sigma8() {
		return nil
	}
	kernel, err := NewRealSpaceKernel(t.lin, t.opts...)
	if err != nil {
		return err
	}
	t.kernel = kernel
	t.sigma8 = kernel.Sigma8()
	return nil
}

func (t *transform) prefactor(kind momentKind) float64 {
	s := t.sigma8 / t.kernel.Sigma8()
	amp := t.growthRatio * t.growthRatio * s * s
	if kind == momentMomentum {
		amp *= t.rate
	}
	return amp
}

func (t *transform) evaluate(k float64, kind momentKind) (float64, error) {
	if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return 0, fmt.Errorf("%w: wavenumber k=%g must be positive and finite", ErrDomain, k)
	}
	if err := t.refresh(); err != nil {
		return 0, err
	}
	base, err := t.baseIntegral(k, kind)
	if err != nil {
		return 0, err
	}
	return t.prefactor(kind) * base, nil
}

// evaluateMany evaluates the moment at each wavenumber, preserving
// order. The kernel staleness check runs once and the shared prefactor
// is applied in one vectorized pass.
func (t *transform) evaluateMany(ks []float64, kind momentKind) ([]float64, error) {
	for i, k := range ks {
		if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
			return nil, fmt.Errorf("%w: wavenumber k=%g at index %d", ErrDomain, k, i)
		}
	}
	if err := t.refresh(); err != nil {
		return nil, err
	}
	out := make([]float64, len(ks))
	for i, k := range ks {
		base, err := t.baseIntegral(k, kind)
		if err != nil {
			return nil, err
		}
		out[i] = base
	}
	vecmath.ScaleBlockInPlace(out, t.prefactor(kind))
	return out, nil
}

// baseIntegral computes the stage-(b) configuration-space integral
//
//	4π ∫ dq q² [ e^{-k²(X+Y)/2} Σ_n (k²Y)^n j_n(kq)/(kq)^n - e^{-k²σ_ψ²} j0(kq) ]
//
// for the density moment, and its logarithmic-growth derivative for the
// momentum moment. The q range is walked in half-periods of j_n(kq) and
// truncated once consecutive contributions stop mattering.
func (t *transform) baseIntegral(k float64, kind momentKind) (float64, error) {
	var seriesStuck bool
	f := func(q float64) float64 {
		v, ok := t.integrand(k, q, kind)
		if !ok {
			seriesStuck = true
		}
		return q * q * v
	}

	qMin, qMax := t.kernel.QRange()
	halfPeriod := math.Pi / k

	total := 0.0
	small := 0
	steps := 0
	for lo := qMin; lo < qMax; {
		hi := lo + halfPeriod
		if hi > qMax {
			hi = qMax
		}
		// The running total anchors the tolerance so that dead
		// subintervals, where the bracket cancels to noise, converge
		// immediately instead of being refined to the depth limit.
		v, err := quadrature.Integrate(f, lo, hi,
			quadrature.WithTolerance(stageBTolerance),
			quadrature.WithScale(math.Abs(total)))
		if err != nil {
			return 0, fmt.Errorf("%w: at k=%g, q in [%g, %g]: %v", ErrConverge, k, lo, hi, err)
		}
		if seriesStuck {
			return 0, fmt.Errorf("%w: Bessel series at k=%g exceeded %d terms", ErrConverge, k, maxSeriesTerms)
		}
		total += v

		if math.Abs(v) <= stageBTailEps*math.Abs(total) {
			small++
		} else {
			small = 0
		}
		if small >= 2 && steps >= 4 {
			break
		}
		steps++
		if steps > maxStageBSteps {
			return 0, fmt.Errorf("%w: q integral at k=%g did not settle", ErrConverge, k)
		}
		lo = hi
	}
	return 4 * math.Pi * total, nil
}

// integrand evaluates the stage-(b) bracket at one (k, q) pair. The
// Bessel series is summed with each term's exponential damping folded
// in, so individual terms never overflow even when k²Y is large. The
// second return value is false when the series failed to converge
// within maxSeriesTerms.
func (t *transform) integrand(k, q float64, kind momentKind) (float64, bool) {
	x, y, err := t.kernel.XY(q)
	if err != nil {
		return 0, true
	}

	k2 := k * k
	kq := k * q
	kxy := k2 * (x + y)
	damp := -0.5 * kxy

	ky := k2 * y
	ay := math.Abs(ky)
	lnAY := math.Inf(-1)
	sign := 1.0
	if ay > 0 {
		lnAY = math.Log(ay)
		if ky < 0 {
			sign = -1
		}
	}

	sum := 0.0
	maxTerm := 0.0
	small := 0
	s := 1.0
	converged := false
	for n := 0; n <= maxSeriesTerms; n++ {
		exponent := damp
		if n > 0 {
			exponent += float64(n) * lnAY // n=0 must not touch lnAY: 0*(-Inf) is NaN
		}
		w := s * math.Exp(exponent) * specfun.JOverXn(n, kq)
		if kind == momentMomentum {
			w *= 2*float64(n) - kxy
		}
		sum += w

		aw := math.Abs(w)
		if aw > maxTerm {
			maxTerm = aw
		}
		if aw <= seriesEps*maxTerm {
			small++
		} else {
			small = 0
		}
		// Terms may pass through spherical-Bessel zeros while still
		// rising, so require several negligible terms past the peak.
		if small >= 3 && (maxTerm == 0 || 2*float64(n) >= ay) {
			converged = true
			break
		}
		s *= sign
	}

	sub := math.Exp(-k2*t.kernel.SigmaPsi2()) * specfun.SphericalJ0(kq)
	switch kind {
	case momentMomentum:
		return sum + 2*k2*t.kernel.SigmaPsi2()*sub, converged
	default:
		return sum - sub, converged
	}
}
