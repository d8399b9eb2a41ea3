package zeldovich

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/cwbudde/algo-cosmo/internal/quadrature"
	"github.com/cwbudde/algo-cosmo/internal/specfun"
	"github.com/cwbudde/algo-cosmo/power"
)

var (
	ErrDomain   = errors.New("zeldovich: argument outside domain")
	ErrConfig   = errors.New("zeldovich: invalid configuration")
	ErrConverge = errors.New("zeldovich: transform failed to converge")
)

const (
	defaultQMin       = 0.01
	defaultQMax       = 1000.0
	defaultGridPoints = 100
	defaultTolerance  = 1e-7

	// Bounds of the wavenumber integrals feeding the kernel.
	kernelKMin = 1e-6
	kernelKMax = 1e3
)

// Option configures the stage-(a) kernel construction.
type Option func(*kernelConfig)

type kernelConfig struct {
	qMin, qMax float64
	points     int
	tol        float64
}

// WithQRange sets the separation range of the kernel grid, in Mpc/h.
func WithQRange(qMin, qMax float64) Option {
	return func(c *kernelConfig) {
		if qMin > 0 && qMax > qMin {
			c.qMin, c.qMax = qMin, qMax
		}
	}
}

// WithGridPoints sets the number of log-spaced kernel grid points.
func WithGridPoints(n int) Option {
	return func(c *kernelConfig) {
		if n >= 8 {
			c.points = n
		}
	}
}

// WithTolerance sets the relative tolerance of the kernel integrals.
func WithTolerance(tol float64) Option {
	return func(c *kernelConfig) {
		if tol > 0 {
			c.tol = tol
		}
	}
}

// RealSpaceKernel holds the displacement correlators of a linear power
// spectrum on a logarithmic grid of separations:
//
//	X(q) = 2σ_ψ² - (2/3)(I0(q) + I2(q))
//	Y(q) = 2 I2(q)
//	I_l(q) = 1/(2π²) ∫ dk P(k) j_l(kq)
//	σ_ψ²  = 1/(6π²) ∫ dk P(k)
//
// Building it is the expensive oscillatory-integral stage; afterwards
// X and Y are cheap monotone-spline lookups. The kernel is immutable.
type RealSpaceKernel struct {
	qMin, qMax float64
	sigmaPsi2  float64
	sigma8     float64 // owning cosmology's amplitude at build time
	splX, splY interp.FritschButland
}

// NewRealSpaceKernel runs stage (a) of the Zel'dovich transform on the
// given linear spectrum. Each grid separation's Fourier-Bessel integral
// is independent; failures surface the first offending separation.
func NewRealSpaceKernel(lin power.Spectrum, opts ...Option) (*RealSpaceKernel, error) {
	if lin == nil {
		return nil, fmt.Errorf("%w: nil linear spectrum", ErrConfig)
	}
	cfg := kernelConfig{qMin: defaultQMin, qMax: defaultQMax, points: defaultGridPoints, tol: defaultTolerance}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := checkSpectrum(lin); err != nil {
		return nil, err
	}

	sigmaPsi2, err := displacementDispersion(lin, cfg.tol)
	if err != nil {
		return nil, err
	}

	qs := floats.LogSpan(make([]float64, cfg.points), cfg.qMin, cfg.qMax)
	lnQ := make([]float64, cfg.points)
	xs := make([]float64, cfg.points)
	ys := make([]float64, cfg.points)
	rawScale := 6 * math.Pi * math.Pi * sigmaPsi2
	for i, q := range qs {
		i0, i2, err := besselMoments(lin, q, cfg.tol, rawScale)
		if err != nil {
			return nil, fmt.Errorf("kernel at q=%g: %w", q, err)
		}
		lnQ[i] = math.Log(q)
		xs[i] = 2*sigmaPsi2 - 2.0/3.0*(i0+i2)
		ys[i] = 2 * i2
	}

	k := &RealSpaceKernel{
		qMin:      cfg.qMin,
		qMax:      cfg.qMax,
		sigmaPsi2: sigmaPsi2,
		sigma8:    lin.Cosmology().Sigma8(),
	}
	if err := k.splX.Fit(lnQ, xs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := k.splY.Fit(lnQ, ys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return k, nil
}

// checkSpectrum verifies the input spectrum is defined and non-negative
// across the integration range.
func checkSpectrum(lin power.Spectrum) error {
	for _, k := range floats.LogSpan(make([]float64, 64), kernelKMin, kernelKMax) {
		p, err := lin.Evaluate(k)
		if err != nil {
			return fmt.Errorf("%w: linear spectrum undefined at k=%g: %v", ErrDomain, k, err)
		}
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: linear spectrum invalid at k=%g: P=%g", ErrDomain, k, p)
		}
	}
	return nil
}

func displacementDispersion(lin power.Spectrum, tol float64) (float64, error) {
	var evalErr error
	v, err := quadrature.Integrate(func(lnk float64) float64 {
		if evalErr != nil {
			return 0
		}
		k := math.Exp(lnk)
		p, err := lin.Evaluate(k)
		if err != nil {
			evalErr = err
			return 0
		}
		return k * p
	}, math.Log(kernelKMin), math.Log(kernelKMax), quadrature.WithTolerance(tol))
	if evalErr != nil {
		return 0, evalErr
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrConverge, err)
	}
	return v / (6 * math.Pi * math.Pi), nil
}

// besselMoments computes I0(q) and I2(q) with half-period subdivision
// of the oscillatory tails. The unnormalized ∫P dk anchors the tail
// criterion: I_l(q) itself shrinks toward large q while the integrand
// does not, and a purely relative test would then walk the tail forever.
func besselMoments(lin power.Spectrum, q, tol, rawScale float64) (i0, i2 float64, err error) {
	opts := []quadrature.Option{
		quadrature.WithTolerance(tol),
		quadrature.WithMaxIntervals(30000),
		quadrature.WithScale(rawScale),
	}

	var evalErr error
	integrand := func(j func(float64) float64) func(float64) float64 {
		return func(k float64) float64 {
			if evalErr != nil || k <= 0 {
				return 0
			}
			p, err := lin.Evaluate(k)
			if err != nil {
				evalErr = err
				return 0
			}
			return p * j(k*q)
		}
	}

	i0, err = quadrature.Oscillatory(integrand(specfun.SphericalJ0), 0, math.Pi/q, opts...)
	if evalErr != nil {
		return 0, 0, evalErr
	}
	if err != nil {
		return 0, 0, fmt.Errorf("%w: I0: %v", ErrConverge, err)
	}

	i2, err = quadrature.Oscillatory(integrand(specfun.SphericalJ2), 0, math.Pi/q, opts...)
	if evalErr != nil {
		return 0, 0, evalErr
	}
	if err != nil {
		return 0, 0, fmt.Errorf("%w: I2: %v", ErrConverge, err)
	}

	norm := 1 / (2 * math.Pi * math.Pi)
	return i0 * norm, i2 * norm, nil
}

// XY evaluates the displacement correlators at separation q inside the
// kernel's grid range.
func (k *RealSpaceKernel) XY(q float64) (x, y float64, err error) {
	if q < k.qMin || q > k.qMax {
		return 0, 0, fmt.Errorf("%w: separation q=%g outside [%g, %g]", ErrDomain, q, k.qMin, k.qMax)
	}
	lnq := math.Log(q)
	return k.splX.Predict(lnq), k.splY.Predict(lnq), nil
}

// SigmaPsi2 returns the 1-D displacement-field dispersion σ_ψ².
func (k *RealSpaceKernel) SigmaPsi2() float64 { return k.sigmaPsi2 }

// SigmaV returns the 1-D displacement dispersion σ_ψ in Mpc/h.
func (k *RealSpaceKernel) SigmaV() float64 { return math.Sqrt(k.sigmaPsi2) }

// Sigma8 returns the owning cosmology's normalization at build time,
// used for staleness detection.
func (k *RealSpaceKernel) Sigma8() float64 { return k.sigma8 }

// QRange returns the grid's separation bounds.
func (k *RealSpaceKernel) QRange() (qMin, qMax float64) { return k.qMin, k.qMax }
