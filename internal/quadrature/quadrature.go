// Package quadrature provides the one-dimensional integrators shared by
// the normalization and transform code: an adaptive bisection scheme over
// fixed Gauss-Legendre panels, and an oscillatory integrator that walks
// half-period subintervals until the tail contribution is negligible.
package quadrature

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// ErrConverge is returned when an integral fails to reach the requested
// tolerance within the configured subdivision or interval budget.
var ErrConverge = errors.New("quadrature: failed to converge within budget")

const (
	defaultTol          = 1e-9
	defaultPanel        = 8
	defaultMaxDepth     = 28
	defaultMaxIntervals = 4000
)

type config struct {
	tol          float64
	panel        int
	maxDepth     int
	maxIntervals int
	scale        float64
}

// Option configures an integration call.
type Option func(*config)

// WithTolerance sets the relative tolerance target.
func WithTolerance(tol float64) Option {
	return func(c *config) {
		if tol > 0 {
			c.tol = tol
		}
	}
}

// WithPanel sets the Gauss-Legendre panel size (points per estimate).
func WithPanel(n int) Option {
	return func(c *config) {
		if n > 1 {
			c.panel = n
		}
	}
}

// WithMaxDepth limits the bisection depth of the adaptive integrator.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithMaxIntervals limits how many half-period subintervals the
// oscillatory integrator may accumulate.
func WithMaxIntervals(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxIntervals = n
		}
	}
}

// WithScale gives the integrators an external magnitude to judge
// contributions against. Without it the integral's own value is the
// only yardstick, which over-resolves integrals whose value is tiny
// compared to the integrand's natural scale.
func WithScale(s float64) Option {
	return func(c *config) {
		if s > 0 {
			c.scale = s
		}
	}
}

func applyOptions(opts []Option) config {
	c := config{
		tol:          defaultTol,
		panel:        defaultPanel,
		maxDepth:     defaultMaxDepth,
		maxIntervals: defaultMaxIntervals,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}

// Integrate computes the integral of f over [a, b] by adaptive bisection.
// Each interval is estimated with an n-point and a 2n-point Gauss-Legendre
// panel; the difference drives refinement. Intervals get a share of the
// absolute error budget proportional to their length.
func Integrate(f func(float64) float64, a, b float64, opts ...Option) (float64, error) {
	cfg := applyOptions(opts)
	if a == b {
		return 0, nil
	}
	if b < a {
		v, err := Integrate(f, b, a, opts...)
		return -v, err
	}

	rough := quad.Fixed(f, a, b, 2*cfg.panel, nil, 0)
	absTol := cfg.tol * math.Max(math.Abs(rough), math.Max(cfg.scale, 1e-280))

	v, err := bisect(f, a, b, absTol, cfg.panel, cfg.maxDepth)
	if err != nil {
		return v, fmt.Errorf("%w: interval [%g, %g]", ErrConverge, a, b)
	}
	return v, nil
}

func bisect(f func(float64) float64, a, b, absTol float64, panel, depth int) (float64, error) {
	coarse := quad.Fixed(f, a, b, panel, nil, 0)
	fine := quad.Fixed(f, a, b, 2*panel, nil, 0)
	if math.Abs(fine-coarse) <= absTol {
		return fine, nil
	}
	if depth <= 0 {
		return fine, ErrConverge
	}

	mid := 0.5 * (a + b)
	left, errL := bisect(f, a, mid, 0.5*absTol, panel, depth-1)
	right, errR := bisect(f, mid, b, 0.5*absTol, panel, depth-1)
	if errL != nil {
		return left + right, errL
	}
	return left + right, errR
}

// Oscillatory integrates f over [a, inf) for an integrand oscillating
// with the given half-period. Contributions of consecutive half-period
// subintervals are accumulated until two successive ones both fall below
// the tolerance relative to the running total.
func Oscillatory(f func(float64) float64, a, halfPeriod float64, opts ...Option) (float64, error) {
	cfg := applyOptions(opts)
	if halfPeriod <= 0 {
		return 0, fmt.Errorf("%w: half-period must be positive, got %g", ErrConverge, halfPeriod)
	}

	sub := []Option{
		WithTolerance(0.1 * cfg.tol),
		WithPanel(cfg.panel),
		WithMaxDepth(cfg.maxDepth),
	}

	total := 0.0
	prev := math.Inf(1)
	for m := 0; m < cfg.maxIntervals; m++ {
		lo := a + float64(m)*halfPeriod
		hi := lo + halfPeriod
		v, err := Integrate(f, lo, hi, sub...)
		if err != nil {
			return total, err
		}
		total += v

		scale := math.Max(math.Abs(total), math.Max(cfg.scale, 1e-280))
		if m > 2 && math.Abs(v) < cfg.tol*scale && math.Abs(prev) < cfg.tol*scale {
			return total, nil
		}
		prev = v
	}
	return total, fmt.Errorf("%w: tail still significant after %d half-periods", ErrConverge, cfg.maxIntervals)
}
