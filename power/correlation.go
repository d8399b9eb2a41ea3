package power

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/interp"
)

const (
	defaultCorrelationKMax    = 10.0
	defaultCorrelationSamples = 8192
	taperFraction             = 0.1
)

// CorrelationOption configures the correlation-function transform.
type CorrelationOption func(*correlationConfig)

type correlationConfig struct {
	kMax    float64
	samples int
}

// WithKMax sets the truncation wavenumber of the sine transform.
func WithKMax(kMax float64) CorrelationOption {
	return func(c *correlationConfig) {
		if kMax > 0 {
			c.kMax = kMax
		}
	}
}

// WithSamples sets the FFT length (rounded up to a power of two).
func WithSamples(n int) CorrelationOption {
	return func(c *correlationConfig) {
		if n > 1 {
			c.samples = nextPowerOfTwo(n)
		}
	}
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Correlation is the two-point correlation function
//
//	ξ(r) = 1/(2π²) ∫ dk k² P(k) j0(kr),
//
// computed once as a discrete sine transform of k·P(k) over a uniform
// k grid and splined over the transform's natural r grid. A cosine
// taper on the upper decade of the grid suppresses truncation ringing.
type Correlation struct {
	ps     Spectrum
	r      []float64
	xi     []float64
	spline interp.FritschButland
}

// NewCorrelation builds ξ(r) from the given spectrum. This is the
// expensive step; evaluation afterwards is a spline lookup.
func NewCorrelation(ps Spectrum, opts ...CorrelationOption) (*Correlation, error) {
	if ps == nil {
		return nil, fmt.Errorf("%w: nil spectrum", ErrConfig)
	}
	cfg := correlationConfig{kMax: defaultCorrelationKMax, samples: defaultCorrelationSamples}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	n := cfg.samples
	dk := cfg.kMax / float64(n)

	// g(k) = k P(k) on the uniform grid, zero at k = 0.
	ks := make([]float64, n-1)
	for j := 1; j < n; j++ {
		ks[j-1] = float64(j) * dk
	}
	pk, err := ps.EvaluateMany(ks)
	if err != nil {
		return nil, err
	}

	g := make([]float64, n)
	vecmath.MulBlock(g[1:], ks, pk)

	applyTaper(g)

	data := make([]complex128, n)
	for j, v := range g {
		data[j] = complex(v, 0)
	}
	freq := make([]complex128, n)

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("correlation: failed to create FFT plan: %w", err)
	}
	if err := plan.Forward(freq, data); err != nil {
		return nil, fmt.Errorf("correlation: forward FFT failed: %w", err)
	}

	// Im F_m = -Σ g_j sin(2π j m / N), so
	// ξ(r_m) = -Δk Im F_m / (2π² r_m) at r_m = 2π m / (N Δk).
	half := n / 2
	c := &Correlation{
		ps: ps,
		r:  make([]float64, half-1),
		xi: make([]float64, half-1),
	}
	for m := 1; m < half; m++ {
		rm := 2 * math.Pi * float64(m) / (float64(n) * dk)
		c.r[m-1] = rm
		c.xi[m-1] = -dk * imag(freq[m]) / (2 * math.Pi * math.Pi * rm)
	}
	if err := c.spline.Fit(c.r, c.xi); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return c, nil
}

// applyTaper rolls the upper taperFraction of the samples off with a
// half-cosine so the truncated transform does not ring.
func applyTaper(g []float64) {
	n := len(g)
	start := int(float64(n) * (1 - taperFraction))
	width := n - 1 - start
	if width < 1 {
		return
	}
	for j := start; j < n; j++ {
		x := float64(j-start) / float64(width)
		g[j] *= 0.5 * (1 + math.Cos(math.Pi*x))
	}
}

// Separations returns the natural r grid of the transform, in Mpc/h.
func (c *Correlation) Separations() []float64 { return c.r }

// Values returns ξ at each grid separation.
func (c *Correlation) Values() []float64 { return c.xi }

// Evaluate interpolates ξ(r) inside the transform's r range.
func (c *Correlation) Evaluate(r float64) (float64, error) {
	if r < c.r[0] || r > c.r[len(c.r)-1] {
		return 0, fmt.Errorf("%w: separation r=%g outside [%g, %g]", ErrDomain, r, c.r[0], c.r[len(c.r)-1])
	}
	return c.spline.Predict(r), nil
}
