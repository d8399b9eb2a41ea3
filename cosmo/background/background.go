// Package background implements the homogeneous background cosmology:
// density parameters, expansion rate, comoving distance, and the linear
// growth factor and growth rate consumed by the power-spectrum code.
package background

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-cosmo/cosmo/transfer"
	"github.com/cwbudde/algo-cosmo/internal/quadrature"
)

var (
	ErrInvalidDensity  = errors.New("background: density parameters out of range")
	ErrInvalidHubble   = errors.New("background: hubble parameter must be positive")
	ErrInvalidTcmb     = errors.New("background: CMB temperature must be positive")
	ErrInvalidRedshift = errors.New("background: redshift must be greater than -1")
)

// HubbleDistance is c/H0 in Mpc/h.
const HubbleDistance = 2997.92458

// Params holds the background cosmological parameters. H is the
// dimensionless Hubble parameter (H0 / 100 km/s/Mpc).
type Params struct {
	OmegaM float64
	OmegaB float64
	OmegaL float64
	H      float64
	Ns     float64
	Tcmb   float64
}

// Default returns a flat Planck-like parameter set.
func Default() Params {
	return Params{
		OmegaM: 0.3156,
		OmegaB: 0.0492,
		OmegaL: 0.6844,
		H:      0.6727,
		Ns:     0.9645,
		Tcmb:   2.7255,
	}
}

// Validate checks the parameter set for physical consistency.
func (p Params) Validate() error {
	if p.OmegaM <= 0 || p.OmegaB < 0 || p.OmegaB > p.OmegaM || p.OmegaL < 0 {
		return fmt.Errorf("%w: OmegaM=%g OmegaB=%g OmegaL=%g", ErrInvalidDensity, p.OmegaM, p.OmegaB, p.OmegaL)
	}
	if p.H <= 0 {
		return fmt.Errorf("%w: h=%g", ErrInvalidHubble, p.H)
	}
	if p.Tcmb <= 0 {
		return fmt.Errorf("%w: Tcmb=%g", ErrInvalidTcmb, p.Tcmb)
	}
	return nil
}

// Model is an immutable background solver built from a validated
// parameter set. The growth-factor normalization is computed once at
// construction.
type Model struct {
	p          Params
	omegaK     float64
	growthNorm float64 // unnormalized D at a = 1
}

// New builds a background model. The growth normalization integral runs
// at construction, so construction can fail on pathological parameters.
func New(p Params) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m := &Model{p: p, omegaK: 1 - p.OmegaM - p.OmegaL}
	norm, err := m.growthUnnormalized(1)
	if err != nil {
		return nil, err
	}
	if norm <= 0 || math.IsNaN(norm) {
		return nil, fmt.Errorf("%w: growth normalization %g", ErrInvalidDensity, norm)
	}
	m.growthNorm = norm
	return m, nil
}

// Params returns a copy of the construction parameters.
func (m *Model) Params() Params { return m.p }

func (m *Model) OmegaM() float64 { return m.p.OmegaM }
func (m *Model) OmegaB() float64 { return m.p.OmegaB }
func (m *Model) OmegaL() float64 { return m.p.OmegaL }
func (m *Model) OmegaK() float64 { return m.omegaK }
func (m *Model) H() float64      { return m.p.H }
func (m *Model) Ns() float64     { return m.p.Ns }
func (m *Model) Tcmb() float64   { return m.p.Tcmb }

// E computes the dimensionless expansion rate H(z)/H0.
func (m *Model) E(z float64) float64 {
	zp1 := 1 + z
	return math.Sqrt(m.p.OmegaM*zp1*zp1*zp1 + m.omegaK*zp1*zp1 + m.p.OmegaL)
}

// HubbleRate computes H(z) in km/s/Mpc.
func (m *Model) HubbleRate(z float64) float64 {
	return 100 * m.p.H * m.E(z)
}

// OmegaMAt computes the matter density parameter at redshift z.
func (m *Model) OmegaMAt(z float64) float64 {
	zp1 := 1 + z
	e := m.E(z)
	return m.p.OmegaM * zp1 * zp1 * zp1 / (e * e)
}

// ComovingDistance computes the line-of-sight comoving distance to z in
// Mpc/h.
func (m *Model) ComovingDistance(z float64) (float64, error) {
	if z <= -1 {
		return 0, fmt.Errorf("%w: z=%g", ErrInvalidRedshift, z)
	}
	v, err := quadrature.Integrate(func(zp float64) float64 {
		return 1 / m.E(zp)
	}, 0, z)
	if err != nil {
		return 0, err
	}
	return HubbleDistance * v, nil
}

// GrowthD computes the linear growth factor D(z), normalized so that
// D(0) = 1, from the standard integral
//
//	D(a) ∝ E(a) ∫_0^a da' / (a' E(a'))^3.
func (m *Model) GrowthD(z float64) (float64, error) {
	if z <= -1 {
		return 0, fmt.Errorf("%w: z=%g", ErrInvalidRedshift, z)
	}
	d, err := m.growthUnnormalized(1 / (1 + z))
	if err != nil {
		return 0, err
	}
	return d / m.growthNorm, nil
}

func (m *Model) growthUnnormalized(a float64) (float64, error) {
	integral, err := quadrature.Integrate(func(ap float64) float64 {
		ez := m.E(1/ap - 1)
		x := ap * ez
		return 1 / (x * x * x)
	}, 0, a, quadrature.WithTolerance(1e-10))
	if err != nil {
		return 0, err
	}
	return m.E(1/a-1) * integral, nil
}

// GrowthRate computes the linear growth rate f(z) = dlnD/dlna using the
// Omega_m(z)^0.55 approximation.
func (m *Model) GrowthRate(z float64) (float64, error) {
	if z <= -1 {
		return 0, fmt.Errorf("%w: z=%g", ErrInvalidRedshift, z)
	}
	return math.Pow(m.OmegaMAt(z), 0.55), nil
}

// Transfer evaluates the model's native transfer function, the full
// Eisenstein-Hu fit for its own parameters. It backs the delegate
// transfer fit the same way the original code forwards to its Boltzmann
// solver.
func (m *Model) Transfer(k float64) (float64, error) {
	return transfer.EisensteinHu(m.transferParams(), k)
}

func (m *Model) transferParams() transfer.Params {
	return transfer.Params{
		OmegaM: m.p.OmegaM,
		OmegaB: m.p.OmegaB,
		OmegaL: m.p.OmegaL,
		H:      m.p.H,
		Tcmb:   m.p.Tcmb,
	}
}
