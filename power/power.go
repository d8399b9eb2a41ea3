// Package power exposes linear matter power spectra and quantities
// derived from them. The Spectrum interface is the capability surface
// consumed by the transform code in power/zeldovich; any implementation
// with Evaluate, EvaluateMany and Cosmology plugs in.
package power

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-cosmo/cosmo"
	"github.com/cwbudde/algo-cosmo/cosmo/background"
)

var (
	ErrDomain = errors.New("power: argument outside domain")
	ErrConfig = errors.New("power: invalid configuration")
)

// Spectrum is an isotropic power spectrum P(k) with k in h/Mpc and P in
// (Mpc/h)^3.
type Spectrum interface {
	Evaluate(k float64) (float64, error)
	EvaluateMany(k []float64) ([]float64, error)
	Cosmology() *cosmo.Cosmology
}

// Linear is the normalized linear matter power spectrum at a fixed
// redshift,
//
//	P(k, z) = 2π²/k³ · δ_H² (c k/H0)^(3+ns) T(k)² D(z)².
type Linear struct {
	c      *cosmo.Cosmology
	z      float64
	growth float64
}

var _ Spectrum = (*Linear)(nil)

// NewLinear builds the linear spectrum for the given cosmology at
// redshift z.
func NewLinear(c *cosmo.Cosmology, z float64) (*Linear, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil cosmology", ErrConfig)
	}
	d, err := c.Background().GrowthD(z)
	if err != nil {
		return nil, err
	}
	return &Linear{c: c, z: z, growth: d}, nil
}

// Cosmology returns the owning cosmology.
func (p *Linear) Cosmology() *cosmo.Cosmology { return p.c }

// Redshift returns the evaluation redshift.
func (p *Linear) Redshift() float64 { return p.z }

// GrowthFactor returns D(z) captured at construction.
func (p *Linear) GrowthFactor() float64 { return p.growth }

// SetRedshift moves the spectrum to a new redshift, recomputing the
// growth factor.
func (p *Linear) SetRedshift(z float64) error {
	d, err := p.c.Background().GrowthD(z)
	if err != nil {
		return err
	}
	p.z = z
	p.growth = d
	return nil
}

// Evaluate computes P(k, z) at k in h/Mpc.
func (p *Linear) Evaluate(k float64) (float64, error) {
	if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return 0, fmt.Errorf("%w: wavenumber k=%g must be positive and finite", ErrDomain, k)
	}
	t, err := p.c.EvaluateTransfer(k)
	if err != nil {
		return 0, err
	}
	ns := p.c.Background().Ns()
	dh := p.c.DeltaH()
	shape := math.Pow(background.HubbleDistance*k, 3+ns) / (k * k * k)
	return 2 * math.Pi * math.Pi * dh * dh * shape * t * t * p.growth * p.growth, nil
}

// EvaluateMany evaluates the spectrum at each wavenumber, preserving
// order. The shared amplitude is applied in one vectorized pass.
func (p *Linear) EvaluateMany(ks []float64) ([]float64, error) {
	out := make([]float64, len(ks))
	ns := p.c.Background().Ns()
	for i, k := range ks {
		if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
			return nil, fmt.Errorf("%w: wavenumber k=%g at index %d", ErrDomain, k, i)
		}
		t, err := p.c.EvaluateTransfer(k)
		if err != nil {
			return nil, err
		}
		out[i] = math.Pow(background.HubbleDistance*k, 3+ns) / (k * k * k) * t * t
	}
	dh := p.c.DeltaH()
	amp := 2 * math.Pi * math.Pi * dh * dh * p.growth * p.growth
	vecmath.ScaleBlockInPlace(out, amp)
	return out, nil
}
