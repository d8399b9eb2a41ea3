package zeldovich

import (
	"fmt"

	"github.com/cwbudde/algo-cosmo/cosmo"
	"github.com/cwbudde/algo-cosmo/power"
)

// Moment is the surface shared by the Zel'dovich moments. It extends
// power.Spectrum with the mutators and the kernel accessor, and is the
// currency of the converting constructors: any moment can seed another
// without repeating the expensive kernel stage.
type Moment interface {
	power.Spectrum

	// Kernel returns the stage-(a) displacement kernel.
	Kernel() *RealSpaceKernel
	// Redshift returns the evaluation redshift.
	Redshift() float64
	// Sigma8 returns the amplitude target.
	Sigma8() float64
	// SetRedshift moves the evaluator to z, rescaling the growth
	// prefactor. Idempotent.
	SetRedshift(z float64) error
	// SetSigma8 retargets the amplitude; power rescales quadratically.
	SetSigma8(sigma8 float64) error

	state() *transform
}

// P00 is the Zel'dovich density auto power spectrum.
type P00 struct {
	t *transform
}

// P01 is the Zel'dovich density-momentum cross power spectrum,
// f(z) · dP00/dlnD.
type P01 struct {
	t *transform
}

var (
	_ Moment = (*P00)(nil)
	_ Moment = (*P01)(nil)
)

// NewP00 builds the density moment from a linear spectrum, running the
// kernel stage.
func NewP00(lin power.Spectrum, opts ...Option) (*P00, error) {
	t, err := newTransform(lin, opts...)
	if err != nil {
		return nil, err
	}
	return &P00{t: t}, nil
}

// NewP01 builds the momentum cross moment from a linear spectrum,
// running the kernel stage.
func NewP01(lin power.Spectrum, opts ...Option) (*P01, error) {
	t, err := newTransform(lin, opts...)
	if err != nil {
		return nil, err
	}
	return &P01{t: t}, nil
}

// NewP00From converts an existing moment into a density moment. The
// kernel and linear input are shared; redshift and amplitude state are
// copied and evolve independently afterwards.
func NewP00From(m Moment) (*P00, error) {
	t, err := cloneState(m)
	if err != nil {
		return nil, err
	}
	return &P00{t: t}, nil
}

// NewP01From converts an existing moment into a momentum cross moment,
// sharing its kernel.
func NewP01From(m Moment) (*P01, error) {
	t, err := cloneState(m)
	if err != nil {
		return nil, err
	}
	return &P01{t: t}, nil
}

func cloneState(m Moment) (*transform, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil source moment", ErrConfig)
	}
	clone := *m.state()
	return &clone, nil
}

func (p *P00) state() *transform { return p.t }
func (p *P01) state() *transform { return p.t }

// Evaluate computes P00(k) in (Mpc/h)³ at k in h/Mpc.
func (p *P00) Evaluate(k float64) (float64, error) { return p.t.evaluate(k, momentDensity) }

// EvaluateMany evaluates P00 at each wavenumber, preserving order.
func (p *P00) EvaluateMany(ks []float64) ([]float64, error) {
	return p.t.evaluateMany(ks, momentDensity)
}

// Evaluate computes P01(k) in (Mpc/h)³ at k in h/Mpc.
func (p *P01) Evaluate(k float64) (float64, error) { return p.t.evaluate(k, momentMomentum) }

// EvaluateMany evaluates P01 at each wavenumber, preserving order.
func (p *P01) EvaluateMany(ks []float64) ([]float64, error) {
	return p.t.evaluateMany(ks, momentMomentum)
}

// Cosmology returns the owning cosmology of the linear input.
func (p *P00) Cosmology() *cosmo.Cosmology { return p.t.lin.Cosmology() }

// Cosmology returns the owning cosmology of the linear input.
func (p *P01) Cosmology() *cosmo.Cosmology { return p.t.lin.Cosmology() }

// Linear returns the linear input spectrum.
func (p *P00) Linear() power.Spectrum { return p.t.lin }

// Linear returns the linear input spectrum.
func (p *P01) Linear() power.Spectrum { return p.t.lin }

func (p *P00) Kernel() *RealSpaceKernel { return p.t.kernel }
func (p *P01) Kernel() *RealSpaceKernel { return p.t.kernel }

func (p *P00) Redshift() float64 { return p.t.z }
func (p *P01) Redshift() float64 { return p.t.z }

func (p *P00) Sigma8() float64 { return p.t.sigma8 }
func (p *P01) Sigma8() float64 { return p.t.sigma8 }

func (p *P00) SetRedshift(z float64) error { return p.t.setRedshift(z) }
func (p *P01) SetRedshift(z float64) error { return p.t.setRedshift(z) }

func (p *P00) SetSigma8(sigma8 float64) error { return p.t.setSigma8(sigma8) }
func (p *P01) SetSigma8(sigma8 float64) error { return p.t.setSigma8(sigma8) }
