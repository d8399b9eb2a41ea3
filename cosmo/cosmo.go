// Package cosmo ties a background solver to a transfer-function model
// and owns the sigma8 normalization of the linear power spectrum.
//
// The normalization amplitude delta_H is recomputed synchronously inside
// every mutator that can invalidate it, so readers never observe a stale
// amplitude.
package cosmo

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-cosmo/cosmo/background"
	"github.com/cwbudde/algo-cosmo/cosmo/transfer"
	"github.com/cwbudde/algo-cosmo/internal/quadrature"
	"github.com/cwbudde/algo-cosmo/internal/specfun"
)

var (
	ErrConfig    = errors.New("cosmo: invalid configuration")
	ErrDomain    = errors.New("cosmo: argument outside domain")
	ErrNumerical = errors.New("cosmo: numerical integration failed")
)

// sigma8Radius is the smoothing scale of the normalization statistic,
// in Mpc/h.
const sigma8Radius = 8.0

// Background is the read-only surface of the external background
// solver consumed here and by the power-spectrum code.
type Background interface {
	OmegaM() float64
	OmegaB() float64
	OmegaL() float64
	H() float64
	Ns() float64
	Tcmb() float64
	GrowthD(z float64) (float64, error)
	GrowthRate(z float64) (float64, error)
	Transfer(k float64) (float64, error)
}

var _ Background = (*background.Model)(nil)

// Option configures construction of a Cosmology.
type Option func(*config)

type config struct {
	fit        transfer.Fit
	tableSrc   io.Reader
	kcol, tcol int
	sigma8     float64
}

// WithTransferFit selects the transfer-function fit strategy.
func WithTransferFit(fit transfer.Fit) Option {
	return func(c *config) { c.fit = fit }
}

// WithTransferTable supplies the tabulated data source and its
// 1-indexed k and T columns. Implies the tabulated fit.
func WithTransferTable(src io.Reader, kcol, tcol int) Option {
	return func(c *config) {
		c.fit = transfer.FitTabulated
		c.tableSrc = src
		c.kcol, c.tcol = kcol, tcol
	}
}

// WithSigma8 sets the normalization target. Default 0.8.
func WithSigma8(sigma8 float64) Option {
	return func(c *config) { c.sigma8 = sigma8 }
}

// Cosmology owns exactly one transfer-function model and the scalar
// normalization converting its shape into an absolute power amplitude.
type Cosmology struct {
	bg     Background
	model  *transfer.Model
	sigma8 float64
	deltaH float64
}

// New builds a Cosmology around the given background solver. The
// transfer model is built and normalized eagerly; construction fails
// rather than producing a partially initialized value.
func New(bg Background, opts ...Option) (*Cosmology, error) {
	if bg == nil {
		return nil, fmt.Errorf("%w: nil background solver", ErrConfig)
	}
	cfg := config{fit: transfer.FitEisensteinHu, kcol: 1, tcol: 2, sigma8: 0.8}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	c := &Cosmology{bg: bg, sigma8: cfg.sigma8}
	model, err := c.buildModel(cfg.fit, cfg.tableSrc, cfg.kcol, cfg.tcol)
	if err != nil {
		return nil, err
	}
	c.model = model
	if err := c.NormalizeTransferFunction(cfg.sigma8); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cosmology) buildModel(fit transfer.Fit, src io.Reader, kcol, tcol int) (*transfer.Model, error) {
	switch fit {
	case transfer.FitDelegate:
		return transfer.NewDelegate(c.bg.Transfer)
	case transfer.FitTabulated:
		if src == nil {
			return nil, fmt.Errorf("%w: fit %v requires a table source", ErrConfig, fit)
		}
		table, err := transfer.ParseTable(src, kcol, tcol)
		if err != nil {
			return nil, err
		}
		return transfer.NewTabulated(table)
	default:
		return transfer.NewAnalytic(fit, c.transferParams())
	}
}

func (c *Cosmology) transferParams() transfer.Params {
	return transfer.Params{
		OmegaM: c.bg.OmegaM(),
		OmegaB: c.bg.OmegaB(),
		OmegaL: c.bg.OmegaL(),
		H:      c.bg.H(),
		Tcmb:   c.bg.Tcmb(),
	}
}

// SetTransferFunction replaces the active model wholesale and
// renormalizes to the current sigma8 target before returning. src is
// required for the tabulated fit (default columns 1 and 2) and ignored
// otherwise.
func (c *Cosmology) SetTransferFunction(fit transfer.Fit, src io.Reader) error {
	model, err := c.buildModel(fit, src, 1, 2)
	if err != nil {
		return err
	}
	old := c.model
	c.model = model
	if err := c.NormalizeTransferFunction(c.sigma8); err != nil {
		c.model = old
		return err
	}
	return nil
}

// LoadTransferFunction re-parses tabulated data from the designated
// 1-indexed columns and rebuilds the spline. Only valid while the
// active fit is tabulated. Renormalizes before returning.
func (c *Cosmology) LoadTransferFunction(src io.Reader, kcol, tcol int) error {
	if c.model.Fit() != transfer.FitTabulated {
		return fmt.Errorf("%w: active fit is %v, not tabulated", ErrConfig, c.model.Fit())
	}
	table, err := transfer.ParseTable(src, kcol, tcol)
	if err != nil {
		return err
	}
	model, err := transfer.NewTabulated(table)
	if err != nil {
		return err
	}
	old := c.model
	c.model = model
	if err := c.NormalizeTransferFunction(c.sigma8); err != nil {
		c.model = old
		return err
	}
	return nil
}

// NormalizeTransferFunction recomputes the amplitude delta_H so that
// the variance of the density field smoothed with a spherical tophat at
// 8 Mpc/h equals sigma8^2. The variance scales with the amplitude
// squared, so a single integral fixes it.
func (c *Cosmology) NormalizeTransferFunction(sigma8 float64) error {
	if sigma8 <= 0 || math.IsNaN(sigma8) {
		return fmt.Errorf("%w: sigma8=%g must be positive", ErrDomain, sigma8)
	}

	integral, err := c.sigmaSquaredShape(sigma8Radius)
	if err != nil {
		return err
	}
	if integral <= 0 || math.IsNaN(integral) {
		return fmt.Errorf("%w: variance integral %g", ErrDomain, integral)
	}

	c.sigma8 = sigma8
	c.deltaH = sigma8 / math.Sqrt(integral)
	return nil
}

// sigmaSquaredShape computes the unit-amplitude variance integral
//
//	∫ dlnk (c k/H0)^(3+ns) T(k)^2 W(kR)^2
//
// over the support of the tophat window.
func (c *Cosmology) sigmaSquaredShape(radius float64) (float64, error) {
	ns := c.bg.Ns()
	var evalErr error
	f := func(lnk float64) float64 {
		if evalErr != nil {
			return 0
		}
		k := math.Exp(lnk)
		t, err := c.model.Evaluate(k)
		if err != nil {
			evalErr = err
			return 0
		}
		w := specfun.Tophat(k * radius)
		return math.Pow(background.HubbleDistance*k, 3+ns) * t * t * w * w
	}

	v, err := quadrature.Integrate(f, math.Log(1e-6), math.Log(1e3),
		quadrature.WithTolerance(1e-10), quadrature.WithMaxDepth(40))
	if evalErr != nil {
		return 0, evalErr
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNumerical, err)
	}
	return v, nil
}

// SigmaAt computes the normalized root-variance of the density field
// smoothed with a spherical tophat of the given radius (Mpc/h) at z = 0.
func (c *Cosmology) SigmaAt(radius float64) (float64, error) {
	if radius <= 0 {
		return 0, fmt.Errorf("%w: radius=%g must be positive", ErrDomain, radius)
	}
	v, err := c.sigmaSquaredShape(radius)
	if err != nil {
		return 0, err
	}
	return c.deltaH * math.Sqrt(v), nil
}

// EvaluateTransfer returns the unnormalized transfer function of the
// active model at k in h/Mpc. Power-spectrum collaborators combine it
// with DeltaH for absolute amplitude.
func (c *Cosmology) EvaluateTransfer(k float64) (float64, error) {
	return c.model.Evaluate(k)
}

// Sigma8 returns the normalization target currently in effect.
func (c *Cosmology) Sigma8() float64 { return c.sigma8 }

// DeltaH returns the linear power-spectrum amplitude at z = 0.
func (c *Cosmology) DeltaH() float64 { return c.deltaH }

// TransferFit returns the active fit strategy.
func (c *Cosmology) TransferFit() transfer.Fit { return c.model.Fit() }

// Background returns the underlying background solver.
func (c *Cosmology) Background() Background { return c.bg }
