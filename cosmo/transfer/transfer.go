package transfer

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig flags an invalid fit-kind / parameter / data-source
	// combination.
	ErrConfig = errors.New("transfer: invalid configuration")
	// ErrFormat flags malformed tabulated input.
	ErrFormat = errors.New("transfer: malformed table")
	// ErrDomain flags evaluation outside the mathematical domain.
	ErrDomain = errors.New("transfer: argument outside domain")
)

// Fit identifies a transfer-function fit strategy.
type Fit int

const (
	// FitDelegate forwards to an external solver's own transfer routine.
	FitDelegate Fit = iota
	// FitEisensteinHu is the full Eisenstein & Hu 1998 fit with baryon
	// acoustic oscillations.
	FitEisensteinHu
	// FitEisensteinHuNoWiggle is the oscillation-averaged EH98 shape.
	FitEisensteinHuNoWiggle
	// FitBBKS is the Bardeen, Bond, Kaiser & Szalay 1986 fit.
	FitBBKS
	// FitTabulated interpolates (k, T) samples loaded from a table.
	FitTabulated
)

// String returns the fit name.
func (f Fit) String() string {
	switch f {
	case FitDelegate:
		return "delegate"
	case FitEisensteinHu:
		return "eisenstein-hu"
	case FitEisensteinHuNoWiggle:
		return "eisenstein-hu-nowiggle"
	case FitBBKS:
		return "bbks"
	case FitTabulated:
		return "tabulated"
	}
	return fmt.Sprintf("Fit(%d)", int(f))
}

// DelegateFunc is an external solver's transfer-function routine.
type DelegateFunc func(k float64) (float64, error)

// Model evaluates the unnormalized transfer function T(k) under exactly
// one fit strategy. Models are immutable; replacing the strategy means
// building a new model.
type Model struct {
	fit      Fit
	params   Params       // analytic fits
	delegate DelegateFunc // delegate fit
	tab      *tabulated   // tabulated fit
}

// NewAnalytic builds a model for one of the closed-form fits.
func NewAnalytic(fit Fit, p Params) (*Model, error) {
	switch fit {
	case FitEisensteinHu, FitEisensteinHuNoWiggle, FitBBKS:
	default:
		return nil, fmt.Errorf("%w: fit %v is not analytic", ErrConfig, fit)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Model{fit: fit, params: p}, nil
}

// NewDelegate builds a model forwarding every evaluation to fn.
func NewDelegate(fn DelegateFunc) (*Model, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: delegate fit requires a transfer routine", ErrConfig)
	}
	return &Model{fit: FitDelegate, delegate: fn}, nil
}

// NewTabulated builds a model interpolating the given table with a
// monotone cubic spline over ln k. Outside the tabulated range the
// model extrapolates with the endpoint's local log-log slope.
func NewTabulated(table Table) (*Model, error) {
	tab, err := newTabulated(table)
	if err != nil {
		return nil, err
	}
	return &Model{fit: FitTabulated, tab: tab}, nil
}

// Fit returns the active fit strategy.
func (m *Model) Fit() Fit { return m.fit }

// Table returns the tabulated samples, or a zero table for other fits.
func (m *Model) Table() Table {
	if m.tab == nil {
		return Table{}
	}
	return m.tab.table
}

// Evaluate returns the unnormalized transfer function at k in h/Mpc.
// k must be positive.
func (m *Model) Evaluate(k float64) (float64, error) {
	switch m.fit {
	case FitDelegate:
		if err := checkWavenumber(k); err != nil {
			return 0, err
		}
		return m.delegate(k)
	case FitEisensteinHu:
		return EisensteinHu(m.params, k)
	case FitEisensteinHuNoWiggle:
		return EisensteinHuNoWiggle(m.params, k)
	case FitBBKS:
		return BBKS(m.params, k)
	case FitTabulated:
		if err := checkWavenumber(k); err != nil {
			return 0, err
		}
		return m.tab.evaluate(k), nil
	}
	return 0, fmt.Errorf("%w: unknown fit %v", ErrConfig, m.fit)
}
