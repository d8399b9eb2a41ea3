package transfer

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-cosmo/internal/specfun"
)

// Params holds the cosmological parameters the analytic fits depend on.
// H is the dimensionless Hubble parameter.
type Params struct {
	OmegaM float64
	OmegaB float64
	OmegaL float64
	H      float64
	Tcmb   float64
}

func (p Params) validate() error {
	if p.OmegaM <= 0 || p.OmegaB < 0 || p.OmegaB >= p.OmegaM || p.H <= 0 || p.Tcmb <= 0 {
		return fmt.Errorf("%w: OmegaM=%g OmegaB=%g h=%g Tcmb=%g",
			ErrConfig, p.OmegaM, p.OmegaB, p.H, p.Tcmb)
	}
	return nil
}

func checkWavenumber(k float64) error {
	if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return fmt.Errorf("%w: wavenumber k=%g must be positive and finite", ErrDomain, k)
	}
	return nil
}

// EisensteinHu evaluates the full Eisenstein & Hu (1998) transfer
// function fit, including baryon acoustic oscillations, at k in h/Mpc.
func EisensteinHu(p Params, k float64) (float64, error) {
	if err := checkWavenumber(k); err != nil {
		return 0, err
	}
	if err := p.validate(); err != nil {
		return 0, err
	}

	kM := k * p.H // 1/Mpc, the units of the published fit
	theta := p.Tcmb / 2.7
	theta2 := theta * theta
	theta4 := theta2 * theta2
	omh2 := p.OmegaM * p.H * p.H
	obh2 := p.OmegaB * p.H * p.H
	fb := p.OmegaB / p.OmegaM
	fc := 1 - fb

	zEq := 2.50e4 * omh2 / theta4
	kEq := 7.46e-2 * omh2 / theta2

	b1 := 0.313 * math.Pow(omh2, -0.419) * (1 + 0.607*math.Pow(omh2, 0.674))
	b2 := 0.238 * math.Pow(omh2, 0.223)
	zDrag := 1291 * math.Pow(omh2, 0.251) / (1 + 0.659*math.Pow(omh2, 0.828)) *
		(1 + b1*math.Pow(obh2, b2))

	rAt := func(z float64) float64 { return 31.5 * obh2 / theta4 * 1e3 / z }
	rDrag := rAt(zDrag)
	rEq := rAt(zEq)

	s := 2.0 / (3 * kEq) * math.Sqrt(6/rEq) *
		math.Log((math.Sqrt(1+rDrag)+math.Sqrt(rDrag+rEq))/(1+math.Sqrt(rEq)))
	kSilk := 1.6 * math.Pow(obh2, 0.52) * math.Pow(omh2, 0.73) *
		(1 + math.Pow(10.4*omh2, -0.95))

	q := kM / (13.41 * kEq)

	a1 := math.Pow(46.9*omh2, 0.670) * (1 + math.Pow(32.1*omh2, -0.532))
	a2 := math.Pow(12.0*omh2, 0.424) * (1 + math.Pow(45.0*omh2, -0.582))
	alphaC := math.Pow(a1, -fb) * math.Pow(a2, -fb*fb*fb)

	bb1 := 0.944 / (1 + math.Pow(458*omh2, -0.708))
	bb2 := math.Pow(0.395*omh2, -0.0266)
	betaC := 1 / (1 + bb1*(math.Pow(fc, bb2)-1))

	t0 := func(alpha, beta float64) float64 {
		c := 14.2/alpha + 386/(1+69.9*math.Pow(q, 1.08))
		l := math.Log(math.E + 1.8*beta*q)
		return l / (l + c*q*q)
	}

	ks := kM * s
	f := 1 / (1 + math.Pow(ks/5.4, 4))
	tc := f*t0(1, betaC) + (1-f)*t0(alphaC, betaC)

	y := (1 + zEq) / (1 + zDrag)
	sy := math.Sqrt(1 + y)
	gy := y * (-6*sy + (2+3*y)*math.Log((sy+1)/(sy-1)))
	alphaB := 2.07 * kEq * s * math.Pow(1+rDrag, -0.75) * gy
	betaB := 0.5 + fb + (3-2*fb)*math.Sqrt(math.Pow(17.2*omh2, 2)+1)

	betaNode := 8.41 * math.Pow(omh2, 0.435)
	sTilde := s / math.Cbrt(1+math.Pow(betaNode/ks, 3))

	tb := (t0(1, 1)/(1+math.Pow(ks/5.2, 2)) +
		alphaB/(1+math.Pow(betaB/ks, 3))*math.Exp(-math.Pow(kM/kSilk, 1.4))) *
		specfun.SphericalJ0(kM*sTilde)

	return fb*tb + fc*tc, nil
}

// EisensteinHuNoWiggle evaluates the baryon-smoothed Eisenstein & Hu
// (1998) shape fit, with the acoustic oscillations averaged out, at k in
// h/Mpc.
func EisensteinHuNoWiggle(p Params, k float64) (float64, error) {
	if err := checkWavenumber(k); err != nil {
		return 0, err
	}
	if err := p.validate(); err != nil {
		return 0, err
	}

	theta := p.Tcmb / 2.7
	omh2 := p.OmegaM * p.H * p.H
	obh2 := p.OmegaB * p.H * p.H
	fb := p.OmegaB / p.OmegaM

	s := 44.5 * math.Log(9.83/omh2) / math.Sqrt(1+10*math.Pow(obh2, 0.75))
	alphaG := 1 - 0.328*math.Log(431*omh2)*fb + 0.38*math.Log(22.3*omh2)*fb*fb
	gammaEff := p.OmegaM * p.H *
		(alphaG + (1-alphaG)/(1+math.Pow(0.43*k*p.H*s, 4)))

	q := k * theta * theta / gammaEff
	l0 := math.Log(2*math.E + 1.8*q)
	c0 := 14.2 + 731/(1+62.5*q)
	return l0 / (l0 + c0*q*q), nil
}

// BBKS evaluates the Bardeen, Bond, Kaiser & Szalay (1986) transfer
// function with the Sugiyama (1995) baryon correction to the shape
// parameter, at k in h/Mpc.
func BBKS(p Params, k float64) (float64, error) {
	if err := checkWavenumber(k); err != nil {
		return 0, err
	}
	if err := p.validate(); err != nil {
		return 0, err
	}

	theta := p.Tcmb / 2.7
	gamma := p.OmegaM * p.H *
		math.Exp(-p.OmegaB-math.Sqrt(2*p.H)*p.OmegaB/p.OmegaM)
	q := k * theta * theta / gamma

	poly := 1 + 3.89*q + math.Pow(16.1*q, 2) + math.Pow(5.46*q, 3) + math.Pow(6.71*q, 4)
	return math.Log1p(2.34*q) / (2.34 * q) * math.Pow(poly, -0.25), nil
}
