// Package transfer evaluates the dimensionless matter transfer function
// T(k) under one of five selectable fit strategies.
//
// Three analytic fits (Eisenstein-Hu, its no-wiggle variant, and BBKS)
// are pure closed-form functions of the cosmological parameters. The
// delegate fit forwards to an external solver's own transfer routine.
// The tabulated fit interpolates (k, T) samples with a monotone cubic
// spline over ln k; outside the sampled range it extrapolates with the
// endpoint's local log-log slope, so out-of-range queries stay finite
// and never clamp to a constant.
//
// All wavenumbers are in h/Mpc. Evaluation requires k > 0.
package transfer
