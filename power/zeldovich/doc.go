// Package zeldovich computes power-spectrum moments in the Zel'dovich
// approximation, where particles free-stream along their initial linear
// displacements.
//
// Evaluation is split into two stages. Stage (a) condenses the linear
// spectrum into a RealSpaceKernel: the displacement correlators X(q)
// and Y(q) and the dispersion σ_ψ², obtained from oscillatory
// Fourier-Bessel integrals and splined over separation. Stage (b) folds
// the kernel into the moment integral per wavenumber. The kernel is the
// expensive part and is shared between moments via the converting
// constructors NewP00From and NewP01From.
//
// Redshift and amplitude moves are exact prefactor rescalings: power
// scales as the squared growth ratio under SetRedshift and quadratically
// under SetSigma8, without touching the kernel. Renormalizing the owning
// cosmology itself invalidates the kernel; evaluators detect this and
// rebuild on the next call.
package zeldovich
