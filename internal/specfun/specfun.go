// Package specfun provides the spherical special functions used by the
// power-spectrum transforms: low-order spherical Bessel functions, the
// scaled ratio j_n(x)/x^n for arbitrary order, and the spherical tophat
// window.
package specfun

import "math"

// Series switchover: below this |x| the closed forms for j0..j2 suffer
// catastrophic cancellation and the Taylor expansion is used instead.
const seriesCutoff = 1e-2

// SphericalJ0 computes j0(x) = sin(x)/x.
func SphericalJ0(x float64) float64 {
	if math.Abs(x) < seriesCutoff {
		x2 := x * x
		return 1 - x2/6*(1-x2/20)
	}
	return math.Sin(x) / x
}

// SphericalJ1 computes j1(x) = sin(x)/x^2 - cos(x)/x.
func SphericalJ1(x float64) float64 {
	if math.Abs(x) < seriesCutoff {
		x2 := x * x
		return x / 3 * (1 - x2/10*(1-x2/28))
	}
	return (math.Sin(x)/x - math.Cos(x)) / x
}

// SphericalJ2 computes j2(x) = (3/x^3 - 1/x) sin(x) - 3 cos(x)/x^2.
func SphericalJ2(x float64) float64 {
	if math.Abs(x) < seriesCutoff {
		x2 := x * x
		return x2 / 15 * (1 - x2/14*(1-x2/36))
	}
	s, c := math.Sincos(x)
	return ((3/(x*x)-1)*s - 3*c/x) / x
}

// JOverXn computes j_n(x)/x^n for n >= 0 and x >= 0.
//
// For small arguments the limit x^n/(2n+1)!! dominates and a three-term
// Taylor series is used; the recurrence route would underflow long before
// that. Elsewhere j_n comes from Miller's downward recurrence normalized
// against j0.
func JOverXn(n int, x float64) float64 {
	switch n {
	case 0:
		return SphericalJ0(x)
	case 1:
		if x == 0 {
			return 1.0 / 3
		}
		return SphericalJ1(x) / x
	}

	if x < 0.5*math.Sqrt(float64(2*n+3)) {
		// j_n(x)/x^n = sum_m (-x^2/2)^m / (m! (2n+2m+1)!!), summed to
		// machine precision; terms decay geometrically in this region.
		x2h := -0.5 * x * x
		term := 1.0 / doubleFactorial(2*n+1)
		sum := term
		for m := 1; m < 40; m++ {
			term *= x2h / (float64(m) * float64(2*n+2*m+1))
			sum += term
			if math.Abs(term) < 1e-17*math.Abs(sum) {
				break
			}
		}
		return sum
	}

	jn := sphericalJn(n, x)
	return jn / math.Pow(x, float64(n))
}

// sphericalJn evaluates j_n(x) for x not small. Upward recurrence is
// stable while the order stays below the argument; above that Miller's
// downward recurrence normalized against j0 takes over.
func sphericalJn(n int, x float64) float64 {
	switch n {
	case 0:
		return SphericalJ0(x)
	case 1:
		return SphericalJ1(x)
	}

	if float64(n) < x {
		jm1 := SphericalJ0(x)
		j := SphericalJ1(x)
		for m := 1; m < n; m++ {
			jm1, j = j, float64(2*m+1)/x*j-jm1
		}
		return j
	}

	start := n + 16 + int(x)
	jp1 := 0.0
	j := 1e-30
	var jn float64
	for m := start; m >= 1; m-- {
		jm1 := float64(2*m+1)/x*j - jp1
		jp1 = j
		j = jm1
		if m-1 == n {
			jn = j
		}
		// Rescale to dodge overflow on long recurrences.
		if math.Abs(j) > 1e100 {
			j *= 1e-100
			jp1 *= 1e-100
			jn *= 1e-100
		}
	}
	// j now holds the unnormalized j0.
	return jn * SphericalJ0(x) / j
}

func doubleFactorial(n int) float64 {
	f := 1.0
	for m := n; m > 1; m -= 2 {
		f *= float64(m)
	}
	return f
}

// Tophat computes the spherical tophat window W(x) = 3 j1(x)/x, the
// Fourier transform of a uniform sphere. W(0) = 1.
func Tophat(x float64) float64 {
	if x == 0 {
		return 1
	}
	return 3 * SphericalJ1(x) / x
}
