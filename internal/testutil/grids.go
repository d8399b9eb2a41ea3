package testutil

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// LogSpace returns n logarithmically spaced points covering [min, max]
// inclusive.
func LogSpace(min, max float64, n int) []float64 {
	if n == 1 {
		return []float64{min}
	}
	return floats.LogSpan(make([]float64, n), min, max)
}

// BBKSShape evaluates the Bardeen et al. transfer-function shape at
// q = k/(Omega_m h). Used as a deterministic stand-in transfer function
// for tabulated-fit tests.
func BBKSShape(q float64) float64 {
	if q == 0 {
		return 1
	}
	poly := 1 + 3.89*q + math.Pow(16.1*q, 2) + math.Pow(5.46*q, 3) + math.Pow(6.71*q, 4)
	return math.Log(1+2.34*q) / (2.34 * q) * math.Pow(poly, -0.25)
}

// TransferTable renders a whitespace-separated (k, T) table with a header
// row, sampling the BBKS shape on a log grid. It feeds the tabulated-fit
// loaders in tests.
func TransferTable(kmin, kmax float64, n int) string {
	var sb strings.Builder
	sb.WriteString("# k T\n")
	for _, k := range LogSpace(kmin, kmax, n) {
		fmt.Fprintf(&sb, "%.10e %.10e\n", k, BBKSShape(k/0.2))
	}
	return sb.String()
}
