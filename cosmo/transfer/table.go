package transfer

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/interp"
)

// Table holds tabulated (k, T) transfer-function samples with strictly
// increasing k.
type Table struct {
	K []float64
	T []float64
}

// Validate checks the table invariants required by the tabulated fit:
// at least two samples, strictly increasing k, positive k and T.
func (t Table) Validate() error {
	if len(t.K) != len(t.T) {
		return fmt.Errorf("%w: %d wavenumbers vs %d transfer values", ErrFormat, len(t.K), len(t.T))
	}
	if len(t.K) < 2 {
		return fmt.Errorf("%w: need at least 2 rows, got %d", ErrFormat, len(t.K))
	}
	for i, k := range t.K {
		if k <= 0 || t.T[i] <= 0 {
			return fmt.Errorf("%w: row %d has non-positive sample (k=%g, T=%g)", ErrFormat, i, k, t.T[i])
		}
		if i > 0 && k <= t.K[i-1] {
			return fmt.Errorf("%w: k not strictly increasing at row %d (%g <= %g)", ErrFormat, i, k, t.K[i-1])
		}
	}
	return nil
}

// ParseTable reads a whitespace-separated numeric table from r, taking
// wavenumbers from column kcol and transfer values from column tcol
// (1-indexed). Lines starting with '#' are skipped, as is a leading
// header row that fails numeric parsing.
func ParseTable(r io.Reader, kcol, tcol int) (Table, error) {
	if kcol < 1 || tcol < 1 || kcol == tcol {
		return Table{}, fmt.Errorf("%w: column selection kcol=%d tcol=%d", ErrConfig, kcol, tcol)
	}

	var table Table
	sc := bufio.NewScanner(r)
	row := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		row++

		fields := strings.Fields(line)
		if len(fields) < kcol || len(fields) < tcol {
			return Table{}, fmt.Errorf("%w: row %d has %d columns, need %d", ErrFormat, row, len(fields), max(kcol, tcol))
		}

		k, errK := strconv.ParseFloat(fields[kcol-1], 64)
		t, errT := strconv.ParseFloat(fields[tcol-1], 64)
		if errK != nil || errT != nil {
			if row == 1 && len(table.K) == 0 {
				// Header row.
				continue
			}
			return Table{}, fmt.Errorf("%w: row %d is not numeric", ErrFormat, row)
		}
		table.K = append(table.K, k)
		table.T = append(table.T, t)
	}
	if err := sc.Err(); err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if err := table.Validate(); err != nil {
		return Table{}, err
	}
	return table, nil
}

// tabulated carries the spline and the endpoint cache used for
// power-law extrapolation beyond the sampled range.
type tabulated struct {
	table   Table
	spline  interp.FritschButland
	lnkMin  float64
	lnkMax  float64
	slopeLo float64 // dlnT/dlnk at the left edge
	slopeHi float64 // dlnT/dlnk at the right edge
}

func newTabulated(table Table) (*tabulated, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}

	n := len(table.K)
	lnk := make([]float64, n)
	for i, k := range table.K {
		lnk[i] = math.Log(k)
	}

	tab := &tabulated{
		table:  table,
		lnkMin: lnk[0],
		lnkMax: lnk[n-1],
		slopeLo: math.Log(table.T[1]/table.T[0]) /
			math.Log(table.K[1]/table.K[0]),
		slopeHi: math.Log(table.T[n-1]/table.T[n-2]) /
			math.Log(table.K[n-1]/table.K[n-2]),
	}
	if err := tab.spline.Fit(lnk, table.T); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return tab, nil
}

func (t *tabulated) evaluate(k float64) float64 {
	lnk := math.Log(k)
	switch {
	case lnk < t.lnkMin:
		return t.table.T[0] * math.Exp(t.slopeLo*(lnk-t.lnkMin))
	case lnk > t.lnkMax:
		n := len(t.table.T)
		return t.table.T[n-1] * math.Exp(t.slopeHi*(lnk-t.lnkMax))
	}
	return t.spline.Predict(lnk)
}
