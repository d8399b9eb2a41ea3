package background

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-cosmo/cosmo/transfer"
	"github.com/cwbudde/algo-cosmo/internal/testutil"
)

func einsteinDeSitter() Params {
	return Params{OmegaM: 1, OmegaB: 0.05, OmegaL: 0, H: 0.7, Ns: 1, Tcmb: 2.7255}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Params
		wantErr error
	}{
		{"default", Default(), nil},
		{"eds", einsteinDeSitter(), nil},
		{"zero matter", Params{OmegaM: 0, H: 0.7, Tcmb: 2.7}, ErrInvalidDensity},
		{"baryons exceed matter", Params{OmegaM: 0.1, OmegaB: 0.2, H: 0.7, Tcmb: 2.7}, ErrInvalidDensity},
		{"negative lambda", Params{OmegaM: 0.3, OmegaL: -0.1, H: 0.7, Tcmb: 2.7}, ErrInvalidDensity},
		{"zero hubble", Params{OmegaM: 0.3, OmegaL: 0.7, Tcmb: 2.7}, ErrInvalidHubble},
		{"zero tcmb", Params{OmegaM: 0.3, OmegaL: 0.7, H: 0.7}, ErrInvalidTcmb},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpansionRate(t *testing.T) {
	m, err := New(Default())
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireNearlyEqual(t, m.E(0), 1, 1e-12)
	testutil.RequireNearlyEqual(t, m.HubbleRate(0), 100*Default().H, 1e-12)
	testutil.RequireNearlyEqual(t, m.OmegaMAt(0), Default().OmegaM, 1e-12)

	// Matter dominates at early times in a flat universe.
	if om := m.OmegaMAt(100); math.Abs(om-1) > 0.01 {
		t.Fatalf("OmegaM(z=100) = %v, want ~1", om)
	}
}

func TestGrowthEinsteinDeSitter(t *testing.T) {
	m, err := New(einsteinDeSitter())
	if err != nil {
		t.Fatal(err)
	}

	// D(z) = 1/(1+z) exactly in EdS.
	for _, z := range []float64{0, 0.5, 1, 3, 9} {
		d, err := m.GrowthD(z)
		if err != nil {
			t.Fatal(err)
		}
		testutil.RequireNearlyEqual(t, d, 1/(1+z), 1e-7)
	}

	f, err := m.GrowthRate(2)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireNearlyEqual(t, f, 1, 1e-12)
}

func TestGrowthLCDM(t *testing.T) {
	m, err := New(Default())
	if err != nil {
		t.Fatal(err)
	}

	d0, err := m.GrowthD(0)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireNearlyEqual(t, d0, 1, 1e-10)

	// Monotone decreasing with redshift.
	prev := d0
	for _, z := range []float64{0.5, 1, 2, 5, 20} {
		d, err := m.GrowthD(z)
		if err != nil {
			t.Fatal(err)
		}
		if d >= prev || d <= 0 {
			t.Fatalf("D(z=%g) = %v, not decreasing from %v", z, d, prev)
		}
		prev = d
	}

	// Deep in matter domination growth tracks the scale factor.
	d9, _ := m.GrowthD(9)
	d19, _ := m.GrowthD(19)
	if ratio := d9 / d19; math.Abs(ratio-2) > 0.05 {
		t.Fatalf("D(9)/D(19) = %v, want ~2", ratio)
	}

	// f(0) ~ OmegaM^0.55 for flat LCDM.
	f0, err := m.GrowthRate(0)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireNearlyEqual(t, f0, math.Pow(Default().OmegaM, 0.55), 1e-12)
}

func TestComovingDistance(t *testing.T) {
	m, err := New(einsteinDeSitter())
	if err != nil {
		t.Fatal(err)
	}

	// EdS closed form: Dc = 2 (c/H0) (1 - 1/sqrt(1+z)).
	got, err := m.ComovingDistance(3)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireNearlyEqual(t, got, 2*HubbleDistance*(1-0.5), 1e-8)

	zero, err := m.ComovingDistance(0)
	if err != nil || zero != 0 {
		t.Fatalf("ComovingDistance(0) = %v, %v", zero, err)
	}
}

func TestRedshiftDomain(t *testing.T) {
	m, err := New(Default())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.GrowthD(-1); !errors.Is(err, ErrInvalidRedshift) {
		t.Fatalf("GrowthD(-1) error = %v, want ErrInvalidRedshift", err)
	}
	if _, err := m.GrowthRate(-2); !errors.Is(err, ErrInvalidRedshift) {
		t.Fatalf("GrowthRate(-2) error = %v, want ErrInvalidRedshift", err)
	}
	if _, err := m.ComovingDistance(-1.5); !errors.Is(err, ErrInvalidRedshift) {
		t.Fatalf("ComovingDistance(-1.5) error = %v, want ErrInvalidRedshift", err)
	}
}

func TestNativeTransfer(t *testing.T) {
	m, err := New(Default())
	if err != nil {
		t.Fatal(err)
	}

	p := Default()
	want, err := transfer.EisensteinHu(transfer.Params{
		OmegaM: p.OmegaM, OmegaB: p.OmegaB, OmegaL: p.OmegaL, H: p.H, Tcmb: p.Tcmb,
	}, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	got, err := m.Transfer(0.1)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("Transfer(0.1) = %v, want %v", got, want)
	}

	if _, err := m.Transfer(-1); !errors.Is(err, transfer.ErrDomain) {
		t.Fatalf("Transfer(-1) error = %v, want transfer.ErrDomain", err)
	}
}
