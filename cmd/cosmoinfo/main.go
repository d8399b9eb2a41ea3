// Command cosmoinfo prints properties of a normalized linear power
// spectrum: the transfer function, P(k) samples and derived growth
// quantities for a chosen cosmology.
//
// Usage:
//
//	cosmoinfo [flags] [fit-name ...]
//
// Without arguments it prints the spectrum for the Eisenstein-Hu fit.
//
// Examples:
//
//	cosmoinfo bbks
//	cosmoinfo -z 0.55 -sigma8 0.9 eisenstein-hu
//	cosmoinfo -table transfer.dat
//	cosmoinfo -list
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-cosmo/cosmo"
	"github.com/cwbudde/algo-cosmo/cosmo/background"
	"github.com/cwbudde/algo-cosmo/cosmo/transfer"
	"github.com/cwbudde/algo-cosmo/power"
)

type fitEntry struct {
	name string
	fit  transfer.Fit
}

var registry = []fitEntry{
	{"delegate", transfer.FitDelegate},
	{"eisenstein-hu", transfer.FitEisensteinHu},
	{"eisenstein-hu-nowiggle", transfer.FitEisensteinHuNoWiggle},
	{"bbks", transfer.FitBBKS},
}

func main() {
	sigma8 := flag.Float64("sigma8", 0.8, "normalization sigma8")
	z := flag.Float64("z", 0, "evaluation redshift")
	omegaM := flag.Float64("omega-m", background.Default().OmegaM, "total matter density")
	omegaB := flag.Float64("omega-b", background.Default().OmegaB, "baryon density")
	h := flag.Float64("h", background.Default().H, "dimensionless Hubble parameter")
	table := flag.String("table", "", "tabulated transfer function file (k T columns)")
	kMin := flag.Float64("kmin", 1e-3, "lowest wavenumber in h/Mpc")
	kMax := flag.Float64("kmax", 1, "highest wavenumber in h/Mpc")
	samples := flag.Int("samples", 20, "number of log-spaced wavenumbers")
	list := flag.Bool("list", false, "list available transfer-function fits")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cosmoinfo [flags] [fit-name ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints the normalized linear power spectrum of a cosmology.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  cosmoinfo bbks\n")
		fmt.Fprintf(os.Stderr, "  cosmoinfo -z 0.55 -sigma8 0.9 eisenstein-hu\n")
		fmt.Fprintf(os.Stderr, "  cosmoinfo -table transfer.dat\n")
	}
	flag.Parse()

	if *list {
		printList()
		return
	}

	params := background.Default()
	params.OmegaM = *omegaM
	params.OmegaB = *omegaB
	params.OmegaL = 1 - *omegaM
	params.H = *h
	bg, err := background.New(params)
	if err != nil {
		fatal(err)
	}

	if *table != "" {
		printSpectrum(bg, "tabulated", *z, *kMin, *kMax, *samples, func() (*cosmo.Cosmology, error) {
			f, err := os.Open(*table)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return cosmo.New(bg, cosmo.WithSigma8(*sigma8), cosmo.WithTransferTable(f, 1, 2))
		})
		return
	}

	names := flag.Args()
	if len(names) == 0 {
		names = []string{"eisenstein-hu"}
	}
	for _, e := range resolveEntries(names) {
		fit := e.fit
		printSpectrum(bg, e.name, *z, *kMin, *kMax, *samples, func() (*cosmo.Cosmology, error) {
			return cosmo.New(bg, cosmo.WithSigma8(*sigma8), cosmo.WithTransferFit(fit))
		})
	}
}

func printList() {
	names := make([]string, len(registry))
	for i, e := range registry {
		names[i] = e.name
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Println(n)
	}
}

func resolveEntries(names []string) []fitEntry {
	byName := make(map[string]fitEntry, len(registry))
	for _, e := range registry {
		byName[e.name] = e
	}

	var result []fitEntry
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		e, ok := byName[name]
		if !ok {
			fmt.Fprintf(os.Stderr, "warning: unknown fit %q (use -list to see available)\n", name)
			continue
		}
		result = append(result, e)
	}
	return result
}

func printSpectrum(bg *background.Model, label string, z, kMin, kMax float64, samples int, build func() (*cosmo.Cosmology, error)) {
	c, err := build()
	if err != nil {
		fatal(err)
	}
	lin, err := power.NewLinear(c, z)
	if err != nil {
		fatal(err)
	}
	rate, err := bg.GrowthRate(z)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("transfer:  %s\n", label)
	fmt.Printf("sigma8:    %.4f\n", c.Sigma8())
	fmt.Printf("delta_H:   %.6e\n", c.DeltaH())
	fmt.Printf("redshift:  %.3f\n", z)
	fmt.Printf("growth D:  %.6f\n", lin.GrowthFactor())
	fmt.Printf("growth f:  %.6f\n", rate)
	fmt.Println()

	ks := floats.LogSpan(make([]float64, samples), kMin, kMax)
	pk, err := lin.EvaluateMany(ks)
	if err != nil {
		fatal(err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "k [h/Mpc]\tT(k)\tP(k) [(Mpc/h)^3]\n")
	fmt.Fprintf(tw, "---------\t----\t----------------\n")
	for i, k := range ks {
		t, err := c.EvaluateTransfer(k)
		if err != nil {
			fatal(err)
		}
		fmt.Fprintf(tw, "%.4e\t%.6e\t%.6e\n", k, t, pk[i])
	}
	if err := tw.Flush(); err != nil {
		fatal(err)
	}
	fmt.Println()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
