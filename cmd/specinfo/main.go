// Command specinfo prints zero-loss peak properties of energy-loss
// spectra stored as whitespace-separated "energy intensity" pairs.
//
// Usage:
//
//	specinfo [flags] [file ...]
//
// Without arguments it reads one spectrum from standard input. Lines
// starting with '#' are skipped.
//
// Examples:
//
//	specinfo scan.dat
//	specinfo -integrate 1.5:3.0 scan.dat
//	specinfo -peaks -range 0.5:4.0 scan.dat
//	specinfo -peaks -range 0.5:4.0 -plot peaks.png scan.dat
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spectralab/algo-eels/eels/spectrum"
	"github.com/spectralab/algo-eels/render"
)

func main() {
	integrate := flag.String("integrate", "", "integrate the spline over lo:hi")
	peaks := flag.Bool("peaks", false, "find peaks inside -range")
	rangeFlag := flag.String("range", "", "peak search range lo:hi (required with -peaks)")
	plotPath := flag.String("plot", "", "write a figure of the spectrum (and peaks) to this file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: specinfo [flags] [file ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints zero-loss peak properties of energy-loss spectra.\n")
		fmt.Fprintf(os.Stderr, "Without arguments, reads one spectrum from standard input.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  specinfo scan.dat\n")
		fmt.Fprintf(os.Stderr, "  specinfo -integrate 1.5:3.0 scan.dat\n")
		fmt.Fprintf(os.Stderr, "  specinfo -peaks -range 0.5:4.0 -plot peaks.png scan.dat\n")
	}
	flag.Parse()

	if *peaks && *rangeFlag == "" {
		fmt.Fprintf(os.Stderr, "error: -peaks requires -range lo:hi\n")
		os.Exit(2)
	}

	spectra, err := loadSpectra(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	printSummary(spectra)

	if *integrate != "" {
		lo, hi, err := parseRange(*integrate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: -integrate: %v\n", err)
			os.Exit(2)
		}

		printIntegrals(spectra, lo, hi)
	}

	if *peaks {
		lo, hi, err := parseRange(*rangeFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: -range: %v\n", err)
			os.Exit(2)
		}

		printPeaks(spectra, lo, hi, *plotPath)

		return
	}

	if *plotPath != "" {
		plotCurves(spectra, *plotPath)
	}
}

func loadSpectra(paths []string) ([]spectrum.Spectrum, error) {
	if len(paths) == 0 {
		s, err := readSpectrum(os.Stdin, "stdin")
		if err != nil {
			return nil, err
		}

		return []spectrum.Spectrum{s}, nil
	}

	out := make([]spectrum.Spectrum, 0, len(paths))

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		s, err := readSpectrum(f, path)
		f.Close()

		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		out = append(out, s)
	}

	return out, nil
}

// readSpectrum parses "energy intensity" pairs, one per line.
func readSpectrum(r io.Reader, label string) (spectrum.Spectrum, error) {
	var x, y []float64

	sc := bufio.NewScanner(r)
	lineNo := 0

	for sc.Scan() {
		lineNo++

		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return spectrum.Spectrum{}, fmt.Errorf("line %d: want 2 fields, got %d", lineNo, len(fields))
		}

		xv, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return spectrum.Spectrum{}, fmt.Errorf("line %d: %w", lineNo, err)
		}

		yv, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return spectrum.Spectrum{}, fmt.Errorf("line %d: %w", lineNo, err)
		}

		x = append(x, xv)
		y = append(y, yv)
	}

	if err := sc.Err(); err != nil {
		return spectrum.Spectrum{}, err
	}

	return spectrum.New(x, y, label)
}

func parseRange(s string) (lo, hi float64, err error) {
	loStr, hiStr, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("want lo:hi, got %q", s)
	}

	lo, err = strconv.ParseFloat(loStr, 64)
	if err != nil {
		return 0, 0, err
	}

	hi, err = strconv.ParseFloat(hiStr, 64)
	if err != nil {
		return 0, 0, err
	}

	return lo, hi, nil
}

func printSummary(spectra []spectrum.Spectrum) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Spectrum\tSamples\tDomain [eV]\tZLP Pos [eV]\tZLP Height\tHalf-Max Span [eV]\n")
	fmt.Fprintf(tw, "--------\t-------\t-----------\t------------\t----------\t------------------\n")

	for i := range spectra {
		s := &spectra[i]
		lo, hi := s.XRange()

		pos, height, err := s.FindZLPMax(spectrum.ZLPConfig{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", s.Label(), err)
			continue
		}

		fmt.Fprintf(tw, "%s\t%d\t[%.4g, %.4g]\t%.4f\t%.4g\t%.4f\n",
			s.Label(), s.Len(), lo, hi, pos, height, s.HalfMaxSpan())
	}

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func printIntegrals(spectra []spectrum.Spectrum, lo, hi float64) {
	fmt.Println()

	for i := range spectra {
		s := &spectra[i]

		v, err := s.Integrate(lo, hi)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", s.Label(), err)
			continue
		}

		fmt.Printf("%s: integral over [%g, %g] = %.6g\n", s.Label(), lo, hi, v)
	}
}

func printPeaks(spectra []spectrum.Spectrum, lo, hi float64, plotPath string) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\nSpectrum\tPeak Pos [eV]\tHeight\n")
	fmt.Fprintf(tw, "--------\t-------------\t------\n")

	for i := range spectra {
		s := &spectra[i]

		positions, heights, err := s.FindPeaks(lo, hi, spectrum.DefaultPeakConfig())
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", s.Label(), err)
			continue
		}

		for j := range positions {
			fmt.Fprintf(tw, "%s\t%.4f\t%.4g\n", s.Label(), positions[j], heights[j])
		}

		if plotPath != "" && i == 0 {
			fig := render.Config{Title: s.Label()}
			peaks := spectrum.Curve{X: positions, Y: heights}

			if err := render.Peaks(plotPath, fig, s.Curve(), peaks); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
		}
	}

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func plotCurves(spectra []spectrum.Spectrum, path string) {
	curves := make([]spectrum.Curve, len(spectra))
	labels := make([]string, len(spectra))

	for i := range spectra {
		curves[i] = spectra[i].Curve()
		labels[i] = spectra[i].Label()
	}

	if err := render.Curves(path, render.Config{}, curves, labels); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}
