// Command analyze-blur prints the derived recursive Gaussian filters for a
// range of sigmas: radius, per-resonance coefficients, DC gain, impulse
// response, magnitude response and the deviation from a sampled Gaussian.
//
// Usage:
//
//	analyze-blur
//	analyze-blur -sigmas 1,1.5,3 -taps
//	analyze-blur -exact
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/tphakala/go-iir-blur/internal/filter"
)

const (
	defaultSigmas = "0.3,0.6,1,1.5,2,3,5,10"

	// Magnitude response sampling
	responseFFTSize = 512
	responsePoints  = 8 // Frequencies printed between DC and Nyquist

	// Display limits
	maxTapsToShow = 41
)

func main() {
	sigmaList := flag.String("sigmas", defaultSigmas, "Comma-separated list of sigmas")
	showTaps := flag.Bool("taps", false, "Print the impulse response taps")
	exact := flag.Bool("exact", false, "Derive from the integer radius (finite support)")
	flag.Parse()

	mode := filter.FittedRadius
	if *exact {
		mode = filter.IntegerRadius
	}

	sigmas, err := parseSigmas(*sigmaList)
	if err != nil {
		log.Fatal(err)
	}

	for _, sigma := range sigmas {
		if err := analyze(sigma, mode, *showTaps); err != nil {
			fmt.Printf("sigma %.3f: error: %v\n\n", sigma, err)
		}
	}
}

func parseSigmas(list string) ([]float64, error) {
	fields := strings.Split(list, ",")
	sigmas := make([]float64, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid sigma %q: %w", field, err)
		}
		sigmas = append(sigmas, v)
	}
	return sigmas, nil
}

func analyze(sigma float64, mode filter.RadiusMode, showTaps bool) error {
	g, err := filter.DesignRecursiveGaussian(sigma, mode)
	if err != nil {
		return err
	}

	fmt.Printf("=== sigma %.3f (radius %d, %s R=%.4f) ===\n", sigma, g.Radius(), mode, g.DerivationRadius())
	fmt.Printf("  Σβp - 1: %.3e\n", g.Normalization()-1)

	for _, res := range g.Resonances() {
		fmt.Printf("  k=%d: ω=%.6f β=%+.10f n2=%+.10f d1=%+.10f\n",
			res.K, res.Omega, res.Beta, res.Gain, res.Feedback)
	}

	taps := g.ImpulseResponse()
	var sum float64
	for _, v := range taps {
		sum += v
	}
	fmt.Printf("  DC gain (Σ taps): %.12f\n", sum)

	kernel, err := filter.GaussianKernel(sigma, g.Radius())
	if err != nil {
		return err
	}
	var maxDev float64
	for i := range kernel {
		maxDev = max(maxDev, math.Abs(taps[i]-kernel[i]))
	}
	fmt.Printf("  Max deviation from sampled Gaussian: %.3e (%.2f%% of peak)\n",
		maxDev, 100*maxDev/kernel[g.Radius()])

	if showTaps {
		fmt.Println("  Impulse response:")
		for i, v := range taps[:min(len(taps), maxTapsToShow)] {
			fmt.Printf("    %+4d: %.8f  (gaussian %.8f)\n", i-g.Radius(), v, kernel[i])
		}
		if len(taps) > maxTapsToShow {
			fmt.Printf("    ... (%d more taps)\n", len(taps)-maxTapsToShow)
		}
	}

	response, err := filter.ComputeFrequencyResponse(taps, max(responseFFTSize, len(taps)))
	if err != nil {
		return err
	}
	fmt.Println("  Magnitude response:")
	step := (len(response.Magnitude) - 1) / responsePoints
	for i := 0; i < len(response.Magnitude); i += step {
		// Gaussian reference: exp(−2π²σ²f²)
		f := response.Frequencies[i]
		ideal := math.Exp(-2 * math.Pi * math.Pi * sigma * sigma * f * f)
		fmt.Printf("    f=%.4f: %8.2f dB  (gaussian %8.2f dB)\n",
			f, filter.MagnitudeDB(response.Magnitude[i]), filter.MagnitudeDB(ideal))
	}
	fmt.Println()

	return nil
}
