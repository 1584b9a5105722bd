// SPDX-License-Identifier: MIT
package fft

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// Hamming window coefficients (the "optimal" equiripple variant).
const (
	HammingAlpha = 0.53836
	HammingBeta  = 0.46164
)

// Window selects an analysis window function.
type Window int

// Available window functions. Hamming is the default.
const (
	Hamming Window = iota
	Hann
	Blackman
	BlackmanNuttall
	BartlettHann
	Nuttall
	Lanczos
	Rectangular
)

var windowNames = [...]string{
	Hamming:         "hamming",
	Hann:            "hann",
	Blackman:        "blackman",
	BlackmanNuttall: "blackmannuttall",
	BartlettHann:    "bartletthann",
	Nuttall:         "nuttall",
	Lanczos:         "lanczos",
	Rectangular:     "rectangular",
}

func (w Window) String() string {
	if w < 0 || int(w) >= len(windowNames) {
		return fmt.Sprintf("Window(%d)", int(w))
	}
	return windowNames[w]
}

// ParseWindow converts a case-insensitive name to a Window. Unknown names
// return Hamming and an error wrapping ErrUnknownWindow.
func ParseWindow(name string) (Window, error) {
	key := strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(name)))
	switch key {
	case "hamming", "":
		return Hamming, nil
	case "hann", "hanning":
		return Hann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "bartletthann":
		return BartlettHann, nil
	case "nuttall":
		return Nuttall, nil
	case "lanczos":
		return Lanczos, nil
	case "rectangular", "none":
		return Rectangular, nil
	default:
		return Hamming, fmt.Errorf("%w: %q", ErrUnknownWindow, name)
	}
}

// HammingCoefficient returns the Hamming multiplier for sample i of an
// n-sample block: α − β·cos(2πi/(n−1)).
func HammingCoefficient(i, n int) float64 {
	if n < 2 {
		panic(fmt.Errorf("%w, got %d", ErrWindowTooShort, n))
	}
	return HammingAlpha - HammingBeta*math.Cos(2*math.Pi*float64(i)/float64(n-1))
}

// ApplyHamming multiplies each sample in place by its Hamming coefficient.
// Applying it twice to the same block windows the block twice.
func ApplyHamming(x []float64) {
	n := len(x)
	if n < 2 {
		panic(fmt.Errorf("%w, got %d", ErrWindowTooShort, n))
	}
	nf := float64(n - 1)
	for i := range x {
		x[i] *= HammingAlpha - HammingBeta*math.Cos(2*math.Pi*float64(i)/nf)
	}
}

// Apply windows x in place. It does not allocate.
func (w Window) Apply(x []float64) {
	if len(x) < 2 {
		panic(fmt.Errorf("%w, got %d", ErrWindowTooShort, len(x)))
	}
	switch w {
	case Hamming:
		ApplyHamming(x)
	case Hann:
		window.Hann(x)
	case Blackman:
		window.Blackman(x)
	case BlackmanNuttall:
		window.BlackmanNuttall(x)
	case BartlettHann:
		window.BartlettHann(x)
	case Nuttall:
		window.Nuttall(x)
	case Lanczos:
		window.Lanczos(x)
	case Rectangular:
	default:
		panic(fmt.Errorf("%w: %d", ErrUnknownWindow, int(w)))
	}
}

// Coefficients returns the n window multipliers, suitable for caching.
func (w Window) Coefficients(n int) []float64 {
	if n < 2 {
		panic(fmt.Errorf("%w, got %d", ErrWindowTooShort, n))
	}
	coeffs := make([]float64, n)
	for i := range coeffs {
		coeffs[i] = 1
	}
	w.Apply(coeffs)
	return coeffs
}
