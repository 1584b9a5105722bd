// SPDX-License-Identifier: MIT
package fft

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestHammingEndpoints(t *testing.T) {
	for _, n := range []int{2, 8, 513, 1024} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			want := HammingAlpha - HammingBeta
			if got := HammingCoefficient(0, n); math.Abs(got-want) > tolerance {
				t.Errorf("w[0] = %v, want %v", got, want)
			}
			if got := HammingCoefficient(n-1, n); math.Abs(got-want) > tolerance {
				t.Errorf("w[N-1] = %v, want %v", got, want)
			}
		})
	}
}

func TestHammingPeaksAtCentre(t *testing.T) {
	const n = 9 // odd so (N-1)/2 is a sample index
	x := make([]float64, n)
	for i := range x {
		x[i] = 1
	}
	ApplyHamming(x)

	centre := (n - 1) / 2
	if math.Abs(x[centre]-1) > tolerance {
		t.Errorf("w[%d] = %v, want 1 (α+β)", centre, x[centre])
	}
	for i, v := range x {
		if i != centre && v >= x[centre] {
			t.Errorf("w[%d] = %v is not below the centre %v", i, v, x[centre])
		}
		if v != HammingCoefficient(i, n) {
			t.Errorf("ApplyHamming w[%d] = %v, HammingCoefficient = %v", i, v, HammingCoefficient(i, n))
		}
	}
}

func TestApplyHammingScalesSamples(t *testing.T) {
	x := []float64{2, -4, 8, 16}
	orig := append([]float64(nil), x...)
	ApplyHamming(x)
	for i := range x {
		want := orig[i] * HammingCoefficient(i, len(x))
		if x[i] != want {
			t.Errorf("x[%d] = %v, want %v", i, x[i], want)
		}
	}

	// A second pass windows again; the window is not idempotent.
	ApplyHamming(x)
	if x[0] == orig[0]*HammingCoefficient(0, len(x)) {
		t.Error("second ApplyHamming left the block unchanged")
	}
}

func TestWindowTooShortPanics(t *testing.T) {
	expectPanic(t, ErrWindowTooShort, func() { ApplyHamming([]float64{1}) })
	expectPanic(t, ErrWindowTooShort, func() { ApplyHamming(nil) })
	expectPanic(t, ErrWindowTooShort, func() { Hann.Apply([]float64{1}) })
	expectPanic(t, ErrWindowTooShort, func() { Hamming.Coefficients(1) })
}

func TestWindowCoefficients(t *testing.T) {
	const n = 64
	for w := Hamming; w <= Rectangular; w++ {
		t.Run(w.String(), func(t *testing.T) {
			coeffs := w.Coefficients(n)
			if len(coeffs) != n {
				t.Fatalf("len = %d, want %d", len(coeffs), n)
			}
			for i, c := range coeffs {
				if c < -1e-12 || c > 1+1e-12 {
					t.Errorf("coeff[%d] = %v outside [0, 1]", i, c)
				}
			}
			// Symmetric windows.
			for i := range n / 2 {
				if math.Abs(coeffs[i]-coeffs[n-1-i]) > 1e-12 {
					t.Errorf("coeff[%d] = %v, coeff[%d] = %v", i, coeffs[i], n-1-i, coeffs[n-1-i])
				}
			}
		})
	}

	if c := Rectangular.Coefficients(4); c[0] != 1 || c[3] != 1 {
		t.Errorf("Rectangular = %v, want all ones", c)
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		name string
		want Window
	}{
		{"", Hamming},
		{"Hamming", Hamming},
		{"hanning", Hann},
		{"BLACKMAN", Blackman},
		{"none", Rectangular},
		{"nuttall", Nuttall},
		{"blackman-nuttall", BlackmanNuttall},
		{"bartlett_hann", BartlettHann},
	}
	for _, tt := range tests {
		got, err := ParseWindow(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("ParseWindow(%q) = %v, %v; want %v", tt.name, got, err, tt.want)
		}
	}

	if _, err := ParseWindow("kaiser"); !errors.Is(err, ErrUnknownWindow) {
		t.Errorf("ParseWindow(kaiser) error = %v, want ErrUnknownWindow", err)
	}
}

func TestWindowApplyZeroAllocs(t *testing.T) {
	x := make([]float64, 1024)
	for _, w := range []Window{Hamming, Hann, Blackman} {
		allocs := testing.AllocsPerRun(50, func() {
			w.Apply(x)
		})
		if allocs > 0 {
			t.Errorf("%v.Apply allocated %.1f times", w, allocs)
		}
	}
}
