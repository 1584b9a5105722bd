// SPDX-License-Identifier: MIT
package synth

import (
	"math"
	"testing"
)

const (
	testSize       = 1024
	testSampleRate = 44100
)

func TestSineRange(t *testing.T) {
	buf := make([]int16, testSize)
	next := Sine(buf, testSampleRate, 440, 1.0, 0)
	if next != testSize {
		t.Errorf("Sine returned %d, want %d", next, testSize)
	}
	if buf[0] != 0 {
		t.Errorf("first sample = %d, want 0", buf[0])
	}

	var peak int16
	for _, s := range buf {
		if s > peak {
			peak = s
		}
	}
	if float64(peak) < 0.99*math.MaxInt16 {
		t.Errorf("peak = %d, want close to full scale", peak)
	}
}

func TestSinePhaseContinuity(t *testing.T) {
	whole := make([]int16, 2*testSize)
	Sine(whole, testSampleRate, 1000, 0.5, 0)

	first := make([]int16, testSize)
	second := make([]int16, testSize)
	next := Sine(first, testSampleRate, 1000, 0.5, 0)
	Sine(second, testSampleRate, 1000, 0.5, next)

	for i := range testSize {
		if second[i] != whole[testSize+i] {
			t.Fatalf("sample %d = %d, want %d", i, second[i], whole[testSize+i])
		}
	}
}

func TestChordStaysInRange(t *testing.T) {
	buf := make([]int16, testSize)
	Chord(buf, testSampleRate, []float64{440, 880, 1320}, 0.9, 0)
	for i, s := range buf {
		if float64(s) > 0.9*math.MaxInt16+1 || float64(s) < -0.9*math.MaxInt16-1 {
			t.Errorf("sample %d = %d exceeds amplitude", i, s)
		}
	}

	Chord(buf, testSampleRate, nil, 1, 0)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d = %d, want silence for an empty chord", i, s)
		}
	}
}

func TestPeakBin(t *testing.T) {
	values := make([]float64, testSize)
	for i := range values {
		// Hill with its peak at testSize/4.
		values[i] = math.Exp(-0.01 * math.Pow(float64(i-testSize/4), 2))
	}

	tests := []struct {
		name       string
		start, end int
		want       int
	}{
		{"Full Range", 0, testSize - 1, testSize / 4},
		{"Negative Start", -5, testSize - 1, testSize / 4},
		{"End Past Length", 0, testSize * 2, testSize / 4},
		{"Right Of Peak", testSize / 2, testSize - 1, testSize / 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeakBin(values, tt.start, tt.end); got != tt.want {
				t.Errorf("PeakBin = %d, want %d", got, tt.want)
			}
		})
	}

	if got := PeakBin(nil, 0, 10); got != 0 {
		t.Errorf("PeakBin(nil) = %d, want 0", got)
	}
}

func TestBinForFrequency(t *testing.T) {
	if got := BinForFrequency(1000, 44100, 1024); got != 23 {
		t.Errorf("BinForFrequency(1000) = %d, want 23", got)
	}
	if got := BinForFrequency(0, 44100, 1024); got != 0 {
		t.Errorf("BinForFrequency(0) = %d, want 0", got)
	}
}
