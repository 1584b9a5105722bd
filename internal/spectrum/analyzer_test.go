// SPDX-License-Identifier: MIT
package spectrum

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"spectralizer/internal/fft"
	"spectralizer/pkg/synth"
)

const (
	testSize       = 1024
	testSampleRate = 44100
)

func newTestAnalyzer(t testing.TB, backend fft.Backend, mode Mode) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(Options{
		Size:       testSize,
		SampleRate: testSampleRate,
		Backend:    backend,
		Window:     fft.Hamming,
		Mode:       mode,
	})
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return a
}

func TestNewAnalyzerRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"Size One", Options{Size: 1, SampleRate: 44100}},
		{"Not Power Of Two", Options{Size: 1000, SampleRate: 44100}},
		{"Zero Sample Rate", Options{Size: 1024}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if a, err := NewAnalyzer(tt.opts); err == nil || a != nil {
				t.Errorf("NewAnalyzer(%+v) = %v, %v; want error", tt.opts, a, err)
			}
		})
	}

	_, err := NewAnalyzer(Options{Size: 12, SampleRate: 8000})
	if !errors.Is(err, fft.ErrNotPowerOfTwo) {
		t.Errorf("error %v does not wrap fft.ErrNotPowerOfTwo", err)
	}
}

func TestSinePeaksAtExpectedBin(t *testing.T) {
	for _, freq := range []float64{440, 1000, 5000} {
		for _, backend := range []fft.Backend{fft.Strided, fft.Reference, fft.Gonum} {
			t.Run(fmt.Sprintf("%.0fHz/%s", freq, backend), func(t *testing.T) {
				a := newTestAnalyzer(t, backend, ModeMagnitude)
				block := make([]int16, testSize)
				synth.Sine(block, testSampleRate, freq, 0.9, 0)
				a.Process(block)

				bins := a.Spectrum()
				if len(bins) != testSize/2 {
					t.Fatalf("len(bins) = %d, want %d", len(bins), testSize/2)
				}
				want := synth.BinForFrequency(freq, testSampleRate, testSize)
				got := synth.PeakBin(bins, 1, len(bins)-1)
				if d := got - want; d < -1 || d > 1 {
					t.Errorf("peak bin %d (%.1f Hz), want %d", got, a.FrequencyForBin(got), want)
				}
			})
		}
	}
}

// A cosine centred on a bin puts all of its energy in the real part, so the
// real-part display peaks exactly there.
func TestRealModeCosinePeak(t *testing.T) {
	const bin = 32
	block := make([]int16, testSize)
	for i := range block {
		block[i] = int16(0.9 * math.MaxInt16 * math.Cos(2*math.Pi*bin*float64(i)/testSize))
	}

	for _, backend := range []fft.Backend{fft.Strided, fft.Reference, fft.Gonum} {
		t.Run(backend.String(), func(t *testing.T) {
			a := newTestAnalyzer(t, backend, ModeReal)
			a.Process(block)
			bins := a.Spectrum()
			if got := synth.PeakBin(bins, 0, len(bins)-1); got != bin {
				t.Errorf("peak bin %d, want %d", got, bin)
			}
			for i, v := range bins {
				if v < 0 {
					t.Fatalf("bin %d = %v, want absolute values", i, v)
				}
			}
		})
	}
}

func TestRealModeIsAbsoluteRealPart(t *testing.T) {
	a := newTestAnalyzer(t, fft.Strided, ModeReal)
	block := make([]int16, testSize)
	synth.Chord(block, testSampleRate, []float64{300, 2500}, 0.8, 17)
	a.Process(block)

	in := make([]float64, testSize)
	for i, s := range block {
		in[i] = float64(s)
	}
	fft.ApplyHamming(in)
	re := make([]float64, testSize)
	fft.RealFFT(in, re)

	bins := a.Spectrum()
	for i := range bins {
		if math.Abs(bins[i]-math.Abs(re[i])) > 1e-6 {
			t.Fatalf("bin %d = %v, want |%v|", i, bins[i], re[i])
		}
	}
}

func TestSilenceIsFlat(t *testing.T) {
	a := newTestAnalyzer(t, fft.Strided, ModeMagnitude)
	a.Process(make([]int16, testSize))
	for i, v := range a.Spectrum() {
		if v != 0 {
			t.Fatalf("bin %d = %v for silence", i, v)
		}
	}
	if a.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", a.Frames())
	}
}

func TestProcessWrongLengthPanics(t *testing.T) {
	a := newTestAnalyzer(t, fft.Strided, ModeReal)
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, fft.ErrLengthMismatch) {
			t.Fatalf("recover() = %v, want ErrLengthMismatch", r)
		}
	}()
	a.Process(make([]int16, testSize/2))
}

func TestSpectrumInto(t *testing.T) {
	a := newTestAnalyzer(t, fft.Strided, ModeReal)
	if err := a.SpectrumInto(make([]float64, 3)); !errors.Is(err, ErrBufferLength) {
		t.Errorf("SpectrumInto(short) = %v, want ErrBufferLength", err)
	}

	block := make([]int16, testSize)
	synth.Sine(block, testSampleRate, 1000, 0.5, 0)
	a.Process(block)

	dst := make([]float64, a.Bins())
	if err := a.SpectrumInto(dst); err != nil {
		t.Fatalf("SpectrumInto: %v", err)
	}
	copyBins := a.Spectrum()
	for i := range dst {
		if dst[i] != copyBins[i] {
			t.Fatalf("bin %d: SpectrumInto %v, Spectrum %v", i, dst[i], copyBins[i])
		}
	}
}

func TestFrequencyForBin(t *testing.T) {
	a := newTestAnalyzer(t, fft.Strided, ModeReal)
	tests := []struct {
		bin  int
		want float64
	}{
		{0, 0},
		{1, testSampleRate / float64(testSize)},
		{testSize/2 - 1, float64(testSize/2-1) * testSampleRate / testSize},
		{testSize / 2, 0},
		{-1, 0},
	}
	for _, tt := range tests {
		if got := a.FrequencyForBin(tt.bin); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("FrequencyForBin(%d) = %v, want %v", tt.bin, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("Magnitude"); err != nil || m != ModeMagnitude {
		t.Errorf("ParseMode(Magnitude) = %v, %v", m, err)
	}
	if m, err := ParseMode(""); err != nil || m != ModeReal {
		t.Errorf("ParseMode(\"\") = %v, %v", m, err)
	}
	if _, err := ParseMode("power"); err == nil {
		t.Error("ParseMode(power) returned no error")
	}
}

func TestConcurrentReaders(t *testing.T) {
	a := newTestAnalyzer(t, fft.Strided, ModeReal)
	block := make([]int16, testSize)
	synth.Sine(block, testSampleRate, 440, 0.5, 0)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dst := make([]float64, a.Bins())
			for range 200 {
				_ = a.SpectrumInto(dst)
			}
		}()
	}
	for range 200 {
		a.Process(block)
	}
	wg.Wait()

	if a.Frames() != 200 {
		t.Errorf("Frames() = %d, want 200", a.Frames())
	}
}

func TestProcessHotPath(t *testing.T) {
	for _, mode := range []Mode{ModeReal, ModeMagnitude} {
		t.Run(mode.String(), func(t *testing.T) {
			a := newTestAnalyzer(t, fft.Strided, mode)
			block := make([]int16, testSize)
			synth.Chord(block, testSampleRate, []float64{440, 880, 1320}, 0.9, 0)
			dst := make([]float64, a.Bins())

			a.Process(block) // warm-up
			allocs := testing.AllocsPerRun(100, func() {
				a.Process(block)
				_ = a.SpectrumInto(dst)
			})
			if allocs > 0 {
				t.Errorf("Expected zero allocations in Process hot path, got %.1f", allocs)
			}
		})
	}
}

func BenchmarkProcess(b *testing.B) {
	a := newTestAnalyzer(b, fft.Strided, ModeReal)
	block := make([]int16, testSize)
	synth.Chord(block, testSampleRate, []float64{440, 880, 1320}, 0.9, 0)

	b.ReportAllocs()
	for b.Loop() {
		a.Process(block)
	}
}
