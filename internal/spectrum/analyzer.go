// SPDX-License-Identifier: MIT

// Package spectrum runs the per-block analysis between the audio source and
// the consumers: PCM to float, window, FFT, fold to the positive half and
// take absolute values.
package spectrum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"
	"sync"
	"sync/atomic"

	"spectralizer/internal/fft"
	applog "spectralizer/internal/log"
)

// ErrBufferLength is returned when a destination slice has the wrong size.
var ErrBufferLength = errors.New("spectrum: destination length mismatch")

// Mode selects how a complex bin becomes a displayable value.
type Mode int

const (
	// ModeReal takes |Re X[k]|. It is an approximation of the magnitude
	// that matches the classic bar heights.
	ModeReal Mode = iota
	// ModeMagnitude takes |X[k]| = sqrt(re² + im²).
	ModeMagnitude
)

func (m Mode) String() string {
	switch m {
	case ModeReal:
		return "real"
	case ModeMagnitude:
		return "magnitude"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a case-insensitive name to a Mode.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "real", "":
		return ModeReal, nil
	case "magnitude", "abs":
		return ModeMagnitude, nil
	default:
		return ModeReal, fmt.Errorf("spectrum: unknown mode %q", name)
	}
}

// Options configures an Analyzer.
type Options struct {
	Size       int         // Block length N, a power of two >= 2.
	SampleRate float64     // Hz, used for bin frequencies.
	Backend    fft.Backend // FFT algorithm.
	Window     fft.Window  // Analysis window.
	Mode       Mode        // Bin to value conversion.
}

// workspace holds every buffer Process touches, allocated once.
type workspace struct {
	input    []float64    // windowed samples
	spectrum []float64    // real part per bin, all N
	cin      []complex128 // ModeMagnitude staging
	cout     []complex128 // ModeMagnitude output
	window   []float64    // cached window coefficients

	mu   sync.RWMutex // guards bins
	bins []float64    // folded display values, N/2
}

// Analyzer converts PCM blocks into a folded spectrum snapshot. Process
// must be called from one goroutine at a time; the snapshot accessors are
// safe from any goroutine.
type Analyzer struct {
	engine     fft.Engine
	size       int
	sampleRate float64
	window     fft.Window
	mode       Mode
	workspace  workspace
	frames     atomic.Uint64
}

// NewAnalyzer creates an analyzer and its FFT engine.
func NewAnalyzer(opts Options) (*Analyzer, error) {
	if opts.Size < 2 {
		return nil, fmt.Errorf("spectrum: block size must be at least 2, got %d", opts.Size)
	}
	if opts.SampleRate <= 0 {
		return nil, fmt.Errorf("spectrum: sample rate must be positive, got %f", opts.SampleRate)
	}

	engine, err := fft.NewEngine(opts.Size, opts.Backend)
	if err != nil {
		return nil, fmt.Errorf("spectrum: %w", err)
	}

	a := &Analyzer{
		engine:     engine,
		size:       opts.Size,
		sampleRate: opts.SampleRate,
		window:     opts.Window,
		mode:       opts.Mode,
		workspace: workspace{
			input:    make([]float64, opts.Size),
			spectrum: make([]float64, opts.Size),
			window:   opts.Window.Coefficients(opts.Size),
			bins:     make([]float64, opts.Size/2),
		},
	}
	if opts.Mode == ModeMagnitude {
		a.workspace.cin = make([]complex128, opts.Size)
		a.workspace.cout = make([]complex128, opts.Size)
	}

	applog.Infof("Analyzer: Initializing (Size: %d, SampleRate: %.1f Hz, Backend: %s, Window: %s, Mode: %s)",
		opts.Size, opts.SampleRate, engine.Backend(), opts.Window, opts.Mode)

	return a, nil
}

// Process analyzes one mono block of exactly Size samples. Samples stay in
// PCM units so a full-scale tone produces bins around 32768·N/4.
func (a *Analyzer) Process(block []int16) {
	if len(block) != a.size {
		panic(fmt.Errorf("%w: block %d, analyzer %d", fft.ErrLengthMismatch, len(block), a.size))
	}
	ws := &a.workspace

	for i, s := range block {
		ws.input[i] = float64(s) * ws.window[i]
	}

	half := a.size / 2
	switch a.mode {
	case ModeMagnitude:
		for i, v := range ws.input {
			ws.cin[i] = complex(v, 0)
		}
		a.engine.FFT(ws.cin, ws.cout)
		ws.mu.Lock()
		for i := range half {
			ws.bins[i] = cmplx.Abs(ws.cout[i])
		}
		ws.mu.Unlock()
	default:
		a.engine.RealFFT(ws.input, ws.spectrum)
		// Bins past N/2 mirror the lower half for real input; drop them.
		ws.mu.Lock()
		for i := range half {
			ws.bins[i] = math.Abs(ws.spectrum[i])
		}
		ws.mu.Unlock()
	}

	a.frames.Add(1)
}

// Spectrum returns a copy of the latest folded spectrum.
func (a *Analyzer) Spectrum() []float64 {
	a.workspace.mu.RLock()
	defer a.workspace.mu.RUnlock()

	out := make([]float64, len(a.workspace.bins))
	copy(out, a.workspace.bins)
	return out
}

// SpectrumInto copies the latest folded spectrum into dst, which must have
// length Bins(). It does not allocate.
func (a *Analyzer) SpectrumInto(dst []float64) error {
	a.workspace.mu.RLock()
	defer a.workspace.mu.RUnlock()

	if len(dst) != len(a.workspace.bins) {
		return fmt.Errorf("%w: got %d, want %d", ErrBufferLength, len(dst), len(a.workspace.bins))
	}
	copy(dst, a.workspace.bins)
	return nil
}

// FrequencyForBin returns the centre frequency (Hz) of bin i, or 0 when i is
// outside [0, Bins()).
func (a *Analyzer) FrequencyForBin(i int) float64 {
	if i < 0 || i >= a.Bins() {
		return 0
	}
	return float64(i) * a.sampleRate / float64(a.size)
}

// Size returns the block length N.
func (a *Analyzer) Size() int { return a.size }

// Bins returns the number of folded bins, N/2.
func (a *Analyzer) Bins() int { return a.size / 2 }

// SampleRate returns the configured sample rate in Hz.
func (a *Analyzer) SampleRate() float64 { return a.sampleRate }

// Backend reports the FFT backend in use.
func (a *Analyzer) Backend() fft.Backend { return a.engine.Backend() }

// Window reports the analysis window in use.
func (a *Analyzer) Window() fft.Window { return a.window }

// Mode reports how bins are converted to values.
func (a *Analyzer) Mode() Mode { return a.mode }

// Frames returns the number of blocks processed so far.
func (a *Analyzer) Frames() uint64 { return a.frames.Load() }
