// SPDX-License-Identifier: MIT
package fft

import (
	"fmt"
	"strings"

	"spectralizer/pkg/bitint"
)

// Backend selects the algorithm behind an Engine.
type Backend int

const (
	// Strided runs the decimation-in-time recursion over strided views of
	// the input with a precomputed twiddle table. It never allocates.
	Strided Backend = iota
	// Reference runs the textbook recursion, allocating halves per level.
	Reference
	// Gonum delegates to gonum's mixed-radix complex FFT.
	Gonum
)

func (b Backend) String() string {
	switch b {
	case Strided:
		return "strided"
	case Reference:
		return "reference"
	case Gonum:
		return "gonum"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend converts a case-insensitive name to a Backend. An empty name
// selects Strided.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "strided", "":
		return Strided, nil
	case "reference", "recursive":
		return Reference, nil
	case "gonum":
		return Gonum, nil
	default:
		return Strided, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// Engine is a fixed-size transform that owns its working storage. Calls on
// one Engine must not overlap; buffers passed in must have length Size().
type Engine interface {
	// Size returns the block length N the engine was built for.
	Size() int
	// Backend reports which algorithm the engine runs.
	Backend() Backend
	// FFT writes the transform of in to out. in and out may alias.
	FFT(in, out []complex128)
	// RealFFT writes the real part of the transform of in to out,
	// staging the complex data in the engine's own buffers.
	RealFFT(in, out []float64)
}

// NewEngine builds an engine for blocks of size samples.
func NewEngine(size int, backend Backend) (Engine, error) {
	if !bitint.IsPowerOfTwo(size) {
		return nil, fmt.Errorf("%w, got %d", ErrNotPowerOfTwo, size)
	}

	switch backend {
	case Strided:
		return newStridedEngine(size), nil
	case Reference:
		return newReferenceEngine(size), nil
	case Gonum:
		return newGonumEngine(size), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownBackend, int(backend))
	}
}

// MustNewEngine is like NewEngine but panics on error.
func MustNewEngine(size int, backend Backend) Engine {
	e, err := NewEngine(size, backend)
	if err != nil {
		panic(err)
	}
	return e
}

// scratch is the staging storage every backend owns: complex input and
// output, each exactly size long, allocated once.
type scratch struct {
	size   int
	input  []complex128
	output []complex128
}

func newScratch(size int) scratch {
	return scratch{
		size:   size,
		input:  make([]complex128, size),
		output: make([]complex128, size),
	}
}

func (s *scratch) Size() int { return s.size }

// stage checks the real buffers against the engine size and promotes in
// into the input scratch. Every slot is rewritten, so nothing survives from
// a previous call.
func (s *scratch) stage(in, out []float64) (x, X []complex128) {
	mustMatch(s.size, len(in), len(out))
	for i, v := range in {
		s.input[i] = complex(v, 0)
	}
	return s.input, s.output
}

// extract writes the real part of each output bin to out.
func (s *scratch) extract(out []float64) {
	for i, c := range s.output {
		out[i] = real(c)
	}
}

// sameArray reports whether a and b start at the same element.
func sameArray(a, b []complex128) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}
