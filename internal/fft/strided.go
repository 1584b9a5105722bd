// SPDX-License-Identifier: MIT
package fft

import "math"

// stridedEngine evaluates the same recursion as ditfft2 without copying the
// halves out. A sub-transform of length n reads x[offset], x[offset+stride],
// ... and writes its result into a contiguous window of the output; the
// even half lands in the lower window, the odd half in the upper one, and
// the butterflies then combine them in place.
//
// Twiddles for every level come from one table built for the full size:
// exp(-2πik/n) == table[k*(N/n)].
type stridedEngine struct {
	scratch
	twiddles []complex128 // exp(-2πik/N) for k in [0, N/2)
}

func newStridedEngine(size int) *stridedEngine {
	half := size / 2
	if half == 0 {
		half = 1
	}
	tw := make([]complex128, half)
	for k := range tw {
		theta := -2 * math.Pi * float64(k) / float64(size)
		tw[k] = complex(math.Cos(theta), math.Sin(theta))
	}
	return &stridedEngine{
		scratch:  newScratch(size),
		twiddles: tw,
	}
}

func (e *stridedEngine) Backend() Backend { return Strided }

func (e *stridedEngine) FFT(in, out []complex128) {
	mustMatch(e.size, len(in), len(out))
	if sameArray(in, out) {
		copy(e.input, in)
		in = e.input
	}
	e.transform(in, out, 0, 1, e.size)
}

func (e *stridedEngine) RealFFT(in, out []float64) {
	x, X := e.stage(in, out)
	e.transform(x, X, 0, 1, e.size)
	e.extract(out)
}

// transform writes the length-n DFT of x[offset::stride] into X[:n].
func (e *stridedEngine) transform(x, X []complex128, offset, stride, n int) {
	if n == 1 {
		X[0] = x[offset]
		return
	}

	half := n / 2
	e.transform(x, X[:half], offset, 2*stride, half)
	e.transform(x, X[half:n], offset+stride, 2*stride, half)

	step := e.size / n
	for k := range half {
		t := e.twiddles[k*step] * X[k+half]
		X[k+half] = X[k] - t
		X[k] += t
	}
}
