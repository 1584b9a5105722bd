// SPDX-License-Identifier: MIT
package fft

// referenceEngine runs ditfft2 as written. Staging buffers are reused but
// the recursion itself allocates.
type referenceEngine struct {
	scratch
}

func newReferenceEngine(size int) *referenceEngine {
	return &referenceEngine{scratch: newScratch(size)}
}

func (e *referenceEngine) Backend() Backend { return Reference }

func (e *referenceEngine) FFT(in, out []complex128) {
	mustMatch(e.size, len(in), len(out))
	if sameArray(in, out) {
		copy(e.input, in)
		in = e.input
	}
	ditfft2(in, out)
}

func (e *referenceEngine) RealFFT(in, out []float64) {
	x, X := e.stage(in, out)
	ditfft2(x, X)
	e.extract(out)
}
