// SPDX-License-Identifier: MIT
package fft

import "gonum.org/v1/gonum/dsp/fourier"

// gonumEngine hands the complex transform to gonum. Its coefficients use
// the same sign and scaling as ditfft2 (unnormalised, exp(-2πijk/N)).
type gonumEngine struct {
	scratch
	plan *fourier.CmplxFFT
}

func newGonumEngine(size int) *gonumEngine {
	return &gonumEngine{
		scratch: newScratch(size),
		plan:    fourier.NewCmplxFFT(size),
	}
}

func (e *gonumEngine) Backend() Backend { return Gonum }

func (e *gonumEngine) FFT(in, out []complex128) {
	mustMatch(e.size, len(in), len(out))
	e.plan.Coefficients(out, in)
}

func (e *gonumEngine) RealFFT(in, out []float64) {
	x, X := e.stage(in, out)
	e.plan.Coefficients(X, x)
	e.extract(out)
}
