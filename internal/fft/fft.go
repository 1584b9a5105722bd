// SPDX-License-Identifier: MIT
/*
Package fft turns blocks of real audio samples into frequency buckets.

It provides:
- A Hamming analysis window applied in place
- A recursive radix-2 decimation-in-time complex FFT
- A real-input adapter that keeps the real part of every bin
- Reusable engines that own their scratch buffers, with interchangeable
  backends (reference, strided, gonum)

Block sizes are powers of two and fixed per engine. Passing buffers of the
wrong length is a programming error and panics; nothing is truncated or
padded.
*/
package fft

import "math"

// FFT computes the discrete Fourier transform of in and stores it in out,
// in natural frequency order. len(in) must equal len(out) and be a power of
// two. Each recursion level allocates its even and odd halves, so this is
// the verification path, not the hot path. Use an Engine for the latter.
func FFT(in, out []complex128) {
	mustMatch(len(in), len(in), len(out))
	mustPowerOfTwo(len(in))
	ditfft2(in, out)
}

// RealFFT promotes in to complex, transforms it and writes the real part of
// each bin to out. The imaginary parts are dropped: out is not a magnitude
// spectrum.
func RealFFT(in, out []float64) {
	mustMatch(len(in), len(in), len(out))
	mustPowerOfTwo(len(in))

	x := make([]complex128, len(in))
	for i, v := range in {
		x[i] = complex(v, 0)
	}
	X := make([]complex128, len(in))
	ditfft2(x, X)
	for i, c := range X {
		out[i] = real(c)
	}
}

// ditfft2 is the textbook Cooley-Tukey recursion:
//
//	X[0..N/2)  <- DFT of x[0], x[2], x[4], ...
//	X[N/2..N)  <- DFT of x[1], x[3], x[5], ...
//	for k in 0..N/2-1:
//	    X[k]       = E[k] + exp(-2πik/N)·O[k]
//	    X[k + N/2] = E[k] - exp(-2πik/N)·O[k]
//
// Both halves come back in natural order so no bit reversal is needed.
func ditfft2(x, X []complex128) {
	n := len(x)
	if n == 1 {
		X[0] = x[0]
		return
	}

	half := n / 2
	evens := make([]complex128, half)
	odds := make([]complex128, half)
	for i := range half {
		evens[i] = x[2*i]
		odds[i] = x[2*i+1]
	}

	xEven := make([]complex128, half)
	xOdd := make([]complex128, half)
	ditfft2(evens, xEven)
	ditfft2(odds, xOdd)

	// The combine must cover every k in [0, N/2).
	for k := range half {
		t := twiddle(k, n) * xOdd[k]
		X[k] = xEven[k] + t
		X[k+half] = xEven[k] - t
	}
}

// twiddle returns exp(-2πik/n).
func twiddle(k, n int) complex128 {
	theta := -2 * math.Pi * float64(k) / float64(n)
	return complex(math.Cos(theta), math.Sin(theta))
}
