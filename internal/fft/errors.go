// SPDX-License-Identifier: MIT
package fft

import (
	"errors"
	"fmt"

	"spectralizer/pkg/bitint"
)

// Contract violations. The transform functions panic with an error wrapping
// one of these values; NewEngine returns them.
var (
	ErrNotPowerOfTwo  = errors.New("fft: size must be a power of 2")
	ErrLengthMismatch = errors.New("fft: buffer length mismatch")
	ErrWindowTooShort = errors.New("fft: window needs at least 2 samples")
	ErrUnknownBackend = errors.New("fft: unknown backend")
	ErrUnknownWindow  = errors.New("fft: unknown window function")
)

// mustMatch panics unless both lengths equal n.
func mustMatch(n, in, out int) {
	if in != n || out != n {
		panic(fmt.Errorf("%w: input %d, output %d, want %d", ErrLengthMismatch, in, out, n))
	}
}

// mustPowerOfTwo panics unless n is a positive power of two.
func mustPowerOfTwo(n int) {
	if !bitint.IsPowerOfTwo(n) {
		panic(fmt.Errorf("%w, got %d", ErrNotPowerOfTwo, n))
	}
}
