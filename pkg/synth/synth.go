// SPDX-License-Identifier: MIT

// Package synth generates 16-bit test signals and locates spectral peaks.
// It backs the tone source and the tests of the analysis pipeline.
package synth

import "math"

// Sine fills dst with a sine at frequency Hz, amplitude in [0, 1] of full
// scale, starting at sample index start. It returns the index after the
// last sample written so consecutive blocks stay phase continuous.
func Sine(dst []int16, sampleRate, frequency, amplitude float64, start int) int {
	for i := range dst {
		t := float64(start+i) / sampleRate
		dst[i] = toInt16(math.Sin(2*math.Pi*frequency*t) * amplitude)
	}
	return start + len(dst)
}

// Chord fills dst with the sum of equal-weight sines at the given
// frequencies, scaled so the sum never exceeds amplitude.
func Chord(dst []int16, sampleRate float64, frequencies []float64, amplitude float64, start int) int {
	if len(frequencies) == 0 {
		clear(dst)
		return start + len(dst)
	}
	weight := amplitude / float64(len(frequencies))
	for i := range dst {
		t := float64(start+i) / sampleRate
		var v float64
		for _, f := range frequencies {
			v += math.Sin(2 * math.Pi * f * t)
		}
		dst[i] = toInt16(v * weight)
	}
	return start + len(dst)
}

// PeakBin returns the index of the largest value in values[startBin:endBin+1].
func PeakBin(values []float64, startBin, endBin int) int {
	if len(values) == 0 {
		return 0
	}
	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(values) {
		endBin = len(values) - 1
	}

	peakBin := startBin
	peakValue := values[startBin]
	for bin := startBin + 1; bin <= endBin; bin++ {
		if values[bin] > peakValue {
			peakValue = values[bin]
			peakBin = bin
		}
	}
	return peakBin
}

// BinForFrequency returns the FFT bin closest to frequency.
func BinForFrequency(frequency, sampleRate float64, size int) int {
	return int(math.Round(frequency * float64(size) / sampleRate))
}

func toInt16(v float64) int16 {
	v *= math.MaxInt16
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
