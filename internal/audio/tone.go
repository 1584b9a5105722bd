// SPDX-License-Identifier: MIT
package audio

import (
	applog "spectralizer/internal/log"
	"spectralizer/pkg/synth"
)

// ToneAmplitude is the peak level of the summed tone, as a fraction of
// full scale.
const ToneAmplitude = 0.8

// ToneSource generates a chord of sines, identical on every channel. It
// needs no hardware, which makes it the source for demos and tests.
type ToneSource struct {
	pacedLoop

	rate        float64
	chans       int
	frequencies []float64

	position int
	mono     []int16
	block    []int16
}

func NewToneSource(sampleRate float64, channels, blockSize int, frequencies []float64) *ToneSource {
	if channels < 1 {
		channels = 1
	}
	applog.Infof("ToneSource: %v Hz at %.0f Hz", frequencies, sampleRate)
	return &ToneSource{
		pacedLoop:   newPacedLoop("ToneSource", blockSize, sampleRate),
		rate:        sampleRate,
		chans:       channels,
		frequencies: append([]float64(nil), frequencies...),
		mono:        make([]int16, blockSize),
		block:       make([]int16, blockSize*channels),
	}
}

func (s *ToneSource) SampleRate() float64 { return s.rate }
func (s *ToneSource) Channels() int       { return s.chans }

func (s *ToneSource) Start(handler func([]int16)) error {
	return s.start(s.block, s.next, handler)
}

func (s *ToneSource) Stop() error {
	s.stop()
	return nil
}

// next never runs out.
func (s *ToneSource) next(block []int16) error {
	s.position = synth.Chord(s.mono, s.rate, s.frequencies, ToneAmplitude, s.position)
	for i, v := range s.mono {
		for ch := range s.chans {
			block[i*s.chans+ch] = v
		}
	}
	return nil
}

var _ Source = (*ToneSource)(nil)
