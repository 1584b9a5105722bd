// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"

	applog "spectralizer/internal/log"
)

// FileSource decodes a .wav, .mp3, .flac or .ogg file and delivers it in
// real time. The last partial block is zero filled; with loop set the file
// restarts at EOF instead.
type FileSource struct {
	pacedLoop

	path      string
	loop      bool
	blockSize int

	dec   decoder
	rate  int
	chans int
	block []int16
}

// NewFileSource opens path and reads its format. blockSize is in frames.
func NewFileSource(path string, blockSize int, loop bool) (*FileSource, error) {
	if blockSize < 1 {
		return nil, fmt.Errorf("audio: block size must be positive, got %d", blockSize)
	}
	dec, err := openDecoder(path)
	if err != nil {
		return nil, err
	}

	s := &FileSource{
		path:      path,
		loop:      loop,
		blockSize: blockSize,
		dec:       dec,
		rate:      dec.sampleRate(),
		chans:     dec.channels(),
	}
	s.block = make([]int16, blockSize*s.chans)
	s.pacedLoop = newPacedLoop("FileSource", blockSize, float64(s.rate))

	applog.Infof("FileSource: %s (%d ch, %d Hz, loop=%v)", path, s.chans, s.rate, loop)
	return s, nil
}

func (s *FileSource) SampleRate() float64 { return float64(s.rate) }
func (s *FileSource) Channels() int       { return s.chans }

// Start begins paced delivery on a new goroutine.
func (s *FileSource) Start(handler func([]int16)) error {
	if s.dec == nil {
		return fmt.Errorf("audio: %s is closed", s.path)
	}
	return s.start(s.block, s.next, handler)
}

// Stop halts delivery and closes the file. A stopped FileSource cannot be
// restarted.
func (s *FileSource) Stop() error {
	s.stop()
	if s.dec == nil {
		return nil
	}
	err := s.dec.Close()
	s.dec = nil
	return err
}

// next fills block with the next blockSize frames.
func (s *FileSource) next(block []int16) error {
	filled := 0
	progressed := true // Whether the current pass produced samples.
	for filled < len(block) {
		n, err := s.dec.read(block[filled:])
		filled += n
		if n > 0 {
			progressed = true
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) {
			return err
		}

		if !s.loop || !progressed {
			if filled == 0 {
				return io.EOF
			}
			clear(block[filled:])
			return nil
		}
		if err := s.rewind(); err != nil {
			return err
		}
		progressed = false
	}
	return nil
}

func (s *FileSource) rewind() error {
	if err := s.dec.Close(); err != nil {
		applog.Warnf("FileSource: close before rewind: %v", err)
	}
	dec, err := openDecoder(s.path)
	if err != nil {
		s.dec = nil
		return err
	}
	s.dec = dec
	applog.Debugf("FileSource: Looping %s", s.path)
	return nil
}

var _ Source = (*FileSource)(nil)
