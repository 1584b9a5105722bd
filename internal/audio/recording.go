// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "spectralizer/internal/log"
)

// ErrAlreadyRecording is returned by StartRecording while a recording runs.
var ErrAlreadyRecording = errors.New("audio: already recording")

// StartRecording writes every delivered block, all channels, to a 16-bit
// PCM WAV file until StopRecording.
func (e *Engine) StartRecording(filename string) error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		return ErrAlreadyRecording
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create recording: %w", err)
	}

	sampleRate := int(e.source.SampleRate())

	e.recMu.Lock()
	e.outputFile = file
	e.wavEncoder = wav.NewEncoder(file, sampleRate, 16, e.channels, 1)
	e.sampleBuf = &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: e.channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, e.blockSize*e.channels),
		SourceBitDepth: 16,
	}
	e.recMu.Unlock()

	atomic.StoreInt32(&e.isRecording, 1)
	applog.Infof("Engine: Recording to %s", filename)

	return nil
}

// writeRecording converts and encodes one interleaved block.
func (e *Engine) writeRecording(in []int16) {
	e.recMu.Lock()
	defer e.recMu.Unlock()

	if e.wavEncoder == nil {
		return
	}

	if cap(e.sampleBuf.Data) < len(in) {
		e.sampleBuf.Data = make([]int, len(in))
	}
	e.sampleBuf.Data = e.sampleBuf.Data[:len(in)]
	for i, sample := range in {
		e.sampleBuf.Data[i] = int(sample)
	}

	if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
		applog.Errorf("Engine: Error writing to WAV file: %v", err)
	}
}

// StopRecording finalizes the WAV header and closes the file.
func (e *Engine) StopRecording() error {
	if atomic.LoadInt32(&e.isRecording) == 0 {
		return nil
	}

	atomic.StoreInt32(&e.isRecording, 0)

	e.recMu.Lock()
	defer e.recMu.Unlock()

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return err
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			return err
		}
		applog.Infof("Engine: Recording saved to %s", e.outputFile.Name())
		e.outputFile = nil
	}

	return nil
}

// IsRecording reports whether blocks are being written to disk.
func (e *Engine) IsRecording() bool {
	return atomic.LoadInt32(&e.isRecording) == 1
}
