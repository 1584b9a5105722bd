// SPDX-License-Identifier: MIT
/*
Package audio moves PCM blocks from a Source to the analysis pipeline:
- PortAudio capture, decoded files or synthetic tones as the Source
- Mono reduction to the first channel
- Noise gate with branchless implementation
- WAV recording with atomic state management

Thread Safety:
- The handler runs on the source's delivery goroutine only
- Pre-allocates buffers to avoid GC in hot path
- Counters and recording state are atomic
*/
package audio

import (
	"errors"
	"os"
	"sync"
	"sync/atomic"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "spectralizer/internal/log"
)

// Processor consumes mono blocks of exactly blockSize samples. Process is
// called from the delivery goroutine and must not retain the slice.
type Processor interface {
	Process(block []int16)
}

type Engine struct {
	source    Source
	processor Processor
	blockSize int
	channels  int

	// Mono block handed to the processor when the source is multi-channel.
	monoBuffer []int16

	// Noise gate for signal conditioning.
	gateEnabled   bool
	gateThreshold int32 // Absolute amplitude threshold (0-32768)

	// Recording state and buffers.
	isRecording int32      // Atomic flag for thread-safe state
	recMu       sync.Mutex // Serializes encoder writes against StopRecording
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *goaudio.IntBuffer // Reusable buffer for format conversion

	processed atomic.Uint64
	gated     atomic.Uint64
}

// NewEngine wires source to processor. gateThreshold is a fraction of full
// scale; 0 leaves the gate disabled.
func NewEngine(source Source, processor Processor, blockSize int, gateThreshold float64) (*Engine, error) {
	if source == nil {
		return nil, errors.New("audio: nil source")
	}
	if processor == nil {
		return nil, errors.New("audio: nil processor")
	}

	e := &Engine{
		source:     source,
		processor:  processor,
		blockSize:  blockSize,
		channels:   source.Channels(),
		monoBuffer: make([]int16, blockSize),
	}
	e.SetGateThreshold(gateThreshold)
	e.gateEnabled = gateThreshold > 0

	applog.Infof("Engine: block %d, %d channel(s), gate %.3f (enabled=%v)",
		blockSize, e.channels, e.GetGateThreshold(), e.gateEnabled)
	return e, nil
}

// Start begins delivery from the source.
func (e *Engine) Start() error {
	return e.source.Start(e.processInputStream)
}

// Source returns the wired source.
func (e *Engine) Source() Source { return e.source }

// Processed is the number of blocks handed to the processor.
func (e *Engine) Processed() uint64 { return e.processed.Load() }

// Gated is the number of blocks dropped by the noise gate.
func (e *Engine) Gated() uint64 { return e.gated.Load() }

// processInputStream is the per-block handler.
// Performance Critical:
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path when not recording
func (e *Engine) processInputStream(in []int16) {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		e.writeRecording(in)
	}
	e.processBuffer(in)
}

// processBuffer reduces to mono, gates and forwards.
func (e *Engine) processBuffer(buffer []int16) {
	mono := e.mono(buffer)

	if e.gateEnabled && gateLevel(mono) <= e.gateThreshold {
		e.gated.Add(1)
		return
	}

	e.processor.Process(mono)
	e.processed.Add(1)
}

// mono returns the first channel of buffer as a blockSize slice, zero
// filling frames the source did not deliver.
func (e *Engine) mono(buffer []int16) []int16 {
	if e.channels == 1 && len(buffer) == e.blockSize {
		return buffer
	}
	for i := range e.blockSize {
		j := i * e.channels
		if j < len(buffer) {
			e.monoBuffer[i] = buffer[j]
		} else {
			e.monoBuffer[i] = 0 // Short block
		}
	}
	return e.monoBuffer
}

// Close stops the source and any recording.
func (e *Engine) Close() error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		if err := e.StopRecording(); err != nil {
			return err
		}
	}

	if err := e.source.Stop(); err != nil {
		return err
	}

	applog.Infof("Engine: %d blocks processed, %d gated", e.Processed(), e.Gated())
	return nil
}
