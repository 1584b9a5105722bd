// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"runtime"
	"time"

	"github.com/gordonklaus/portaudio"

	"spectralizer/internal/config"
	applog "spectralizer/internal/log"
)

// CaptureSource reads blocks from a PortAudio input device. PortAudio must
// be initialized before NewCaptureSource and stay initialized until Stop.
type CaptureSource struct {
	sampleRate float64
	blockSize  int
	channels   int

	inputBuffer  []int16
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	handler func([]int16)
}

// NewCaptureSource resolves the configured input device.
func NewCaptureSource(cfg *config.AudioConfig) (*CaptureSource, error) {
	inputDevice, err := InputDevice(cfg.InputDevice)
	if err != nil {
		return nil, err
	}
	if inputDevice.MaxInputChannels < cfg.InputChannels {
		return nil, fmt.Errorf("device %q has %d input channels, %d requested",
			inputDevice.Name, inputDevice.MaxInputChannels, cfg.InputChannels)
	}

	s := &CaptureSource{
		sampleRate:  cfg.SampleRate,
		blockSize:   cfg.BlockSize,
		channels:    cfg.InputChannels,
		inputBuffer: make([]int16, cfg.BlockSize*cfg.InputChannels),
		inputDevice: inputDevice,
	}

	if cfg.LowLatency {
		s.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		s.inputLatency = inputDevice.DefaultHighInputLatency
	}

	applog.Infof("CaptureSource: %s (%d ch, %.0f Hz, latency %s)",
		inputDevice.Name, s.channels, s.sampleRate, s.inputLatency)
	return s, nil
}

func (s *CaptureSource) SampleRate() float64 { return s.sampleRate }
func (s *CaptureSource) Channels() int       { return s.channels }

// DeviceName returns the name of the device being captured.
func (s *CaptureSource) DeviceName() string { return s.inputDevice.Name }

// Start opens and starts the input stream.
func (s *CaptureSource) Start(handler func([]int16)) error {
	if s.inputStream != nil {
		return nil
	}
	s.handler = handler

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: s.channels,
			Device:   s.inputDevice,
			Latency:  s.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: s.blockSize,
		SampleRate:      s.sampleRate,
	}

	stream, err := portaudio.OpenStream(params, s.processInputStream)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	s.inputStream = stream

	if err := s.inputStream.Start(); err != nil {
		s.inputStream.Close()
		s.inputStream = nil
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	return nil
}

// Stop stops and closes the input stream.
func (s *CaptureSource) Stop() error {
	if s.inputStream != nil {
		if err := s.inputStream.Stop(); err != nil {
			return err
		}

		if err := s.inputStream.Close(); err != nil {
			return err
		}

		s.inputStream = nil
	}

	return nil
}

// processInputStream is the PortAudio callback. It copies into a
// pre-allocated buffer and never allocates.
func (s *CaptureSource) processInputStream(in []int16) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	copy(s.inputBuffer, in)
	s.handler(s.inputBuffer)
}

var _ Source = (*CaptureSource)(nil)
