// SPDX-License-Identifier: MIT
package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for the visualizer.
const (
	DefaultLogLevel       = "info"
	DefaultDeviceID       = MinDeviceID // System default input device
	DefaultSampleRate     = 44100       // CD-quality audio
	DefaultBlockSize      = 1024        // FFT block, ~23ms at 44.1kHz
	DefaultChannels       = 1           // Mono capture
	DefaultLowLatency     = false       // Standard latency mode
	DefaultGateThreshold  = 0.0         // Gate disabled
	DefaultSourceKind     = SourceCapture
	DefaultLoop           = true
	DefaultBackend        = "strided"
	DefaultWindow         = "hamming"
	DefaultMode           = "real"
	DefaultDisplayEnabled = true
	DefaultFPS            = 60
	DefaultGain           = 1.0
	DefaultSmoothing      = true
	DefaultOutputFile     = "" // Auto-generated filename
	DefaultWSAddress      = ":8080"
	DefaultWSInterval     = 33 * time.Millisecond // ~30Hz
	DefaultUDPAddress     = "127.0.0.1:9090"
	DefaultUDPInterval    = 16 * time.Millisecond // ~60Hz

	// Hardware and processing limits
	MinDeviceID   = -1     // -1 represents system default device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MinBlockSize  = 2      // Hamming needs two samples
	MaxBlockSize  = 8192   // Maximum frames per block (power of 2)
	MaxChannels   = 2
	MaxFPS        = 240
)

// Source kinds.
const (
	SourceCapture = "capture" // PortAudio input device
	SourceFile    = "file"    // Decoded audio file
	SourceTone    = "tone"    // Synthetic sines
)

// Config holds all runtime configuration. It is loaded from YAML, then
// environment overrides, then command line flags.
type Config struct {
	Debug     bool            `yaml:"debug"`             // Force debug logging.
	LogLevel  string          `yaml:"log_level"`         // debug, info, warn, error.
	LogFile   string          `yaml:"log_file"`          // Log destination while the TUI owns the terminal ("" discards).
	Command   string          `yaml:"command,omitempty"` // One-off command instead of the visualizer (e.g. "devices").
	Audio     AudioConfig     `yaml:"audio"`
	Source    SourceConfig    `yaml:"source"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Display   DisplayConfig   `yaml:"display"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds capture and block settings.
type AudioConfig struct {
	InputDevice   int     `yaml:"input_device"`   // PortAudio device index (-1 for default).
	SampleRate    float64 `yaml:"sample_rate"`    // Hz.
	BlockSize     int     `yaml:"block_size"`     // Samples per FFT block (power of 2).
	InputChannels int     `yaml:"input_channels"` // Captured channels; analysis uses the first.
	LowLatency    bool    `yaml:"low_latency"`    // Request the device's low input latency.
	GateThreshold float64 `yaml:"gate_threshold"` // 0-1 of full scale; blocks below are skipped. 0 disables.
}

// SourceConfig selects where blocks come from.
type SourceConfig struct {
	Kind   string    `yaml:"kind"`    // capture, file or tone.
	File   string    `yaml:"file"`    // Path for kind=file (.wav, .mp3, .flac, .ogg).
	Loop   bool      `yaml:"loop"`    // Restart the file at EOF.
	ToneHz []float64 `yaml:"tone_hz"` // Frequencies for kind=tone.
}

// AnalysisConfig selects the FFT pipeline.
type AnalysisConfig struct {
	Backend string `yaml:"backend"` // strided, reference or gonum.
	Window  string `yaml:"window"`  // hamming, hann, blackman, ...
	Mode    string `yaml:"mode"`    // real (|Re X|) or magnitude (|X|).
}

// DisplayConfig controls the terminal renderer.
type DisplayConfig struct {
	Enabled   bool    `yaml:"enabled"`   // false runs headless until a signal.
	FPS       int     `yaml:"fps"`       // Redraw rate.
	Gain      float64 `yaml:"gain"`      // Multiplier on the 32768 full-scale bar height.
	Smoothing bool    `yaml:"smoothing"` // Spring-animate bar heights.
}

// RecordingConfig holds settings related to audio recording.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`     // Record the captured stream to WAV.
	OutputFile string `yaml:"output_file"` // Empty picks recording-<timestamp>.wav.
}

// TransportConfig holds settings for publishing spectra over the network.
type TransportConfig struct {
	WebSocketEnabled  bool          `yaml:"websocket_enabled"`
	WebSocketAddress  string        `yaml:"websocket_address"` // Listen address, e.g. ":8080".
	WebSocketInterval time.Duration `yaml:"websocket_interval"`
	UDPEnabled        bool          `yaml:"udp_enabled"`
	UDPTargetAddress  string        `yaml:"udp_target_address"` // e.g. "127.0.0.1:9090".
	UDPSendInterval   time.Duration `yaml:"udp_send_interval"`
}

// NewConfig creates a Config populated with the defaults above.
func NewConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			InputDevice:   DefaultDeviceID,
			SampleRate:    DefaultSampleRate,
			BlockSize:     DefaultBlockSize,
			InputChannels: DefaultChannels,
			LowLatency:    DefaultLowLatency,
			GateThreshold: DefaultGateThreshold,
		},
		Source: SourceConfig{
			Kind:   DefaultSourceKind,
			Loop:   DefaultLoop,
			ToneHz: []float64{440, 880, 1320},
		},
		Analysis: AnalysisConfig{
			Backend: DefaultBackend,
			Window:  DefaultWindow,
			Mode:    DefaultMode,
		},
		Display: DisplayConfig{
			Enabled:   DefaultDisplayEnabled,
			FPS:       DefaultFPS,
			Gain:      DefaultGain,
			Smoothing: DefaultSmoothing,
		},
		Recording: RecordingConfig{
			OutputFile: DefaultOutputFile,
		},
		Transport: TransportConfig{
			WebSocketAddress:  DefaultWSAddress,
			WebSocketInterval: DefaultWSInterval,
			UDPTargetAddress:  DefaultUDPAddress,
			UDPSendInterval:   DefaultUDPInterval,
		},
	}
}

// FrameInterval returns the redraw period for the configured FPS.
func (c *Config) FrameInterval() time.Duration {
	if c.Display.FPS <= 0 {
		return time.Second / DefaultFPS
	}
	return time.Second / time.Duration(c.Display.FPS)
}

// BlockDuration returns how much audio one block covers.
func (c *Config) BlockDuration() time.Duration {
	return time.Duration(float64(c.Audio.BlockSize) / c.Audio.SampleRate * float64(time.Second))
}
