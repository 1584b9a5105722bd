// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"spectralizer/internal/fft"
	applog "spectralizer/internal/log"
	"spectralizer/internal/spectrum"
	"spectralizer/pkg/bitint"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// DefaultPaths are searched in order when LoadConfig gets an empty path.
var DefaultPaths = []string{
	"spectralizer.yaml",
	"config.yaml",
}

// LoadConfig loads configuration from a YAML file specified by path. If path
// is empty it searches DefaultPaths and falls back to built-in defaults when
// none exist. Environment overrides are applied after the file, then the
// result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		for _, candidate := range DefaultPaths {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		applog.Debugf("configuration: Loaded %s", path)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field that would otherwise fail deep inside the
// audio or FFT setup.
func (c *Config) Validate() error {
	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return invalid("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}

	a := c.Audio
	if a.InputDevice < MinDeviceID {
		return invalid("audio.input_device must be >= %d, got %d", MinDeviceID, a.InputDevice)
	}
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		return invalid("audio.sample_rate must be within [%d, %d] Hz, got %.0f", MinSampleRate, MaxSampleRate, a.SampleRate)
	}
	if !bitint.IsPowerOfTwo(a.BlockSize) {
		return invalid("audio.block_size must be a power of 2, got %d (try %d)", a.BlockSize, bitint.NextPowerOfTwo(a.BlockSize))
	}
	if a.BlockSize < MinBlockSize || a.BlockSize > MaxBlockSize {
		return invalid("audio.block_size must be within [%d, %d], got %d", MinBlockSize, MaxBlockSize, a.BlockSize)
	}
	if a.InputChannels < 1 || a.InputChannels > MaxChannels {
		return invalid("audio.input_channels must be 1 or 2, got %d", a.InputChannels)
	}
	if a.GateThreshold < 0 || a.GateThreshold > 1 {
		return invalid("audio.gate_threshold must be within [0, 1], got %g", a.GateThreshold)
	}

	switch c.Source.Kind {
	case SourceCapture:
	case SourceFile:
		if c.Source.File == "" {
			return invalid("source.file is required when source.kind is %q", SourceFile)
		}
	case SourceTone:
		for _, hz := range c.Source.ToneHz {
			if hz <= 0 || hz >= a.SampleRate/2 {
				return invalid("source.tone_hz %g must be within (0, %g)", hz, a.SampleRate/2)
			}
		}
	default:
		return invalid("source.kind %q is not one of capture, file, tone", c.Source.Kind)
	}

	if _, err := fft.ParseBackend(c.Analysis.Backend); err != nil {
		return invalid("analysis.backend: %v", err)
	}
	if _, err := fft.ParseWindow(c.Analysis.Window); err != nil {
		return invalid("analysis.window: %v", err)
	}
	if _, err := spectrum.ParseMode(c.Analysis.Mode); err != nil {
		return invalid("analysis.mode: %v", err)
	}

	if c.Display.FPS < 1 || c.Display.FPS > MaxFPS {
		return invalid("display.fps must be within [1, %d], got %d", MaxFPS, c.Display.FPS)
	}
	if c.Display.Gain <= 0 {
		return invalid("display.gain must be positive, got %g", c.Display.Gain)
	}

	t := c.Transport
	if t.WebSocketEnabled {
		if _, _, err := net.SplitHostPort(t.WebSocketAddress); err != nil {
			return invalid("transport.websocket_address %q: %v", t.WebSocketAddress, err)
		}
		if t.WebSocketInterval <= 0 {
			return invalid("transport.websocket_interval must be positive")
		}
	}
	if t.UDPEnabled {
		if _, _, err := net.SplitHostPort(t.UDPTargetAddress); err != nil {
			return invalid("transport.udp_target_address %q: %v", t.UDPTargetAddress, err)
		}
		if t.UDPSendInterval <= 0 {
			return invalid("transport.udp_send_interval must be positive")
		}
	}

	return nil
}

func invalid(format string, v ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, v...))
}

// applyEnvOverrides applies ENV_* variables on top of the loaded values.
// Unparseable values are ignored with a warning.
func (c *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Debug = bVal
			applog.Infof("configuration: Overriding debug from env: %v", bVal)
		} else {
			applog.Warnf("configuration: Ignoring ENV_DEBUG=%q: %v", val, err)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = strings.ToLower(val)
		applog.Infof("configuration: Overriding log_level from env: %s", val)
	}

	// ENV_BLOCK_SIZE
	if val, ok := os.LookupEnv("ENV_BLOCK_SIZE"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Audio.BlockSize = n
			applog.Infof("configuration: Overriding audio.block_size from env: %d", n)
		} else {
			applog.Warnf("configuration: Ignoring ENV_BLOCK_SIZE=%q: %v", val, err)
		}
	}
	// ENV_FFT_BACKEND
	if val, ok := os.LookupEnv("ENV_FFT_BACKEND"); ok {
		c.Analysis.Backend = val
		applog.Infof("configuration: Overriding analysis.backend from env: %s", val)
	}

	// ENV_WS_{...}
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.WebSocketEnabled = bVal
			applog.Infof("configuration: Overriding transport.websocket_enabled from env: %v", bVal)
		}
	}
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		c.Transport.WebSocketAddress = val
		applog.Infof("configuration: Overriding transport.websocket_address from env: %s", val)
	}

	// ENV_UDP_{...}
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = bVal
			applog.Infof("configuration: Overriding transport.udp_enabled from env: %v", bVal)
		}
	}
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		applog.Infof("configuration: Overriding transport.udp_target_address from env: %s", val)
	}
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
			applog.Infof("configuration: Overriding transport.udp_send_interval from env: %s", dur)
		}
	}
}
