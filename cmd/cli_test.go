// SPDX-License-Identifier: MIT
package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"spectralizer/internal/config"
)

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := ParseArgs(nil)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	want := config.NewConfig()
	if cfg.Audio != want.Audio || cfg.Analysis != want.Analysis || cfg.Display != want.Display {
		t.Errorf("defaults changed: %+v", cfg)
	}
	if cfg.Command != "" {
		t.Errorf("Command = %q", cfg.Command)
	}
}

func TestParseArgsFlags(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"-d", "3", "-s", "48000", "-b", "2048", "-c", "2", "-l",
		"--backend", "gonum", "--window", "hann", "--mode", "magnitude",
		"--fps", "30", "--gain", "2.5", "--headless",
		"--ws", "--udp", "-v",
	})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}

	want := config.AudioConfig{
		InputDevice:   3,
		SampleRate:    48000,
		BlockSize:     2048,
		InputChannels: 2,
		LowLatency:    true,
	}
	if cfg.Audio != want {
		t.Errorf("Audio = %+v, want %+v", cfg.Audio, want)
	}
	if cfg.Analysis != (config.AnalysisConfig{Backend: "gonum", Window: "hann", Mode: "magnitude"}) {
		t.Errorf("Analysis = %+v", cfg.Analysis)
	}
	if cfg.Display.FPS != 30 || cfg.Display.Gain != 2.5 || cfg.Display.Enabled {
		t.Errorf("Display = %+v", cfg.Display)
	}
	if !cfg.Transport.WebSocketEnabled || !cfg.Transport.UDPEnabled || !cfg.Debug {
		t.Errorf("Transport/Debug = %+v/%v", cfg.Transport, cfg.Debug)
	}
}

func TestParseArgsFileImpliesSource(t *testing.T) {
	cfg, err := ParseArgs([]string{"-f", "song.flac"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.Source.Kind != config.SourceFile || cfg.Source.File != "song.flac" {
		t.Errorf("Source = %+v", cfg.Source)
	}
}

func TestParseArgsRecordingDefaultName(t *testing.T) {
	cfg, err := ParseArgs([]string{"-r"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if !cfg.Recording.Enabled || !strings.HasPrefix(cfg.Recording.OutputFile, "recording-") {
		t.Errorf("Recording = %+v", cfg.Recording)
	}

	cfg, err = ParseArgs([]string{"-r", "-o", "take1.wav"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.Recording.OutputFile != "take1.wav" {
		t.Errorf("OutputFile = %q", cfg.Recording.OutputFile)
	}
}

func TestParseArgsConfigFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viz.yaml")
	yaml := "audio:\n  block_size: 4096\n  sample_rate: 22050\nanalysis:\n  window: blackman\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ParseArgs([]string{"--config", path, "-b", "256"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.Audio.BlockSize != 256 {
		t.Errorf("flag should win: BlockSize = %d", cfg.Audio.BlockSize)
	}
	if cfg.Audio.SampleRate != 22050 || cfg.Analysis.Window != "blackman" {
		t.Errorf("file values lost: %+v %+v", cfg.Audio, cfg.Analysis)
	}
}

func TestParseArgsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"block size", []string{"-b", "1000"}},
		{"backend", []string{"--backend", "fftw"}},
		{"source", []string{"--source", "radio"}},
		{"file source without file", []string{"--source", "file"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args)
			if !errors.Is(err, config.ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}

	if _, err := ParseArgs([]string{"--no-such-flag"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestParseArgsDevices(t *testing.T) {
	cfg, err := ParseArgs([]string{"devices"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.Command != CommandDevices {
		t.Errorf("Command = %q", cfg.Command)
	}

	cfg, err = ParseArgs([]string{"devices", "--pick"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.Command != CommandPickDevice {
		t.Errorf("Command = %q", cfg.Command)
	}
}

func TestParseArgsHelp(t *testing.T) {
	cfg, err := ParseArgs([]string{"--help"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg != nil {
		t.Error("--help should not produce a config")
	}
}

func TestDefaultOutputFile(t *testing.T) {
	ts := time.Date(2025, 4, 13, 9, 5, 7, 0, time.UTC)
	if got := DefaultOutputFile(ts); got != "recording-13-04-2025-090507.wav" {
		t.Errorf("DefaultOutputFile = %q", got)
	}
}
