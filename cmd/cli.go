// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"spectralizer/internal/config"
	"spectralizer/pkg/build"
)

// Commands other than the visualizer itself.
const (
	CommandDevices    = "devices"
	CommandPickDevice = "devices-pick"
)

// flagValues mirrors the command line before it is merged into the config.
type flagValues struct {
	configPath string
	deviceID   int
	sampleRate float64
	blockSize  int
	channels   int
	lowLatency bool
	source     string
	file       string
	backend    string
	window     string
	mode       string
	fps        int
	gain       float64
	headless   bool
	record     bool
	output     string
	ws         bool
	udp        bool
	verbose    bool
	pick       bool
}

// ParseArgs parses args (without the program name) into a validated
// configuration. The file named by --config (or the default search) is
// loaded first, then ENV_* overrides, then any flag the user set. A nil
// config with a nil error means cobra already handled the invocation
// (--help, --version).
func ParseArgs(args []string) (*config.Config, error) {
	buildInfo := build.GetBuildFlags()
	var (
		flags flagValues
		cfg   *config.Config
	)

	load := func(cmd *cobra.Command, command string) error {
		loaded, err := config.LoadConfig(flags.configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, &flags, loaded)
		loaded.Command = command
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		return nil
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return load(cmd, "")
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List available audio input devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.pick {
				return load(cmd, CommandPickDevice)
			}
			return load(cmd, CommandDevices)
		},
	}
	devicesCmd.Flags().BoolVar(&flags.pick, "pick", false,
		"Choose a device interactively and print the matching flags")
	rootCmd.AddCommand(devicesCmd)

	pf := rootCmd.PersistentFlags()

	pf.StringVar(&flags.configPath, "config", "",
		"Path to a YAML config file (default: ./spectralizer.yaml or ./config.yaml)")

	// Audio Device Configuration
	pf.IntVarP(&flags.deviceID, "device", "d", config.DefaultDeviceID,
		"Specify input device ID. Use 'devices' command to see available devices.")
	pf.Float64VarP(&flags.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	pf.IntVarP(&flags.blockSize, "block-size", "b", config.DefaultBlockSize,
		"Samples per FFT block, a power of 2 (affects latency and resolution)")
	pf.IntVarP(&flags.channels, "channels", "c", config.DefaultChannels,
		"Number of channels to capture (1=mono, 2=stereo); analysis uses the first")
	pf.BoolVarP(&flags.lowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for real-time processing")

	// Source Configuration
	pf.StringVar(&flags.source, "source", config.DefaultSourceKind,
		"Where samples come from: capture, file or tone")
	pf.StringVarP(&flags.file, "file", "f", "",
		"Audio file to analyze (.wav, .mp3, .flac, .ogg); implies --source file")

	// Analysis Configuration
	pf.StringVar(&flags.backend, "backend", config.DefaultBackend,
		"FFT backend: strided, reference or gonum")
	pf.StringVar(&flags.window, "window", config.DefaultWindow,
		"Analysis window: hamming, hann, blackman, blackman-nuttall, bartlett-hann, nuttall, lanczos, rectangular")
	pf.StringVar(&flags.mode, "mode", config.DefaultMode,
		"Bin value: real (|Re X|) or magnitude (|X|)")

	// Display Configuration
	pf.IntVar(&flags.fps, "fps", config.DefaultFPS, "Redraw rate of the visualizer")
	pf.Float64Var(&flags.gain, "gain", config.DefaultGain, "Bar height multiplier")
	pf.BoolVar(&flags.headless, "headless", false, "Run without the terminal visualizer")

	// Recording Configuration
	pf.BoolVarP(&flags.record, "record", "r", false,
		"Record the input stream to a WAV file")
	pf.StringVarP(&flags.output, "output", "o", config.DefaultOutputFile,
		"Output file name. Default is recording-DD-MM-YYYY-HHMMSS.wav")

	// Transport Configuration
	pf.BoolVar(&flags.ws, "ws", false, "Serve spectrum frames over WebSocket")
	pf.BoolVar(&flags.udp, "udp", false, "Publish spectrum packets over UDP")

	// Debug Configuration
	pf.BoolVarP(&flags.verbose, "verbose", "v", false,
		"Show verbose output")

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFlags copies every flag the user set over the loaded configuration.
func applyFlags(cmd *cobra.Command, f *flagValues, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("device") {
		cfg.Audio.InputDevice = f.deviceID
	}
	if changed("sample-rate") {
		cfg.Audio.SampleRate = f.sampleRate
	}
	if changed("block-size") {
		cfg.Audio.BlockSize = f.blockSize
	}
	if changed("channels") {
		cfg.Audio.InputChannels = f.channels
	}
	if changed("low-latency") {
		cfg.Audio.LowLatency = f.lowLatency
	}

	if changed("file") {
		cfg.Source.File = f.file
		cfg.Source.Kind = config.SourceFile
	}
	if changed("source") {
		cfg.Source.Kind = f.source
	}

	if changed("backend") {
		cfg.Analysis.Backend = f.backend
	}
	if changed("window") {
		cfg.Analysis.Window = f.window
	}
	if changed("mode") {
		cfg.Analysis.Mode = f.mode
	}

	if changed("fps") {
		cfg.Display.FPS = f.fps
	}
	if changed("gain") {
		cfg.Display.Gain = f.gain
	}
	if changed("headless") {
		cfg.Display.Enabled = !f.headless
	}

	if changed("record") {
		cfg.Recording.Enabled = f.record
	}
	if changed("output") {
		cfg.Recording.OutputFile = f.output
	}
	if cfg.Recording.Enabled && cfg.Recording.OutputFile == "" {
		cfg.Recording.OutputFile = DefaultOutputFile(time.Now())
	}

	if changed("ws") {
		cfg.Transport.WebSocketEnabled = f.ws
	}
	if changed("udp") {
		cfg.Transport.UDPEnabled = f.udp
	}

	if changed("verbose") && f.verbose {
		cfg.Debug = true
	}
}

// DefaultOutputFile names a recording after the time it started.
func DefaultOutputFile(t time.Time) string {
	return fmt.Sprintf("recording-%s.wav", t.UTC().Format("02-01-2006-150405"))
}
