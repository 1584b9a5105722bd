package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"spectralizer/cmd"
	"spectralizer/internal/audio"
	"spectralizer/internal/config"
	"spectralizer/internal/fft"
	applog "spectralizer/internal/log"
	"spectralizer/internal/spectrum"
	"spectralizer/internal/transport"
	"spectralizer/internal/transport/udp"
	"spectralizer/internal/tui"
	"spectralizer/pkg/build"
)

// main is the entry point for the spectrum visualizer.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Configure runtime settings
//   - Initialize PortAudio
//   - Parse configuration, environment and command line
//   - Execute one-off commands if requested
//
// 2. Concurrent Phase (Hot Path):
//   - Start the source feeding the analyzer
//   - Start recording and publishers if enabled
//   - Run the terminal visualizer, or wait headless
//
// 3. Shutdown Phase (Cold Path):
//   - Stop publishers
//   - Stop recording and the source
//   - Close transports
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		log.Fatal(err)
	}

	// One thread for the audio callback, one for UI and I/O.
	runtime.GOMAXPROCS(2)

	if err := audio.Initialize(); err != nil {
		log.Fatal(err)
	}
	defer audio.Terminate()

	cfg, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if cfg == nil {
		return // --help or --version
	}

	configureLogging(cfg)

	if cfg.Command != "" {
		if err := executeCommand(cfg.Command); err != nil {
			log.Fatal(err)
		}
		return
	}

	source, label, err := openSource(cfg)
	if err != nil {
		log.Fatal(err)
	}

	analyzer, err := newAnalyzer(cfg, source.SampleRate())
	if err != nil {
		log.Fatal(err)
	}

	engine, err := audio.NewEngine(source, analyzer, cfg.Audio.BlockSize, cfg.Audio.GateThreshold)
	if err != nil {
		log.Fatal(err)
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	if err := engine.Start(); err != nil {
		log.Fatal(err)
	}

	if cfg.Recording.Enabled {
		if err := engine.StartRecording(cfg.Recording.OutputFile); err != nil {
			log.Fatal(err)
		}
	}

	publishers, err := startPublishers(cfg, analyzer)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Display.Enabled {
		err = tui.Run(tui.VisualizerOptions{
			Provider:  analyzer,
			FPS:       cfg.Display.FPS,
			Gain:      cfg.Display.Gain,
			Smoothing: cfg.Display.Smoothing,
			Status: tui.StatusInfo{
				Source:     label,
				Backend:    analyzer.Backend().String(),
				Window:     analyzer.Window().String(),
				Size:       analyzer.Size(),
				SampleRate: analyzer.SampleRate(),
			},
		})
		if err != nil {
			applog.Errorf("Visualizer: %v", err)
		}
	} else {
		fmt.Printf("Running headless on %s. Press Ctrl+C to stop.\n", label)
		waitHeadless(done, source)
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	publishers.stop()

	if err := engine.Close(); err != nil {
		log.Printf("Error closing audio engine: %v", err)
	}
	if cfg.Recording.Enabled {
		fmt.Printf("\nRecording saved to: %s\n", cfg.Recording.OutputFile)
	}

	publishers.close()
}

// configureLogging applies the level and, while the visualizer owns the
// terminal, moves log output to the configured file.
func configureLogging(cfg *config.Config) {
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	} else if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}

	if !cfg.Display.Enabled || cfg.Command != "" {
		return
	}
	if cfg.LogFile == "" {
		applog.SetOutput(io.Discard)
		return
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	applog.SetOutput(f)
}

// executeCommand handles one-off commands that don't need the engine.
func executeCommand(command string) error {
	switch command {
	case cmd.CommandDevices:
		return audio.ListDevices()
	case cmd.CommandPickDevice:
		sel, err := tui.PickDevice()
		if err != nil {
			return err
		}
		if sel == nil {
			return nil
		}
		fmt.Printf("Selected %q\n", sel.Device.Name)
		fmt.Printf("Run: %s -d %d -s %g\n", build.GetBuildFlags().Name, sel.Device.ID, sel.SampleRate)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// openSource builds the configured block source and a label for the
// status line.
func openSource(cfg *config.Config) (audio.Source, string, error) {
	switch cfg.Source.Kind {
	case config.SourceFile:
		src, err := audio.NewFileSource(cfg.Source.File, cfg.Audio.BlockSize, cfg.Source.Loop)
		if err != nil {
			return nil, "", err
		}
		return src, cfg.Source.File, nil
	case config.SourceTone:
		src := audio.NewToneSource(cfg.Audio.SampleRate, cfg.Audio.InputChannels, cfg.Audio.BlockSize, cfg.Source.ToneHz)
		return src, fmt.Sprintf("tone %v Hz", cfg.Source.ToneHz), nil
	default:
		src, err := audio.NewCaptureSource(&cfg.Audio)
		if err != nil {
			return nil, "", err
		}
		return src, src.DeviceName(), nil
	}
}

// newAnalyzer builds the analyzer at the source's real sample rate, which
// for files may differ from the configured one.
func newAnalyzer(cfg *config.Config, sampleRate float64) (*spectrum.Analyzer, error) {
	backend, err := fft.ParseBackend(cfg.Analysis.Backend)
	if err != nil {
		return nil, err
	}
	window, err := fft.ParseWindow(cfg.Analysis.Window)
	if err != nil {
		return nil, err
	}
	mode, err := spectrum.ParseMode(cfg.Analysis.Mode)
	if err != nil {
		return nil, err
	}
	return spectrum.NewAnalyzer(spectrum.Options{
		Size:       cfg.Audio.BlockSize,
		SampleRate: sampleRate,
		Backend:    backend,
		Window:     window,
		Mode:       mode,
	})
}

// waitHeadless blocks until a signal arrives or a non-looping file ends.
func waitHeadless(done <-chan os.Signal, source audio.Source) {
	var finished <-chan struct{}
	if f, ok := source.(*audio.FileSource); ok {
		finished = f.Done()
	}
	select {
	case <-done:
	case <-finished:
		applog.Info("Source finished")
	}
}

// publisherSet tracks everything that pushes spectra off the process.
type publisherSet struct {
	broadcasters []*transport.Broadcaster
	udp          []*udp.Publisher
	senders      []*udp.Sender
	transports   []transport.Transport
}

func startPublishers(cfg *config.Config, analyzer *spectrum.Analyzer) (*publisherSet, error) {
	set := &publisherSet{}

	if cfg.Transport.WebSocketEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress)
		if err != nil {
			set.close()
			return nil, err
		}
		set.transports = append(set.transports, ws)
		b, err := transport.NewBroadcaster(analyzer, ws, cfg.Transport.WebSocketInterval)
		if err != nil {
			set.close()
			return nil, err
		}
		set.broadcasters = append(set.broadcasters, b)
		b.Start()
		applog.Infof("WebSocket: ws://%s%s", ws.Addr(), transport.WebSocketPath)
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			set.close()
			return nil, err
		}
		set.senders = append(set.senders, sender)
		p, err := udp.NewPublisher(cfg.Transport.UDPSendInterval, sender, analyzer)
		if err != nil {
			set.close()
			return nil, err
		}
		set.udp = append(set.udp, p)
		p.Start()
	}

	if !cfg.Display.Enabled && cfg.Debug {
		lt := transport.NewLoggingTransport()
		set.transports = append(set.transports, lt)
		b, err := transport.NewBroadcaster(analyzer, lt, cfg.FrameInterval())
		if err != nil {
			set.close()
			return nil, err
		}
		set.broadcasters = append(set.broadcasters, b)
		b.Start()
	}

	return set, nil
}

func (s *publisherSet) stop() {
	for _, b := range s.broadcasters {
		if err := b.Stop(); err != nil {
			applog.Warnf("Broadcaster: %v", err)
		}
	}
	for _, p := range s.udp {
		if err := p.Stop(); err != nil {
			applog.Warnf("UDP publisher: %v", err)
		}
	}
}

func (s *publisherSet) close() {
	s.stop()
	for _, p := range s.udp {
		if err := p.Close(); err != nil {
			applog.Warnf("UDP publisher: %v", err)
		}
	}
	for _, sender := range s.senders {
		if err := sender.Close(); err != nil {
			applog.Warnf("UDP sender: %v", err)
		}
	}
	for _, t := range s.transports {
		if err := t.Close(); err != nil {
			applog.Warnf("Transport: %v", err)
		}
	}
}
