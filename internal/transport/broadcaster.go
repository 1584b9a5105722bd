// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"sync"
	"time"

	applog "spectralizer/internal/log"
)

// Broadcaster periodically pulls the latest spectrum from a provider and
// hands it to a Transport as a Frame. Frames are only sent when the
// provider has processed a new block since the last tick.
type Broadcaster struct {
	provider  SpectrumProvider
	transport Transport
	interval  time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex

	seq        uint64
	lastFrames uint64
}

// NewBroadcaster creates a Broadcaster. interval <= 0 defaults to ~30Hz.
func NewBroadcaster(provider SpectrumProvider, transport Transport, interval time.Duration) (*Broadcaster, error) {
	if provider == nil {
		return nil, errors.New("Broadcaster: provider cannot be nil")
	}
	if transport == nil {
		return nil, errors.New("Broadcaster: transport cannot be nil")
	}
	if interval <= 0 {
		interval = 33 * time.Millisecond
		applog.Warnf("Broadcaster: Invalid interval provided, defaulting to %s", interval)
	}
	return &Broadcaster{provider: provider, transport: transport, interval: interval}, nil
}

// Start launches the ticker goroutine. Calling Start on a running
// Broadcaster is a no-op.
func (b *Broadcaster) Start() {
	b.mu.Lock()
	if b.ticker != nil {
		b.mu.Unlock()
		applog.Warnf("Broadcaster: Start called but already running.")
		return
	}
	b.ticker = time.NewTicker(b.interval)
	b.doneChan = make(chan struct{})
	b.stopOnce = sync.Once{}
	ticker := b.ticker
	doneChan := b.doneChan
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-ticker.C:
				b.broadcast()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop halts the goroutine and waits for it. It does not close the
// transport.
func (b *Broadcaster) Stop() error {
	b.mu.Lock()
	if b.ticker == nil {
		b.mu.Unlock()
		return nil
	}
	b.stopOnce.Do(func() {
		close(b.doneChan)
		b.ticker.Stop()
		b.ticker = nil
	})
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

// broadcast sends one frame if the provider has new data.
func (b *Broadcaster) broadcast() {
	frames := b.provider.Frames()
	if frames == b.lastFrames {
		return
	}
	b.lastFrames = frames

	frame, err := b.frame()
	if err != nil {
		applog.Errorf("Broadcaster: %v", err)
		return
	}
	if err := b.transport.Send(frame); err != nil {
		applog.Debugf("Broadcaster: Send failed: %v", err)
	}
}

// frame snapshots the provider. Each frame owns its bins because
// transports may queue it.
func (b *Broadcaster) frame() (Frame, error) {
	bins := make([]float64, b.provider.Bins())
	if err := b.provider.SpectrumInto(bins); err != nil {
		return Frame{}, err
	}
	b.seq++
	return Frame{
		Seq:       b.seq,
		Timestamp: time.Now().UnixMilli(),
		BinHz:     b.provider.FrequencyForBin(1),
		Bins:      bins,
	}, nil
}
