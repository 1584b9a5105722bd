// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"io"
	"sync"
	"time"

	applog "spectralizer/internal/log"
)

// Source delivers interleaved 16-bit blocks of blockSize × Channels()
// samples to a handler. The handler runs on the source's own goroutine (or
// the PortAudio callback thread) and must not retain the slice.
type Source interface {
	Start(handler func(block []int16)) error
	Stop() error
	SampleRate() float64
	Channels() int
}

// ErrNotStarted is returned by operations that need a running source.
var ErrNotStarted = errors.New("audio: source not started")

// pacedLoop delivers blocks on a ticker so file and synthetic sources run
// at the same rate a capture device would. next fills one block and
// returns io.EOF when the stream is exhausted.
type pacedLoop struct {
	name     string
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}  // Closed by stop.
	finished chan struct{}  // Closed when the loop goroutine exits.
	stopOnce sync.Once      // Guards doneChan for this run.
	wg       sync.WaitGroup // Waits for the loop goroutine.
	mu       sync.Mutex     // Protects ticker and the channels.
}

func newPacedLoop(name string, blockSize int, sampleRate float64) pacedLoop {
	interval := time.Duration(float64(blockSize) / sampleRate * float64(time.Second))
	if interval <= 0 {
		interval = time.Millisecond
	}
	return pacedLoop{name: name, interval: interval}
}

func (p *pacedLoop) start(block []int16, next func([]int16) error, handler func([]int16)) error {
	p.mu.Lock()
	if p.ticker != nil {
		select {
		case <-p.finished:
			// Previous run reached end of stream.
			p.wg.Wait()
		default:
			p.mu.Unlock()
			applog.Warnf("%s: Start called but already running.", p.name)
			return nil
		}
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.finished = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	finished := p.finished
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(finished)
		applog.Infof("%s: Delivering blocks every %s", p.name, p.interval)
		for {
			select {
			case <-ticker.C:
				if err := next(block); err != nil {
					if errors.Is(err, io.EOF) {
						applog.Infof("%s: End of stream", p.name)
					} else {
						applog.Errorf("%s: %v", p.name, err)
					}
					ticker.Stop()
					return
				}
				handler(block)
			case <-doneChan:
				return
			}
		}
	}()
	return nil
}

func (p *pacedLoop) stop() {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return
	}
	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	applog.Debugf("%s: Stopped", p.name)
}

// Done returns a channel closed when the current run ends, either through
// Stop or because the stream ran out. It is nil before the first Start.
func (p *pacedLoop) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished
}
