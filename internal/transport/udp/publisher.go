// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	applog "spectralizer/internal/log"
	"spectralizer/internal/transport"
)

// HeaderSize is the fixed prefix of every packet: sequence, timestamp and
// bin count.
const HeaderSize = 4 + 8 + 2

// Publisher periodically fetches the folded spectrum, packs it into the
// binary layout below and sends it with a Sender. It runs in a separate
// goroutine managed by Start and Stop.
type Publisher struct {
	sender   *Sender
	provider transport.SpectrumProvider
	interval time.Duration

	ticker   *time.Ticker   // Ticker that triggers packet sending.
	doneChan chan struct{}  // Signals the publisher goroutine to stop.
	stopOnce sync.Once      // Stop logic runs once per Start/Stop cycle.
	wg       sync.WaitGroup // Waits for the publisher goroutine during Stop.
	mu       sync.Mutex     // Protects ticker and doneChan during Start/Stop.

	sequenceNum uint32
	lastFrames  uint64

	// Pre-allocated buffers for buildPacket.
	binBuffer    []float64
	f32Buffer    []float32
	packetBuffer *bytes.Buffer
}

// NewPublisher creates a Publisher. An interval <= 0 defaults to 16ms.
func NewPublisher(interval time.Duration, sender *Sender, provider transport.SpectrumProvider) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}
	if provider == nil {
		return nil, fmt.Errorf("UDPPublisher: spectrum provider cannot be nil")
	}

	if interval <= 0 {
		interval = 16 * time.Millisecond // ~60Hz
		applog.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}

	bins := provider.Bins()
	if bins > math.MaxUint16 {
		return nil, fmt.Errorf("UDPPublisher: %d bins do not fit the uint16 count field", bins)
	}
	applog.Infof("UDPPublisher: Initializing (Interval: %s, Bins: %d)", interval, bins)

	return &Publisher{
		sender:       sender,
		provider:     provider,
		interval:     interval,
		binBuffer:    make([]float64, bins),
		f32Buffer:    make([]float32, bins),
		packetBuffer: bytes.NewBuffer(make([]byte, 0, HeaderSize+4*bins)),
	}, nil
}

// Start begins the periodic publishing process. Subsequent calls are
// no-ops while running.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	// Locals avoid racing on p.ticker/p.doneChan.
	ticker := p.ticker
	doneChan := p.doneChan

	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("UDPPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				applog.Debugf("UDPPublisher: Publisher goroutine received stop signal.")
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine to terminate and waits for it.
// It is safe to call Stop multiple times.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})

	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("UDPPublisher: Publisher goroutine finished.")
	return nil
}

/*
UDP Packet Structure (BigEndian). Timestamp is nanoseconds since epoch.

|<---- 4 Bytes ---->|<------ 8 Bytes ------>|<-- 2 Bytes -->|<----- N * 4 Bytes ----->|
+-------------------+-----------------------+---------------+-------------------------+
|  Sequence Number  |       Timestamp       |   Bin Count   |          Bins           |
|      (uint32)     |        (int64)        |    (uint16)   |      (N * float32)      |
+-------------------+-----------------------+---------------+-------------------------+
*/

// buildAndSendPacket runs on each tick. It skips ticks where the analyzer
// has not produced a new block.
func (p *Publisher) buildAndSendPacket() {
	frames := p.provider.Frames()
	if frames == p.lastFrames {
		return
	}
	p.lastFrames = frames

	p.sequenceNum++
	packet, err := p.buildPacket(p.sequenceNum, time.Now().UnixNano())
	if err != nil {
		applog.Errorf("UDPPublisher: %v", err)
		return
	}

	if err := p.sender.Send(packet); err == nil {
		applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, len(packet))
	}
}

// buildPacket packs the current spectrum. The returned slice aliases the
// internal buffer and is valid until the next call.
func (p *Publisher) buildPacket(seq uint32, timestamp int64) ([]byte, error) {
	if err := p.provider.SpectrumInto(p.binBuffer); err != nil {
		return nil, fmt.Errorf("error getting spectrum: %w", err)
	}
	for i, v := range p.binBuffer {
		p.f32Buffer[i] = float32(v)
	}

	p.packetBuffer.Reset()
	err := binary.Write(p.packetBuffer, binary.BigEndian, seq)
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, timestamp)
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, uint16(len(p.f32Buffer)))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, p.f32Buffer)
	}
	if err != nil {
		return nil, fmt.Errorf("error packing data into binary buffer: %w", err)
	}
	return p.packetBuffer.Bytes(), nil
}

// Close stops the publisher. It does not close the Sender.
func (p *Publisher) Close() error {
	return p.Stop()
}

var _ interface{ Close() error } = (*Publisher)(nil)

// Packet is a decoded datagram.
type Packet struct {
	Seq       uint32
	Timestamp int64
	Bins      []float32
}

// DecodePacket parses a datagram produced by Publisher.
func DecodePacket(b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return Packet{}, fmt.Errorf("udp: short packet (%d bytes)", len(b))
	}
	pkt := Packet{
		Seq:       binary.BigEndian.Uint32(b[0:4]),
		Timestamp: int64(binary.BigEndian.Uint64(b[4:12])),
	}
	count := int(binary.BigEndian.Uint16(b[12:14]))
	if len(b) != HeaderSize+4*count {
		return Packet{}, fmt.Errorf("udp: packet has %d bytes, header says %d bins", len(b), count)
	}
	pkt.Bins = make([]float32, count)
	for i := range pkt.Bins {
		off := HeaderSize + 4*i
		pkt.Bins[i] = math.Float32frombits(binary.BigEndian.Uint32(b[off:]))
	}
	return pkt, nil
}
