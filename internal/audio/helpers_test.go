// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"strconv"
	"sync"
)

const (
	testSampleRate = 8000
	testFrameSize  = 256
)

var (
	quietBuffer = makeBuffer(testFrameSize, 20)    // ~0.06% of full scale
	loudBuffer  = makeBuffer(testFrameSize, 30000) // ~92% of full scale
)

func makeBuffer(n int, peak int16) []int16 {
	buf := make([]int16, n)
	for i := range buf {
		buf[i] = int16(float64(peak) * math.Sin(2*math.Pi*float64(i)/32))
	}
	return buf
}

// fakeSource hands the test the handler instead of running a goroutine.
type fakeSource struct {
	mu       sync.Mutex
	rate     float64
	chans    int
	handler  func([]int16)
	started  int
	stopped  int
	startErr error
}

func (s *fakeSource) Start(handler func([]int16)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.handler = handler
	s.started++
	return nil
}

func (s *fakeSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped++
	return nil
}

func (s *fakeSource) SampleRate() float64 { return s.rate }
func (s *fakeSource) Channels() int       { return s.chans }

func (s *fakeSource) deliver(block []int16) {
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()
	h(block)
}

// captureProcessor keeps a copy of the last block.
type captureProcessor struct {
	calls int
	last  []int16
}

func (p *captureProcessor) Process(block []int16) {
	p.calls++
	if cap(p.last) < len(block) {
		p.last = make([]int16, len(block))
	}
	p.last = p.last[:len(block)]
	copy(p.last, block)
}

func newTestEngine(t interface{ Fatalf(string, ...any) }, channels int) (*Engine, *fakeSource, *captureProcessor) {
	src := &fakeSource{rate: testSampleRate, chans: channels}
	proc := &captureProcessor{}
	engine, err := NewEngine(src, proc, testFrameSize, 0)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine, src, proc
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

func absFloat(x float64) float64 {
	return math.Abs(x)
}
