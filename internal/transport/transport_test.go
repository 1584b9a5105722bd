// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type fakeProvider struct {
	mu     sync.Mutex
	bins   []float64
	frames uint64
}

func (f *fakeProvider) SpectrumInto(dst []float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(dst) != len(f.bins) {
		return errors.New("length mismatch")
	}
	copy(dst, f.bins)
	return nil
}

func (f *fakeProvider) Bins() int                     { return len(f.bins) }
func (f *fakeProvider) FrequencyForBin(i int) float64 { return float64(i) * 43.0664 }
func (f *fakeProvider) Frames() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

func (f *fakeProvider) publish(bins ...float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(f.bins, bins)
	f.frames++
}

// recordingTransport collects everything sent to it.
type recordingTransport struct {
	mu     sync.Mutex
	frames []Frame
	sent   chan struct{}
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{sent: make(chan struct{}, 64)}
}

func (r *recordingTransport) Send(data any) error {
	r.mu.Lock()
	r.frames = append(r.frames, data.(Frame))
	r.mu.Unlock()
	select {
	case r.sent <- struct{}{}:
	default:
	}
	return nil
}

func (r *recordingTransport) Close() error { return nil }

func TestBroadcasterFrame(t *testing.T) {
	provider := &fakeProvider{bins: []float64{1, 2, 3, 4}}
	rt := newRecordingTransport()
	b, err := NewBroadcaster(provider, rt, time.Millisecond)
	if err != nil {
		t.Fatalf("NewBroadcaster: %v", err)
	}

	b.broadcast()
	if len(rt.frames) != 0 {
		t.Fatal("broadcast before the first frame should not send")
	}

	provider.publish(5, 6, 7, 8)
	b.broadcast()
	b.broadcast() // Same frame count: skipped.
	if len(rt.frames) != 1 {
		t.Fatalf("sent %d frames, want 1", len(rt.frames))
	}

	f := rt.frames[0]
	if f.Seq != 1 || f.BinHz != 43.0664 || len(f.Bins) != 4 || f.Bins[3] != 8 {
		t.Errorf("frame = %+v", f)
	}

	// Frames own their bins.
	provider.publish(0, 0, 0, 0)
	if f.Bins[3] != 8 {
		t.Error("frame bins alias the provider")
	}
}

func TestBroadcasterStartStop(t *testing.T) {
	provider := &fakeProvider{bins: make([]float64, 4)}
	rt := newRecordingTransport()
	b, err := NewBroadcaster(provider, rt, time.Millisecond)
	if err != nil {
		t.Fatalf("NewBroadcaster: %v", err)
	}

	provider.publish(1)
	b.Start()
	b.Start() // No-op while running.

	select {
	case <-rt.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("no frame broadcast")
	}

	if err := b.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := b.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestNewBroadcasterValidation(t *testing.T) {
	if _, err := NewBroadcaster(nil, NewLoggingTransport(), time.Second); err == nil {
		t.Error("expected error for nil provider")
	}
	if _, err := NewBroadcaster(&fakeProvider{}, nil, time.Second); err == nil {
		t.Error("expected error for nil transport")
	}
	b, err := NewBroadcaster(&fakeProvider{}, NewLoggingTransport(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if b.interval != 33*time.Millisecond {
		t.Errorf("default interval = %s", b.interval)
	}
}

func TestLoggingTransport(t *testing.T) {
	lt := NewLoggingTransport()
	for _, v := range []any{Frame{Bins: []float64{1, 3}}, &Frame{}, "text"} {
		if err := lt.Send(v); err != nil {
			t.Errorf("Send(%T) = %v", v, err)
		}
	}
	if err := lt.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}

func TestWebSocketTransportBroadcast(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewWebSocketTransport: %v", err)
	}
	defer wst.Close()

	url := "ws://" + wst.Addr().String() + WebSocketPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial %s: %v", url, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for wst.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	want := Frame{Seq: 3, Timestamp: 99, BinHz: 10.5, Bins: []float64{0, 1.25, 2}}
	if err := wst.Send(want); err != nil {
		t.Fatalf("Send: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Frame
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Seq != want.Seq || got.Timestamp != want.Timestamp || got.BinHz != want.BinHz || len(got.Bins) != 3 || got.Bins[1] != 1.25 {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if err := wst.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := wst.Send(want); err == nil {
		t.Error("Send after Close should fail")
	}
	if wst.ClientCount() != 0 {
		t.Errorf("clients after Close = %d", wst.ClientCount())
	}
}

func TestWebSocketTransportListenError(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewWebSocketTransport: %v", err)
	}
	defer wst.Close()

	if _, err := NewWebSocketTransport(wst.Addr().String()); err == nil {
		t.Error("expected error listening on a used port")
	}
}
