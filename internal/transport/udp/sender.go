// SPDX-License-Identifier: MIT

// Package udp streams spectrum snapshots as fixed-layout binary datagrams.
package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	applog "spectralizer/internal/log"
)

// MaxDatagram is the largest UDP payload over IPv4.
const MaxDatagram = 65507

var (
	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("udp: sender is closed")
	// ErrPacketTooLarge is returned for payloads over MaxDatagram.
	ErrPacketTooLarge = errors.New("udp: packet exceeds maximum datagram size")
)

// Stats counts what a Sender has pushed onto the wire.
type Stats struct {
	Packets uint64
	Bytes   uint64
	Errors  uint64
}

// Sender writes datagrams to one connected peer. Send and Close may be
// called from different goroutines.
type Sender struct {
	mu     sync.Mutex // guards conn
	conn   *net.UDPConn
	remote net.Addr

	packets atomic.Uint64
	bytes   atomic.Uint64
	errors  atomic.Uint64
}

// NewSender dials targetAddress ("host:port"). UDP has no handshake, so
// this succeeds even when nothing listens on the other end.
func NewSender(targetAddress string) (*Sender, error) {
	raddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target address '%s': %w", targetAddress, err)
	}

	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP for target '%s': %w", targetAddress, err)
	}

	applog.Infof("UDPSender: Sending to %s from %s", conn.RemoteAddr(), conn.LocalAddr())
	return &Sender{conn: conn, remote: conn.RemoteAddr()}, nil
}

// RemoteAddr returns the peer datagrams are sent to.
func (s *Sender) RemoteAddr() net.Addr { return s.remote }

// Send writes data as a single datagram.
func (s *Sender) Send(data []byte) error {
	if len(data) > MaxDatagram {
		s.errors.Add(1)
		return fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, len(data))
	}

	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		s.mu.Unlock()
		return ErrClosed
	}
	n, err := conn.Write(data)
	s.mu.Unlock()

	if err != nil {
		s.errors.Add(1)
		// A peer that is not listening yet shows up as ECONNREFUSED on the
		// next write. That is expected while a consumer starts.
		applog.Debugf("UDPSender: Write to %s failed: %v", s.remote, err)
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}
	s.packets.Add(1)
	s.bytes.Add(uint64(n))
	return nil
}

// Stats returns the counters so far.
func (s *Sender) Stats() Stats {
	return Stats{
		Packets: s.packets.Load(),
		Bytes:   s.bytes.Load(),
		Errors:  s.errors.Load(),
	}
}

// Close releases the socket. Later calls are no-ops.
func (s *Sender) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}

	st := s.Stats()
	applog.Infof("UDPSender: Closing %s (%d packets, %d bytes, %d errors)",
		s.remote, st.Packets, st.Bytes, st.Errors)
	if err := conn.Close(); err != nil {
		return fmt.Errorf("failed to close UDP connection: %w", err)
	}
	return nil
}
