// SPDX-License-Identifier: MIT

// Package transport publishes spectrum snapshots to consumers outside the
// process.
package transport

// Transport defines a generic interface for sending processed data or events.
// Implementations should be thread-safe.
type Transport interface {
	Send(data any) error
	Close() error
}

// SpectrumProvider is the read side of the analyzer. It decouples the
// publishers from the concrete spectrum.Analyzer.
type SpectrumProvider interface {
	// SpectrumInto copies the latest folded spectrum into dst, which must
	// have length Bins().
	SpectrumInto(dst []float64) error
	Bins() int
	FrequencyForBin(i int) float64
	// Frames counts processed blocks so publishers can skip stale data.
	Frames() uint64
}

// Frame is the JSON payload sent to WebSocket clients.
type Frame struct {
	Seq       uint64    `json:"seq"`
	Timestamp int64     `json:"ts"`     // Unix milliseconds.
	BinHz     float64   `json:"bin_hz"` // Width of one bin.
	Bins      []float64 `json:"bins"`
}
