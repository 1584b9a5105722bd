// SPDX-License-Identifier: MIT
package transport

import (
	applog "spectralizer/internal/log"
)

// LoggingTransport implements the Transport interface by logging a summary
// of each frame at debug level. It stands in for a network transport when
// running headless.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Infof("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received data.
func (lt *LoggingTransport) Send(data any) error {
	switch v := data.(type) {
	case Frame:
		lt.logFrame(&v)
	case *Frame:
		lt.logFrame(v)
	default:
		applog.Debugf("LoggingTransport: Received (%T): %+v", data, data)
	}
	return nil // Logging transport never fails to "send"
}

func (lt *LoggingTransport) logFrame(f *Frame) {
	peak, value := 0, 0.0
	for i, v := range f.Bins {
		if v > value {
			peak, value = i, v
		}
	}
	applog.Debugf("LoggingTransport: Frame %d, %d bins, peak %.1f Hz (%.0f)",
		f.Seq, len(f.Bins), float64(peak)*f.BinHz, value)
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("LoggingTransport: Close called.")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
