// Package transport defines the narrow capability the protocol engine
// needs from a serial line. It names no concrete driver: callers plug
// in whatever satisfies SerialPort, whether that's the go.bug.st/serial
// adapter in package serial, a mock for tests, or something else
// entirely.
package transport

import "time"

// SerialPort is the only collaborator the framing engine requires. The
// underlying line must already be configured for 8 data bits, 1 stop
// bit, no parity, no flow control, at the chosen baud rate, before
// being handed to a Bus.
type SerialPort interface {
	// BaudRate returns the port's currently configured baud rate.
	BaudRate() uint32
	// SetBaudRate reconfigures the port's baud rate.
	SetBaudRate(baud uint32) error
	// DiscardInputBuffer drops any bytes the OS has buffered but the
	// caller hasn't read yet. May be a no-op.
	DiscardInputBuffer() error
	// Read blocks until at least one byte is available or deadline
	// elapses, in which case it returns a timeout error recognisable
	// by IsTimeoutError.
	Read(buf []byte, deadline time.Time) (int, error)
	// WriteAll blocks until every byte of buf has been transmitted.
	WriteAll(buf []byte) error
	// MakeDeadline turns a duration into an absolute deadline.
	MakeDeadline(d time.Duration) time.Time
	// IsTimeoutError reports whether err is the deadline-expiry error
	// this port's Read returns.
	IsTimeoutError(err error) bool
}
