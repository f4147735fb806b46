// Package serial adapts go.bug.st/serial to the transport.SerialPort
// capability interface used by the protocol engine.
package serial

import (
	"errors"
	"time"

	"go.bug.st/serial"

	"dynamixel2/transport"
)

// ErrTimeout is returned by Port.Read when no byte arrives before the
// caller's deadline.
var ErrTimeout = errors.New("serial: read timeout")

// Port wraps an open go.bug.st/serial.Port, tracking its mode so a
// baud rate change can reconfigure the open port in place, and recomputing the
// read-timeout on every call since go.bug.st/serial exposes a single
// relative timeout rather than an absolute deadline.
type Port struct {
	name string
	port serial.Port
	mode serial.Mode
}

// Open opens name at baud with 8 data bits, one stop bit, no parity
// and no flow control, the line configuration every DYNAMIXEL device
// expects.
func Open(name string, baud uint32) (*Port, error) {
	mode := serial.Mode{
		BaudRate: int(baud),
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(name, &mode)
	if err != nil {
		return nil, err
	}
	return &Port{name: name, port: p, mode: mode}, nil
}

// Close releases the underlying OS handle.
func (p *Port) Close() error {
	return p.port.Close()
}

func (p *Port) BaudRate() uint32 {
	return uint32(p.mode.BaudRate)
}

// SetBaudRate reconfigures the open port's mode in place.
func (p *Port) SetBaudRate(baud uint32) error {
	p.mode.BaudRate = int(baud)
	return p.port.SetMode(&p.mode)
}

func (p *Port) DiscardInputBuffer() error {
	return p.port.ResetInputBuffer()
}

// Read sets the port's read timeout from the time remaining until
// deadline and issues a single read. go.bug.st/serial returns (0, nil)
// on a timeout rather than an error, so that case is translated to
// ErrTimeout here.
func (p *Port) Read(buf []byte, deadline time.Time) (int, error) {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return 0, ErrTimeout
	}
	if err := p.port.SetReadTimeout(remaining); err != nil {
		return 0, err
	}
	n, err := p.port.Read(buf)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, ErrTimeout
	}
	return n, nil
}

// WriteAll writes buf in full, looping in case the underlying driver
// performs a short write.
func (p *Port) WriteAll(buf []byte) error {
	for len(buf) > 0 {
		n, err := p.port.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

func (p *Port) MakeDeadline(d time.Duration) time.Time {
	return time.Now().Add(d)
}

func (p *Port) IsTimeoutError(err error) bool {
	return errors.Is(err, ErrTimeout)
}

var _ transport.SerialPort = (*Port)(nil)
