package protocol

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

// mockSerialPort is a loopback-free fake transport.SerialPort: tests
// preload its read queue with the bytes a device would have sent back,
// and inspect whatever the Bus wrote to it. Grounded on the same
// buffered-reader/writer fake used by other Go DYNAMIXEL test
// harnesses in the corpus (a mock device chain backed by bytes.Buffer).
type mockSerialPort struct {
	mu       sync.Mutex
	readBuf  bytes.Buffer
	written  bytes.Buffer
	baud     uint32
	readErr  error
	discards int
}

var errMockTimeout = errors.New("mock: read timeout")

func newMockSerialPort() *mockSerialPort {
	return &mockSerialPort{baud: 1_000_000}
}

func (m *mockSerialPort) feed(b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readBuf.Write(b)
}

func (m *mockSerialPort) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte{}, m.written.Bytes()...)
}

func (m *mockSerialPort) BaudRate() uint32 { return m.baud }

func (m *mockSerialPort) SetBaudRate(baud uint32) error {
	m.baud = baud
	return nil
}

func (m *mockSerialPort) DiscardInputBuffer() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discards++
	m.readBuf.Reset()
	return nil
}

func (m *mockSerialPort) Read(buf []byte, deadline time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return 0, m.readErr
	}
	if m.readBuf.Len() == 0 {
		return 0, errMockTimeout
	}
	return m.readBuf.Read(buf)
}

func (m *mockSerialPort) WriteAll(buf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written.Write(buf)
	return nil
}

func (m *mockSerialPort) MakeDeadline(d time.Duration) time.Time {
	return time.Now().Add(d)
}

func (m *mockSerialPort) IsTimeoutError(err error) bool {
	return errors.Is(err, errMockTimeout)
}
