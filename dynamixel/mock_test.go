package dynamixel

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"dynamixel2/protocol"
)

// mockSerialPort is a minimal fake transport.SerialPort: tests preload
// its read queue with whatever bytes the simulated devices would have
// sent back, and inspect what the Client wrote to it. Grounded on the
// buffered-reader/writer fake used by the corpus's own DYNAMIXEL v2
// mock device-chain test harness.
type mockSerialPort struct {
	mu      sync.Mutex
	replies [][]byte
	written bytes.Buffer
	baud    uint32
}

var errMockTimeout = errors.New("mock: read timeout")

func newMockSerialPort() *mockSerialPort {
	return &mockSerialPort{baud: 1_000_000}
}

// feed queues b as one reply burst. Each Read delivers bytes from at
// most one burst, and an empty burst makes that one Read time out,
// which is how a test models a device that stays silent.
func (m *mockSerialPort) feed(b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, append([]byte{}, b...))
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

// DiscardInputBuffer is a no-op: the queued bursts stand for replies
// that arrive after the instruction being written, not stale input.
func (m *mockSerialPort) DiscardInputBuffer() error {
	return nil
}

func (m *mockSerialPort) Read(buf []byte, deadline time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.replies) == 0 {
		return 0, errMockTimeout
	}
	burst := m.replies[0]
	n := copy(buf, burst)
	if n == len(burst) {
		m.replies = m.replies[1:]
	} else {
		m.replies[0] = burst[n:]
	}
	if n == 0 {
		return 0, errMockTimeout
	}
	return n, nil
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

// statusFrame builds a complete, correctly CRC'd status frame for id
// with the given error byte and payload, stuffing it exactly as a real
// device would.
func statusFrame(id, statusError uint8, payload []byte) []byte {
	body := append([]byte{statusError}, payload...)
	frame := []byte{0xFF, 0xFF, 0xFD, 0x00, id, 0, 0}
	frame = append(frame, protocol.InstStatus)
	frame = append(frame, body...)

	stuffed := make([]byte, protocol.MaxStuffedLen(len(frame)-protocol.HeaderSize))
	copy(stuffed, frame[protocol.HeaderSize:])
	n, err := protocol.StuffInPlace(stuffed, len(frame)-protocol.HeaderSize)
	if err != nil {
		panic(err)
	}
	frame = append(frame[:protocol.HeaderSize], stuffed[:n]...)
	protocol.PutUint16(frame[5:7], uint16(n+2))

	crc := protocol.UpdateCRC(0, frame)
	frame = append(frame, byte(crc), byte(crc>>8))
	return frame
}

func newTestClient(port *mockSerialPort) *Client {
	return NewClient(protocol.NewBus(port, 256, 256))
}
