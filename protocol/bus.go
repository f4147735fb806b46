package protocol

import (
	"time"

	"dynamixel2/transport"
)

var headerPrefix = [4]byte{Header1, Header2, Header3, Reserved}

// findHeader returns the index of the first byte in buf at which a
// full or partial frame prefix match begins, or len(buf) if no match
// is possible anywhere in buf. A partial suffix match (e.g. a trailing
// "FF FF") is preserved so a subsequent read can complete it.
func findHeader(buf []byte) int {
	for i := range buf {
		remain := len(buf) - i
		matchLen := 4
		if remain < matchLen {
			matchLen = remain
		}
		match := true
		for k := 0; k < matchLen; k++ {
			if buf[i+k] != headerPrefix[k] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return len(buf)
}

// EncodeParamsFunc fills the exact parameter slice of a packet being
// written. It must write every byte of buf (its length already equals
// the declared parameter count) and may fail with a BufferTooSmallError
// if the caller under-sized its own inputs relative to buf.
type EncodeParamsFunc func(buf []byte) error

// Bus owns a SerialPort and the read/write byte buffers used for every
// packet exchanged over it. A Bus is the half-duplex framing engine:
// Client and Device are built on top of it and add transaction
// semantics.
type Bus struct {
	port        transport.SerialPort
	readBuffer  []byte
	writeBuffer []byte
	readLen     int
	usedBytes   int
	baudRate    uint32
}

// NewBus wraps port. readBufferSize and writeBufferSize must each be
// at least HeaderSize+3 and HeaderSize+1+2 respectively for any
// operation to succeed; both are allocated once and reused for every
// packet.
func NewBus(port transport.SerialPort, readBufferSize, writeBufferSize int) *Bus {
	return &Bus{
		port:        port,
		readBuffer:  make([]byte, readBufferSize),
		writeBuffer: make([]byte, writeBufferSize),
		baudRate:    port.BaudRate(),
	}
}

// BaudRate returns the bus's cached baud rate.
func (b *Bus) BaudRate() uint32 { return b.baudRate }

// SetBaudRate reconfigures the underlying port and the bus's cached
// value together.
func (b *Bus) SetBaudRate(baud uint32) error {
	if err := b.port.SetBaudRate(baud); err != nil {
		return err
	}
	b.baudRate = baud
	return nil
}

// MakeDeadline delegates to the underlying port.
func (b *Bus) MakeDeadline(d time.Duration) time.Time { return b.port.MakeDeadline(d) }

// IsTimeoutError delegates to the underlying port.
func (b *Bus) IsTimeoutError(err error) bool { return b.port.IsTimeoutError(err) }

// MessageTransferTime is the time needed to put messageSize bytes on
// the wire at baudRate, counting 10 bits per byte (1 start + 8 data +
// 1 stop).
func MessageTransferTime(messageSize uint32, baudRate uint32) time.Duration {
	baud := uint64(baudRate)
	bits := uint64(messageSize) * 10
	secs := bits / baud
	subsecBits := bits % baud
	nanos := (subsecBits*1_000_000_000 + baud - 1) / baud
	return time.Duration(secs)*time.Second + time.Duration(nanos)
}

// WritePacket builds and transmits one instruction or status packet.
// encodeParams is invoked with a slice of exactly paramCount bytes to
// fill; any error it returns aborts the write before anything is sent.
func (b *Bus) WritePacket(packetID, instructionID uint8, paramCount int, encodeParams EncodeParamsFunc) error {
	need := HeaderSize + 1 + MaxStuffedLen(paramCount) + 2
	if need > len(b.writeBuffer) {
		return &BufferTooSmallError{Required: need, Actual: len(b.writeBuffer)}
	}
	buf := b.writeBuffer

	buf[0], buf[1], buf[2], buf[3] = Header1, Header2, Header3, Reserved
	buf[4] = packetID
	buf[HeaderSize] = instructionID

	if err := encodeParams(buf[HeaderSize+1 : HeaderSize+1+paramCount]); err != nil {
		return err
	}

	plainLen := 1 + paramCount // instruction byte + parameters
	stuffedLen, err := StuffInPlace(buf[HeaderSize:], plainLen)
	if err != nil {
		return err
	}

	PutUint16(buf[5:7], uint16(stuffedLen+2))

	crcEnd := HeaderSize + stuffedLen
	crc := UpdateCRC(0, buf[:crcEnd])
	PutUint16(buf[crcEnd:crcEnd+2], crc)
	total := crcEnd + 2

	// A new instruction invalidates any stale bytes still sitting in
	// the read path: the bus is half-duplex, so nothing arriving
	// before this write belongs to the reply we're about to wait for.
	b.readLen = 0
	b.usedBytes = 0
	if err := b.port.DiscardInputBuffer(); err != nil {
		return &DiscardBufferError{Err: err}
	}

	if err := b.port.WriteAll(buf[:total]); err != nil {
		return &WriteIOError{Err: err}
	}
	return nil
}

// WriteStatus writes one status packet, prepending statusError to the
// payload encodeParams fills.
func (b *Bus) WriteStatus(packetID uint8, statusError uint8, paramCount int, encodeParams EncodeParamsFunc) error {
	return b.WritePacket(packetID, InstStatus, paramCount+1, func(buf []byte) error {
		buf[0] = statusError
		if paramCount == 0 {
			return nil
		}
		return encodeParams(buf[1:])
	})
}

// removeGarbage drops every byte before the earliest possible frame
// start in the buffer, including bytes already marked as consumed by
// a previous ReadPacket.
func (b *Bus) removeGarbage() {
	idx := findHeader(b.readBuffer[b.usedBytes:b.readLen])
	drop := b.usedBytes + idx
	if drop > 0 {
		copy(b.readBuffer, b.readBuffer[drop:b.readLen])
		b.readLen -= drop
	}
	b.usedBytes = 0
}

// ReadPacket reads one packet, resynchronizing on the frame prefix and
// tolerating leading garbage. The returned Packet borrows into the
// Bus's read buffer and must not be retained past the next call to
// ReadPacket or WritePacket.
func (b *Bus) ReadPacket(deadline time.Time) (Packet, error) {
	if len(b.readBuffer) < HeaderSize+3 {
		return Packet{}, &BufferTooSmallError{Required: HeaderSize + 3, Actual: len(b.readBuffer)}
	}

	for {
		b.removeGarbage()

		if b.readLen > HeaderSize {
			bodyLen := int(GetUint16(b.readBuffer[5:7]))
			if HeaderSize+bodyLen > len(b.readBuffer) {
				// Consume just the header so the next call's
				// removeGarbage moves past this oversized frame
				// instead of spinning on it forever.
				b.usedBytes += HeaderSize
				return Packet{}, &BufferTooSmallError{Required: HeaderSize + bodyLen, Actual: len(b.readBuffer)}
			}
			if b.readLen >= HeaderSize+bodyLen {
				return b.finishRead(HeaderSize + bodyLen)
			}
		}

		n, err := b.port.Read(b.readBuffer[b.readLen:], deadline)
		if err != nil {
			return Packet{}, &ReadIOError{Err: err}
		}
		b.readLen += n
	}
}

// finishRead verifies the CRC of the stuffedLen-byte frame now sitting
// at the front of the read buffer, un-stuffs its body in place, and
// returns the resulting view.
func (b *Bus) finishRead(stuffedLen int) (Packet, error) {
	frame := b.readBuffer[:stuffedLen]

	onWire := GetUint16(frame[stuffedLen-2:])
	computed := UpdateCRC(0, frame[:stuffedLen-2])
	if onWire != computed {
		b.usedBytes += stuffedLen
		return Packet{}, &InvalidChecksumError{OnWire: onWire, Computed: computed}
	}
	b.usedBytes += stuffedLen

	stuffedBody := frame[HeaderSize : stuffedLen-2]
	bodyLen := UnstuffInPlace(stuffedBody)
	raw := frame[:HeaderSize+bodyLen]

	pkt := newPacket(raw)
	if pkt.InstructionID() == InstStatus && bodyLen < 2 {
		return Packet{}, &InvalidParameterCountError{Actual: bodyLen - 1, Expected: 1, Kind: CountMin}
	}
	return pkt, nil
}
