package protocol

// Packet is a borrowed view over an already-unstuffed, CRC-verified
// packet body sitting in a Bus's read buffer: header, id, length,
// instruction and parameters, with the CRC bytes excluded. It holds no
// allocation of its own and must not be retained past the Bus's next
// read.
type Packet struct {
	raw []byte
}

// newPacket wraps raw, which must be laid out as
// FF FF FD 00 id len_lo len_hi instr {parameters}, already unstuffed.
func newPacket(raw []byte) Packet {
	return Packet{raw: raw}
}

// PacketID returns the packet's id byte.
func (p Packet) PacketID() uint8 { return p.raw[4] }

// InstructionID returns the instruction byte, or InstStatus for a
// status packet.
func (p Packet) InstructionID() uint8 { return p.raw[HeaderSize] }

// Parameters returns the payload slice: for a status packet this is
// everything after the error byte; for an instruction packet it is
// everything after the instruction byte.
func (p Packet) Parameters() []byte {
	if p.InstructionID() == InstStatus {
		return p.raw[HeaderSize+2:]
	}
	return p.raw[HeaderSize+1:]
}

// Error returns the status error byte. Only meaningful when
// InstructionID() == InstStatus.
func (p Packet) Error() uint8 { return p.raw[HeaderSize+1] }

// ErrorNumber returns bits 0..6 of the status error byte.
func (p Packet) ErrorNumber() uint8 { return ErrorNumber(p.Error()) }

// Alert reports bit 7 of the status error byte: a hardware alert the
// caller should inspect via a separate register.
func (p Packet) Alert() bool { return Alert(p.Error()) }
