package dynamixel

import (
	"time"

	"dynamixel2/protocol"
)

// InstructionKind classifies a decoded Instruction. Go has no sum
// types, so Instruction carries every variant's fields side by side;
// only the fields documented for Kind are meaningful.
type InstructionKind int

const (
	KindPing InstructionKind = iota
	KindRead
	KindWrite
	KindRegWrite
	KindAction
	KindFactoryReset
	KindReboot
	KindClear
	KindSyncRead
	KindSyncWrite
	KindBulkRead
	KindBulkWrite
	KindUnknown
)

// Instruction is one decoded instruction packet, classified by Kind:
//
//   - KindPing, KindAction, KindReboot: no extra fields.
//   - KindRead: Addr, Length.
//   - KindWrite, KindRegWrite: Addr, Parameters (the data to store).
//   - KindFactoryReset: ResetKind.
//   - KindClear: Parameters holds the raw magic bytes, unvalidated.
//   - KindSyncRead: Addr, Length, IDs.
//   - KindSyncWrite: Addr, Length, Parameters (concatenated
//     id+data entries, stride 1+Length each).
//   - KindBulkRead, KindBulkWrite: Parameters holds the raw,
//     still-encoded entry list; the catalog does not unpack it on the
//     device side since entry widths vary per device.
//   - KindUnknown: RawInstruction, Parameters.
type Instruction struct {
	Kind           InstructionKind
	PacketID       uint8
	Addr           uint16
	Length         uint16
	ResetKind      FactoryResetKind
	IDs            []uint8
	Parameters     protocol.Bytes
	RawInstruction uint8
}

// Device is the slave side of a bus: it reads instructions addressed
// to its own id (or the broadcast id) and writes status replies.
type Device struct {
	bus *protocol.Bus
	id  uint8
}

// NewDevice wraps bus for a device identifying itself as id.
func NewDevice(bus *protocol.Bus, id uint8) *Device {
	return &Device{bus: bus, id: id}
}

// Bus exposes the underlying framing engine.
func (d *Device) Bus() *protocol.Bus { return d.bus }

// ID returns the device's own packet id.
func (d *Device) ID() uint8 { return d.id }

// ReadInstruction reads and classifies one instruction packet,
// retrying past any packet addressed to a different unicast id (a
// shared bus may carry traffic for other devices). It does not retry
// past I/O errors or malformed frames.
func (d *Device) ReadInstruction(deadline time.Time) (Instruction, error) {
	for {
		pkt, err := d.bus.ReadPacket(deadline)
		if err != nil {
			return Instruction{}, err
		}
		id := pkt.PacketID()
		if id != d.id && id != protocol.BroadcastID {
			continue
		}
		if pkt.InstructionID() == protocol.InstStatus {
			return Instruction{}, &protocol.InvalidInstructionError{Actual: pkt.InstructionID(), Expected: 0}
		}
		return decodeInstruction(pkt)
	}
}

func decodeInstruction(pkt protocol.Packet) (Instruction, error) {
	params := pkt.Parameters()
	base := Instruction{PacketID: pkt.PacketID()}

	switch pkt.InstructionID() {
	case protocol.InstPing:
		base.Kind = KindPing
		return base, nil

	case protocol.InstRead:
		if len(params) != 4 {
			return Instruction{}, &protocol.InvalidParameterCountError{Actual: len(params), Expected: 4, Kind: protocol.CountExact}
		}
		base.Kind = KindRead
		base.Addr = protocol.GetUint16(params[0:2])
		base.Length = protocol.GetUint16(params[2:4])
		return base, nil

	case protocol.InstWrite, protocol.InstRegWrite:
		if len(params) < 2 {
			return Instruction{}, &protocol.InvalidParameterCountError{Actual: len(params), Expected: 2, Kind: protocol.CountMin}
		}
		if pkt.InstructionID() == protocol.InstWrite {
			base.Kind = KindWrite
		} else {
			base.Kind = KindRegWrite
		}
		base.Addr = protocol.GetUint16(params[0:2])
		data, err := protocol.DecodeBytes(params[2:])
		if err != nil {
			return Instruction{}, err
		}
		base.Parameters = data
		return base, nil

	case protocol.InstAction:
		base.Kind = KindAction
		return base, nil

	case protocol.InstFactoryReset:
		if len(params) != 1 {
			return Instruction{}, &protocol.InvalidParameterCountError{Actual: len(params), Expected: 1, Kind: protocol.CountExact}
		}
		base.Kind = KindFactoryReset
		base.ResetKind = FactoryResetKind(params[0])
		return base, nil

	case protocol.InstReboot:
		base.Kind = KindReboot
		return base, nil

	case protocol.InstClear:
		if len(params) < 1 {
			return Instruction{}, &protocol.InvalidParameterCountError{Actual: len(params), Expected: 1, Kind: protocol.CountMin}
		}
		base.Kind = KindClear
		data, err := protocol.DecodeBytes(params)
		if err != nil {
			return Instruction{}, err
		}
		base.Parameters = data
		return base, nil

	case protocol.InstSyncRead:
		if len(params) < 4 {
			return Instruction{}, &protocol.InvalidParameterCountError{Actual: len(params), Expected: 4, Kind: protocol.CountMin}
		}
		base.Kind = KindSyncRead
		base.Addr = protocol.GetUint16(params[0:2])
		base.Length = protocol.GetUint16(params[2:4])
		base.IDs = append([]uint8(nil), params[4:]...)
		return base, nil

	case protocol.InstSyncWrite:
		if len(params) < 4 {
			return Instruction{}, &protocol.InvalidParameterCountError{Actual: len(params), Expected: 4, Kind: protocol.CountMin}
		}
		base.Kind = KindSyncWrite
		base.Addr = protocol.GetUint16(params[0:2])
		base.Length = protocol.GetUint16(params[2:4])
		data, err := protocol.DecodeBytes(params[4:])
		if err != nil {
			return Instruction{}, err
		}
		base.Parameters = data
		return base, nil

	case protocol.InstBulkRead, protocol.InstBulkWrite:
		if pkt.InstructionID() == protocol.InstBulkRead {
			base.Kind = KindBulkRead
		} else {
			base.Kind = KindBulkWrite
		}
		data, err := protocol.DecodeBytes(params)
		if err != nil {
			return Instruction{}, err
		}
		base.Parameters = data
		return base, nil

	default:
		base.Kind = KindUnknown
		base.RawInstruction = pkt.InstructionID()
		data, err := protocol.DecodeBytes(params)
		if err != nil {
			return Instruction{}, err
		}
		base.Parameters = data
		return base, nil
	}
}

// WriteStatus writes one status reply with the given error code and
// payload.
func (d *Device) WriteStatus(packetID, statusError uint8, paramCount int, encode protocol.EncodeParamsFunc) error {
	return d.bus.WriteStatus(packetID, statusError, paramCount, encode)
}

// WriteStatusOK writes an empty, error-free status reply.
func (d *Device) WriteStatusOK(packetID uint8) error {
	return d.WriteStatus(packetID, 0, 0, func(buf []byte) error { return nil })
}

// WriteStatusError writes an empty status reply carrying code as the
// error byte (bit 7 set signals the hardware alert).
func (d *Device) WriteStatusError(packetID, code uint8) error {
	return d.WriteStatus(packetID, code, 0, func(buf []byte) error { return nil })
}
