// Package dynamixel implements the client and device facades and the
// instruction catalog of DYNAMIXEL Protocol 2.0, built on top of the
// framing engine in package protocol.
package dynamixel

import (
	"errors"
	"time"

	"dynamixel2/protocol"
)

// replyOverhead is the official SDK's fixed per-reply allowance, added
// on top of the baud-rate-scaled transfer time.
const replyOverhead = 34 * time.Millisecond

// Client is the master side of a bus: it writes instructions and
// collects status replies, enforcing the matching-id and timeout
// policies every instruction in the catalog relies on.
type Client struct {
	bus *protocol.Bus
}

// NewClient wraps bus. The Client does not own the underlying
// SerialPort; closing it, if applicable, is the caller's job.
func NewClient(bus *protocol.Bus) *Client {
	return &Client{bus: bus}
}

// Bus exposes the underlying framing engine for callers that need
// BaudRate/SetBaudRate or a raw transfer outside the catalog.
func (c *Client) Bus() *protocol.Bus { return c.bus }

// statusMessageSize is the worst-case wire size of a status packet
// whose payload is the error byte plus replyParams bytes, used to
// scale the per-reply deadline to the reply actually expected.
func statusMessageSize(replyParams int) uint32 {
	return uint32(protocol.HeaderSize + 1 + protocol.MaxStuffedLen(1+replyParams) + 2)
}

func (c *Client) replyDeadline(expectedReplyParams int) time.Time {
	xfer := protocol.MessageTransferTime(statusMessageSize(expectedReplyParams), c.bus.BaudRate())
	return c.bus.MakeDeadline(xfer + replyOverhead)
}

// WriteInstruction writes one instruction packet and does not wait for
// a reply. Exposed directly so callers can assemble multi-reply
// transactions (sync-read, scan) on top of it.
func (c *Client) WriteInstruction(id, instr uint8, paramCount int, encode protocol.EncodeParamsFunc) error {
	return c.bus.WritePacket(id, instr, paramCount, encode)
}

// ReadStatusResponse reads one status packet. If want is non-nil, the
// packet's id must equal *want or the call fails with
// InvalidPacketIDError (the packet is still consumed from the read
// buffer either way).
func (c *Client) ReadStatusResponse(deadline time.Time, want *uint8) (protocol.Packet, error) {
	pkt, err := c.bus.ReadPacket(deadline)
	if err != nil {
		return protocol.Packet{}, err
	}
	if pkt.InstructionID() != protocol.InstStatus {
		return protocol.Packet{}, &protocol.InvalidInstructionError{Actual: pkt.InstructionID(), Expected: protocol.InstStatus}
	}
	if want != nil && pkt.PacketID() != *want {
		return protocol.Packet{}, &protocol.InvalidPacketIDError{Actual: pkt.PacketID(), Expected: want}
	}
	return pkt, nil
}

// isTimeout reports whether err is a read timeout as opposed to some
// other I/O or framing failure, unwrapping the ReadIOError the bus
// wraps every port-level error in.
func (c *Client) isTimeout(err error) bool {
	var rio *protocol.ReadIOError
	if errors.As(err, &rio) {
		return c.bus.IsTimeoutError(rio.Err)
	}
	return false
}

// transferSingle is the unicast request/response pattern every
// single-reply instruction shares: write, wait a scaled deadline for a
// status packet with the matching id, fail on a motor error, then
// decode the payload eagerly so the result does not alias the bus's
// read buffer past this call.
func transferSingle[T any](c *Client, id, instr uint8, paramCount, expectedReplyParams int, encode protocol.EncodeParamsFunc, decode func([]byte) (T, error)) (Response[T], error) {
	if err := c.WriteInstruction(id, instr, paramCount, encode); err != nil {
		return Response[T]{}, err
	}
	pkt, err := c.ReadStatusResponse(c.replyDeadline(expectedReplyParams), &id)
	if err != nil {
		return Response[T]{}, err
	}
	if errNum := pkt.ErrorNumber(); errNum != 0 {
		return Response[T]{}, &protocol.MotorError{Raw: pkt.Error()}
	}
	data, err := decode(pkt.Parameters())
	if err != nil {
		return Response[T]{}, err
	}
	return Response[T]{MotorID: pkt.PacketID(), Alert: pkt.Alert(), Data: data}, nil
}

type empty struct{}

func decodeEmpty(_ []byte) (empty, error) { return empty{}, nil }

// writeOnly runs the shared "broadcast never waits, unicast waits for
// an empty-payload status" pattern common to write, reg-write, action,
// factory-reset, reboot and clear.
func (c *Client) writeOnly(id, instr uint8, paramCount int, encode protocol.EncodeParamsFunc) error {
	if id == protocol.BroadcastID {
		return c.WriteInstruction(id, instr, paramCount, encode)
	}
	_, err := transferSingle(c, id, instr, paramCount, 0, encode, decodeEmpty)
	return err
}

// readReplySlot reads one status reply expected from id, as used by
// sync-read and bulk-read: each slot is independent, so a failure on
// one does not abort the others.
func (c *Client) readReplySlot(id uint8, expectedReplyParams int) (protocol.Bytes, bool, error) {
	pkt, err := c.ReadStatusResponse(c.replyDeadline(expectedReplyParams), &id)
	if err != nil {
		return nil, false, err
	}
	if errNum := pkt.ErrorNumber(); errNum != 0 {
		return nil, pkt.Alert(), &protocol.MotorError{Raw: pkt.Error()}
	}
	data, err := protocol.DecodeBytes(pkt.Parameters())
	if err != nil {
		return nil, pkt.Alert(), err
	}
	return data, pkt.Alert(), nil
}

// checkDuplicateIDs rejects a sync/bulk operation at the caller level,
// before anything is written to the bus, if the same device id appears
// more than once.
func checkDuplicateIDs(ids []uint8) error {
	seen := make(map[uint8]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return &protocol.DuplicateIDError{ID: id}
		}
		seen[id] = struct{}{}
	}
	return nil
}
