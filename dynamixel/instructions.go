package dynamixel

import (
	"errors"

	"dynamixel2/protocol"
)

// PingResult is the decoded reply payload of a ping instruction.
type PingResult struct {
	Model    uint16
	Firmware uint8
}

func decodePingResult(buf []byte) (PingResult, error) {
	if len(buf) != 3 {
		return PingResult{}, &protocol.InvalidParameterCountError{Actual: len(buf), Expected: 3, Kind: protocol.CountExact}
	}
	return PingResult{Model: protocol.GetUint16(buf[0:2]), Firmware: buf[2]}, nil
}

// errBroadcastPingUseScan is returned by Ping when asked to ping the
// broadcast id: a broadcast ping can elicit any number of replies from
// different ids, which Ping's single-reply contract can't express. Use
// Scan instead.
var errBroadcastPingUseScan = errors.New("dynamixel: ping to the broadcast id must use Client.Scan")

// Ping queries a single device's model number and firmware version.
func (c *Client) Ping(id uint8) (Response[PingResult], error) {
	if id == protocol.BroadcastID {
		return Response[PingResult]{}, errBroadcastPingUseScan
	}
	return transferSingle(c, id, protocol.InstPing, 0, 3, func(buf []byte) error { return nil }, decodePingResult)
}

// Scan broadcasts a ping and collects up to maxReplies status packets,
// delivering every success or non-timeout error to sink. A timeout on
// any one slot means no device answered there and scanning continues;
// there is no protocol-level signal for "no more devices," so the
// caller picks maxReplies (at most 253, the number of unicast ids).
func (c *Client) Scan(maxReplies int, sink func(id uint8, result PingResult, err error)) error {
	if err := c.WriteInstruction(protocol.BroadcastID, protocol.InstPing, 0, func(buf []byte) error { return nil }); err != nil {
		return err
	}
	for i := 0; i < maxReplies; i++ {
		pkt, err := c.ReadStatusResponse(c.replyDeadline(3), nil)
		if err != nil {
			if c.isTimeout(err) {
				continue
			}
			sink(0, PingResult{}, err)
			continue
		}
		if errNum := pkt.ErrorNumber(); errNum != 0 {
			sink(pkt.PacketID(), PingResult{}, &protocol.MotorError{Raw: pkt.Error()})
			continue
		}
		result, err := decodePingResult(pkt.Parameters())
		if err != nil {
			sink(pkt.PacketID(), PingResult{}, err)
			continue
		}
		sink(pkt.PacketID(), result, nil)
	}
	return nil
}

// Read reads length bytes starting at addr from a single device.
func (c *Client) Read(id uint8, addr, length uint16) (Response[protocol.Bytes], error) {
	return transferSingle(c, id, protocol.InstRead, 4, int(length), func(buf []byte) error {
		protocol.PutUint16(buf[0:2], addr)
		protocol.PutUint16(buf[2:4], length)
		return nil
	}, protocol.DecodeBytes)
}

// Write writes data starting at addr. A write to the broadcast id is
// fire-and-forget: no status reply is ever produced for it.
func (c *Client) Write(id uint8, addr uint16, data []byte) error {
	return c.writeOnly(id, protocol.InstWrite, 2+len(data), func(buf []byte) error {
		protocol.PutUint16(buf[0:2], addr)
		copy(buf[2:], data)
		return nil
	})
}

// RegWrite stages data at addr for later execution by Action, instead
// of applying it immediately.
func (c *Client) RegWrite(id uint8, addr uint16, data []byte) error {
	return c.writeOnly(id, protocol.InstRegWrite, 2+len(data), func(buf []byte) error {
		protocol.PutUint16(buf[0:2], addr)
		copy(buf[2:], data)
		return nil
	})
}

// Action triggers every write staged by a prior RegWrite.
func (c *Client) Action(id uint8) error {
	return c.writeOnly(id, protocol.InstAction, 0, func(buf []byte) error { return nil })
}

// FactoryResetKind selects how much of a device's EEPROM a
// FactoryReset clears.
type FactoryResetKind uint8

const (
	FactoryResetAll           FactoryResetKind = 0xFF
	FactoryResetKeepID        FactoryResetKind = 0x01
	FactoryResetKeepIDAndBaud FactoryResetKind = 0x02
)

// FactoryReset restores a device's EEPROM to its factory defaults.
func (c *Client) FactoryReset(id uint8, kind FactoryResetKind) error {
	return c.writeOnly(id, protocol.InstFactoryReset, 1, func(buf []byte) error {
		buf[0] = uint8(kind)
		return nil
	})
}

// Reboot restarts a device's firmware. A broadcast reboot never
// produces a reply, so writeOnly's broadcast branch is exactly the
// behavior wanted here; most DYNAMIXEL SDKs special-case this the same
// way rather than waiting on an absent status packet.
func (c *Client) Reboot(id uint8) error {
	return c.writeOnly(id, protocol.InstReboot, 0, func(buf []byte) error { return nil })
}

var clearRevolutionCounterMagic = [5]byte{0x01, 0x44, 0x58, 0x4C, 0x22}

// Clear resets a device's multi-turn revolution counter.
func (c *Client) Clear(id uint8) error {
	return c.writeOnly(id, protocol.InstClear, len(clearRevolutionCounterMagic), func(buf []byte) error {
		copy(buf, clearRevolutionCounterMagic[:])
		return nil
	})
}

// Raw sends an arbitrary instruction id with a caller-supplied
// parameter encoder. Pass protocol.BroadcastID to skip waiting for a
// reply; any other id waits for a status packet with expectedReplyParams
// bytes of payload.
func (c *Client) Raw(id, instr uint8, paramCount, expectedReplyParams int, encode protocol.EncodeParamsFunc) (Response[protocol.Bytes], error) {
	if id == protocol.BroadcastID {
		return Response[protocol.Bytes]{}, c.WriteInstruction(id, instr, paramCount, encode)
	}
	return transferSingle(c, id, instr, paramCount, expectedReplyParams, encode, protocol.DecodeBytes)
}
