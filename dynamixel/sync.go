package dynamixel

import "dynamixel2/protocol"

// SyncReadResult is one device's slot in a SyncRead reply set. Err is
// set instead of Data when that device's reply timed out or otherwise
// failed; the rest of the set is unaffected.
type SyncReadResult struct {
	ID    uint8
	Alert bool
	Data  protocol.Bytes
	Err   error
}

// SyncWriteEntry is one device's payload in a SyncWrite. Data must be
// exactly the length passed to SyncWrite for every entry.
type SyncWriteEntry struct {
	ID   uint8
	Data []byte
}

// SyncRead reads the same addr/length range from every id in ids in a
// single broadcast instruction, returning one result per id in the
// order given (devices reply in id order by specification). A timeout
// on one id's reply is reported in that slot and does not abort the
// rest.
func (c *Client) SyncRead(addr, length uint16, ids []uint8) ([]SyncReadResult, error) {
	if err := checkDuplicateIDs(ids); err != nil {
		return nil, err
	}

	paramCount := 4 + len(ids)
	if err := c.WriteInstruction(protocol.BroadcastID, protocol.InstSyncRead, paramCount, func(buf []byte) error {
		protocol.PutUint16(buf[0:2], addr)
		protocol.PutUint16(buf[2:4], length)
		copy(buf[4:], ids)
		return nil
	}); err != nil {
		return nil, err
	}

	results := make([]SyncReadResult, len(ids))
	for i, id := range ids {
		results[i].ID = id
		data, alert, err := c.readReplySlot(id, int(length))
		if err != nil {
			results[i].Err = err
			continue
		}
		results[i].Alert = alert
		results[i].Data = data
	}
	return results, nil
}

// SyncWrite writes length bytes of per-device data to the same addr on
// every entry in a single broadcast instruction. Never waits for a
// reply.
func (c *Client) SyncWrite(addr, length uint16, entries []SyncWriteEntry) error {
	ids := make([]uint8, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		if len(e.Data) != int(length) {
			return &protocol.InvalidParameterCountError{Actual: len(e.Data), Expected: int(length), Kind: protocol.CountExact}
		}
	}
	if err := checkDuplicateIDs(ids); err != nil {
		return err
	}

	stride := 1 + int(length)
	paramCount := 4 + len(entries)*stride
	return c.WriteInstruction(protocol.BroadcastID, protocol.InstSyncWrite, paramCount, func(buf []byte) error {
		protocol.PutUint16(buf[0:2], addr)
		protocol.PutUint16(buf[2:4], length)
		off := 4
		for _, e := range entries {
			buf[off] = e.ID
			copy(buf[off+1:off+stride], e.Data)
			off += stride
		}
		return nil
	})
}
