package dynamixel

import "dynamixel2/protocol"

// BulkReadEntry is one device's address range in a BulkRead request.
type BulkReadEntry struct {
	ID     uint8
	Addr   uint16
	Length uint16
}

// BulkReadResult is one device's slot in a BulkRead reply set, the
// bulk-read analogue of SyncReadResult.
type BulkReadResult struct {
	ID    uint8
	Alert bool
	Data  protocol.Bytes
	Err   error
}

// BulkWriteEntry is one device's address and payload in a BulkWrite
// request; unlike SyncWrite, each entry may have a different length.
type BulkWriteEntry struct {
	ID   uint8
	Addr uint16
	Data []byte
}

// BulkRead reads a different address range from each listed device in
// a single broadcast instruction, returning one result per entry in
// the order given.
func (c *Client) BulkRead(entries []BulkReadEntry) ([]BulkReadResult, error) {
	ids := make([]uint8, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := checkDuplicateIDs(ids); err != nil {
		return nil, err
	}

	paramCount := len(entries) * 5
	if err := c.WriteInstruction(protocol.BroadcastID, protocol.InstBulkRead, paramCount, func(buf []byte) error {
		off := 0
		for _, e := range entries {
			buf[off] = e.ID
			protocol.PutUint16(buf[off+1:off+3], e.Addr)
			protocol.PutUint16(buf[off+3:off+5], e.Length)
			off += 5
		}
		return nil
	}); err != nil {
		return nil, err
	}

	results := make([]BulkReadResult, len(entries))
	for i, e := range entries {
		results[i].ID = e.ID
		data, alert, err := c.readReplySlot(e.ID, int(e.Length))
		if err != nil {
			results[i].Err = err
			continue
		}
		results[i].Alert = alert
		results[i].Data = data
	}
	return results, nil
}

// BulkWrite writes a different address and payload to each listed
// device in a single broadcast instruction. Never waits for a reply.
func (c *Client) BulkWrite(entries []BulkWriteEntry) error {
	ids := make([]uint8, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := checkDuplicateIDs(ids); err != nil {
		return err
	}

	paramCount := 0
	for _, e := range entries {
		paramCount += 5 + len(e.Data)
	}
	return c.WriteInstruction(protocol.BroadcastID, protocol.InstBulkWrite, paramCount, func(buf []byte) error {
		off := 0
		for _, e := range entries {
			buf[off] = e.ID
			protocol.PutUint16(buf[off+1:off+3], e.Addr)
			protocol.PutUint16(buf[off+3:off+5], uint16(len(e.Data)))
			copy(buf[off+5:off+5+len(e.Data)], e.Data)
			off += 5 + len(e.Data)
		}
		return nil
	})
}
