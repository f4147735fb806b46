package dynamixel

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"dynamixel2/protocol"
)

func TestPingUnicast(t *testing.T) {
	port := newMockSerialPort()
	client := newTestClient(port)
	port.feed(statusFrame(1, 0, []byte{0x06, 0x04, 0x26}))

	resp, err := client.Ping(1)
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if resp.MotorID != 1 || resp.Alert {
		t.Errorf("MotorID=%d Alert=%v, want 1/false", resp.MotorID, resp.Alert)
	}
	if resp.Data.Model != 0x0406 || resp.Data.Firmware != 0x26 {
		t.Errorf("Data = %+v, want model 0x0406 firmware 0x26", resp.Data)
	}
}

func TestPingBroadcastRejected(t *testing.T) {
	port := newMockSerialPort()
	client := newTestClient(port)

	if _, err := client.Ping(protocol.BroadcastID); err == nil {
		t.Fatal("expected an error pinging the broadcast id")
	}
}

func TestWriteBroadcastNeverWaitsForReply(t *testing.T) {
	port := newMockSerialPort()
	client := newTestClient(port)

	if err := client.Write(protocol.BroadcastID, 65, []byte{1}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	wire := port.Written()
	want := []byte{0xFF, 0xFF, 0xFD, 0x00, 0xFE, 0x06, 0x00, 0x03, 0x41, 0x00, 0x01}
	if !bytes.Equal(wire[:len(want)], want) {
		t.Errorf("wrote %X, want prefix %X", wire, want)
	}
	// No reply was ever fed to the mock; if Write tried to read one it
	// would return a timeout error instead of nil.
}

func TestRegWriteThenAction(t *testing.T) {
	port := newMockSerialPort()
	client := newTestClient(port)
	port.feed(statusFrame(5, 0, nil))
	port.feed(statusFrame(5, 0, nil))

	if err := client.RegWrite(5, 100, []byte{0x01}); err != nil {
		t.Fatalf("RegWrite: %v", err)
	}
	if err := client.Action(5); err != nil {
		t.Fatalf("Action: %v", err)
	}
}

func TestMotorErrorShortCircuitsTransaction(t *testing.T) {
	port := newMockSerialPort()
	client := newTestClient(port)
	port.feed(statusFrame(1, 0x02, nil)) // error number 2, no alert

	_, err := client.Read(1, 0, 4)
	var motorErr *protocol.MotorError
	if !errors.As(err, &motorErr) {
		t.Fatalf("expected *protocol.MotorError, got %T (%v)", err, err)
	}
	if motorErr.Raw != 0x02 {
		t.Errorf("Raw = %#x, want 0x02", motorErr.Raw)
	}
}

func TestAlertPreservedOnSuccess(t *testing.T) {
	port := newMockSerialPort()
	client := newTestClient(port)
	port.feed(statusFrame(1, protocol.StatusErrorAlertBit, []byte{0xAA}))

	resp, err := client.Read(1, 0, 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !resp.Alert {
		t.Error("expected Alert to be true")
	}
	if !bytes.Equal(resp.Data, []byte{0xAA}) {
		t.Errorf("Data = %X, want AA", resp.Data)
	}
}

func TestSyncReadDuplicateIDRejected(t *testing.T) {
	port := newMockSerialPort()
	client := newTestClient(port)

	_, err := client.SyncRead(0, 4, []uint8{1, 2, 1})
	var dup *protocol.DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("expected *protocol.DuplicateIDError, got %T (%v)", err, err)
	}
	if len(port.Written()) != 0 {
		t.Error("nothing should have been written to the bus before a duplicate-id rejection")
	}
}

func TestBulkReadDuplicateIDRejected(t *testing.T) {
	port := newMockSerialPort()
	client := newTestClient(port)

	_, err := client.BulkRead([]BulkReadEntry{{ID: 1, Addr: 0, Length: 2}, {ID: 1, Addr: 4, Length: 2}})
	if err == nil {
		t.Fatal("expected a duplicate-id error")
	}
}

// Spec scenario 6: sync-read ids [1,2,3], device 2 silent.
func TestSyncReadMissingReplyContinues(t *testing.T) {
	port := newMockSerialPort()
	client := newTestClient(port)
	port.feed(statusFrame(1, 0, []byte{0x11, 0x22, 0x33, 0x44}))
	port.feed(nil) // id 2: silent, its read times out.
	port.feed(statusFrame(3, 0, []byte{0x55, 0x66, 0x77, 0x88}))

	results, err := client.SyncRead(0, 4, []uint8{1, 2, 3})
	if err != nil {
		t.Fatalf("SyncRead: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if results[0].Err != nil || !bytes.Equal(results[0].Data, []byte{0x11, 0x22, 0x33, 0x44}) {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Err == nil {
		t.Error("results[1] (silent device) should have an error")
	}
	if results[2].Err != nil || !bytes.Equal(results[2].Data, []byte{0x55, 0x66, 0x77, 0x88}) {
		t.Errorf("results[2] = %+v", results[2])
	}
}

func TestSyncWriteIsBroadcastAndNeverWaits(t *testing.T) {
	port := newMockSerialPort()
	client := newTestClient(port)

	err := client.SyncWrite(10, 2, []SyncWriteEntry{
		{ID: 1, Data: []byte{0x01, 0x00}},
		{ID: 2, Data: []byte{0x02, 0x00}},
	})
	if err != nil {
		t.Fatalf("SyncWrite: %v", err)
	}
	if got := port.Written()[4]; got != protocol.BroadcastID {
		t.Errorf("packet id = %#x, want broadcast", got)
	}
}

func TestBulkWriteVaryingLengths(t *testing.T) {
	port := newMockSerialPort()
	client := newTestClient(port)

	err := client.BulkWrite([]BulkWriteEntry{
		{ID: 1, Addr: 10, Data: []byte{0x01}},
		{ID: 2, Addr: 20, Data: []byte{0x02, 0x03, 0x04}},
	})
	if err != nil {
		t.Fatalf("BulkWrite: %v", err)
	}
}

func TestScanCollectsRepliesAndSkipsTimeouts(t *testing.T) {
	port := newMockSerialPort()
	client := newTestClient(port)
	port.feed(statusFrame(1, 0, []byte{0x06, 0x04, 0x26}))
	port.feed(statusFrame(3, 0, []byte{0x10, 0x04, 0x26}))

	var found []uint8
	err := client.Scan(5, func(id uint8, result PingResult, err error) {
		if err == nil {
			found = append(found, id)
		}
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(found) != 2 || found[0] != 1 || found[1] != 3 {
		t.Errorf("found = %v, want [1 3]", found)
	}
}

func TestDeviceReadInstructionIgnoresOtherIDs(t *testing.T) {
	port := newMockSerialPort()
	bus := protocol.NewBus(port, 256, 256)
	device := NewDevice(bus, 5)

	foreign := []byte{0xFF, 0xFF, 0xFD, 0x00, 9, 0x03, 0x00, protocol.InstPing}
	crc := protocol.UpdateCRC(0, foreign)
	foreign = append(foreign, byte(crc), byte(crc>>8))
	port.feed(foreign)

	mine := []byte{0xFF, 0xFF, 0xFD, 0x00, 5, 0x03, 0x00, protocol.InstPing}
	crc2 := protocol.UpdateCRC(0, mine)
	mine = append(mine, byte(crc2), byte(crc2>>8))
	port.feed(mine)

	instr, err := device.ReadInstruction(bus.MakeDeadline(time.Second))
	if err != nil {
		t.Fatalf("ReadInstruction: %v", err)
	}
	if instr.PacketID != 5 || instr.Kind != KindPing {
		t.Errorf("got %+v, want packet id 5 ping", instr)
	}
}

func TestDeviceWriteStatusOK(t *testing.T) {
	port := newMockSerialPort()
	bus := protocol.NewBus(port, 256, 256)
	device := NewDevice(bus, 5)

	if err := device.WriteStatusOK(5); err != nil {
		t.Fatalf("WriteStatusOK: %v", err)
	}
	wire := port.Written()
	if wire[4] != 5 || wire[7] != protocol.InstStatus || wire[8] != 0 {
		t.Errorf("wire = %X", wire)
	}
}
