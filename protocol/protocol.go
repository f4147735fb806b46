// Package protocol implements the wire format of DYNAMIXEL Protocol 2.0:
// packet framing, byte-stuffing, checksums, and the half-duplex
// transaction engine ("Bus") that reads and writes packets over a
// SerialPort. It is register-agnostic and knows nothing about any
// particular motor model.
package protocol

// Header bytes that begin every packet on the wire.
const (
	Header1  = 0xFF
	Header2  = 0xFF
	Header3  = 0xFD
	Reserved = 0x00
)

// Packet ids.
const (
	BroadcastID uint8 = 0xFE
	MaxID       uint8 = 0xFC // 0..=252 are valid unicast ids
)

// Instruction ids. These are wire values mandated by the protocol;
// implementations must use exactly these.
const (
	InstPing         uint8 = 0x01
	InstRead         uint8 = 0x02
	InstWrite        uint8 = 0x03
	InstRegWrite     uint8 = 0x04
	InstAction       uint8 = 0x05
	InstFactoryReset uint8 = 0x06
	InstReboot       uint8 = 0x07
	InstClear        uint8 = 0x08
	InstSyncRead     uint8 = 0x82
	InstSyncWrite    uint8 = 0x83
	InstBulkRead     uint8 = 0x92
	InstBulkWrite    uint8 = 0x93
	InstStatus       uint8 = 0x55
)

// HeaderSize is the number of bytes from the first prefix byte through
// the length field, inclusive: FF FF FD 00 id len_lo len_hi.
const HeaderSize = 7

// StatusErrorAlertBit is bit 7 of a status packet's error byte: it
// signals a device-side hardware alert, reported via a separate
// register the caller must inspect on its own.
const StatusErrorAlertBit uint8 = 0x80

// ErrorNumber extracts bits 0..6 of a status error byte.
func ErrorNumber(statusError uint8) uint8 {
	return statusError &^ StatusErrorAlertBit
}

// Alert reports whether bit 7 of a status error byte is set.
func Alert(statusError uint8) bool {
	return statusError&StatusErrorAlertBit != 0
}
