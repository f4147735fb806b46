package protocol

// Data is the fixed-width serialization contract every register value
// and instruction parameter satisfies: a known encoded size, and an
// in-place encode into a caller-supplied buffer. Decoding is not part
// of the interface (Go has no associated-function-returning-Self
// trait method); each concrete type instead exposes a DecodeXxx
// free function, mirroring how the protocol's own decode side always
// knows which type it expects from context (a register address, a
// reply shape) rather than discovering it from the bytes.
type Data interface {
	EncodedSize() uint16
	Encode(buf []byte) error
}

// U8, U16, U32, U64 and their signed counterparts are the primitive
// register value types: little-endian, fixed size equal to their
// width. Decoding fails with InvalidParameterCountError if the input
// length differs from the expected size.

type U8 uint8

func (v U8) EncodedSize() uint16 { return 1 }
func (v U8) Encode(buf []byte) error {
	if len(buf) < 1 {
		return &BufferTooSmallError{Required: 1, Actual: len(buf)}
	}
	buf[0] = byte(v)
	return nil
}
func DecodeU8(buf []byte) (U8, error) {
	if len(buf) != 1 {
		return 0, &InvalidParameterCountError{Actual: len(buf), Expected: 1, Kind: CountExact}
	}
	return U8(buf[0]), nil
}

type I8 int8

func (v I8) EncodedSize() uint16 { return 1 }
func (v I8) Encode(buf []byte) error { return U8(v).Encode(buf) }
func DecodeI8(buf []byte) (I8, error) {
	v, err := DecodeU8(buf)
	return I8(v), err
}

type U16 uint16

func (v U16) EncodedSize() uint16 { return 2 }
func (v U16) Encode(buf []byte) error {
	if len(buf) < 2 {
		return &BufferTooSmallError{Required: 2, Actual: len(buf)}
	}
	PutUint16(buf, uint16(v))
	return nil
}
func DecodeU16(buf []byte) (U16, error) {
	if len(buf) != 2 {
		return 0, &InvalidParameterCountError{Actual: len(buf), Expected: 2, Kind: CountExact}
	}
	return U16(GetUint16(buf)), nil
}

type I16 int16

func (v I16) EncodedSize() uint16 { return 2 }
func (v I16) Encode(buf []byte) error { return U16(v).Encode(buf) }
func DecodeI16(buf []byte) (I16, error) {
	v, err := DecodeU16(buf)
	return I16(v), err
}

type U32 uint32

func (v U32) EncodedSize() uint16 { return 4 }
func (v U32) Encode(buf []byte) error {
	if len(buf) < 4 {
		return &BufferTooSmallError{Required: 4, Actual: len(buf)}
	}
	PutUint32(buf, uint32(v))
	return nil
}
func DecodeU32(buf []byte) (U32, error) {
	if len(buf) != 4 {
		return 0, &InvalidParameterCountError{Actual: len(buf), Expected: 4, Kind: CountExact}
	}
	return U32(GetUint32(buf)), nil
}

type I32 int32

func (v I32) EncodedSize() uint16 { return 4 }
func (v I32) Encode(buf []byte) error { return U32(v).Encode(buf) }
func DecodeI32(buf []byte) (I32, error) {
	v, err := DecodeU32(buf)
	return I32(v), err
}

type U64 uint64

func (v U64) EncodedSize() uint16 { return 8 }
func (v U64) Encode(buf []byte) error {
	if len(buf) < 8 {
		return &BufferTooSmallError{Required: 8, Actual: len(buf)}
	}
	PutUint64(buf, uint64(v))
	return nil
}
func DecodeU64(buf []byte) (U64, error) {
	if len(buf) != 8 {
		return 0, &InvalidParameterCountError{Actual: len(buf), Expected: 8, Kind: CountExact}
	}
	return U64(GetUint64(buf)), nil
}

type I64 int64

func (v I64) EncodedSize() uint16 { return 8 }
func (v I64) Encode(buf []byte) error { return U64(v).Encode(buf) }
func DecodeI64(buf []byte) (I64, error) {
	v, err := DecodeU64(buf)
	return I64(v), err
}

// Bytes is the parallel variable-length contract used by reads and
// writes of arbitrary register ranges: it borrows or copies the
// parameter slice directly instead of committing to a fixed width.
type Bytes []byte

func (b Bytes) EncodedSize() uint16 { return uint16(len(b)) }
func (b Bytes) Encode(buf []byte) error {
	if len(buf) < len(b) {
		return &BufferTooSmallError{Required: len(b), Actual: len(buf)}
	}
	copy(buf, b)
	return nil
}

// DecodeBytes copies buf into a freshly allocated Bytes value so the
// result does not alias a buffer the caller may reuse.
func DecodeBytes(buf []byte) (Bytes, error) {
	out := make(Bytes, len(buf))
	copy(out, buf)
	return out, nil
}

// DecodeArray decodes buf as a concatenation of fixed-size elements,
// rolling back (returning a nil slice and the error) rather than
// exposing a partially decoded result if any element fails to decode.
func DecodeArray[T any](buf []byte, elemSize int, decode func([]byte) (T, error)) ([]T, error) {
	if elemSize <= 0 || len(buf)%elemSize != 0 {
		return nil, &InvalidParameterCountError{Actual: len(buf), Expected: elemSize, Kind: CountMin}
	}
	n := len(buf) / elemSize
	out := make([]T, n)
	for i := 0; i < n; i++ {
		v, err := decode(buf[i*elemSize : (i+1)*elemSize])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// EncodeArray encodes a slice of fixed-size Data values back to back
// into buf, propagating the first BufferTooSmallError encountered.
func EncodeArray[T Data](vals []T, buf []byte) (int, error) {
	off := 0
	for _, v := range vals {
		sz := int(v.EncodedSize())
		if off+sz > len(buf) {
			return 0, &BufferTooSmallError{Required: off + sz, Actual: len(buf)}
		}
		if err := v.Encode(buf[off : off+sz]); err != nil {
			return 0, err
		}
		off += sz
	}
	return off, nil
}
