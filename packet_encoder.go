package kafkalink

// packetEncoder is the interface providing helpers for writing with the
// protocol's encoding rules. Types implementing encoder only need to worry
// about calling methods like putString, not about how a string is actually
// laid out on the wire.
type packetEncoder interface {
	// primitives
	putInt8(in int8)
	putInt16(in int16)
	putInt32(in int32)
	putInt64(in int64)
	putArrayLength(in int) error

	// collections
	putString(in string) error
	putInt32Array(in []int32) error
	putRawBytes(in []byte) error

	// stacks, see pushEncoder
	push(in pushEncoder)
	pop() error
}

// pushEncoder is the interface for encoding fields like lengths where the
// value cannot be written until later in the encoding process.
type pushEncoder interface {
	// saveOffset notes the position in the buffer where the field will be
	// written once its value is computed.
	saveOffset(in int)

	// reserveLength returns the length of data to reserve for the output of
	// this encoder (eg 4 bytes for a length).
	reserveLength() int

	// run is called when the pop() is run, writing the field over the reserved
	// space using the data between the saved offset and curOffset.
	run(curOffset int, buf []byte) error
}
