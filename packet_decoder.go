package kafkalink

// packetDecoder is the interface providing helpers for reading with the
// protocol's encoding rules. Types implementing decoder only need to worry
// about calling methods like getString, not about how a string is actually
// laid out on the wire.
type packetDecoder interface {
	// primitives
	getInt8() (int8, error)
	getInt16() (int16, error)
	getInt32() (int32, error)
	getInt64() (int64, error)
	getArrayLength() (int, error)

	// collections
	getString() (string, error)
	getInt32Array() ([]int32, error)

	// subsets
	remaining() int

	// stacks, see pushDecoder
	push(in pushDecoder) error
	pop() error
}

// pushDecoder is the interface for decoding fields like lengths where the
// value was computed by the encoder after the fields it covers.
type pushDecoder interface {
	// saveOffset notes the position in the buffer where the field was written.
	saveOffset(in int)

	// reserveLength returns the length of data to reserve for the input of
	// this decoder (eg 4 bytes for a length).
	reserveLength() int

	// check is called when the pop() is run, validating the field against the
	// data between the saved offset and curOffset.
	check(curOffset int, buf []byte) error
}
