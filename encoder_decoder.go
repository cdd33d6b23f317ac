package kafkalink

import "fmt"

// encoder is the interface that wraps the basic encode method.
// Anything implementing encoder can be turned into bytes using kafkalink's
// encoding rules.
type encoder interface {
	encode(pe packetEncoder) error
}

// encode takes an encoder and turns it into bytes, making two passes: the
// first sizes the buffer exactly, the second fills it.
func encode(e encoder) ([]byte, error) {
	if e == nil {
		return nil, nil
	}

	var prepEnc prepEncoder
	var realEnc realEncoder

	err := e.encode(&prepEnc)
	if err != nil {
		return nil, err
	}

	if prepEnc.length < 0 || prepEnc.length > int(MaxRequestSize) {
		return nil, PacketEncodingError{fmt.Sprintf("invalid request size (%d)", prepEnc.length)}
	}

	realEnc.raw = make([]byte, prepEnc.length)
	err = e.encode(&realEnc)
	if err != nil {
		return nil, err
	}

	return realEnc.raw, nil
}

// decoder is the interface that wraps the basic decode method.
// Anything implementing decoder can be extracted from bytes using kafkalink's
// decoding rules.
type decoder interface {
	decode(pd packetDecoder) error
}

// decode takes bytes and a decoder and fills the fields of the decoder from
// the bytes, interpreted using the protocol's encoding rules.
func decode(buf []byte, in decoder) error {
	if buf == nil {
		return nil
	}

	helper := realDecoder{raw: buf}
	err := in.decode(&helper)
	if err != nil {
		return err
	}

	if helper.off != len(buf) {
		return PacketDecodingError{"invalid length"}
	}

	return nil
}
