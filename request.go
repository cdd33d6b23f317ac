package kafkalink

// requestBody is implemented by the body of every request the client can put
// on the wire.
type requestBody interface {
	encoder
	key() int16
	version() int16
}

// request is the framing common to all requests: a length prefix, the api key
// and version, the correlation id, and the client id, followed by the body.
type request struct {
	correlationID int32
	clientID      string
	body          requestBody
}

func (r *request) encode(pe packetEncoder) error {
	pe.push(&lengthField{})
	pe.putInt16(r.body.key())
	pe.putInt16(r.body.version())
	pe.putInt32(r.correlationID)
	err := pe.putString(r.clientID)
	if err != nil {
		return err
	}
	err = r.body.encode(pe)
	if err != nil {
		return err
	}
	return pe.pop()
}
