package kafkalink

// ProduceAck carries a broker's acknowledgement of produced messages, as
// decoded by a node from a produce response.
type ProduceAck struct {
	Topic     string
	Partition int32
	Err       KError
	Offset    int64
}

// FetchAck carries a broker's response to a fetch request.
type FetchAck struct {
	Topic         string
	Partition     int32
	Err           KError
	HighWaterMark int64
	Records       []byte
}

// OffsetAck carries a broker's response to an offset request.
type OffsetAck struct {
	Topic     string
	Partition int32
	Err       KError
	Offsets   []int64
}

// ProduceRouter is the coordinator's view of the producer subsystem. The
// coordinator forwards broker acknowledgements to it, pushes every new routing
// table at it, and stops it during shutdown. Batching, retries and expiry are
// the router's own business.
type ProduceRouter interface {
	Acknowledge(ack *ProduceAck)
	ChangeRoutingTable(table *RoutingTable)
	Stop() error
}

// ConsumeRouter is the coordinator's view of the consumer subsystem.
type ConsumeRouter interface {
	AcknowledgeFetch(ack *FetchAck)
	AcknowledgeOffsets(ack *OffsetAck)
	ChangeRoutingTable(table *RoutingTable)
	Stop() error
}

// RouterEvents is the tap the routers use to report message-level outcomes
// back to the coordinator's statistics. The coordinator implements it.
// UseRouters does not hand it to the routers; a router reports through it only
// if it was given the coordinator by whoever constructed it.
type RouterEvents interface {
	// MessageExpired reports one produce message that expired before it could
	// be sent.
	MessageExpired(topic string)
	// MessagesAcknowledged reports count messages acknowledged by a broker.
	MessagesAcknowledged(topic string, count int)
	// MessagesDiscarded reports count messages dropped after retries ran out.
	MessagesDiscarded(topic string, count int)
	// MessageReceived reports one message delivered to the application.
	MessageReceived(topic string)
}
