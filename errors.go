package kafkalink

import (
	"errors"
	"fmt"
)

// ErrOutOfBrokers is the error broadcast on the coordinator's InternalError
// hook when a metadata fetch finds no broker in the registry to talk to; the
// waiter of that fetch receives ErrOperationCanceled.
var ErrOutOfBrokers = errors.New("kafkalink: coordinator has run out of available brokers to talk to")

// ErrClosedCoordinator is the error returned when you attempt to use a
// coordinator that has not been started or has already been stopped.
var ErrClosedCoordinator = errors.New("kafkalink: coordinator is not running")

// ErrAlreadyStarted is the error returned when Start is called on a
// coordinator that is already running or already stopped.
var ErrAlreadyStarted = errors.New("kafkalink: coordinator has already been started")

// ErrOperationCanceled is the error a metadata waiter receives when the fetch
// it was attached to did not complete. The underlying cause, if there is one,
// is broadcast separately on the coordinator's InternalError hook.
var ErrOperationCanceled = errors.New("kafkalink: outstanding operation was canceled")

// ErrDeadNode is the error returned when a request is issued on a node whose
// connection has already been declared dead.
var ErrDeadNode = errors.New("kafkalink: node connection is dead")

// ConfigurationError is the type of error returned from a constructor (e.g.
// NewCoordinator) when the specified configuration is invalid.
type ConfigurationError string

func (err ConfigurationError) Error() string {
	return "kafkalink: invalid configuration (" + string(err) + ")"
}

// PacketEncodingError is returned from a failure while encoding a protocol
// packet. This can happen, for example, if you try to encode a string over
// 2^15 characters in length, since the wire format does not permit that.
type PacketEncodingError struct {
	Info string
}

func (err PacketEncodingError) Error() string {
	return fmt.Sprintf("kafkalink: error encoding packet: %s", err.Info)
}

// PacketDecodingError is returned when there was an error (other than
// truncated data) decoding a broker's response. This can be a bad CRC or
// length field, or any other invalid value.
type PacketDecodingError struct {
	Info string
}

func (err PacketDecodingError) Error() string {
	return fmt.Sprintf("kafkalink: error decoding packet: %s", err.Info)
}

// ErrInsufficientData is returned when decoding and the packet is truncated.
var ErrInsufficientData = errors.New("kafkalink: insufficient data to decode packet, more bytes expected")

// KError is the type of error that can be returned directly by the broker in
// the wire protocol.
type KError int16

// Numeric error codes from the wire protocol.
const (
	ErrNoError                         KError = 0
	ErrUnknown                         KError = -1
	ErrOffsetOutOfRange                KError = 1
	ErrInvalidMessage                  KError = 2
	ErrUnknownTopicOrPartition         KError = 3
	ErrInvalidMessageSize              KError = 4
	ErrLeaderNotAvailable              KError = 5
	ErrNotLeaderForPartition           KError = 6
	ErrRequestTimedOut                 KError = 7
	ErrBrokerNotAvailable              KError = 8
	ErrReplicaNotAvailable             KError = 9
	ErrMessageSizeTooLarge             KError = 10
	ErrStaleControllerEpochCode        KError = 11
	ErrOffsetMetadataTooLarge          KError = 12
	ErrNetworkException                KError = 13
	ErrOffsetsLoadInProgress           KError = 14
	ErrConsumerCoordinatorNotAvailable KError = 15
	ErrNotCoordinatorForConsumer       KError = 16
)

func (err KError) Error() string {
	// Error messages stolen/adapted from the protocol docs
	switch err {
	case ErrNoError:
		return "kafkalink: no error, why are you printing me?"
	case ErrUnknown:
		return "kafka server: unexpected (unknown?) server error"
	case ErrOffsetOutOfRange:
		return "kafka server: the requested offset is outside the range of offsets maintained for the given topic/partition"
	case ErrInvalidMessage:
		return "kafka server: message contents does not match its CRC"
	case ErrUnknownTopicOrPartition:
		return "kafka server: request was for a topic or partition that does not exist on this broker"
	case ErrInvalidMessageSize:
		return "kafka server: the message has a negative size"
	case ErrLeaderNotAvailable:
		return "kafka server: in the middle of a leadership election, there is currently no leader for this partition and hence it is unavailable for writes"
	case ErrNotLeaderForPartition:
		return "kafka server: tried to send a message to a replica that is not the leader for some partition, the metadata is out of date"
	case ErrRequestTimedOut:
		return "kafka server: request exceeded the user-specified time limit in the request"
	case ErrBrokerNotAvailable:
		return "kafka server: broker not available"
	case ErrReplicaNotAvailable:
		return "kafka server: replica information not available, one or more brokers are down"
	case ErrMessageSizeTooLarge:
		return "kafka server: message was too large, server rejected it to avoid allocation error"
	case ErrStaleControllerEpochCode:
		return "kafka server: stale controller epoch code"
	case ErrOffsetMetadataTooLarge:
		return "kafka server: specified a string larger than the configured maximum for offset metadata"
	case ErrNetworkException:
		return "kafka server: the server disconnected before a response was received"
	case ErrOffsetsLoadInProgress:
		return "kafka server: the coordinator is still loading offsets and cannot currently process requests"
	case ErrConsumerCoordinatorNotAvailable:
		return "kafka server: offset's topic has not yet been created"
	case ErrNotCoordinatorForConsumer:
		return "kafka server: request was for a consumer group that is not coordinated by this broker"
	}

	return fmt.Sprintf("Unknown error, how did this happen? Error code = %d", err)
}

// okForClients reports whether the error code still leaves the topic or
// partition routable. ReplicaNotAvailable only means some followers are down;
// the leader is still perfectly usable for clients.
func (err KError) okForClients() bool {
	return err == ErrNoError || err == ErrReplicaNotAvailable
}
