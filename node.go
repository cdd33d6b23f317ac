package kafkalink

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// unknownBrokerID is the node id carried by a broker that came from the seed
// list and has not yet been confirmed by cluster metadata.
const unknownBrokerID int32 = -1

// BrokerMeta identifies one broker of the cluster. Identity for registry
// purposes is the (Host, Port) pair; the ID stays at unknownBrokerID until it
// is learned from a metadata response.
type BrokerMeta struct {
	ID   int32
	Host string
	Port uint16
}

// Addr returns the host:port address of the broker.
func (m *BrokerMeta) Addr() string {
	return net.JoinHostPort(m.Host, strconv.Itoa(int(m.Port)))
}

func (m *BrokerMeta) String() string {
	return fmt.Sprintf("broker %d (%s)", m.ID, m.Addr())
}

// Node is an owned handle to one broker connection. The coordinator
// exclusively owns the set of nodes and controls their lifecycle: it creates
// them via a NodeFactory and stops them when they are dropped from the
// topology or when the coordinator itself stops.
type Node interface {
	// FetchMetadata issues a metadata request to the broker. With no topics it
	// requests the full cluster metadata; with topics it requests metadata for
	// those topics only. It blocks until the broker responds, the request
	// times out, or the connection fails.
	FetchMetadata(topics ...string) (*MetadataResponse, error)

	// Stop tears the connection down. After Stop the node accepts no further
	// requests.
	Stop() error

	// Name returns a stable identifier for the node, used for logging.
	Name() string
}

// NodeObserver receives the asynchronous signals a Node emits. The coordinator
// implements it: handlers that touch the registry or log run as messages on
// its mailbox so they share the agent's serialization domain, while counter
// taps and acknowledgement forwarding run directly on the caller's goroutine.
type NodeObserver interface {
	// NodeDead is emitted once when the node gives up on its connection.
	NodeDead(n Node)
	// NodeConnectError is emitted on each failed connection attempt.
	NodeConnectError(n Node, err error)
	// NodeReadError and NodeWriteError are emitted on transport failures; the
	// node itself decides when to follow up with NodeDead.
	NodeReadError(n Node, err error)
	NodeWriteError(n Node, err error)
	// NodeDecodeError is emitted when a response cannot be parsed.
	NodeDecodeError(n Node, err error)
	// NodeConnected is emitted when a connection is established.
	NodeConnected(n Node)
	// NodeRequestSent and NodeResponseReceived are emitted per request.
	NodeRequestSent(n Node)
	NodeResponseReceived(n Node)
	// Broker acknowledgements, forwarded to the produce and consume routers.
	ProduceAck(ack *ProduceAck)
	FetchAck(ack *FetchAck)
	OffsetAck(ack *OffsetAck)
}

// NodeFactory materializes a Node for the given broker. The factory must wire
// the observer into the node it returns; the returned node is owned by the
// caller.
type NodeFactory func(meta *BrokerMeta, observer NodeObserver) Node

// parseSeeds splits a comma-separated list of host:port tokens into broker
// metadata. Empty tokens are skipped. An empty result is an error naming the
// offending seed string.
func parseSeeds(seeds string) ([]*BrokerMeta, error) {
	var metas []*BrokerMeta
	for _, token := range strings.Split(seeds, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		host, portStr, err := net.SplitHostPort(token)
		if err != nil {
			return nil, ConfigurationError(fmt.Sprintf("invalid seed broker %q in %q", token, seeds))
		}
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return nil, ConfigurationError(fmt.Sprintf("invalid seed broker port in %q", token))
		}
		metas = append(metas, &BrokerMeta{ID: unknownBrokerID, Host: host, Port: uint16(port)})
	}
	if len(metas) == 0 {
		return nil, ConfigurationError(fmt.Sprintf("no seed brokers in %q", seeds))
	}
	return metas, nil
}
