package kafkalink

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/eapache/go-resiliency/breaker"
)

// maxNodeFailures is the number of consecutive transport failures after which
// a netNode declares itself dead.
const maxNodeFailures = 3

// netNode is the production Node: one TCP connection to one broker, opened
// lazily behind a circuit breaker, with requests issued strictly one at a
// time. It reports its lifecycle to the observer wired in by the factory and
// declares itself dead after maxNodeFailures consecutive transport failures.
type netNode struct {
	meta     BrokerMeta
	conf     *Config
	observer NodeObserver

	lock          sync.Mutex
	conn          net.Conn
	connBreaker   *breaker.Breaker
	correlationID int32
	failures      int
	dead          bool
}

// DefaultNodeFactory returns a NodeFactory producing netNodes configured from
// conf. This is the factory NewCoordinator falls back to when given none.
func DefaultNodeFactory(conf *Config) NodeFactory {
	return func(meta *BrokerMeta, observer NodeObserver) Node {
		return &netNode{
			meta:        *meta,
			conf:        conf,
			observer:    observer,
			connBreaker: breaker.New(maxNodeFailures, 1, 10*time.Second),
		}
	}
}

func (n *netNode) Name() string {
	return n.meta.Addr()
}

// FetchMetadata issues a metadata request and blocks until the response is
// decoded or the request fails.
func (n *netNode) FetchMetadata(topics ...string) (*MetadataResponse, error) {
	response := new(MetadataResponse)
	err := n.sendAndReceive(&MetadataRequest{Topics: topics}, response)
	if err != nil {
		return nil, err
	}
	return response, nil
}

// Stop tears down the connection. It never emits further events.
func (n *netNode) Stop() error {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.dead = true
	if n.conn != nil {
		err := n.conn.Close()
		n.conn = nil
		return err
	}
	return nil
}

func (n *netNode) sendAndReceive(body requestBody, res decoder) error {
	n.lock.Lock()
	defer n.lock.Unlock()

	if n.dead {
		return ErrDeadNode
	}
	if err := n.ensureConnection(); err != nil {
		return err
	}

	req := &request{correlationID: n.correlationID, clientID: n.conf.ClientID, body: body}
	buf, err := encode(req)
	if err != nil {
		return err
	}

	if err := n.conn.SetWriteDeadline(time.Now().Add(n.conf.Net.WriteTimeout)); err != nil {
		return err
	}
	if _, err := n.conn.Write(buf); err != nil {
		n.observer.NodeWriteError(n, err)
		n.fail()
		return err
	}
	n.observer.NodeRequestSent(n)

	if err := n.conn.SetReadDeadline(time.Now().Add(n.conf.Net.ReadTimeout)); err != nil {
		return err
	}

	header := make([]byte, 8)
	if _, err := io.ReadFull(n.conn, header); err != nil {
		n.observer.NodeReadError(n, err)
		n.fail()
		return err
	}

	var h responseHeader
	if err := decode(header, &h); err != nil {
		n.observer.NodeDecodeError(n, err)
		n.fail()
		return err
	}
	if h.correlationID != req.correlationID {
		err := PacketDecodingError{fmt.Sprintf("correlation ID didn't match, wanted %d, got %d", req.correlationID, h.correlationID)}
		n.observer.NodeDecodeError(n, err)
		n.fail()
		return err
	}

	payload := make([]byte, h.length-4)
	if _, err := io.ReadFull(n.conn, payload); err != nil {
		n.observer.NodeReadError(n, err)
		n.fail()
		return err
	}
	n.observer.NodeResponseReceived(n)

	if err := decode(payload, res); err != nil {
		// the stream is still aligned, the payload just didn't parse
		n.observer.NodeDecodeError(n, err)
		return err
	}

	n.correlationID++
	n.failures = 0
	return nil
}

// ensureConnection dials lazily, behind a breaker so a flapping broker is not
// hammered with connection attempts.
func (n *netNode) ensureConnection() error {
	if n.conn != nil {
		return nil
	}

	err := n.connBreaker.Run(func() error {
		dialer := net.Dialer{
			Timeout:   n.conf.Net.DialTimeout,
			KeepAlive: n.conf.Net.KeepAlive,
		}

		var conn net.Conn
		var err error
		if n.conf.Net.Proxy.Enable {
			conn, err = n.conf.Net.Proxy.Dialer.Dial("tcp", n.meta.Addr())
		} else {
			conn, err = dialer.Dial("tcp", n.meta.Addr())
		}
		if err != nil {
			return err
		}

		if tcpConn, ok := conn.(*net.TCPConn); ok {
			if n.conf.Net.SendBufferSize > 0 {
				_ = tcpConn.SetWriteBuffer(n.conf.Net.SendBufferSize)
			}
			if n.conf.Net.ReceiveBufferSize > 0 {
				_ = tcpConn.SetReadBuffer(n.conf.Net.ReceiveBufferSize)
			}
		}

		n.conn = conn
		return nil
	})
	if err != nil {
		n.observer.NodeConnectError(n, err)
		n.fail()
		return err
	}

	n.observer.NodeConnected(n)
	return nil
}

// fail records a transport failure, recycles the connection, and emits
// NodeDead once the failure budget is exhausted. Called with the lock held;
// the dead event is dispatched off the node's goroutine so the observer can
// stop the node without deadlocking.
func (n *netNode) fail() {
	if n.conn != nil {
		_ = n.conn.Close()
		n.conn = nil
	}
	n.failures++
	if n.failures >= maxNodeFailures && !n.dead {
		n.dead = true
		go withRecover(func() { n.observer.NodeDead(n) })
	}
}
