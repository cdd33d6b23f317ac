package kafkalink

import (
	"net"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recordingObserver counts node events for assertions.
type recordingObserver struct {
	connected, connectErrors, readErrors, writeErrors, decodeErrors int32
	requestsSent, responsesReceived, dead                           int32
}

func (o *recordingObserver) NodeDead(Node)                 { atomic.AddInt32(&o.dead, 1) }
func (o *recordingObserver) NodeConnectError(Node, error)  { atomic.AddInt32(&o.connectErrors, 1) }
func (o *recordingObserver) NodeReadError(Node, error)     { atomic.AddInt32(&o.readErrors, 1) }
func (o *recordingObserver) NodeWriteError(Node, error)    { atomic.AddInt32(&o.writeErrors, 1) }
func (o *recordingObserver) NodeDecodeError(Node, error)   { atomic.AddInt32(&o.decodeErrors, 1) }
func (o *recordingObserver) NodeConnected(Node)            { atomic.AddInt32(&o.connected, 1) }
func (o *recordingObserver) NodeRequestSent(Node)          { atomic.AddInt32(&o.requestsSent, 1) }
func (o *recordingObserver) NodeResponseReceived(Node)     { atomic.AddInt32(&o.responsesReceived, 1) }
func (o *recordingObserver) ProduceAck(*ProduceAck)        {}
func (o *recordingObserver) FetchAck(*FetchAck)            {}
func (o *recordingObserver) OffsetAck(*OffsetAck)          {}

func testNetConfig() *Config {
	conf := NewConfig()
	conf.Net.DialTimeout = 500 * time.Millisecond
	conf.Net.ReadTimeout = 2 * time.Second
	conf.Net.WriteTimeout = 2 * time.Second
	return conf
}

func TestNetNodeFetchMetadata(t *testing.T) {
	mb := NewMockBroker(t, 1)

	response := new(MetadataResponse)
	response.AddBroker(mb.Addr(), mb.BrokerID())
	response.AddTopicPartition("T", 0, mb.BrokerID(), []int32{1}, []int32{1}, ErrNoError)
	mb.Returns(response)
	mb.Returns(response)

	obs := new(recordingObserver)
	node := DefaultNodeFactory(testNetConfig())(mb.Meta(), obs)

	got, err := node.FetchMetadata()
	require.NoError(t, err)
	require.Len(t, got.Brokers, 1)
	require.Equal(t, mb.BrokerID(), got.Brokers[0].ID)
	require.Len(t, got.Topics, 1)
	require.Equal(t, "T", got.Topics[0].Name)
	require.Len(t, got.Topics[0].Partitions, 1)
	require.Equal(t, []int32{1}, got.Topics[0].Partitions[0].Replicas)

	// second request pipelines on the same connection with a new correlation id
	got, err = node.FetchMetadata("T")
	require.NoError(t, err)
	require.Equal(t, "T", got.Topics[0].Name)

	require.EqualValues(t, 1, atomic.LoadInt32(&obs.connected))
	require.EqualValues(t, 2, atomic.LoadInt32(&obs.requestsSent))
	require.EqualValues(t, 2, atomic.LoadInt32(&obs.responsesReceived))
	require.EqualValues(t, 0, atomic.LoadInt32(&obs.dead))

	require.NoError(t, node.Stop())
	mb.Close()
}

func TestNetNodeConnectErrorsLeadToDeath(t *testing.T) {
	// grab a port nobody is listening on
	listener, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	obs := new(recordingObserver)
	meta := &BrokerMeta{ID: unknownBrokerID, Host: host, Port: uint16(port)}
	node := DefaultNodeFactory(testNetConfig())(meta, obs)

	for i := 0; i < maxNodeFailures; i++ {
		_, err = node.FetchMetadata()
		require.Error(t, err)
	}

	require.EqualValues(t, maxNodeFailures, atomic.LoadInt32(&obs.connectErrors))
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&obs.dead) == 1
	}, eventuallyTimeout, eventuallyTick)

	// a dead node refuses further work without dialing again
	_, err = node.FetchMetadata()
	require.ErrorIs(t, err, ErrDeadNode)
	require.EqualValues(t, maxNodeFailures, atomic.LoadInt32(&obs.connectErrors))
}

func TestNetNodeStopRefusesRequests(t *testing.T) {
	obs := new(recordingObserver)
	meta := &BrokerMeta{ID: unknownBrokerID, Host: "localhost", Port: 1}
	node := DefaultNodeFactory(testNetConfig())(meta, obs)

	require.NoError(t, node.Stop())
	_, err := node.FetchMetadata()
	require.ErrorIs(t, err, ErrDeadNode)
}
