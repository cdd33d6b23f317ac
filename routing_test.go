package kafkalink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func routingFixture() (*brokerRegistry, Node, Node) {
	r := newBrokerRegistry()
	n1 := &stubNode{name: "h1:9092"}
	n2 := &stubNode{name: "h2:9092"}
	r.register(n1, &BrokerMeta{ID: 1, Host: "h1", Port: 9092})
	r.register(n2, &BrokerMeta{ID: 2, Host: "h2", Port: 9092})
	return r, n1, n2
}

func TestBuildRoutingTableRules(t *testing.T) {
	registry, n1, n2 := routingFixture()

	response := new(MetadataResponse)
	response.AddTopic("gone", ErrUnknownTopicOrPartition)
	response.AddTopicPartition("good", 1, 2, nil, nil, ErrNoError)
	response.AddTopicPartition("good", 0, 1, nil, nil, ErrNoError)
	// degraded but still routable
	response.AddTopicPartition("good", 2, 1, nil, nil, ErrReplicaNotAvailable)
	// no leader elected yet
	response.AddTopicPartition("good", 3, -1, nil, nil, ErrNoError)
	// mid-election
	response.AddTopicPartition("good", 4, 1, nil, nil, ErrLeaderNotAvailable)
	// leader id that no registered broker carries
	response.AddTopicPartition("good", 5, 99, nil, nil, ErrNoError)

	table := buildRoutingTable(response, registry)

	require.Equal(t, []string{"good"}, table.Topics())
	require.Equal(t, []int32{0, 1, 2}, table.PartitionIDs("good"))
	require.Same(t, n1, table.Leader("good", 0))
	require.Same(t, n2, table.Leader("good", 1))
	require.Same(t, n1, table.Leader("good", 2))
	require.Nil(t, table.Leader("good", 3))
	require.Nil(t, table.Leader("gone", 0))
}

func TestBuildRoutingTableDropsTopicWithNoRoutablePartitions(t *testing.T) {
	registry, _, _ := routingFixture()

	response := new(MetadataResponse)
	response.AddTopicPartition("sad", 0, 1, nil, nil, ErrLeaderNotAvailable)
	response.AddTopicPartition("sad", 1, -1, nil, nil, ErrNoError)

	table := buildRoutingTable(response, registry)
	require.Empty(t, table.Topics())
	require.Nil(t, table.Partitions("sad"))
	require.Nil(t, table.PartitionIDs("sad"))
}

func TestBuildRoutingTableEqualForEqualInput(t *testing.T) {
	registry, _, _ := routingFixture()

	response := new(MetadataResponse)
	response.AddTopicPartition("T", 1, 2, nil, nil, ErrNoError)
	response.AddTopicPartition("T", 0, 1, nil, nil, ErrNoError)

	first := buildRoutingTable(response, registry)
	second := buildRoutingTable(response, registry)
	require.Equal(t, first, second)
}

func TestRoutingTablePartitionsReturnsACopy(t *testing.T) {
	registry, _, n2 := routingFixture()

	response := new(MetadataResponse)
	response.AddTopicPartition("T", 0, 1, nil, nil, ErrNoError)
	response.AddTopicPartition("T", 1, 2, nil, nil, ErrNoError)

	table := buildRoutingTable(response, registry)

	partitions := table.Partitions("T")
	partitions[1] = Partition{ID: 99, Leader: nil}

	require.Equal(t, []int32{0, 1}, table.PartitionIDs("T"))
	require.Same(t, n2, table.Leader("T", 1))
}
