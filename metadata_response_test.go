package kafkalink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	emptyMetadataResponse = []byte{
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}

	brokersNoTopicsMetadataResponse = []byte{
		0x00, 0x00, 0x00, 0x02,

		0x00, 0x00, 0xab, 0xff,
		0x00, 0x09, 'l', 'o', 'c', 'a', 'l', 'h', 'o', 's', 't',
		0x00, 0x00, 0x00, 0x33,

		0x00, 0x01, 0x02, 0x03,
		0x00, 0x0a, 'g', 'o', 'o', 'g', 'l', 'e', '.', 'c', 'o', 'm',
		0x00, 0x00, 0x01, 0x11,

		0x00, 0x00, 0x00, 0x00,
	}

	topicsNoBrokersMetadataResponse = []byte{
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x01,

		0x00, 0x00,
		0x00, 0x03, 'f', 'o', 'o',
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x04,
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x07,
		0x00, 0x00, 0x00, 0x03,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x03,
		0x00, 0x00, 0x00, 0x00,
	}
)

func TestEmptyMetadataResponse(t *testing.T) {
	response := new(MetadataResponse)
	require.NoError(t, decode(emptyMetadataResponse, response))
	require.Empty(t, response.Brokers)
	require.Empty(t, response.Topics)
}

func TestMetadataResponseWithBrokers(t *testing.T) {
	response := new(MetadataResponse)
	require.NoError(t, decode(brokersNoTopicsMetadataResponse, response))

	require.Len(t, response.Brokers, 2)
	require.EqualValues(t, 0xabff, response.Brokers[0].ID)
	require.Equal(t, "localhost", response.Brokers[0].Host)
	require.EqualValues(t, 0x33, response.Brokers[0].Port)
	require.EqualValues(t, 0x00010203, response.Brokers[1].ID)
	require.Equal(t, "google.com", response.Brokers[1].Host)
	require.EqualValues(t, 0x0111, response.Brokers[1].Port)
	require.Empty(t, response.Topics)
}

func TestMetadataResponseWithTopics(t *testing.T) {
	response := new(MetadataResponse)
	require.NoError(t, decode(topicsNoBrokersMetadataResponse, response))

	require.Empty(t, response.Brokers)
	require.Len(t, response.Topics, 1)
	topic := response.Topics[0]
	require.Equal(t, ErrNoError, topic.Err)
	require.Equal(t, "foo", topic.Name)
	require.Len(t, topic.Partitions, 1)

	partition := topic.Partitions[0]
	require.Equal(t, ErrInvalidMessageSize, partition.Err)
	require.EqualValues(t, 0x01, partition.ID)
	require.EqualValues(t, 0x07, partition.Leader)
	require.Equal(t, []int32{1, 2, 3}, partition.Replicas)
	require.Empty(t, partition.Isr)
}

func TestMetadataRequestEncoding(t *testing.T) {
	request := &MetadataRequest{Topics: []string{"T"}}
	buf, err := encode(request)
	require.NoError(t, err)
	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x01, 'T',
	}, buf)

	buf, err = encode(&MetadataRequest{})
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, buf)
}
