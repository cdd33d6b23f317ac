package kafkalink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressionRoundTrips(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog, repeatedly, for compressibility")

	for _, codec := range []CompressionCodec{
		CompressionNone,
		CompressionGZIP,
		CompressionSnappy,
		CompressionLZ4,
		CompressionZSTD,
	} {
		t.Run(codec.String(), func(t *testing.T) {
			compressed, err := compress(codec, CompressionLevelDefault, payload)
			require.NoError(t, err)

			decompressed, err := decompress(codec, compressed)
			require.NoError(t, err)
			require.Equal(t, payload, decompressed)
		})
	}
}

func TestGzipCompressionLevel(t *testing.T) {
	payload := []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

	compressed, err := compress(CompressionGZIP, 9, payload)
	require.NoError(t, err)

	decompressed, err := decompress(CompressionGZIP, compressed)
	require.NoError(t, err)
	require.Equal(t, payload, decompressed)
}

func TestUnknownCodecErrors(t *testing.T) {
	_, err := compress(CompressionCodec(42), CompressionLevelDefault, []byte("x"))
	require.Error(t, err)

	_, err = decompress(CompressionCodec(42), []byte("x"))
	require.Error(t, err)
}
