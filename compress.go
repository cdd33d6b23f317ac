package kafkalink

import (
	"bytes"
	"fmt"
	"sync"

	snappy "github.com/eapache/go-xerial-snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var (
	lz4WriterPool = sync.Pool{
		New: func() interface{} {
			return lz4.NewWriter(nil)
		},
	}

	gzipWriterPool = sync.Pool{
		New: func() interface{} {
			return gzip.NewWriter(nil)
		},
	}

	// zstd encoders are stateless once built and safe for concurrent
	// EncodeAll, so unlike the gzip/lz4 writers above they are cached per
	// level rather than pooled.
	zstdEncoders   = make(map[int]*zstd.Encoder)
	zstdEncodersMu sync.Mutex
)

func zstdEncoder(level int) *zstd.Encoder {
	zstdEncodersMu.Lock()
	defer zstdEncodersMu.Unlock()

	if enc, ok := zstdEncoders[level]; ok {
		return enc
	}

	encoderLevel := zstd.SpeedDefault
	if level != CompressionLevelDefault {
		encoderLevel = zstd.EncoderLevelFromZstd(level)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithZeroFrames(true),
		zstd.WithEncoderLevel(encoderLevel))
	zstdEncoders[level] = enc
	return enc
}

// compress applies the given codec to data, as used on the value of produce
// messages when Producer.Compression is set.
func compress(cc CompressionCodec, level int, data []byte) ([]byte, error) {
	switch cc {
	case CompressionNone:
		return data, nil
	case CompressionGZIP:
		var (
			err    error
			buf    bytes.Buffer
			writer *gzip.Writer
		)
		if level != CompressionLevelDefault {
			writer, err = gzip.NewWriterLevel(&buf, level)
			if err != nil {
				return nil, err
			}
		} else {
			writer = gzipWriterPool.Get().(*gzip.Writer)
			defer gzipWriterPool.Put(writer)
			writer.Reset(&buf)
		}
		if _, err := writer.Write(data); err != nil {
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionSnappy:
		return snappy.Encode(data), nil
	case CompressionLZ4:
		writer := lz4WriterPool.Get().(*lz4.Writer)
		defer lz4WriterPool.Put(writer)

		var buf bytes.Buffer
		writer.Reset(&buf)

		if _, err := writer.Write(data); err != nil {
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZSTD:
		return zstdEncoder(level).EncodeAll(data, nil), nil
	default:
		return nil, PacketEncodingError{fmt.Sprintf("unsupported compression codec (%d)", cc)}
	}
}
