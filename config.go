package kafkalink

import (
	"fmt"
	"time"

	"golang.org/x/net/proxy"
)

const defaultClientID = "kafkalink"

// RequiredAcks is used in produce requests to tell the broker how many replica
// acknowledgements it must see before responding.
type RequiredAcks int16

const (
	// NoResponse doesn't send any response, the TCP ACK is all you get.
	NoResponse RequiredAcks = 0
	// WaitForLocal waits for only the local commit to succeed before responding.
	WaitForLocal RequiredAcks = 1
	// WaitForAll waits for all in-sync replicas to commit before responding.
	WaitForAll RequiredAcks = -1
)

// CompressionCodec represents the various compression codecs recognized by
// the wire protocol.
type CompressionCodec int8

const (
	// CompressionNone no compression
	CompressionNone CompressionCodec = iota
	// CompressionGZIP compression using GZIP
	CompressionGZIP
	// CompressionSnappy compression using snappy
	CompressionSnappy
	// CompressionLZ4 compression using LZ4
	CompressionLZ4
	// CompressionZSTD compression using ZSTD
	CompressionZSTD

	// CompressionLevelDefault is the constant to use in CompressionLevel
	// to have the default compression level for any codec.
	CompressionLevelDefault = -1000
)

func (cc CompressionCodec) String() string {
	return []string{
		"none",
		"gzip",
		"snappy",
		"lz4",
		"zstd",
	}[int(cc)]
}

// Config is used to pass multiple configuration options to a Coordinator.
type Config struct {
	// Net is the namespace for network-level properties used by the nodes the
	// coordinator materializes.
	Net struct {
		// How long to wait for the initial connection.
		DialTimeout time.Duration
		// How long to wait for a response before timing out and declaring the
		// request failed.
		ReadTimeout time.Duration
		// How long to wait for a transmit.
		WriteTimeout time.Duration

		// KeepAlive specifies the keep-alive period for an active network
		// connection. If zero, the net package's default period is used; a
		// negative value disables keep-alives. It is not applied when dialing
		// through Proxy.Dialer.
		KeepAlive time.Duration

		// The sizes (in bytes) of the socket send and receive buffers. A value
		// of 0 uses the operating system defaults.
		SendBufferSize    int
		ReceiveBufferSize int

		Proxy struct {
			// Whether or not to use proxy when connecting to the broker.
			Enable bool
			// The proxy dialer to use, required when Enable is true.
			Dialer proxy.Dialer
		}
	}

	// Metadata is the namespace for metadata management properties.
	Metadata struct {
		// How frequently to refresh the cluster metadata in the background.
		// Defaults to 10 minutes. The refresh only posts a message to the
		// coordinator's mailbox, so it never races a refresh already underway.
		RefreshFrequency time.Duration
	}

	// Producer is the namespace for configuration related to producing
	// messages, consumed by the produce router.
	Producer struct {
		// The level of acknowledgement reliability needed from the broker.
		RequiredAcks RequiredAcks
		// The maximum duration the broker will wait for the receipt of the
		// number of RequiredAcks.
		Timeout time.Duration
		// The type of compression to use on messages (defaults to no
		// compression).
		Compression CompressionCodec
		// The level of compression to use on messages. The meaning depends on
		// the actual compression type used and defaults to default compression
		// level for the codec.
		CompressionLevel int
	}

	// Consumer is the namespace for configuration related to consuming
	// messages, consumed by the consume router.
	Consumer struct {
		Fetch struct {
			// The minimum number of message bytes to fetch in a request.
			Min int32
			// The maximum amount of time the broker will wait for Fetch.Min
			// bytes to become available before it returns fewer than that
			// anyways.
			MaxWait time.Duration
		}
	}

	// A user-provided string sent with every request to the brokers for
	// logging, debugging, and auditing purposes.
	ClientID string
	// The number of messages buffered in the coordinator's mailbox input.
	// A poster blocks only while this buffer is full and the dispatcher has
	// not yet moved its messages into the coordinator's internal queue; that
	// queue is unbounded, so the backlog waiting for the agent is not limited
	// by this size.
	ChannelBufferSize int
}

// NewConfig returns a new configuration instance with sane defaults.
func NewConfig() *Config {
	c := &Config{}

	c.Net.DialTimeout = 30 * time.Second
	c.Net.ReadTimeout = 30 * time.Second
	c.Net.WriteTimeout = 30 * time.Second

	c.Metadata.RefreshFrequency = 10 * time.Minute

	c.Producer.RequiredAcks = WaitForLocal
	c.Producer.Timeout = 10 * time.Second
	c.Producer.Compression = CompressionNone
	c.Producer.CompressionLevel = CompressionLevelDefault

	c.Consumer.Fetch.Min = 1
	c.Consumer.Fetch.MaxWait = 250 * time.Millisecond

	c.ClientID = defaultClientID
	c.ChannelBufferSize = 256

	return c
}

// Validate checks a Config instance. It will return a ConfigurationError if
// the specified values don't make sense.
func (c *Config) Validate() error {
	switch {
	case c.Net.DialTimeout <= 0:
		return ConfigurationError("Net.DialTimeout must be > 0")
	case c.Net.ReadTimeout <= 0:
		return ConfigurationError("Net.ReadTimeout must be > 0")
	case c.Net.WriteTimeout <= 0:
		return ConfigurationError("Net.WriteTimeout must be > 0")
	case c.Net.SendBufferSize < 0:
		return ConfigurationError("Net.SendBufferSize must be >= 0")
	case c.Net.ReceiveBufferSize < 0:
		return ConfigurationError("Net.ReceiveBufferSize must be >= 0")
	case c.Net.Proxy.Enable && c.Net.Proxy.Dialer == nil:
		return ConfigurationError("Net.Proxy.Enable requires Net.Proxy.Dialer")
	}

	switch {
	case c.Metadata.RefreshFrequency <= 0:
		return ConfigurationError("Metadata.RefreshFrequency must be > 0")
	}

	switch {
	case c.Producer.RequiredAcks < -1:
		return ConfigurationError("Producer.RequiredAcks must be >= -1")
	case c.Producer.Timeout <= 0:
		return ConfigurationError("Producer.Timeout must be > 0")
	case c.Producer.Compression < CompressionNone || c.Producer.Compression > CompressionZSTD:
		return ConfigurationError("Producer.Compression must be a recognized codec")
	}
	if c.Producer.Compression == CompressionGZIP {
		if c.Producer.CompressionLevel != CompressionLevelDefault &&
			(c.Producer.CompressionLevel < 0 || c.Producer.CompressionLevel > 9) {
			return ConfigurationError(fmt.Sprintf("gzip compression does not work with level %d", c.Producer.CompressionLevel))
		}
	}

	switch {
	case c.Consumer.Fetch.Min <= 0:
		return ConfigurationError("Consumer.Fetch.Min must be > 0")
	case c.Consumer.Fetch.MaxWait <= 0:
		return ConfigurationError("Consumer.Fetch.MaxWait must be > 0")
	}

	switch {
	case c.ClientID == "":
		return ConfigurationError("ClientID must not be empty")
	case c.ChannelBufferSize <= 0:
		return ConfigurationError("ChannelBufferSize must be > 0")
	}

	return nil
}
