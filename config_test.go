package kafkalink

import (
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	config := NewConfig()
	if err := config.Validate(); err != nil {
		t.Error(err)
	}
}

func TestConfigValidates(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(*Config) // resorting to using a function as a param because of internal composite structs
		err  string
	}{
		{
			"DialTimeout",
			func(cfg *Config) {
				cfg.Net.DialTimeout = 0
			},
			"Net.DialTimeout must be > 0",
		},
		{
			"ReadTimeout",
			func(cfg *Config) {
				cfg.Net.ReadTimeout = 0
			},
			"Net.ReadTimeout must be > 0",
		},
		{
			"WriteTimeout",
			func(cfg *Config) {
				cfg.Net.WriteTimeout = 0
			},
			"Net.WriteTimeout must be > 0",
		},
		{
			"SendBufferSize",
			func(cfg *Config) {
				cfg.Net.SendBufferSize = -1
			},
			"Net.SendBufferSize must be >= 0",
		},
		{
			"ReceiveBufferSize",
			func(cfg *Config) {
				cfg.Net.ReceiveBufferSize = -1
			},
			"Net.ReceiveBufferSize must be >= 0",
		},
		{
			"Proxy",
			func(cfg *Config) {
				cfg.Net.Proxy.Enable = true
			},
			"Net.Proxy.Enable requires Net.Proxy.Dialer",
		},
		{
			"RefreshFrequency",
			func(cfg *Config) {
				cfg.Metadata.RefreshFrequency = 0
			},
			"Metadata.RefreshFrequency must be > 0",
		},
		{
			"RequiredAcks",
			func(cfg *Config) {
				cfg.Producer.RequiredAcks = -2
			},
			"Producer.RequiredAcks must be >= -1",
		},
		{
			"ProducerTimeout",
			func(cfg *Config) {
				cfg.Producer.Timeout = 0
			},
			"Producer.Timeout must be > 0",
		},
		{
			"Compression",
			func(cfg *Config) {
				cfg.Producer.Compression = CompressionCodec(17)
			},
			"Producer.Compression must be a recognized codec",
		},
		{
			"CompressionLevel",
			func(cfg *Config) {
				cfg.Producer.Compression = CompressionGZIP
				cfg.Producer.CompressionLevel = 14
			},
			"gzip compression does not work with level 14",
		},
		{
			"FetchMin",
			func(cfg *Config) {
				cfg.Consumer.Fetch.Min = 0
			},
			"Consumer.Fetch.Min must be > 0",
		},
		{
			"FetchMaxWait",
			func(cfg *Config) {
				cfg.Consumer.Fetch.MaxWait = 0
			},
			"Consumer.Fetch.MaxWait must be > 0",
		},
		{
			"ClientID",
			func(cfg *Config) {
				cfg.ClientID = ""
			},
			"ClientID must not be empty",
		},
		{
			"ChannelBufferSize",
			func(cfg *Config) {
				cfg.ChannelBufferSize = 0
			},
			"ChannelBufferSize must be > 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.cfg(cfg)
			err := cfg.Validate()
			var target ConfigurationError
			assert.ErrorAs(t, err, &target)
			assert.ErrorContains(t, err, tt.err)
		})
	}
}

func TestValidGzipCompressionLevels(t *testing.T) {
	for _, level := range []int{CompressionLevelDefault, 0, 5, 9} {
		cfg := NewConfig()
		cfg.Producer.Compression = CompressionGZIP
		cfg.Producer.CompressionLevel = level
		assert.NoError(t, cfg.Validate())
	}
}

func TestCompressionCodecStrings(t *testing.T) {
	assert.Equal(t, "none", CompressionNone.String())
	assert.Equal(t, "zstd", CompressionZSTD.String())
}
