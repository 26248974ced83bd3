package link

import (
	"fmt"
	"time"
)

// Default values.
const (
	DefaultHostAddress     byte = 0x02
	DefaultPeerAddress     byte = 0x01
	DefaultRetries              = 10
	DefaultTimeout              = 200 * time.Millisecond
	DefaultMaxStringLength      = 25
	DefaultBufferSize           = 1024
	DefaultTableSize            = 256

	// MaxScriptName is the longest script name accepted.
	MaxScriptName = 32
	// InvalidScriptReply is the script result when no reply arrived or the
	// script is not registered.
	InvalidScriptReply int32 = -0x80000000

	minBufferSize = 8
)

// Config defines the static parameters of an Engine.
type Config struct {
	// Extended selects two-byte big-endian locations.
	Extended    bool `yaml:"extended"`
	HostAddress byte `yaml:"host_address"`
	PeerAddress byte `yaml:"peer_address"`

	Bytes   int `yaml:"bytes"`
	Words   int `yaml:"words"`
	Colors  int `yaml:"colors"`
	Strings int `yaml:"strings"`
	RPCs    int `yaml:"rpcs"`

	// Retries is the number of resends after the first attempt.
	Retries         int           `yaml:"retries"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxStringLength int           `yaml:"max_string_length"`
	RxBufferSize    int           `yaml:"rx_buffer_size"`
	TxBufferSize    int           `yaml:"tx_buffer_size"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		HostAddress:     DefaultHostAddress,
		PeerAddress:     DefaultPeerAddress,
		Bytes:           DefaultTableSize,
		Words:           DefaultTableSize,
		Colors:          DefaultTableSize,
		Strings:         DefaultTableSize,
		RPCs:            DefaultTableSize,
		Retries:         DefaultRetries,
		Timeout:         DefaultTimeout,
		MaxStringLength: DefaultMaxStringLength,
		RxBufferSize:    DefaultBufferSize,
		TxBufferSize:    DefaultBufferSize,
	}
}

// AddressWidth is the number of location bytes in a frame.
func (c Config) AddressWidth() int {
	if c.Extended {
		return 2
	}
	return 1
}

// Swapped returns the config of the other end of the link.
func (c Config) Swapped() Config {
	c.HostAddress, c.PeerAddress = c.PeerAddress, c.HostAddress
	return c
}

func (c Config) maxLocations() int {
	return 1 << uint(8*c.AddressWidth())
}

// Validate checks the config.
func (c Config) Validate() error {
	if c.HostAddress == c.PeerAddress {
		return &ConfigError{Field: "peer_address", Reason: "must differ from host_address"}
	}
	limit := c.maxLocations()
	for _, t := range []struct {
		name string
		size int
	}{
		{"bytes", c.Bytes},
		{"words", c.Words},
		{"colors", c.Colors},
		{"strings", c.Strings},
	} {
		if t.size < 0 || t.size > limit {
			return &ConfigError{Field: t.name, Reason: fmt.Sprintf("must be within [0, %d]", limit)}
		}
	}
	if c.RPCs < 0 || c.RPCs > 256 {
		return &ConfigError{Field: "rpcs", Reason: "must be within [0, 256]"}
	}
	if c.Retries < 0 {
		return &ConfigError{Field: "retries", Reason: "must not be negative"}
	}
	if c.Timeout <= 0 {
		return &ConfigError{Field: "timeout", Reason: "must be positive"}
	}
	if c.MaxStringLength < 1 || c.MaxStringLength > 255 {
		return &ConfigError{Field: "max_string_length", Reason: "must be within [1, 255]"}
	}
	if c.RxBufferSize < minBufferSize {
		return &ConfigError{Field: "rx_buffer_size", Reason: fmt.Sprintf("must be at least %d", minBufferSize)}
	}
	if c.TxBufferSize < minBufferSize {
		return &ConfigError{Field: "tx_buffer_size", Reason: fmt.Sprintf("must be at least %d", minBufferSize)}
	}
	return nil
}
