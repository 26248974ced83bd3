package link

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	// ErrTransportBusy indicates the transport has no room for the frame.
	ErrTransportBusy = errors.New("transport busy")
	// ErrOutOfRange indicates a location outside the mirror tables.
	ErrOutOfRange = errors.New("location out of range")
	// ErrNoReply indicates the peer didn't reply after all retries.
	ErrNoReply = errors.New("no reply")
	// ErrInvalidOpcode indicates an unknown opcode for the frame role.
	ErrInvalidOpcode = errors.New("invalid opcode")
	// ErrFrameOverflow indicates a frame exceeds the receive buffer.
	ErrFrameOverflow = errors.New("frame overflow")
	// ErrChecksum indicates a CRC mismatch.
	ErrChecksum = errors.New("checksum mismatch")
	// ErrInvalidName indicates an empty or oversized script name.
	ErrInvalidName = errors.New("invalid script name")
)

// ConfigError is returned for a rejected Config.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// errorCounter is the single sticky error count of an Engine.
type errorCounter struct {
	n uint32
}

func (c *errorCounter) add() {
	if c != nil {
		atomic.AddUint32(&c.n, 1)
	}
}

func (c *errorCounter) take() uint32 {
	return atomic.SwapUint32(&c.n, 0)
}
