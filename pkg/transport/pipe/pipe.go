// Package pipe provides an in-memory link between two nodes.
package pipe

import (
	"errors"
	"sync"
)

var (
	// ErrEmpty is returned by ReadByte when nothing is buffered.
	ErrEmpty = errors.New("pipe empty")
	// ErrFull is returned by Write when the peer's queue is full.
	ErrFull = errors.New("pipe full")
)

type queue struct {
	lock sync.Mutex
	data []byte
}

// End is one end of a pipe. Each end has its own receive queue bounded
// by the capacity given to New.
type End struct {
	in       *queue
	out      *queue
	capacity int
}

// New creates the two connected ends.
func New(capacity int) (*End, *End) {
	a, b := &queue{}, &queue{}
	return &End{in: a, out: b, capacity: capacity},
		&End{in: b, out: a, capacity: capacity}
}

// Write implements io.Writer. It fails without writing when the peer's
// queue can't take all of p.
func (e *End) Write(p []byte) (int, error) {
	e.out.lock.Lock()
	defer e.out.lock.Unlock()
	if len(e.out.data)+len(p) > e.capacity {
		return 0, ErrFull
	}
	e.out.data = append(e.out.data, p...)
	return len(p), nil
}

// AvailableForWrite returns the free space in the peer's queue.
func (e *End) AvailableForWrite() int {
	e.out.lock.Lock()
	defer e.out.lock.Unlock()
	return e.capacity - len(e.out.data)
}

// Buffered returns the number of bytes waiting to be read.
func (e *End) Buffered() int {
	e.in.lock.Lock()
	defer e.in.lock.Unlock()
	return len(e.in.data)
}

// ReadByte implements io.ByteReader.
func (e *End) ReadByte() (byte, error) {
	e.in.lock.Lock()
	defer e.in.lock.Unlock()
	if len(e.in.data) == 0 {
		return 0, ErrEmpty
	}
	b := e.in.data[0]
	e.in.data = e.in.data[1:]
	return b, nil
}
