// Package stream adapts an io.ReadWriter to a link transport.
//
// Received bytes are queued by Run in the background so the link
// engine can poll them without blocking.
package stream

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/amulet.go/pkg/framework"
)

// Default capacities.
const (
	DefaultRxCapacity = 4096
	DefaultTxCapacity = 1024
)

// ErrEmpty is returned by ReadByte when nothing is queued.
var ErrEmpty = errors.New("receive queue empty")

// Transport queues bytes read from ReadWriter.
type Transport struct {
	ReadWriter io.ReadWriter
	// ReadTimeout is set when Read returns periodically without data,
	// e.g. a serial port with read timeout.
	ReadTimeout bool
	RxCapacity  int
	TxCapacity  int

	lock    sync.Mutex
	rx      []byte
	overrun int
	err     error
}

// New creates a Transport.
func New(rw io.ReadWriter) *Transport {
	return &Transport{
		ReadWriter: rw,
		RxCapacity: DefaultRxCapacity,
		TxCapacity: DefaultTxCapacity,
	}
}

// Write implements io.Writer.
func (t *Transport) Write(p []byte) (int, error) {
	return t.ReadWriter.Write(p)
}

// AvailableForWrite returns TxCapacity, writes go straight to ReadWriter.
func (t *Transport) AvailableForWrite() int {
	return t.TxCapacity
}

// Buffered returns the number of queued bytes.
func (t *Transport) Buffered() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return len(t.rx)
}

// ReadByte implements io.ByteReader. Once the queue is drained, the
// error which stopped Run is returned.
func (t *Transport) ReadByte() (byte, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if len(t.rx) == 0 {
		if t.err != nil {
			return 0, t.err
		}
		return 0, ErrEmpty
	}
	b := t.rx[0]
	t.rx = t.rx[1:]
	return b, nil
}

// Overruns returns the number of bytes dropped because the queue was full.
func (t *Transport) Overruns() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.overrun
}

// Close closes ReadWriter if it's an io.Closer.
func (t *Transport) Close() error {
	if closer, ok := t.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Run reads in the background until ctx is done or Read fails.
func (t *Transport) Run(ctx context.Context) error {
	var err error
	if t.ReadTimeout {
		err = t.pollLoop(ctx)
	} else if closer, ok := t.ReadWriter.(io.Closer); ok {
		err = fx.RunWithContextCloser(ctx, closer, t.readLoop)
	} else {
		err = t.readLoop()
	}
	t.lock.Lock()
	t.err = err
	t.lock.Unlock()
	return err
}

func (t *Transport) pollLoop(ctx context.Context) error {
	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := t.ReadWriter.Read(buf)
		t.push(buf[:n])
		if err != nil && !os.IsTimeout(err) {
			return err
		}
	}
}

func (t *Transport) readLoop() error {
	buf := make([]byte, 256)
	for {
		n, err := t.ReadWriter.Read(buf)
		t.push(buf[:n])
		if err != nil {
			return err
		}
	}
}

func (t *Transport) push(data []byte) {
	if len(data) == 0 {
		return
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	if room := t.RxCapacity - len(t.rx); room < len(data) {
		if room < 0 {
			room = 0
		}
		t.overrun += len(data) - room
		glog.V(2).Infof("receive overrun, %d bytes dropped", len(data)-room)
		data = data[:room]
	}
	t.rx = append(t.rx, data...)
}
