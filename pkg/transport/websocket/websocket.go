// Package websocket carries a link over websocket binary messages.
package websocket

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/amulet.go/pkg/link"
	"github.com/robotalks/amulet.go/pkg/transport/stream"
)

// Conn turns a message based websocket.Conn into a byte stream.
// Each Write is sent as one binary message.
type Conn struct {
	ws      *websocket.Conn
	pending []byte
}

// NewConn wraps conn.
func NewConn(conn *websocket.Conn) *Conn {
	return &Conn{ws: conn}
}

// Read implements io.Reader.
func (c *Conn) Read(p []byte) (int, error) {
	for len(c.pending) == 0 {
		if err := websocket.Message.Receive(c.ws, &c.pending); err != nil {
			return 0, err
		}
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

// Write implements io.Writer.
func (c *Conn) Write(p []byte) (int, error) {
	if err := websocket.Message.Send(c.ws, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close implements io.Closer.
func (c *Conn) Close() error {
	return c.ws.Close()
}

// Dial connects to a link served at url.
func Dial(url string) (*stream.Transport, error) {
	conn, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return stream.New(NewConn(conn)), nil
}

// served is a transport already run by Handler. It isn't Runnable so a
// node doesn't start a second reader on it.
type served struct {
	t *stream.Transport
}

func (s served) Write(p []byte) (int, error) { return s.t.Write(p) }
func (s served) ReadByte() (byte, error)     { return s.t.ReadByte() }
func (s served) AvailableForWrite() int      { return s.t.AvailableForWrite() }
func (s served) Buffered() int               { return s.t.Buffered() }

// Handler serves one link per websocket connection. serve is called
// with the transport and returns when the connection should end. ctx is
// cancelled once the connection is closed.
func Handler(serve func(ctx context.Context, t link.Transport) error) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		t := stream.New(NewConn(conn))
		ctx, cancel := context.WithCancel(conn.Request().Context())
		defer cancel()
		go func() {
			if err := t.Run(ctx); err != nil && err != io.EOF && ctx.Err() == nil {
				glog.Errorf("websocket %s: %v", conn.Request().RemoteAddr, err)
			}
			cancel()
		}()
		if err := serve(ctx, served{t}); err != nil && ctx.Err() == nil {
			glog.Errorf("websocket %s: %v", conn.Request().RemoteAddr, err)
		}
	})
}
