package stream

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type loopback struct {
	io.Reader
	written bytes.Buffer
}

func (l *loopback) Write(p []byte) (int, error) {
	return l.written.Write(p)
}

func TestTransportQueue(t *testing.T) {
	rw := &loopback{Reader: bytes.NewReader([]byte{1, 2, 3, 4, 5})}
	tr := New(rw)
	tr.RxCapacity = 4
	require.ErrorIs(t, tr.Run(context.Background()), io.EOF)
	require.Equal(t, 4, tr.Buffered())
	require.Equal(t, 1, tr.Overruns())
	for _, expected := range []byte{1, 2, 3, 4} {
		b, err := tr.ReadByte()
		require.NoError(t, err)
		require.Equal(t, expected, b)
	}
	_, err := tr.ReadByte()
	require.ErrorIs(t, err, io.EOF)

	n, err := tr.Write([]byte{9, 8})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []byte{9, 8}, rw.written.Bytes())
	require.Equal(t, DefaultTxCapacity, tr.AvailableForWrite())
}

func TestTransportCancel(t *testing.T) {
	r, w := io.Pipe()
	tr := New(struct {
		io.ReadCloser
		io.Writer
	}{r, io.Discard})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- tr.Run(ctx) }()
	_, err := w.Write([]byte{0x02})
	require.NoError(t, err)
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
	require.Equal(t, 1, tr.Buffered())
}
