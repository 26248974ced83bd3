package websocket

import (
	"context"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/amulet.go/pkg/link"
)

func TestEcho(t *testing.T) {
	srv := httptest.NewServer(Handler(func(ctx context.Context, tr link.Transport) error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if b, err := tr.ReadByte(); err == nil {
				if _, err := tr.Write([]byte{b + 1}); err != nil {
					return err
				}
				continue
			}
			runtime.Gosched()
		}
	}))
	defer srv.Close()

	tr, err := Dial("ws" + strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	defer tr.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.Run(ctx)

	_, err = tr.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	var got []byte
	deadline := time.Now().Add(5 * time.Second)
	for len(got) < 3 && time.Now().Before(deadline) {
		if b, err := tr.ReadByte(); err == nil {
			got = append(got, b)
		} else {
			time.Sleep(time.Millisecond)
		}
	}
	require.Equal(t, []byte{2, 3, 4}, got)
}
