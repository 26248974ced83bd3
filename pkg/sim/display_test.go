package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/amulet.go/pkg/link"
)

func TestDisplay(t *testing.T) {
	cfg := link.DefaultConfig()
	hostEnd, display, err := NewPiped(cfg)
	require.NoError(t, err)
	require.NoError(t, display.Engine().Memory().SetString(0, "ready"))
	host, err := link.New(hostEnd, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go display.Run(ctx)

	s, err := host.RequestString(0)
	require.NoError(t, err)
	require.Equal(t, "ready", s)
	require.NoError(t, host.SetByte(10, 0xaa))

	var v uint8
	require.NoError(t, display.Node.Wait(ctx, func(e *link.Engine) error {
		v = e.Memory().Byte(10)
		return nil
	}))
	require.Equal(t, uint8(0xaa), v)
}
