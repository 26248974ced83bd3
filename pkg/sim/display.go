// Package sim simulates the display end of a link.
package sim

import (
	"context"
	"time"

	fx "github.com/robotalks/amulet.go/pkg/framework"
	"github.com/robotalks/amulet.go/pkg/link"
	"github.com/robotalks/amulet.go/pkg/node"
	"github.com/robotalks/amulet.go/pkg/transport/pipe"
)

// PollInterval is how often the display polls its link.
const PollInterval = time.Millisecond

// Display is an Engine with swapped addresses running its own loop.
// Use Node to access it while running.
type Display struct {
	Node *node.Node
}

// New creates a Display on transport t. cfg is the host's config.
func New(t link.Transport, cfg link.Config) (*Display, error) {
	e, err := link.New(t, cfg.Swapped())
	if err != nil {
		return nil, err
	}
	return &Display{Node: node.New(e)}, nil
}

// NewPiped creates a Display connected to the returned host transport.
func NewPiped(cfg link.Config) (link.Transport, *Display, error) {
	host, display := pipe.New(cfg.RxBufferSize)
	d, err := New(display, cfg)
	if err != nil {
		return nil, nil, err
	}
	return host, d, nil
}

// Engine returns the display's engine. It must not be used while Run
// is active, except through Node.
func (d *Display) Engine() *link.Engine {
	return d.Node.Engine
}

// Run implements Runnable.
func (d *Display) Run(ctx context.Context) error {
	loop := fx.NewLoop().Add(d.Node)
	loop.Interval = PollInterval
	return loop.Run(ctx)
}

// Name implements Named.
func (d *Display) Name() string {
	return "display"
}
