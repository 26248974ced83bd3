// Package node runs a link.Engine inside a framework.Loop so other
// goroutines can submit operations.
package node

import (
	"container/list"
	"context"
	"sync"
	"time"

	fx "github.com/robotalks/amulet.go/pkg/framework"
	"github.com/robotalks/amulet.go/pkg/link"
)

// DefaultExpiration is how long an operation may wait to be started.
const DefaultExpiration = 2 * time.Second

// Op is an operation executed on the loop goroutine.
type Op func(*link.Engine) error

// Future is the pending result of an Op.
type Future interface {
	ResultChan() <-chan error
}

// Node owns an Engine. The Engine must only be used from Ops once the
// Node is added to a loop.
type Node struct {
	Engine     *link.Engine
	Expiration time.Duration

	ops  list.List
	lock sync.Mutex
	ctl  fx.LoopControl
}

// New creates a Node.
func New(engine *link.Engine) *Node {
	return &Node{Engine: engine, Expiration: DefaultExpiration}
}

// Do queues op for the next iteration.
func (n *Node) Do(op Op) Future {
	f := &opFuture{
		op:       op,
		expireAt: time.Now().Add(n.Expiration),
		result:   make(chan error, 1),
	}
	n.lock.Lock()
	n.ops.PushBack(f)
	ctl := n.ctl
	n.lock.Unlock()
	if ctl != nil {
		ctl.TriggerNext()
	}
	return f
}

// Wait runs op and waits for its result or ctx.
func (n *Node) Wait(ctx context.Context, op Op) error {
	select {
	case err := <-n.Do(op).ResultChan():
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddToLoop implements LoopAdder. The transport is started with the
// loop if it's Runnable.
func (n *Node) AddToLoop(l *fx.Loop) {
	n.lock.Lock()
	n.ctl = l
	n.lock.Unlock()
	l.AddController(fx.PrLvLink, n)
	if r, ok := n.Engine.Transport().(fx.Runnable); ok {
		l.AddRunnable(r)
	}
}

// Control implements Controller.
func (n *Node) Control(cc fx.ControlContext) error {
	now := cc.Time()
	for {
		f := n.next()
		if f == nil {
			break
		}
		if !f.expireAt.After(now) {
			f.done(context.DeadlineExceeded)
			continue
		}
		f.done(f.op(n.Engine))
	}
	n.Engine.Poll()
	return nil
}

func (n *Node) next() *opFuture {
	n.lock.Lock()
	defer n.lock.Unlock()
	elem := n.ops.Front()
	if elem == nil {
		return nil
	}
	n.ops.Remove(elem)
	return elem.Value.(*opFuture)
}

type opFuture struct {
	op       Op
	expireAt time.Time
	result   chan error
}

func (f *opFuture) ResultChan() <-chan error {
	return f.result
}

func (f *opFuture) done(err error) {
	f.result <- err
	close(f.result)
}
