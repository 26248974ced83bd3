// Package mqtt bridges the mirror of a link to an MQTT broker.
//
// Under <prefix><node-id>/ the bridge publishes every mirror change on
// byte/<loc>, word/<loc>, color/<loc> and string/<loc>, and accepts
// set/<kind>/<loc>, rpc/<index> and script/<name>. Script results are
// published on script/<name>/reply. A retained meta topic carries the
// link config for discovery.
package mqtt

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	fx "github.com/robotalks/amulet.go/pkg/framework"
	"github.com/robotalks/amulet.go/pkg/link"
	"github.com/robotalks/amulet.go/pkg/node"
)

// Topic names under the node.
const (
	TopicMeta   = "meta"
	TopicSet    = "set"
	TopicRPC    = "rpc"
	TopicScript = "script"
	TopicReply  = "reply"
)

// Bridge connects a node.Node to a Queue.
type Bridge struct {
	Queue  *Queue
	Node   *node.Node
	Codec  Codec
	NodeID string
}

// New creates a Bridge.
func New(q *Queue, n *node.Node, codec Codec, nodeID string) *Bridge {
	return &Bridge{Queue: q, Node: n, Codec: codec, NodeID: nodeID}
}

// AddToLoop implements LoopAdder.
func (b *Bridge) AddToLoop(l *fx.Loop) {
	b.Node.Engine.Notifier = b
	l.AddRunnable(fx.NamedRun("mqtt", b))
}

// Run implements Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	b.Queue.Sub(b.topic(TopicSet, "+", "+"), b.handleSet)
	b.Queue.Sub(b.topic(TopicRPC, "+"), b.handleRPC)
	b.Queue.Sub(b.topic(TopicScript, "+"), b.handleScript)
	b.Queue.OnConnect = b.publishMeta
	if err := b.Queue.Connect(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	<-ctx.Done()
	b.Queue.Close()
	return ctx.Err()
}

func (b *Bridge) topic(levels ...string) string {
	return b.NodeID + "/" + strings.Join(levels, "/")
}

func (b *Bridge) publishMeta(q *Queue) {
	data, err := yaml.Marshal(b.Node.Engine.Config())
	if err != nil {
		glog.Errorf("encode meta: %v", err)
		return
	}
	q.Pub(b.topic(TopicMeta), data, true)
}

// MirrorChanged implements link.ChangeNotifier. It's called on the loop
// goroutine so the mirror can be read directly.
func (b *Bridge) MirrorChanged(e *link.Engine, c link.Change) {
	m := e.Memory()
	for n := 0; n < c.Count; n++ {
		loc := c.Start + uint16(n)
		var payload []byte
		switch c.Kind {
		case link.KindByte:
			payload = b.Codec.EncodeUint(uint32(m.Byte(loc)))
		case link.KindWord:
			payload = b.Codec.EncodeUint(uint32(m.Word(loc)))
		case link.KindColor:
			payload = b.Codec.EncodeUint(m.Color(loc))
		case link.KindString:
			payload = b.Codec.EncodeString(m.String(loc))
		}
		b.Queue.Pub(b.topic(c.Kind.String(), strconv.Itoa(int(loc))), payload, true)
	}
}

// relative strips the node id, returning the remaining levels.
func (b *Bridge) relative(topic string) []string {
	return strings.Split(strings.TrimPrefix(topic, b.NodeID+"/"), "/")
}

func (b *Bridge) handleSet(topic string, payload []byte) {
	levels := b.relative(topic)
	op, err := b.setOp(levels[1], levels[2], payload)
	if err != nil {
		glog.Errorf("%s: %v", topic, err)
		return
	}
	b.submit(topic, op, nil)
}

// setOp converts a set request into a waiting SET operation.
func (b *Bridge) setOp(kindName, locStr string, payload []byte) (node.Op, error) {
	kind, err := link.ParseKind(kindName)
	if err != nil {
		return nil, err
	}
	loc, err := strconv.ParseUint(locStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q", locStr)
	}
	if kind == link.KindString {
		s, err := b.Codec.DecodeString(payload)
		if err != nil {
			return nil, err
		}
		return func(e *link.Engine) error { return e.SetString(uint16(loc), s) }, nil
	}
	v, err := b.Codec.DecodeUint(payload)
	if err != nil {
		return nil, err
	}
	switch kind {
	case link.KindByte:
		if v > 0xff {
			return nil, fmt.Errorf("byte value %d: %w", v, link.ErrOutOfRange)
		}
		return func(e *link.Engine) error { return e.SetByte(uint16(loc), uint8(v)) }, nil
	case link.KindWord:
		if v > 0xffff {
			return nil, fmt.Errorf("word value %d: %w", v, link.ErrOutOfRange)
		}
		return func(e *link.Engine) error { return e.SetWord(uint16(loc), uint16(v)) }, nil
	}
	return func(e *link.Engine) error { return e.SetColor(uint16(loc), v) }, nil
}

func (b *Bridge) handleRPC(topic string, payload []byte) {
	levels := b.relative(topic)
	index, err := strconv.ParseUint(levels[1], 10, 8)
	if err != nil {
		glog.Errorf("%s: invalid rpc index", topic)
		return
	}
	b.submit(topic, func(e *link.Engine) error { return e.InvokeRPC(uint8(index)) }, nil)
}

func (b *Bridge) handleScript(topic string, payload []byte) {
	name := b.relative(topic)[1]
	var result int32
	b.submit(topic, func(e *link.Engine) (err error) {
		result, err = e.CallScript(name)
		return
	}, func() {
		b.Queue.Pub(b.topic(TopicScript, name, TopicReply), b.Codec.EncodeInt(result), false)
	})
}

// submit runs op on the node without blocking the MQTT client. onDone
// is called after op succeeds.
func (b *Bridge) submit(topic string, op node.Op, onDone func()) {
	f := b.Node.Do(op)
	go func() {
		if err := <-f.ResultChan(); err != nil {
			glog.Errorf("%s: %v", topic, err)
			return
		}
		if onDone != nil {
			onDone()
		}
	}()
}

// Discover collects the node ids announcing meta under the queue prefix
// until timeout.
func Discover(ctx context.Context, q *Queue, timeout time.Duration) ([]string, error) {
	idCh := make(chan string, 16)
	q.Sub("+/"+TopicMeta, func(topic string, _ []byte) {
		select {
		case idCh <- strings.TrimSuffix(topic, "/"+TopicMeta):
		default:
		}
	})
	if err := q.Connect(); err != nil {
		return nil, err
	}
	defer q.Close()
	var ids []string
	expire := time.After(timeout)
	for {
		select {
		case id := <-idCh:
			ids = append(ids, id)
		case <-expire:
			return ids, nil
		case <-ctx.Done():
			return ids, ctx.Err()
		}
	}
}
