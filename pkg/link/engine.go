package link

import (
	"io"
	"time"

	"github.com/golang/glog"
)

// Transport is the byte stream to the peer.
type Transport interface {
	io.Writer
	io.ByteReader
	// AvailableForWrite returns the number of bytes Write accepts without blocking.
	AvailableForWrite() int
	// Buffered returns the number of received bytes ReadByte returns without blocking.
	Buffered() int
}

// TimeSource provides the current time.
type TimeSource interface {
	Time() time.Time
}

type systemTime struct{}

func (systemTime) Time() time.Time {
	return time.Now()
}

// Change describes mirror entries updated from the wire.
type Change struct {
	Kind  Kind
	Start uint16
	Count int
	// Reply is set when the change comes from a reply to our request,
	// otherwise the peer wrote it.
	Reply bool
}

// ChangeNotifier receives mirror changes.
type ChangeNotifier interface {
	MirrorChanged(e *Engine, c Change)
}

// MirrorChangedFunc is the func form of ChangeNotifier.
type MirrorChangedFunc func(e *Engine, c Change)

// MirrorChanged implements ChangeNotifier.
func (f MirrorChangedFunc) MirrorChanged(e *Engine, c Change) {
	f(e, c)
}

// Engine is one end of an Amulet link.
type Engine struct {
	// Notifier is optional and called on the Engine goroutine.
	Notifier ChangeNotifier

	cfg       Config
	transport Transport
	clock     TimeSource
	parser    *Parser
	requests  Encoder
	replies   Encoder
	mem       *Memory
	rpcs      *RPCTable
	scripts   *ScriptTable
	errs      errorCounter

	pending     [256]bool
	replyErrs   [256]error
	stringReply string
	scriptReply int32
}

// New creates an Engine on transport t.
func New(t Transport, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:       cfg,
		transport: t,
		clock:     systemTime{},
		parser:    NewParser(cfg),
		requests: Encoder{
			Address:   cfg.PeerAddress,
			AddrWidth: cfg.AddressWidth(),
			MaxString: cfg.MaxStringLength,
		},
		replies: Encoder{
			Address:   cfg.HostAddress,
			AddrWidth: cfg.AddressWidth(),
			MaxString: cfg.MaxStringLength,
		},
		rpcs:        newRPCTable(cfg.RPCs),
		scripts:     newScriptTable(),
		scriptReply: InvalidScriptReply,
	}
	e.mem = newMemory(cfg, &e.errs)
	return e, nil
}

// WithTimeSource replaces the clock used for reply timeouts.
func (e *Engine) WithTimeSource(ts TimeSource) *Engine {
	e.clock = ts
	return e
}

// Config returns the config.
func (e *Engine) Config() Config {
	return e.cfg
}

// Transport returns the transport.
func (e *Engine) Transport() Transport {
	return e.transport
}

// Memory returns the mirror tables.
func (e *Engine) Memory() *Memory {
	return e.mem
}

// RPCs returns the procedures the peer can invoke.
func (e *Engine) RPCs() *RPCTable {
	return e.rpcs
}

// Scripts returns the scripts the peer can invoke.
func (e *Engine) Scripts() *ScriptTable {
	return e.scripts
}

// ReadError returns the number of errors since the last call and clears it.
func (e *Engine) ReadError() uint32 {
	return e.errs.take()
}

// ScriptReply returns the result of the last script invocation, or
// InvalidScriptReply if none arrived.
func (e *Engine) ScriptReply() int32 {
	return e.scriptReply
}

// Poll processes all buffered input.
func (e *Engine) Poll() {
	for e.transport.Buffered() > 0 {
		b, err := e.transport.ReadByte()
		if err != nil {
			glog.V(2).Infof("read: %v", err)
			return
		}
		e.Feed(b)
	}
}

// Feed processes a single received byte.
func (e *Engine) Feed(b byte) {
	r := e.parser.Parse(b)
	if r.Err != nil {
		e.errs.add()
		glog.V(2).Infof("frame dropped: %v", r.Err)
	}
	if r.Frame != nil {
		e.dispatch(r.Frame)
	}
}

// write sends frame if it fits the transmit buffer and the transport
// can take all of it.
func (e *Engine) write(frame []byte) error {
	if len(frame) > e.cfg.TxBufferSize || e.transport.AvailableForWrite() < len(frame) {
		return ErrTransportBusy
	}
	if glog.V(3) {
		glog.Infof("TX % x", frame)
	}
	_, err := e.transport.Write(frame)
	return err
}

func (e *Engine) fail(err error) error {
	e.errs.add()
	return err
}

func (e *Engine) notify(k Kind, start uint16, count int, reply bool) {
	if e.Notifier != nil {
		e.Notifier.MirrorChanged(e, Change{Kind: k, Start: start, Count: count, Reply: reply})
	}
}
