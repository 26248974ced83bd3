package sh

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/amulet.go/pkg/bridge/mqtt"
	"github.com/robotalks/amulet.go/pkg/link"
	"github.com/robotalks/amulet.go/pkg/transport/serial"
)

func init() {
	AddCmds(&GetCmd, &ReqCmd, &SetCmd, &PostCmd, &RPCCmd, &ScriptCmd, &DumpCmd, &ErrorsCmd, &PortsCmd, &DiscoverCmd)
}

// varArgs is KIND LOC followed by the rest.
type varArgs struct {
	kind link.Kind
	loc  uint16
	rest []string
}

func parseVarArgs(args []string) (a varArgs, err error) {
	if len(args) < 2 {
		return a, fmt.Errorf("KIND and LOC expected")
	}
	if a.kind, err = link.ParseKind(args[0]); err != nil {
		return
	}
	loc, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		return a, fmt.Errorf("invalid location %q", args[1])
	}
	a.loc, a.rest = uint16(loc), args[2:]
	return
}

func (a varArgs) count() (int, error) {
	if len(a.rest) == 0 {
		return 1, nil
	}
	n, err := strconv.ParseUint(a.rest[0], 0, 8)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid count %q", a.rest[0])
	}
	return int(n), nil
}

func parseNumber(kind link.Kind, s string) (uint32, error) {
	bits := map[link.Kind]int{link.KindByte: 8, link.KindWord: 16, link.KindColor: 32}[kind]
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", kind, s)
	}
	return uint32(v), nil
}

// readMirror returns a single value or a slice for count > 1.
func readMirror(e *link.Engine, kind link.Kind, start uint16, count int) (interface{}, error) {
	m := e.Memory()
	if !m.Fits(kind, start, count) {
		return nil, fmt.Errorf("%s[%d:%d]: %w", kind, start, int(start)+count, link.ErrOutOfRange)
	}
	if kind == link.KindString {
		vals := make([]string, count)
		for n := range vals {
			vals[n] = m.String(start + uint16(n))
		}
		if count == 1 {
			return vals[0], nil
		}
		return vals, nil
	}
	vals := make([]uint32, count)
	for n := range vals {
		loc := start + uint16(n)
		switch kind {
		case link.KindByte:
			vals[n] = uint32(m.Byte(loc))
		case link.KindWord:
			vals[n] = uint32(m.Word(loc))
		default:
			vals[n] = m.Color(loc)
		}
	}
	if count == 1 {
		return vals[0], nil
	}
	return vals, nil
}

func request(e *link.Engine, kind link.Kind, start uint16, count int) error {
	if count == 1 || kind == link.KindString {
		for n := 0; n < count; n++ {
			loc := start + uint16(n)
			var err error
			switch kind {
			case link.KindByte:
				err = e.RequestByte(loc)
			case link.KindWord:
				err = e.RequestWord(loc)
			case link.KindColor:
				err = e.RequestColor(loc)
			default:
				_, err = e.RequestString(loc)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}
	switch kind {
	case link.KindByte:
		return e.RequestBytes(start, uint8(count))
	case link.KindWord:
		return e.RequestWords(start, uint8(count))
	}
	return e.RequestColors(start, uint8(count))
}

// write sets values from start. post only supports a single value.
func write(e *link.Engine, a varArgs, post bool) error {
	if len(a.rest) == 0 {
		return fmt.Errorf("VALUE expected")
	}
	if a.kind == link.KindString {
		s := strings.Join(a.rest, " ")
		if post {
			return e.PostString(a.loc, s)
		}
		return e.SetString(a.loc, s)
	}
	vals := make([]uint32, len(a.rest))
	for n, arg := range a.rest {
		v, err := parseNumber(a.kind, arg)
		if err != nil {
			return err
		}
		vals[n] = v
	}
	if len(vals) == 1 {
		return writeOne(e, a.kind, a.loc, vals[0], post)
	}
	if post {
		return fmt.Errorf("post takes a single value")
	}
	switch a.kind {
	case link.KindByte:
		data := make([]uint8, len(vals))
		for n, v := range vals {
			data[n] = uint8(v)
		}
		return e.SetBytes(a.loc, data)
	case link.KindWord:
		data := make([]uint16, len(vals))
		for n, v := range vals {
			data[n] = uint16(v)
		}
		return e.SetWords(a.loc, data)
	}
	return e.SetColors(a.loc, vals)
}

func writeOne(e *link.Engine, kind link.Kind, loc uint16, v uint32, post bool) error {
	switch {
	case kind == link.KindByte && post:
		return e.PostByte(loc, uint8(v))
	case kind == link.KindByte:
		return e.SetByte(loc, uint8(v))
	case kind == link.KindWord && post:
		return e.PostWord(loc, uint16(v))
	case kind == link.KindWord:
		return e.SetWord(loc, uint16(v))
	case post:
		return e.PostColor(loc, v)
	}
	return e.SetColor(loc, v)
}

// mirrorCmd reads the mirror after op.
func mirrorCmd(op func(*link.Engine, link.Kind, uint16, int) error) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		a, err := parseVarArgs(c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		count, err := a.count()
		if err != nil {
			c.Err(err)
			return
		}
		var result interface{}
		err = s.Do(c, func(e *link.Engine) (err error) {
			if op != nil {
				if err = op(e, a.kind, a.loc, count); err != nil {
					return
				}
			}
			result, err = readMirror(e, a.kind, a.loc, count)
			return
		})
		if err == nil {
			s.Print(c, result)
		}
	}
}

func writeCmd(post bool) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		a, err := parseVarArgs(c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		if ShellFrom(c).Do(c, func(e *link.Engine) error { return write(e, a, post) }) == nil {
			c.Println("OK")
		}
	}
}

var (
	// GetCmd reads the local mirror.
	GetCmd = ishell.Cmd{
		Name: "get",
		Help: "KIND LOC [COUNT] - read local mirror",
		Func: mirrorCmd(nil),
	}

	// ReqCmd requests values from the display.
	ReqCmd = ishell.Cmd{
		Name:    "req",
		Aliases: []string{"r"},
		Help:    "KIND LOC [COUNT] - request from display",
		Func:    mirrorCmd(request),
	}

	// SetCmd writes values and waits for the ack.
	SetCmd = ishell.Cmd{
		Name:    "set",
		Aliases: []string{"s"},
		Help:    "KIND LOC VALUE... - write to display",
		Func:    writeCmd(false),
	}

	// PostCmd writes a value without waiting.
	PostCmd = ishell.Cmd{
		Name: "post",
		Help: "KIND LOC VALUE - write to display without waiting",
		Func: writeCmd(true),
	}

	// RPCCmd invokes a remote procedure.
	RPCCmd = ishell.Cmd{
		Name: "rpc",
		Help: "INDEX - invoke remote procedure",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("INDEX expected"))
				return
			}
			index, err := strconv.ParseUint(c.Args[0], 0, 8)
			if err != nil {
				c.Err(err)
				return
			}
			if ShellFrom(c).Do(c, func(e *link.Engine) error { return e.InvokeRPC(uint8(index)) }) == nil {
				c.Println("OK")
			}
		},
	}

	// ScriptCmd invokes a named script.
	ScriptCmd = ishell.Cmd{
		Name: "script",
		Help: "NAME - invoke script and print result",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("NAME expected"))
				return
			}
			s := ShellFrom(c)
			var result int32
			err := s.Do(c, func(e *link.Engine) (err error) {
				result, err = e.CallScript(c.Args[0])
				return
			})
			if err == nil {
				s.Print(c, result)
			}
		},
	}

	// DumpCmd prints a whole mirror table or a range of it.
	DumpCmd = ishell.Cmd{
		Name: "dump",
		Help: "KIND [START COUNT] - print local mirror table",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 && len(c.Args) != 3 {
				c.Err(fmt.Errorf("KIND [START COUNT] expected"))
				return
			}
			kind, err := link.ParseKind(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			start, count := uint64(0), uint64(0)
			if len(c.Args) == 3 {
				if start, err = strconv.ParseUint(c.Args[1], 0, 16); err == nil {
					count, err = strconv.ParseUint(c.Args[2], 0, 16)
				}
				if err != nil {
					c.Err(err)
					return
				}
			}
			s := ShellFrom(c)
			var result interface{}
			err = s.Do(c, func(e *link.Engine) (err error) {
				n := int(count)
				if len(c.Args) == 1 {
					n = e.Memory().Len(kind)
				}
				result, err = readMirror(e, kind, uint16(start), n)
				return
			})
			if err == nil {
				s.Print(c, result)
			}
		},
	}

	// ErrorsCmd reads and clears the error counter.
	ErrorsCmd = ishell.Cmd{
		Name: "errors",
		Help: "read and clear error count",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var count uint32
			if s.Do(c, func(e *link.Engine) error { count = e.ReadError(); return nil }) == nil {
				s.Print(c, count)
			}
		},
	}

	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name: "ports",
		Help: "list serial ports",
		Func: func(c *ishell.Context) {
			ports, err := serial.Ports()
			if err != nil {
				c.Err(err)
				return
			}
			ShellFrom(c).Print(c, ports)
		},
	}

	// DiscoverCmd lists nodes announced on the MQTT broker.
	DiscoverCmd = ishell.Cmd{
		Name: "discover",
		Help: "list nodes on the MQTT broker",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if s.Config.MQTTBrokerURL == "" {
				c.Err(fmt.Errorf("MQTT broker not configured"))
				return
			}
			q, err := mqtt.NewQueueFromURL(s.Config.MQTTBrokerURL)
			if err != nil {
				c.Err(err)
				return
			}
			ids, err := mqtt.Discover(context.Background(), q, time.Second)
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, ids)
		},
	}
)
