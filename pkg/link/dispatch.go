package link

import (
	"encoding/binary"

	"github.com/golang/glog"
)

func (e *Engine) dispatch(f *Frame) {
	if !CheckCRC(f.Bytes) {
		e.errs.add()
		glog.V(2).Infof("%s dropped: %v", f, ErrChecksum)
		return
	}
	if glog.V(3) {
		glog.Infof("RX %s", f)
	}
	if f.Reply {
		e.handleReply(f)
	} else {
		e.handleCommand(f)
	}
}

// location splits the location field from a payload.
func (e *Engine) location(payload []byte) (uint16, []byte) {
	if e.cfg.AddressWidth() == 2 {
		return binary.BigEndian.Uint16(payload), payload[2:]
	}
	return uint16(payload[0]), payload[1:]
}

func (e *Engine) handleReply(f *Frame) {
	op := f.Opcode()
	payload := f.Payload()
	var err error
	switch op {
	case OpGetByte:
		loc, data := e.location(payload)
		if err = e.mem.SetByte(loc, data[0]); err == nil {
			e.notify(KindByte, loc, 1, true)
		}
	case OpGetWord:
		loc, data := e.location(payload)
		if err = e.mem.SetWord(loc, binary.BigEndian.Uint16(data)); err == nil {
			e.notify(KindWord, loc, 1, true)
		}
	case OpGetColor:
		loc, data := e.location(payload)
		if err = e.mem.SetColor(loc, binary.BigEndian.Uint32(data)); err == nil {
			e.notify(KindColor, loc, 1, true)
		}
	case OpGetString:
		loc, data := e.location(payload)
		e.stringReply = truncate(string(data), e.cfg.MaxStringLength)
		if e.mem.Fits(KindString, loc, 1) {
			e.mem.SetString(loc, e.stringReply)
			e.notify(KindString, loc, 1, true)
		}
	case OpGetBytes:
		loc, data := e.location(payload)
		if err = e.mem.SetBytes(loc, data[1:]); err == nil {
			e.notify(KindByte, loc, int(data[0]), true)
		}
	case OpGetWords:
		loc, data := e.location(payload)
		if err = e.mem.SetWords(loc, decodeWords(data[1:])); err == nil {
			e.notify(KindWord, loc, int(data[0]), true)
		}
	case OpGetColors:
		loc, data := e.location(payload)
		if err = e.mem.SetColors(loc, decodeColors(data[1:])); err == nil {
			e.notify(KindColor, loc, int(data[0]), true)
		}
	case OpInvokeScript:
		e.scriptReply = int32(binary.BigEndian.Uint32(payload))
	}
	if err != nil {
		glog.V(2).Infof("%s: %v", f, err)
	}
	e.replyErrs[op] = err
	e.pending[op] = true
}

func (e *Engine) handleCommand(f *Frame) {
	op := f.Opcode()
	payload := f.Payload()
	var reply []byte
	switch op {
	case OpGetByte:
		loc, _ := e.location(payload)
		reply = e.replies.Byte(op, loc, e.mem.Byte(loc))
	case OpGetWord:
		loc, _ := e.location(payload)
		reply = e.replies.Word(op, loc, e.mem.Word(loc))
	case OpGetColor:
		loc, _ := e.location(payload)
		reply = e.replies.Color(op, loc, e.mem.Color(loc))
	case OpGetString:
		loc, _ := e.location(payload)
		reply = e.replies.String(op, loc, e.mem.String(loc))
	case OpGetBytes:
		loc, data := e.location(payload)
		if vals, err := e.mem.Bytes(loc, int(data[0])); err == nil {
			reply = e.replies.Bytes(op, loc, vals)
		}
	case OpGetWords:
		loc, data := e.location(payload)
		if vals, err := e.mem.Words(loc, int(data[0])); err == nil {
			reply = e.replies.Words(op, loc, vals)
		}
	case OpGetColors:
		loc, data := e.location(payload)
		if vals, err := e.mem.Colors(loc, int(data[0])); err == nil {
			reply = e.replies.Colors(op, loc, vals)
		}
	case OpGetLabel:
		glog.V(2).Infof("%s: unsupported request", f)
	case OpSetByte:
		loc, data := e.location(payload)
		if e.mem.SetByte(loc, data[0]) == nil {
			e.notify(KindByte, loc, 1, false)
		}
		reply = e.replies.Ack(op)
	case OpSetWord:
		loc, data := e.location(payload)
		if e.mem.SetWord(loc, binary.BigEndian.Uint16(data)) == nil {
			e.notify(KindWord, loc, 1, false)
		}
		reply = e.replies.Ack(op)
	case OpSetColor:
		loc, data := e.location(payload)
		if e.mem.SetColor(loc, binary.BigEndian.Uint32(data)) == nil {
			e.notify(KindColor, loc, 1, false)
		}
		reply = e.replies.Ack(op)
	case OpSetString:
		loc, data := e.location(payload)
		if e.mem.SetString(loc, string(data)) == nil {
			e.notify(KindString, loc, 1, false)
		}
		reply = e.replies.Ack(op)
	case OpSetBytes:
		loc, data := e.location(payload)
		if e.mem.SetBytes(loc, data[1:]) == nil {
			e.notify(KindByte, loc, int(data[0]), false)
		}
		reply = e.replies.Ack(op)
	case OpSetWords:
		loc, data := e.location(payload)
		if e.mem.SetWords(loc, decodeWords(data[1:])) == nil {
			e.notify(KindWord, loc, int(data[0]), false)
		}
		reply = e.replies.Ack(op)
	case OpSetColors:
		loc, data := e.location(payload)
		if e.mem.SetColors(loc, decodeColors(data[1:])) == nil {
			e.notify(KindColor, loc, int(data[0]), false)
		}
		reply = e.replies.Ack(op)
	case OpInvokeRPC:
		e.respond(e.replies.Ack(op))
		if !e.rpcs.call(payload[0]) {
			glog.V(2).Infof("rpc %d not registered", payload[0])
		}
		return
	case OpInvokeScript:
		name := truncate(string(payload), MaxScriptName)
		v, ok := e.scripts.call(name)
		if !ok {
			glog.V(2).Infof("script %q not registered", name)
		}
		reply = e.replies.Int32(op, v)
	}
	if reply != nil {
		e.respond(reply)
	}
}

func (e *Engine) respond(reply []byte) {
	if err := e.write(reply); err != nil {
		e.errs.add()
		glog.V(2).Infof("reply %s: %v", Opcode(reply[1]), err)
	}
}

func decodeWords(data []byte) []uint16 {
	vals := make([]uint16, len(data)/2)
	for n := range vals {
		vals[n] = binary.BigEndian.Uint16(data[2*n:])
	}
	return vals
}

func decodeColors(data []byte) []uint32 {
	vals := make([]uint32, len(data)/4)
	for n := range vals {
		vals[n] = binary.BigEndian.Uint32(data[4*n:])
	}
	return vals
}
