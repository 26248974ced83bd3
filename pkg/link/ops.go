package link

import "fmt"

const maxArrayCount = 255

func (e *Engine) fits(k Kind, start uint16, count int) error {
	if e.mem.Fits(k, start, count) {
		return nil
	}
	return e.fail(fmt.Errorf("%s[%d:%d]: %w", k, start, int(start)+count, ErrOutOfRange))
}

func (e *Engine) arrayFits(k Kind, start uint16, count int) error {
	if count > maxArrayCount {
		return e.fail(fmt.Errorf("%s array of %d: %w", k, count, ErrOutOfRange))
	}
	return e.fits(k, start, count)
}

// RequestByte reads a byte variable from the peer into the mirror.
func (e *Engine) RequestByte(loc uint16) error {
	if err := e.fits(KindByte, loc, 1); err != nil {
		return err
	}
	return e.transact(e.requests.Location(OpGetByte, loc))
}

// RequestWord reads a word variable from the peer into the mirror.
func (e *Engine) RequestWord(loc uint16) error {
	if err := e.fits(KindWord, loc, 1); err != nil {
		return err
	}
	return e.transact(e.requests.Location(OpGetWord, loc))
}

// RequestColor reads a color variable from the peer into the mirror.
func (e *Engine) RequestColor(loc uint16) error {
	if err := e.fits(KindColor, loc, 1); err != nil {
		return err
	}
	return e.transact(e.requests.Location(OpGetColor, loc))
}

// RequestString reads a string variable from the peer. The string is
// also mirrored when loc is inside the string table.
func (e *Engine) RequestString(loc uint16) (string, error) {
	if err := e.addressable(loc); err != nil {
		return "", err
	}
	e.stringReply = ""
	if err := e.transact(e.requests.Location(OpGetString, loc)); err != nil {
		return "", err
	}
	return e.stringReply, nil
}

// RequestBytes reads count byte variables from the peer into the mirror.
func (e *Engine) RequestBytes(start uint16, count uint8) error {
	if err := e.fits(KindByte, start, int(count)); err != nil {
		return err
	}
	return e.transact(e.requests.ArrayRequest(OpGetBytes, start, count))
}

// RequestWords reads count word variables from the peer into the mirror.
func (e *Engine) RequestWords(start uint16, count uint8) error {
	if err := e.fits(KindWord, start, int(count)); err != nil {
		return err
	}
	return e.transact(e.requests.ArrayRequest(OpGetWords, start, count))
}

// RequestColors reads count color variables from the peer into the mirror.
func (e *Engine) RequestColors(start uint16, count uint8) error {
	if err := e.fits(KindColor, start, int(count)); err != nil {
		return err
	}
	return e.transact(e.requests.ArrayRequest(OpGetColors, start, count))
}

// SetByte writes a byte variable on the peer and waits for the ack.
func (e *Engine) SetByte(loc uint16, v uint8) error {
	if err := e.writeThrough(KindByte, loc, func() { e.mem.bytes[loc] = v }); err != nil {
		return err
	}
	return e.transact(e.requests.Byte(OpSetByte, loc, v))
}

// SetWord writes a word variable on the peer and waits for the ack.
func (e *Engine) SetWord(loc uint16, v uint16) error {
	if err := e.writeThrough(KindWord, loc, func() { e.mem.words[loc] = v }); err != nil {
		return err
	}
	return e.transact(e.requests.Word(OpSetWord, loc, v))
}

// SetColor writes a color variable on the peer and waits for the ack.
func (e *Engine) SetColor(loc uint16, v uint32) error {
	if err := e.writeThrough(KindColor, loc, func() { e.mem.colors[loc] = v }); err != nil {
		return err
	}
	return e.transact(e.requests.Color(OpSetColor, loc, v))
}

// SetString writes a string variable on the peer and waits for the ack.
func (e *Engine) SetString(loc uint16, s string) error {
	if err := e.writeThrough(KindString, loc, func() { e.mem.strings[loc] = truncate(s, e.cfg.MaxStringLength) }); err != nil {
		return err
	}
	return e.transact(e.requests.String(OpSetString, loc, s))
}

// SetBytes writes a byte array on the peer and waits for the ack.
// The mirror is updated too.
func (e *Engine) SetBytes(start uint16, vals []uint8) error {
	if err := e.arrayFits(KindByte, start, len(vals)); err != nil {
		return err
	}
	copy(e.mem.bytes[start:], vals)
	return e.transact(e.requests.Bytes(OpSetBytes, start, vals))
}

// SetWords writes a word array on the peer and waits for the ack.
// The mirror is updated too.
func (e *Engine) SetWords(start uint16, vals []uint16) error {
	if err := e.arrayFits(KindWord, start, len(vals)); err != nil {
		return err
	}
	copy(e.mem.words[start:], vals)
	return e.transact(e.requests.Words(OpSetWords, start, vals))
}

// SetColors writes a color array on the peer and waits for the ack.
// The mirror is updated too.
func (e *Engine) SetColors(start uint16, vals []uint32) error {
	if err := e.arrayFits(KindColor, start, len(vals)); err != nil {
		return err
	}
	copy(e.mem.colors[start:], vals)
	return e.transact(e.requests.Colors(OpSetColors, start, vals))
}

// PostByte writes a byte variable on the peer without waiting.
func (e *Engine) PostByte(loc uint16, v uint8) error {
	if err := e.writeThrough(KindByte, loc, func() { e.mem.bytes[loc] = v }); err != nil {
		return err
	}
	return e.post(e.requests.Byte(OpSetByte, loc, v))
}

// PostWord writes a word variable on the peer without waiting.
func (e *Engine) PostWord(loc uint16, v uint16) error {
	if err := e.writeThrough(KindWord, loc, func() { e.mem.words[loc] = v }); err != nil {
		return err
	}
	return e.post(e.requests.Word(OpSetWord, loc, v))
}

// PostColor writes a color variable on the peer without waiting.
func (e *Engine) PostColor(loc uint16, v uint32) error {
	if err := e.writeThrough(KindColor, loc, func() { e.mem.colors[loc] = v }); err != nil {
		return err
	}
	return e.post(e.requests.Color(OpSetColor, loc, v))
}

// PostString writes a string variable on the peer without waiting.
func (e *Engine) PostString(loc uint16, s string) error {
	if err := e.writeThrough(KindString, loc, func() { e.mem.strings[loc] = truncate(s, e.cfg.MaxStringLength) }); err != nil {
		return err
	}
	return e.post(e.requests.String(OpSetString, loc, s))
}

// InvokeRPC calls a remote procedure on the peer and waits for the ack.
func (e *Engine) InvokeRPC(index uint8) error {
	return e.transact(e.requests.Index(OpInvokeRPC, index))
}

// CallScript invokes a named script on the peer and returns its result.
func (e *Engine) CallScript(name string) (int32, error) {
	if err := validateScriptName(name); err != nil {
		return InvalidScriptReply, e.fail(err)
	}
	e.scriptReply = InvalidScriptReply
	if err := e.transact(e.requests.Name(OpInvokeScript, name)); err != nil {
		return InvalidScriptReply, err
	}
	return e.scriptReply, nil
}

// PostScript invokes a named script on the peer without waiting. The
// result is available from ScriptReply once the reply is polled.
func (e *Engine) PostScript(name string) error {
	if err := validateScriptName(name); err != nil {
		return e.fail(err)
	}
	e.scriptReply = InvalidScriptReply
	return e.post(e.requests.Name(OpInvokeScript, name))
}

// writeThrough updates the local mirror when loc is in range.
// Locations only the peer has are sent without a mirror update.
func (e *Engine) writeThrough(k Kind, loc uint16, update func()) error {
	if err := e.addressable(loc); err != nil {
		return err
	}
	if e.mem.Fits(k, loc, 1) {
		update()
	}
	return nil
}

// addressable checks loc fits in the location field.
func (e *Engine) addressable(loc uint16) error {
	if int(loc) < e.cfg.maxLocations() {
		return nil
	}
	return e.fail(fmt.Errorf("location %d: %w", loc, ErrOutOfRange))
}
