package link

import "encoding/binary"

// Encoder builds frames led by Address. Requests to the peer lead with
// the peer address, replies to the peer with the host address.
type Encoder struct {
	Address   byte
	AddrWidth int
	MaxString int
}

func (e *Encoder) start(op Opcode, size int) []byte {
	f := make([]byte, 0, 2+size+2)
	return append(f, e.Address, byte(op))
}

func (e *Encoder) located(op Opcode, loc uint16, size int) []byte {
	f := e.start(op, e.AddrWidth+size)
	if e.AddrWidth == 2 {
		return append(f, byte(loc>>8), byte(loc))
	}
	return append(f, byte(loc))
}

// Location encodes a GET of a scalar or string at loc.
func (e *Encoder) Location(op Opcode, loc uint16) []byte {
	return AppendCRC(e.located(op, loc, 0))
}

// ArrayRequest encodes a GET of count elements from start.
func (e *Encoder) ArrayRequest(op Opcode, start uint16, count uint8) []byte {
	return AppendCRC(append(e.located(op, start, 1), count))
}

// Byte encodes a byte value at loc.
func (e *Encoder) Byte(op Opcode, loc uint16, v uint8) []byte {
	return AppendCRC(append(e.located(op, loc, 1), v))
}

// Word encodes a word value at loc, big-endian.
func (e *Encoder) Word(op Opcode, loc uint16, v uint16) []byte {
	f := e.located(op, loc, 2)
	return AppendCRC(binary.BigEndian.AppendUint16(f, v))
}

// Color encodes a color value at loc, big-endian.
func (e *Encoder) Color(op Opcode, loc uint16, v uint32) []byte {
	f := e.located(op, loc, 4)
	return AppendCRC(binary.BigEndian.AppendUint32(f, v))
}

// String encodes a NUL terminated string at loc.
func (e *Encoder) String(op Opcode, loc uint16, s string) []byte {
	s = truncate(s, e.MaxString)
	f := append(e.located(op, loc, len(s)+1), s...)
	return AppendCRC(append(f, 0))
}

// Bytes encodes a byte array, len(vals) must not exceed 255.
func (e *Encoder) Bytes(op Opcode, start uint16, vals []uint8) []byte {
	f := append(e.located(op, start, 1+len(vals)), byte(len(vals)))
	return AppendCRC(append(f, vals...))
}

// Words encodes a word array, len(vals) must not exceed 255.
func (e *Encoder) Words(op Opcode, start uint16, vals []uint16) []byte {
	f := append(e.located(op, start, 1+2*len(vals)), byte(len(vals)))
	for _, v := range vals {
		f = binary.BigEndian.AppendUint16(f, v)
	}
	return AppendCRC(f)
}

// Colors encodes a color array, len(vals) must not exceed 255.
func (e *Encoder) Colors(op Opcode, start uint16, vals []uint32) []byte {
	f := append(e.located(op, start, 1+4*len(vals)), byte(len(vals)))
	for _, v := range vals {
		f = binary.BigEndian.AppendUint32(f, v)
	}
	return AppendCRC(f)
}

// Index encodes a procedure index.
func (e *Encoder) Index(op Opcode, index uint8) []byte {
	return AppendCRC(append(e.start(op, 1), index))
}

// Name encodes a NUL terminated script name without location.
func (e *Encoder) Name(op Opcode, name string) []byte {
	f := append(e.start(op, len(name)+1), name...)
	return AppendCRC(append(f, 0))
}

// Int32 encodes a script result, big-endian.
func (e *Encoder) Int32(op Opcode, v int32) []byte {
	return AppendCRC(binary.BigEndian.AppendUint32(e.start(op, 4), uint32(v)))
}

// Ack encodes a reply without payload.
func (e *Encoder) Ack(op Opcode) []byte {
	return AppendCRC(e.start(op, 0))
}
