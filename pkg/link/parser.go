package link

import "fmt"

// Frame is a complete frame from the address byte through the CRC.
type Frame struct {
	// Reply is set when the frame answers one of our requests.
	Reply bool
	Bytes []byte
}

// Address returns the leading node address.
func (f *Frame) Address() byte {
	return f.Bytes[0]
}

// Opcode returns the opcode.
func (f *Frame) Opcode() Opcode {
	return Opcode(f.Bytes[1])
}

// Payload returns the bytes between the opcode and the CRC.
func (f *Frame) Payload() []byte {
	return f.Bytes[2 : len(f.Bytes)-2]
}

// String implements fmt.Stringer.
func (f *Frame) String() string {
	role := "CMD"
	if f.Reply {
		role = "RPL"
	}
	return fmt.Sprintf("%s %s [% x]", role, f.Opcode(), f.Bytes)
}

// ParseResult is the result of one parsing step.
type ParseResult struct {
	// Frame is set when the byte completed a frame. The CRC is not verified.
	Frame *Frame
	// Err is set when the byte caused the current frame to be discarded.
	Err error
}

type parseState int

const (
	stateAddress    parseState = iota // waiting for a node address
	stateOpcode                       // waiting for opcode
	stateFixed                        // fixed size payload
	stateArrayLoc                     // array location
	stateArrayCount                   // array element count
	stateArrayData                    // array elements
	stateStringLoc                    // string location
	stateString                       // string bytes up to NUL
	stateName                         // script name up to NUL
	stateCRCLow                       // first CRC byte
	stateCRCHigh                      // second CRC byte
)

// Parser assembles frames from received bytes.
type Parser struct {
	host      byte
	peer      byte
	addrWidth int
	maxLen    int

	state  parseState
	reply  bool
	remain int
	buf    []byte
}

// NewParser creates a Parser for the addresses and sizes in cfg.
func NewParser(cfg Config) *Parser {
	return &Parser{
		host:      cfg.HostAddress,
		peer:      cfg.PeerAddress,
		addrWidth: cfg.AddressWidth(),
		maxLen:    cfg.RxBufferSize,
		buf:       make([]byte, 0, cfg.RxBufferSize),
	}
}

// Reset drops any partial frame.
func (p *Parser) Reset() {
	p.state = stateAddress
	p.remain = 0
	p.buf = p.buf[:0]
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) ParseResult {
	if p.state == stateAddress {
		p.begin(b)
		return ParseResult{}
	}
	if len(p.buf) >= p.maxLen {
		p.Reset()
		p.begin(b)
		return ParseResult{Err: ErrFrameOverflow}
	}
	p.buf = append(p.buf, b)
	switch p.state {
	case stateOpcode:
		op := Opcode(b)
		switch n := payloadLength(op, p.reply, p.addrWidth); n {
		case lengthInvalid:
			p.Reset()
			// the offending byte may start the next frame
			p.begin(b)
			return ParseResult{Err: fmt.Errorf("%s: %w", op, ErrInvalidOpcode)}
		case lengthArray:
			p.expect(p.addrWidth, stateArrayLoc)
		case lengthString:
			p.expect(p.addrWidth, stateStringLoc)
		case lengthName:
			p.state = stateName
		default:
			p.expect(n, stateFixed)
		}
	case stateFixed, stateArrayData:
		p.countDown(stateCRCLow)
	case stateArrayLoc:
		p.countDown(stateArrayCount)
	case stateArrayCount:
		p.expect(int(b)*Opcode(p.buf[1]).elemSize(), stateArrayData)
	case stateStringLoc:
		p.countDown(stateString)
	case stateString, stateName:
		if b == 0 {
			p.state = stateCRCLow
		}
	case stateCRCLow:
		p.state = stateCRCHigh
	case stateCRCHigh:
		frame := &Frame{Reply: p.reply, Bytes: append([]byte(nil), p.buf...)}
		p.Reset()
		return ParseResult{Frame: frame}
	}
	return ParseResult{}
}

func (p *Parser) begin(b byte) {
	if b != p.host && b != p.peer {
		return
	}
	p.reply = b == p.peer
	p.buf = append(p.buf[:0], b)
	p.state = stateOpcode
}

// expect enters next for n bytes, or goes straight to the CRC when n is 0.
func (p *Parser) expect(n int, next parseState) {
	if n == 0 {
		p.state = stateCRCLow
		return
	}
	p.state, p.remain = next, n
}

func (p *Parser) countDown(next parseState) {
	p.remain--
	if p.remain == 0 {
		p.state = next
	}
}
