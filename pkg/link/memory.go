package link

import "fmt"

// Kind is the type of a mirror table.
type Kind int

// Kinds.
const (
	KindByte Kind = iota
	KindWord
	KindColor
	KindString
)

var kindNames = []string{"byte", "word", "color", "string"}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts the name of a kind.
func ParseKind(s string) (Kind, error) {
	for n, name := range kindNames {
		if name == s {
			return Kind(n), nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

// Memory is the mirror of the display's variable tables.
// Out of range access increments the Engine error counter: reads return
// the zero value and writes are dropped.
type Memory struct {
	bytes   []uint8
	words   []uint16
	colors  []uint32
	strings []string

	maxString int
	errs      *errorCounter
}

func newMemory(cfg Config, errs *errorCounter) *Memory {
	return &Memory{
		bytes:     make([]uint8, cfg.Bytes),
		words:     make([]uint16, cfg.Words),
		colors:    make([]uint32, cfg.Colors),
		strings:   make([]string, cfg.Strings),
		maxString: cfg.MaxStringLength,
		errs:      errs,
	}
}

// Len returns the capacity of a table.
func (m *Memory) Len(k Kind) int {
	switch k {
	case KindByte:
		return len(m.bytes)
	case KindWord:
		return len(m.words)
	case KindColor:
		return len(m.colors)
	case KindString:
		return len(m.strings)
	}
	return 0
}

// Fits tells if count entries starting at start are inside the table.
func (m *Memory) Fits(k Kind, start uint16, count int) bool {
	return count >= 0 && int(start)+count <= m.Len(k)
}

func (m *Memory) check(k Kind, start uint16, count int) error {
	if m.Fits(k, start, count) {
		return nil
	}
	m.errs.add()
	return fmt.Errorf("%s[%d:%d] of %d: %w", k, start, int(start)+count, m.Len(k), ErrOutOfRange)
}

// Byte reads a byte variable.
func (m *Memory) Byte(loc uint16) uint8 {
	if m.check(KindByte, loc, 1) != nil {
		return 0
	}
	return m.bytes[loc]
}

// SetByte writes a byte variable.
func (m *Memory) SetByte(loc uint16, v uint8) error {
	if err := m.check(KindByte, loc, 1); err != nil {
		return err
	}
	m.bytes[loc] = v
	return nil
}

// Word reads a word variable.
func (m *Memory) Word(loc uint16) uint16 {
	if m.check(KindWord, loc, 1) != nil {
		return 0
	}
	return m.words[loc]
}

// SetWord writes a word variable.
func (m *Memory) SetWord(loc uint16, v uint16) error {
	if err := m.check(KindWord, loc, 1); err != nil {
		return err
	}
	m.words[loc] = v
	return nil
}

// Color reads a color variable.
func (m *Memory) Color(loc uint16) uint32 {
	if m.check(KindColor, loc, 1) != nil {
		return 0
	}
	return m.colors[loc]
}

// SetColor writes a color variable.
func (m *Memory) SetColor(loc uint16, v uint32) error {
	if err := m.check(KindColor, loc, 1); err != nil {
		return err
	}
	m.colors[loc] = v
	return nil
}

// String reads a string variable.
func (m *Memory) String(loc uint16) string {
	if m.check(KindString, loc, 1) != nil {
		return ""
	}
	return m.strings[loc]
}

// SetString writes a string variable, truncated to the max string length.
func (m *Memory) SetString(loc uint16, s string) error {
	if err := m.check(KindString, loc, 1); err != nil {
		return err
	}
	m.strings[loc] = truncate(s, m.maxString)
	return nil
}

// Bytes copies count byte variables from start.
func (m *Memory) Bytes(start uint16, count int) ([]uint8, error) {
	if err := m.check(KindByte, start, count); err != nil {
		return nil, err
	}
	return append([]uint8(nil), m.bytes[start:int(start)+count]...), nil
}

// SetBytes writes vals from start, all or nothing.
func (m *Memory) SetBytes(start uint16, vals []uint8) error {
	if err := m.check(KindByte, start, len(vals)); err != nil {
		return err
	}
	copy(m.bytes[start:], vals)
	return nil
}

// Words copies count word variables from start.
func (m *Memory) Words(start uint16, count int) ([]uint16, error) {
	if err := m.check(KindWord, start, count); err != nil {
		return nil, err
	}
	return append([]uint16(nil), m.words[start:int(start)+count]...), nil
}

// SetWords writes vals from start, all or nothing.
func (m *Memory) SetWords(start uint16, vals []uint16) error {
	if err := m.check(KindWord, start, len(vals)); err != nil {
		return err
	}
	copy(m.words[start:], vals)
	return nil
}

// Colors copies count color variables from start.
func (m *Memory) Colors(start uint16, count int) ([]uint32, error) {
	if err := m.check(KindColor, start, count); err != nil {
		return nil, err
	}
	return append([]uint32(nil), m.colors[start:int(start)+count]...), nil
}

// SetColors writes vals from start, all or nothing.
func (m *Memory) SetColors(start uint16, vals []uint32) error {
	if err := m.check(KindColor, start, len(vals)); err != nil {
		return err
	}
	copy(m.colors[start:], vals)
	return nil
}

// truncate cuts s at the first NUL and at max bytes.
func truncate(s string, max int) string {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			s = s[:i]
			break
		}
	}
	if len(s) > max {
		s = s[:max]
	}
	return s
}
