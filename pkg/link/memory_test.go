package link

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestMemory() (*Memory, *errorCounter) {
	cfg := DefaultConfig()
	cfg.Bytes, cfg.Words, cfg.Colors, cfg.Strings = 4, 4, 2, 2
	cfg.MaxStringLength = 5
	errs := &errorCounter{}
	return newMemory(cfg, errs), errs
}

func TestMemoryScalars(t *testing.T) {
	m, errs := newTestMemory()
	require.NoError(t, m.SetByte(3, 0xab))
	require.Equal(t, uint8(0xab), m.Byte(3))
	require.NoError(t, m.SetWord(0, 0x1234))
	require.Equal(t, uint16(0x1234), m.Word(0))
	require.NoError(t, m.SetColor(1, 0xdeadbeef))
	require.Equal(t, uint32(0xdeadbeef), m.Color(1))
	require.NoError(t, m.SetString(1, "hello world"))
	require.Equal(t, "hello", m.String(1))
	require.NoError(t, m.SetString(0, "a\x00b"))
	require.Equal(t, "a", m.String(0))
	require.Zero(t, errs.take())

	require.ErrorIs(t, m.SetByte(4, 1), ErrOutOfRange)
	require.Zero(t, m.Word(4))
	require.Zero(t, m.Color(2))
	require.Empty(t, m.String(2))
	require.Equal(t, uint32(4), errs.take())
	require.Zero(t, errs.take())
}

func TestMemoryArrays(t *testing.T) {
	testCases := []struct {
		name  string
		start uint16
		vals  []uint16
		ok    bool
	}{
		{"exact fit", 2, []uint16{1, 2}, true},
		{"whole table", 0, []uint16{1, 2, 3, 4}, true},
		{"empty at end", 4, nil, true},
		{"one past end", 3, []uint16{1, 2}, false},
		{"start past end", 5, []uint16{1}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, errs := newTestMemory()
			err := m.SetWords(tc.start, tc.vals)
			if !tc.ok {
				require.ErrorIs(t, err, ErrOutOfRange)
				require.Equal(t, uint32(1), errs.take())
				require.Equal(t, []uint16{0, 0, 0, 0}, m.words)
				return
			}
			require.NoError(t, err)
			vals, err := m.Words(tc.start, len(tc.vals))
			require.NoError(t, err)
			require.Equal(t, len(tc.vals), len(vals))
			for n := range tc.vals {
				require.Equal(t, tc.vals[n], vals[n])
			}
		})
	}
}

func TestMemoryCopies(t *testing.T) {
	m, _ := newTestMemory()
	require.NoError(t, m.SetBytes(0, []uint8{1, 2, 3}))
	vals, err := m.Bytes(0, 3)
	require.NoError(t, err)
	vals[0] = 9
	require.Equal(t, uint8(1), m.Byte(0))
	require.NoError(t, m.SetColors(0, []uint32{0xff0000ff, 0x00ff00ff}))
	colors, err := m.Colors(1, 1)
	require.NoError(t, err)
	require.Equal(t, []uint32{0x00ff00ff}, colors)
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindByte, KindWord, KindColor, KindString} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, parsed)
	}
	_, err := ParseKind("float")
	require.Error(t, err)
}
