package sh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/amulet.go/pkg/link"
	"github.com/robotalks/amulet.go/pkg/transport/pipe"
)

type nullTransport struct{}

func (nullTransport) Write(p []byte) (int, error) { return len(p), nil }
func (nullTransport) AvailableForWrite() int      { return 1024 }
func (nullTransport) Buffered() int               { return 0 }
func (nullTransport) ReadByte() (byte, error)     { return 0, nil }

func TestParseVarArgs(t *testing.T) {
	a, err := parseVarArgs([]string{"word", "0x10", "3"})
	require.NoError(t, err)
	require.Equal(t, link.KindWord, a.kind)
	require.Equal(t, uint16(16), a.loc)
	count, err := a.count()
	require.NoError(t, err)
	require.Equal(t, 3, count)

	for _, args := range [][]string{
		{"word"},
		{"float", "1"},
		{"byte", "70000"},
	} {
		_, err := parseVarArgs(args)
		require.Error(t, err, "%v", args)
	}
	_, err = varArgs{rest: []string{"0"}}.count()
	require.Error(t, err)
}

func TestParseNumber(t *testing.T) {
	v, err := parseNumber(link.KindByte, "0xff")
	require.NoError(t, err)
	require.Equal(t, uint32(0xff), v)
	_, err = parseNumber(link.KindByte, "256")
	require.Error(t, err)
	v, err = parseNumber(link.KindColor, "4294967295")
	require.NoError(t, err)
	require.Equal(t, uint32(0xffffffff), v)
}

func TestReadMirror(t *testing.T) {
	e, err := link.New(nullTransport{}, link.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, e.Memory().SetBytes(1, []uint8{7, 8}))
	require.NoError(t, e.Memory().SetString(0, "x"))

	v, err := readMirror(e, link.KindByte, 1, 2)
	require.NoError(t, err)
	require.Equal(t, []uint32{7, 8}, v)
	v, err = readMirror(e, link.KindByte, 2, 1)
	require.NoError(t, err)
	require.Equal(t, uint32(8), v)
	v, err = readMirror(e, link.KindString, 0, 1)
	require.NoError(t, err)
	require.Equal(t, "x", v)
	_, err = readMirror(e, link.KindWord, 255, 2)
	require.ErrorIs(t, err, link.ErrOutOfRange)
}

func TestWritePost(t *testing.T) {
	local, remote := pipe.New(64)
	e, err := link.New(local, link.DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, write(e, varArgs{kind: link.KindWord, loc: 2, rest: []string{"0x1234"}}, true))
	require.Equal(t, uint16(0x1234), e.Memory().Word(2))
	require.Equal(t, 7, remote.Buffered())

	require.NoError(t, write(e, varArgs{kind: link.KindString, loc: 1, rest: []string{"two", "words"}}, true))
	require.Equal(t, "two words", e.Memory().String(1))

	require.Error(t, write(e, varArgs{kind: link.KindByte, loc: 1, rest: []string{"1", "2"}}, true))
	require.Error(t, write(e, varArgs{kind: link.KindByte, loc: 1}, true))
	require.Error(t, write(e, varArgs{kind: link.KindByte, loc: 1, rest: []string{"300"}}, true))
}
