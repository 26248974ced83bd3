package pipe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPipe(t *testing.T) {
	a, b := New(4)
	require.Equal(t, 4, a.AvailableForWrite())
	n, err := a.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 1, a.AvailableForWrite())
	require.Equal(t, 3, b.Buffered())
	require.Zero(t, a.Buffered())

	_, err = a.Write([]byte{4, 5})
	require.ErrorIs(t, err, ErrFull)
	require.Equal(t, 3, b.Buffered())

	for _, expected := range []byte{1, 2, 3} {
		v, err := b.ReadByte()
		require.NoError(t, err)
		require.Equal(t, expected, v)
	}
	_, err = b.ReadByte()
	require.ErrorIs(t, err, ErrEmpty)
	require.Equal(t, 4, a.AvailableForWrite())
}
