package link

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type parseOutcome struct {
	frames [][]byte
	errs   []error
}

func parseAll(p *Parser, in []byte) parseOutcome {
	var out parseOutcome
	for _, b := range in {
		r := p.Parse(b)
		if r.Err != nil {
			out.errs = append(out.errs, r.Err)
		}
		if r.Frame != nil {
			out.frames = append(out.frames, r.Frame.Bytes)
		}
	}
	return out
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestParserFrames(t *testing.T) {
	cfg := DefaultConfig()
	cmd := &Encoder{Address: cfg.HostAddress, AddrWidth: 1, MaxString: cfg.MaxStringLength}
	rpl := &Encoder{Address: cfg.PeerAddress, AddrWidth: 1, MaxString: cfg.MaxStringLength}

	testCases := []struct {
		name  string
		frame []byte
		reply bool
	}{
		{"get byte command", cmd.Location(OpGetByte, 7), false},
		{"get label command", cmd.Location(OpGetLabel, 7), false},
		{"get words command", cmd.ArrayRequest(OpGetWords, 2, 3), false},
		{"set byte command", cmd.Byte(OpSetByte, 1, 0x30), false},
		{"set word command", cmd.Word(OpSetWord, 1, 0x3132), false},
		{"set color command", cmd.Color(OpSetColor, 1, 0x01020304), false},
		{"set string command", cmd.String(OpSetString, 0, "hi"), false},
		{"set empty string command", cmd.String(OpSetString, 0, ""), false},
		{"set colors command", cmd.Colors(OpSetColors, 0, []uint32{1, 2}), false},
		{"set empty bytes command", cmd.Bytes(OpSetBytes, 0, nil), false},
		{"invoke rpc command", cmd.Index(OpInvokeRPC, 3), false},
		{"invoke script command", cmd.Name(OpInvokeScript, "ping"), false},
		{"get byte reply", rpl.Byte(OpGetByte, 7, 0x20), true},
		{"get word reply", rpl.Word(OpGetWord, 7, 0x2021), true},
		{"get color reply", rpl.Color(OpGetColor, 7, 0x20212223), true},
		{"get string reply", rpl.String(OpGetString, 7, "abc"), true},
		{"get bytes reply", rpl.Bytes(OpGetBytes, 0, []uint8{0, 1, 2}), true},
		{"get words reply", rpl.Words(OpGetWords, 0, []uint16{0x1234, 0xabcd}), true},
		{"set ack", rpl.Ack(OpSetWord), true},
		{"set array ack", rpl.Ack(OpSetColors), true},
		{"rpc ack", rpl.Ack(OpInvokeRPC), true},
		{"script reply", rpl.Int32(OpInvokeScript, -1), true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewParser(cfg)
			for n, b := range tc.frame {
				r := p.Parse(b)
				require.NoError(t, r.Err)
				if n < len(tc.frame)-1 {
					require.Nil(t, r.Frame, "early frame at %d", n)
					continue
				}
				require.NotNil(t, r.Frame)
				require.Equal(t, tc.frame, r.Frame.Bytes)
				require.Equal(t, tc.reply, r.Frame.Reply)
				require.True(t, CheckCRC(r.Frame.Bytes))
			}
		})
	}
}

func TestParserExtendedAddressing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extended = true
	cmd := &Encoder{Address: cfg.HostAddress, AddrWidth: 2, MaxString: cfg.MaxStringLength}
	frame := cmd.Words(OpSetWords, 0x0102, []uint16{0xaabb})
	require.Equal(t, []byte{0x02, 0x35, 0x01, 0x02, 0x01, 0xaa, 0xbb}, frame[:len(frame)-2])
	out := parseAll(NewParser(cfg), frame)
	require.Empty(t, out.errs)
	require.Equal(t, [][]byte{frame}, out.frames)
}

func TestParserResync(t *testing.T) {
	cfg := DefaultConfig()
	cmd := &Encoder{Address: cfg.HostAddress, AddrWidth: 1, MaxString: cfg.MaxStringLength}
	frame := cmd.Word(OpSetWord, 3, 0xbeef)

	t.Run("noise before frame", func(t *testing.T) {
		out := parseAll(NewParser(cfg), concat([]byte{0x55, 0x00, 0xff}, frame))
		require.Empty(t, out.errs)
		require.Equal(t, [][]byte{frame}, out.frames)
	})
	t.Run("invalid opcode", func(t *testing.T) {
		out := parseAll(NewParser(cfg), concat([]byte{cfg.HostAddress, 0x99}, frame))
		require.Len(t, out.errs, 1)
		require.ErrorIs(t, out.errs[0], ErrInvalidOpcode)
		require.Equal(t, [][]byte{frame}, out.frames)
	})
	t.Run("label reply", func(t *testing.T) {
		out := parseAll(NewParser(cfg), concat([]byte{cfg.PeerAddress, byte(OpGetLabel)}, frame))
		require.Len(t, out.errs, 1)
		require.Equal(t, [][]byte{frame}, out.frames)
	})
	t.Run("address as opcode", func(t *testing.T) {
		out := parseAll(NewParser(cfg), concat([]byte{cfg.PeerAddress}, frame))
		require.Len(t, out.errs, 1)
		require.Equal(t, [][]byte{frame}, out.frames)
	})
	t.Run("overflow", func(t *testing.T) {
		small := cfg
		small.RxBufferSize = 8
		long := cmd.String(OpSetString, 0, "0123456789")
		// without NUL and CRC so no trailing byte looks like an address
		out := parseAll(NewParser(small), concat(long[:len(long)-3], frame))
		require.Len(t, out.errs, 1)
		require.ErrorIs(t, out.errs[0], ErrFrameOverflow)
		require.Equal(t, [][]byte{frame}, out.frames)
	})
	t.Run("bad crc still framed", func(t *testing.T) {
		bad := append([]byte(nil), frame...)
		bad[len(bad)-1] ^= 0xff
		out := parseAll(NewParser(cfg), concat(bad, frame))
		require.Empty(t, out.errs)
		require.Len(t, out.frames, 2)
		require.False(t, CheckCRC(out.frames[0]))
		require.True(t, CheckCRC(out.frames[1]))
	})
}
