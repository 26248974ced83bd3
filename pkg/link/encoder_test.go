package link

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncoderLayout(t *testing.T) {
	e := &Encoder{Address: 0x01, AddrWidth: 1, MaxString: 4}
	testCases := []struct {
		name   string
		frame  []byte
		expect []byte
	}{
		{"get", e.Location(OpGetColor, 9), []byte{0x01, 0x23, 0x09}},
		{"get array", e.ArrayRequest(OpGetBytes, 2, 5), []byte{0x01, 0x24, 0x02, 0x05}},
		{"byte", e.Byte(OpSetByte, 1, 0xfe), []byte{0x01, 0x30, 0x01, 0xfe}},
		{"word", e.Word(OpSetWord, 1, 0x1234), []byte{0x01, 0x31, 0x01, 0x12, 0x34}},
		{"color", e.Color(OpSetColor, 1, 0x11223344), []byte{0x01, 0x33, 0x01, 0x11, 0x22, 0x33, 0x44}},
		{"string", e.String(OpSetString, 0, "hi"), []byte{0x01, 0x32, 0x00, 'h', 'i', 0x00}},
		{"string truncated", e.String(OpSetString, 0, "hello"), []byte{0x01, 0x32, 0x00, 'h', 'e', 'l', 'l', 0x00}},
		{"words", e.Words(OpSetWords, 3, []uint16{0x0102, 0x0304}), []byte{0x01, 0x35, 0x03, 0x02, 0x01, 0x02, 0x03, 0x04}},
		{"rpc", e.Index(OpInvokeRPC, 7), []byte{0x01, 0x37, 0x07}},
		{"script", e.Name(OpInvokeScript, "go"), []byte{0x01, 0x52, 'g', 'o', 0x00}},
		{"script reply", e.Int32(OpInvokeScript, InvalidScriptReply), []byte{0x01, 0x52, 0x80, 0x00, 0x00, 0x00}},
		{"ack", e.Ack(OpSetBytes), []byte{0x01, 0x34}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, AppendCRC(tc.expect), tc.frame)
		})
	}
}

func TestOpcodeString(t *testing.T) {
	require.Equal(t, "SET_WORD_ARRAY", OpSetWords.String())
	require.Equal(t, "OP_99", Opcode(0x99).String())
}
