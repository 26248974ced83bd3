package link

import "fmt"

// Opcode is the second byte of every frame.
type Opcode byte

// Opcodes.
const (
	OpGetByte   Opcode = 0x20
	OpGetWord   Opcode = 0x21
	OpGetString Opcode = 0x22
	OpGetColor  Opcode = 0x23
	OpGetBytes  Opcode = 0x24
	OpGetWords  Opcode = 0x25
	OpGetColors Opcode = 0x26
	OpGetRPC    Opcode = 0x27
	OpGetLabel  Opcode = 0x28

	OpSetByte   Opcode = 0x30
	OpSetWord   Opcode = 0x31
	OpSetString Opcode = 0x32
	OpSetColor  Opcode = 0x33
	OpSetBytes  Opcode = 0x34
	OpSetWords  Opcode = 0x35
	OpSetColors Opcode = 0x36
	OpInvokeRPC Opcode = 0x37

	OpInvokeScript Opcode = 0x52
)

var opcodeNames = map[Opcode]string{
	OpGetByte:      "GET_BYTE",
	OpGetWord:      "GET_WORD",
	OpGetString:    "GET_STRING",
	OpGetColor:     "GET_COLOR",
	OpGetBytes:     "GET_BYTE_ARRAY",
	OpGetWords:     "GET_WORD_ARRAY",
	OpGetColors:    "GET_COLOR_ARRAY",
	OpGetRPC:       "GET_RPC",
	OpGetLabel:     "GET_LABEL",
	OpSetByte:      "SET_BYTE",
	OpSetWord:      "SET_WORD",
	OpSetString:    "SET_STRING",
	OpSetColor:     "SET_COLOR",
	OpSetBytes:     "SET_BYTE_ARRAY",
	OpSetWords:     "SET_WORD_ARRAY",
	OpSetColors:    "SET_COLOR_ARRAY",
	OpInvokeRPC:    "INVOKE_RPC",
	OpInvokeScript: "INVOKE_SCRIPT",
}

// String implements fmt.Stringer.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP_%02X", byte(op))
}

// elemSize is the wire size of one array element.
func (op Opcode) elemSize() int {
	switch op {
	case OpGetBytes, OpSetBytes:
		return 1
	case OpGetWords, OpSetWords:
		return 2
	case OpGetColors, OpSetColors:
		return 4
	}
	return 0
}

// Payload length sentinels, all other values are the number of bytes
// between the opcode and the CRC.
const (
	lengthInvalid = -1 // opcode not valid for the role
	lengthArray   = -2 // location, count, count elements
	lengthString  = -3 // location, NUL terminated string
	lengthName    = -4 // NUL terminated name without location
)

// payloadLength returns how many bytes follow the opcode before the CRC.
// reply selects the table for frames answering our own requests.
func payloadLength(op Opcode, reply bool, addrWidth int) int {
	if reply {
		switch op {
		case OpGetByte:
			return addrWidth + 1
		case OpGetWord:
			return addrWidth + 2
		case OpGetColor:
			return addrWidth + 4
		case OpGetString:
			return lengthString
		case OpGetBytes, OpGetWords, OpGetColors:
			return lengthArray
		case OpSetByte, OpSetWord, OpSetString, OpSetColor,
			OpSetBytes, OpSetWords, OpSetColors, OpInvokeRPC:
			return 0
		case OpInvokeScript:
			return 4
		}
		return lengthInvalid
	}
	switch op {
	case OpGetByte, OpGetWord, OpGetString, OpGetColor, OpGetLabel:
		return addrWidth
	case OpGetBytes, OpGetWords, OpGetColors:
		return addrWidth + 1
	case OpSetByte:
		return addrWidth + 1
	case OpSetWord:
		return addrWidth + 2
	case OpSetColor:
		return addrWidth + 4
	case OpSetString:
		return lengthString
	case OpSetBytes, OpSetWords, OpSetColors:
		return lengthArray
	case OpInvokeRPC:
		return 1
	case OpInvokeScript:
		return lengthName
	}
	return lengthInvalid
}
