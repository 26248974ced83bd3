package link

import "encoding/binary"

const (
	crcSeed uint16 = 0xffff
	crcPoly uint16 = 0xa001
)

// CRC16 computes CRC-16/MODBUS over data.
func CRC16(data []byte) uint16 {
	crc := crcSeed
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = crc>>1 ^ crcPoly
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// AppendCRC appends the CRC of frame, low byte first.
func AppendCRC(frame []byte) []byte {
	var crc [2]byte
	binary.LittleEndian.PutUint16(crc[:], CRC16(frame))
	return append(frame, crc[:]...)
}

// CheckCRC verifies the trailing two CRC bytes of a complete frame.
func CheckCRC(frame []byte) bool {
	n := len(frame) - 2
	if n < 0 {
		return false
	}
	return CRC16(frame[:n]) == binary.LittleEndian.Uint16(frame[n:])
}
