// Package wire implements the two on-wire packet formats of the link layer:
// the 8-byte control packet (DLLP) and the framed data packet (sequence
// number prefix, payload, link CRC).
package wire

import (
	"errors"

	"github.com/pcie-go/pcie-go/internal/crc"
	"github.com/pcie-go/pcie-go/internal/protocol"
)

var (
	// ErrDLLPLength is returned when a control packet is not 8 bytes.
	ErrDLLPLength = errors.New("DLLP must be 8 bytes")
	// ErrDLLPCRC is returned when a control packet fails its CRC check.
	ErrDLLPCRC = errors.New("bad DLLP CRC")
)

// A DLLP is a decoded control packet.
type DLLP struct {
	Type   protocol.DLLPType
	SeqNum protocol.SequenceNumber
}

// AppendDLLP appends the 8-byte encoding of a control packet to b:
// byte 0 carries the type in the high nibble, bytes 1-2 the 12-bit sequence
// number (low byte first, high nibble in byte 2), bytes 3-5 are reserved, and
// bytes 6-7 hold the CRC-16 over bytes 0-5, low byte first.
func AppendDLLP(b []byte, typ protocol.DLLPType, seq protocol.SequenceNumber) []byte {
	data := [protocol.DLLPDataLen]byte{
		byte(typ) << 4,
		byte(seq),
		byte(seq>>8) & 0x0F,
		0, 0, 0,
	}
	c, _ := crc.CRC16(data[:]) // length is fixed, cannot fail
	b = append(b, data[:]...)
	return append(b, byte(c), byte(c>>8))
}

// AppendAck appends an ACK carrying the acknowledged sequence number.
func AppendAck(b []byte, seq protocol.SequenceNumber) []byte {
	return AppendDLLP(b, protocol.DLLPTypeAck, seq)
}

// AppendNak appends a NAK carrying the last known-good sequence number.
func AppendNak(b []byte, seq protocol.SequenceNumber) []byte {
	return AppendDLLP(b, protocol.DLLPTypeNak, seq)
}

// ParseDLLP decodes a received control packet and verifies its CRC.
func ParseDLLP(b []byte) (DLLP, error) {
	if len(b) != protocol.DLLPLen {
		return DLLP{}, ErrDLLPLength
	}
	got := uint16(b[6]) | uint16(b[7])<<8
	if !crc.Verify16(b[:protocol.DLLPDataLen], got) {
		return DLLP{}, ErrDLLPCRC
	}
	return DLLP{
		Type:   protocol.DLLPType(b[0] >> 4),
		SeqNum: protocol.SequenceNumber(b[1]) | protocol.SequenceNumber(b[2]&0x0F)<<8,
	}, nil
}
