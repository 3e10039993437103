package wire

import (
	"errors"

	"github.com/pcie-go/pcie-go/internal/crc"
	"github.com/pcie-go/pcie-go/internal/protocol"
)

var (
	// ErrTLPTooShort is returned when a framed data packet is shorter than
	// its sequence prefix and CRC.
	ErrTLPTooShort = errors.New("framed TLP too short")
	// ErrTLPCRC is returned when a data packet fails its link CRC check.
	ErrTLPCRC = errors.New("bad LCRC")
)

// A FramedTLP is a decoded data packet: its link sequence number and the
// opaque transaction layer payload.
type FramedTLP struct {
	SeqNum  protocol.SequenceNumber
	Payload []byte
}

// AppendFramedTLP appends the on-wire form of a data packet to b: a 2-byte
// sequence prefix (high nibble first), the payload, and the 4-byte link CRC
// over the payload, low byte first.
func AppendFramedTLP(b []byte, seq protocol.SequenceNumber, payload []byte) ([]byte, error) {
	c, err := crc.CRC32(payload)
	if err != nil {
		return nil, err
	}
	b = append(b, byte(seq>>8)&0x0F, byte(seq))
	b = append(b, payload...)
	return append(b, byte(c), byte(c>>8), byte(c>>16), byte(c>>24)), nil
}

// ParseFramedTLP decodes a received data packet and verifies its link CRC by
// full recomputation over the payload bytes.
func ParseFramedTLP(b []byte) (FramedTLP, error) {
	if len(b) < protocol.TLPSeqLen+1+protocol.LCRCLen {
		return FramedTLP{}, ErrTLPTooShort
	}
	seq := protocol.SequenceNumber(b[0]&0x0F)<<8 | protocol.SequenceNumber(b[1])
	payload := b[protocol.TLPSeqLen : len(b)-protocol.LCRCLen]
	tail := b[len(b)-protocol.LCRCLen:]
	got := uint32(tail[0]) | uint32(tail[1])<<8 | uint32(tail[2])<<16 | uint32(tail[3])<<24
	if !crc.Verify32(payload, got) {
		return FramedTLP{}, ErrTLPCRC
	}
	return FramedTLP{SeqNum: seq, Payload: payload}, nil
}
