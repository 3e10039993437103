// Package protocol contains the constants and basic types shared between the
// layers of the link engine.
package protocol

import "fmt"

// A SequenceNumber is the 12-bit TLP sequence number used by the ACK/NAK
// protocol. Values wrap modulo 4096.
type SequenceNumber uint16

// SequenceNumberMax is the largest valid sequence number.
const SequenceNumberMax SequenceNumber = 4095

// Next returns the sequence number following s, wrapping at 4096.
func (s SequenceNumber) Next() SequenceNumber {
	return (s + 1) & SequenceNumberMax
}

func (s SequenceNumber) String() string {
	return fmt.Sprintf("%d", uint16(s))
}

// A Speed is a negotiated link speed class.
type Speed uint8

const (
	// Gen1 is 2.5 GT/s signaling.
	Gen1 Speed = 1
	// Gen2 is 5.0 GT/s signaling.
	Gen2 Speed = 2
)

func (s Speed) String() string {
	switch s {
	case Gen1:
		return "Gen1"
	case Gen2:
		return "Gen2"
	default:
		return fmt.Sprintf("unknown speed (%d)", uint8(s))
	}
}

// DLLP geometry. A DLLP is always 8 bytes: 6 bytes of data followed by a
// 16-bit CRC.
const (
	DLLPLen     = 8
	DLLPDataLen = 6
)

// DLLPType is the 4-bit type field of a control packet.
type DLLPType uint8

const (
	DLLPTypeAck DLLPType = 0b0000
	DLLPTypeNak DLLPType = 0b0001
)

func (t DLLPType) String() string {
	switch t {
	case DLLPTypeAck:
		return "ACK"
	case DLLPTypeNak:
		return "NAK"
	default:
		return fmt.Sprintf("reserved (%#x)", uint8(t))
	}
}

// LCRCLen is the length of the 32-bit link CRC appended to every data packet.
const LCRCLen = 4

// TLPSeqLen is the length of the sequence number prefix of a framed data
// packet.
const TLPSeqLen = 2
