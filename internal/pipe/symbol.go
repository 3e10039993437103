// Package pipe converts between packets and the 8-bit symbol stream exchanged
// with the physical layer. Packets are framed by K-character delimiters;
// training and clock compensation use ordered sets of K-characters.
package pipe

import "fmt"

// A Symbol is the unit exchanged with the physical layer each tick: an 8-bit
// value plus a flag marking it as a control character (K-character).
type Symbol struct {
	Data byte
	Ctrl bool
}

func (s Symbol) String() string {
	if s.Ctrl {
		return fmt.Sprintf("K%#02x", s.Data)
	}
	return fmt.Sprintf("D%#02x", s.Data)
}

// K-character codes (8b/10b special codes).
const (
	KCom byte = 0xBC // K28.5 comma, ordered set alignment
	KSkp byte = 0x1C // K28.0 skip, clock compensation filler
	KFts byte = 0x3C // K28.1 fast training sequence
	KPad byte = 0xF7 // K23.7 pad
	KStp byte = 0xFB // K27.7 start of data packet
	KSdp byte = 0x5C // K28.2 start of control packet
	KEnd byte = 0xFD // K29.7 end of packet
	KEdb byte = 0xFE // K30.7 end of nullified (bad) packet
)

// Training sequence identifier symbols carried as the last symbol of a
// training ordered set.
const (
	TS1ID byte = 0x4A
	TS2ID byte = 0x45
)

// A PacketKind distinguishes data packets from control packets on the wire.
type PacketKind uint8

const (
	KindTLP PacketKind = iota
	KindDLLP
)

func (k PacketKind) String() string {
	switch k {
	case KindTLP:
		return "TLP"
	case KindDLLP:
		return "DLLP"
	default:
		return fmt.Sprintf("unknown kind (%d)", uint8(k))
	}
}

func (k PacketKind) startDelimiter() byte {
	if k == KindDLLP {
		return KSdp
	}
	return KStp
}
