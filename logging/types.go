package logging

type PacketDropReason uint8

const (
	// PacketDropLCRCError is used when a TLP is dropped because its LCRC check failed
	PacketDropLCRCError PacketDropReason = iota
	// PacketDropCRCError is used when a DLLP is dropped because its CRC-16 check failed
	PacketDropCRCError
	// PacketDropDuplicate is used when a TLP with an already delivered sequence number is received
	PacketDropDuplicate
	// PacketDropUnexpectedSequence is used when a TLP arrives out of sequence
	PacketDropUnexpectedSequence
	// PacketDropLinkDown is used when a packet arrives while the link is not in L0
	PacketDropLinkDown
	// PacketDropMalformed is used when a packet is too short to parse
	PacketDropMalformed
)

func (r PacketDropReason) String() string {
	switch r {
	case PacketDropLCRCError:
		return "lcrc_error"
	case PacketDropCRCError:
		return "crc_error"
	case PacketDropDuplicate:
		return "duplicate"
	case PacketDropUnexpectedSequence:
		return "unexpected_sequence"
	case PacketDropLinkDown:
		return "link_down"
	case PacketDropMalformed:
		return "malformed"
	default:
		panic("unknown packet drop reason")
	}
}
