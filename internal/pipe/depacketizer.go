package pipe

// RxEvents reports what a received symbol completed: at most one of a
// finished packet or a recognized ordered set per tick.
type RxEvents struct {
	Packet     []byte
	PacketKind PacketKind
	HasPacket  bool

	TS1Seen bool
	TS2Seen bool
	RateID  byte

	SkipSeen bool
}

type deframerState uint8

const (
	deframerIdle deframerState = iota
	deframerAccumulating
	deframerOrderedSet
)

// A Depacketizer reassembles packets from the receive symbol stream. It waits
// for a start delimiter, accumulates data symbols, and delivers the packet on
// the end delimiter. Control symbols other than the delimiters are
// transparent filler inside a packet. A packet whose end delimiter never
// arrives is never delivered.
//
// Outside of packets it recognizes training and SKP ordered sets and reports
// them, which is what drives the LTSSM.
type Depacketizer struct {
	state deframerState
	kind  PacketKind
	buf   []byte

	osBuf [3]Symbol
	osLen int
}

// NewDepacketizer creates an idle depacketizer.
func NewDepacketizer() *Depacketizer {
	return &Depacketizer{}
}

// Reset returns the depacketizer to idle, discarding any partial packet.
func (d *Depacketizer) Reset() {
	d.state = deframerIdle
	d.buf = d.buf[:0]
	d.osLen = 0
}

// Feed consumes one received symbol and reports anything it completed.
func (d *Depacketizer) Feed(sym Symbol) RxEvents {
	switch d.state {
	case deframerIdle:
		return d.feedIdle(sym)
	case deframerOrderedSet:
		return d.feedOrderedSet(sym)
	default:
		return d.feedAccumulating(sym)
	}
}

func (d *Depacketizer) feedIdle(sym Symbol) RxEvents {
	if !sym.Ctrl {
		return RxEvents{} // logical idle
	}
	switch sym.Data {
	case KStp:
		d.state = deframerAccumulating
		d.kind = KindTLP
		d.buf = d.buf[:0]
	case KSdp:
		d.state = deframerAccumulating
		d.kind = KindDLLP
		d.buf = d.buf[:0]
	case KCom:
		d.state = deframerOrderedSet
		d.osLen = 0
	}
	// other K-characters (stray SKP, FTS) are ignored
	return RxEvents{}
}

func (d *Depacketizer) feedAccumulating(sym Symbol) RxEvents {
	if !sym.Ctrl {
		d.buf = append(d.buf, sym.Data)
		return RxEvents{}
	}
	switch sym.Data {
	case KEnd:
		d.state = deframerIdle
		packet := append([]byte{}, d.buf...)
		d.buf = d.buf[:0]
		return RxEvents{Packet: packet, PacketKind: d.kind, HasPacket: true}
	case KEdb:
		// nullified packet, drop silently
		d.state = deframerIdle
		d.buf = d.buf[:0]
		return RxEvents{}
	default:
		// SKP, COM and friends are clock compensation filler, not data
		return RxEvents{}
	}
}

// feedOrderedSet collects the three symbols following a comma. An SKP in the
// first position marks a SKP ordered set; otherwise the set is lane number,
// rate identifier, TS identifier.
func (d *Depacketizer) feedOrderedSet(sym Symbol) RxEvents {
	d.osBuf[d.osLen] = sym
	d.osLen++

	if d.osLen == 1 && sym.Ctrl && sym.Data == KSkp {
		// still two SKP symbols to swallow
		return RxEvents{}
	}
	if d.osLen < 3 {
		return RxEvents{}
	}

	d.state = deframerIdle
	d.osLen = 0

	if d.osBuf[0].Ctrl && d.osBuf[0].Data == KSkp {
		return RxEvents{SkipSeen: true}
	}

	rate := d.osBuf[1].Data
	switch d.osBuf[2].Data {
	case TS1ID:
		return RxEvents{TS1Seen: true, RateID: rate}
	case TS2ID:
		return RxEvents{TS2Seen: true, RateID: rate}
	}
	return RxEvents{}
}
