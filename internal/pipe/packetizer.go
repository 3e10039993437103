package pipe

// TxControl carries the LTSSM outputs that gate what the packetizer may put
// on the wire during a tick.
type TxControl struct {
	ElecIdle bool
	SendTS1  bool
	SendTS2  bool
	SendFTS  bool
	LinkUp   bool
	RateID   byte
}

// A Packetizer serializes packets into the transmit symbol stream, one symbol
// per tick: a start delimiter, the packet bytes in order, an end delimiter.
// When no packet is pending it emits training sets, SKP ordered sets, or
// logical idle as directed by the link state.
type Packetizer struct {
	packet  []byte
	kind    PacketKind
	pos     int // -1: start delimiter not yet sent; len(packet): end delimiter
	sending bool

	osPos   int // position inside a training or SKP ordered set
	inSkip  bool
	skpLeft int

	skipInterval int
	sinceSkip    int
}

// NewPacketizer creates a packetizer inserting an SKP ordered set every
// skipInterval symbols of link-up traffic. A zero interval disables SKP
// insertion.
func NewPacketizer(skipInterval int) *Packetizer {
	return &Packetizer{skipInterval: skipInterval}
}

// Busy reports whether a packet is currently being serialized.
func (p *Packetizer) Busy() bool { return p.sending }

// StartPacket queues a packet for serialization. It must not be called while
// Busy.
func (p *Packetizer) StartPacket(kind PacketKind, data []byte) {
	p.packet = append(p.packet[:0], data...)
	p.kind = kind
	p.pos = -1
	p.sending = true
}

// Reset discards any in-flight packet and ordered set state.
func (p *Packetizer) Reset() {
	p.sending = false
	p.osPos = 0
	p.inSkip = false
	p.skpLeft = 0
	p.sinceSkip = 0
}

// Tick produces the symbol for this tick. The second return is false when the
// transmitter is in electrical idle (no symbol on the wire).
func (p *Packetizer) Tick(ctrl TxControl) (Symbol, bool) {
	if ctrl.ElecIdle {
		// entering electrical idle aborts any partial transmission
		p.Reset()
		return Symbol{}, false
	}

	// every transmitted symbol counts toward the SKP interval, packet bytes
	// included, so sustained traffic cannot starve clock compensation
	if ctrl.LinkUp && p.skipInterval > 0 && !p.inSkip {
		p.sinceSkip++
	}

	if p.inSkip {
		p.skpLeft--
		if p.skpLeft == 0 {
			p.inSkip = false
		}
		return Symbol{Data: KSkp, Ctrl: true}, true
	}

	// a due set goes out at the next packet boundary, ahead of the start
	// delimiter of anything already queued
	if ctrl.LinkUp && p.skipInterval > 0 && p.sinceSkip >= p.skipInterval &&
		(!p.sending || p.pos < 0) {
		p.sinceSkip = 0
		p.inSkip = true
		p.skpLeft = 3
		return Symbol{Data: KCom, Ctrl: true}, true
	}

	if p.sending {
		return p.packetSymbol(), true
	}

	switch {
	case ctrl.SendTS1:
		return p.trainingSymbol(TS1ID, ctrl.RateID), true
	case ctrl.SendTS2:
		return p.trainingSymbol(TS2ID, ctrl.RateID), true
	case ctrl.SendFTS:
		return Symbol{Data: KFts, Ctrl: true}, true
	}

	// logical idle keeps the lane electrically active between packets
	return Symbol{}, true
}

func (p *Packetizer) packetSymbol() Symbol {
	switch {
	case p.pos < 0:
		p.pos = 0
		return Symbol{Data: p.kind.startDelimiter(), Ctrl: true}
	case p.pos < len(p.packet):
		b := p.packet[p.pos]
		p.pos++
		return Symbol{Data: b}
	default:
		p.sending = false
		return Symbol{Data: KEnd, Ctrl: true}
	}
}

// trainingSymbol walks the 4-symbol training ordered set: comma, lane number
// (pad on a single symbol channel), rate identifier, TS identifier.
func (p *Packetizer) trainingSymbol(tsID, rateID byte) Symbol {
	sym := trainingOrderedSet(tsID, rateID)[p.osPos]
	p.osPos = (p.osPos + 1) % 4
	return sym
}

func trainingOrderedSet(tsID, rateID byte) [4]Symbol {
	return [4]Symbol{
		{Data: KCom, Ctrl: true},
		{Data: KPad, Ctrl: true},
		{Data: rateID},
		{Data: tsID},
	}
}
