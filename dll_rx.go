package pcie

import (
	"errors"

	"github.com/pcie-go/pcie-go/internal/ackhandler"
	"github.com/pcie-go/pcie-go/internal/pipe"
	"github.com/pcie-go/pcie-go/internal/protocol"
	"github.com/pcie-go/pcie-go/internal/utils"
	"github.com/pcie-go/pcie-go/internal/wire"
	"github.com/pcie-go/pcie-go/logging"
)

// The dllRX engine owns the receive half of the ACK/NAK protocol: CRC
// verification, sequence checking, ACK/NAK generation, and delivery to the
// transaction layer.
type dllRX struct {
	seq *ackhandler.SequenceManager
	tx  *dllTX

	delivered [][]byte

	tracer logging.Tracer
}

func newDLLRX(seq *ackhandler.SequenceManager, tx *dllTX, tracer logging.Tracer) *dllRX {
	return &dllRX{seq: seq, tx: tx, tracer: tracer}
}

func (r *dllRX) handlePacket(kind pipe.PacketKind, data []byte) {
	switch kind {
	case pipe.KindDLLP:
		r.handleDLLP(data)
	case pipe.KindTLP:
		r.handleTLP(data)
	}
}

// handleDLLP parses a control packet and feeds ACK / NAK state to the
// transmit engine. Corrupted control packets are dropped without a reply,
// the replay timer covers the loss.
func (r *dllRX) handleDLLP(data []byte) {
	d, err := wire.ParseDLLP(data)
	if err != nil {
		reason := logging.PacketDropCRCError
		if errors.Is(err, wire.ErrDLLPLength) {
			reason = logging.PacketDropMalformed
		}
		utils.Debugf("dropping control packet: %s", err)
		r.tracer.DroppedDLLP(reason)
		return
	}
	r.tracer.ReceivedDLLP(d.Type, d.SeqNum)
	switch d.Type {
	case protocol.DLLPTypeAck:
		r.tx.handleAck(d.SeqNum)
	case protocol.DLLPTypeNak:
		r.tx.handleNak(d.SeqNum)
	}
}

func (r *dllRX) handleTLP(data []byte) {
	t, err := wire.ParseFramedTLP(data)
	if err != nil {
		reason := logging.PacketDropLCRCError
		if errors.Is(err, wire.ErrTLPTooShort) {
			reason = logging.PacketDropMalformed
		}
		utils.Debugf("dropping data packet: %s", err)
		r.tx.scheduleDLLP(protocol.DLLPTypeNak, r.lastGood())
		r.tracer.DroppedTLP(0, len(data), reason)
		return
	}
	r.tracer.ReceivedTLP(t.SeqNum, len(t.Payload))
	if seqBehind(t.SeqNum, r.seq.RXExpected()) {
		// a replayed packet that was already accepted: acknowledge it again,
		// never deliver it twice
		r.tx.scheduleDLLP(protocol.DLLPTypeAck, t.SeqNum)
		r.tracer.DroppedTLP(t.SeqNum, len(t.Payload), logging.PacketDropDuplicate)
		return
	}
	if r.seq.CheckRX(t.SeqNum) {
		r.delivered = append(r.delivered, t.Payload)
		r.tx.scheduleDLLP(protocol.DLLPTypeAck, t.SeqNum)
		r.tracer.DeliveredTLP(t.SeqNum, len(t.Payload))
		return
	}
	r.tx.scheduleDLLP(protocol.DLLPTypeNak, r.lastGood())
	r.tracer.DroppedTLP(t.SeqNum, len(t.Payload), logging.PacketDropUnexpectedSequence)
}

// lastGood is the sequence number reported in outgoing NAKs. Before the
// first accepted packet it is the expected number minus one, so the partner
// replays from the start.
func (r *dllRX) lastGood() protocol.SequenceNumber {
	if seq, ok := r.seq.RXLastGood(); ok {
		return seq
	}
	return (r.seq.RXExpected() + protocol.SequenceNumberMax) & protocol.SequenceNumberMax
}

func (r *dllRX) pop() ([]byte, bool) {
	if len(r.delivered) == 0 {
		return nil, false
	}
	p := r.delivered[0]
	r.delivered = r.delivered[1:]
	return p, true
}

func (r *dllRX) reset() {
	r.delivered = nil
}

// seqBehind reports whether s falls in the half-window behind expected,
// which marks a replay of an already accepted packet rather than a gap.
func seqBehind(s, expected protocol.SequenceNumber) bool {
	return (expected-s-1)&protocol.SequenceNumberMax < 2048
}
