package pcie

import (
	"github.com/pcie-go/pcie-go/internal/ackhandler"
	"github.com/pcie-go/pcie-go/internal/pipe"
	"github.com/pcie-go/pcie-go/internal/protocol"
	"github.com/pcie-go/pcie-go/internal/utils"
	"github.com/pcie-go/pcie-go/internal/wire"
	"github.com/pcie-go/pcie-go/logging"
)

// An outDLLP is a control packet scheduled for transmission.
type outDLLP struct {
	typ protocol.DLLPType
	seq protocol.SequenceNumber
}

// The dllTX engine owns the transmit half of the ACK/NAK protocol: sequence
// allocation, the retry buffer, and the transmit priority order. Control
// packets go out before replayed packets, replayed packets before new
// traffic, so acknowledgment state and packet order are preserved.
type dllTX struct {
	seq   *ackhandler.SequenceManager
	retry *ackhandler.RetryBuffer
	depth int

	queue [][]byte
	dllps []outDLLP

	replayTimeout int
	sinceProgress int

	tracer logging.Tracer
}

func newDLLTX(seq *ackhandler.SequenceManager, retry *ackhandler.RetryBuffer, depth, replayTimeout int, tracer logging.Tracer) *dllTX {
	return &dllTX{
		seq:           seq,
		retry:         retry,
		depth:         depth,
		replayTimeout: replayTimeout,
		tracer:        tracer,
	}
}

// scheduleDLLP queues a control packet. Control packets are never retried,
// the receive engine regenerates them as needed.
func (t *dllTX) scheduleDLLP(typ protocol.DLLPType, seq protocol.SequenceNumber) {
	t.dllps = append(t.dllps, outDLLP{typ: typ, seq: seq})
}

// canEnqueue reports whether a new payload can be accepted without
// overrunning the retry buffer once everything already queued is in flight.
func (t *dllTX) canEnqueue() bool {
	return t.retry.Len()+len(t.queue) < t.depth-1
}

func (t *dllTX) enqueue(payload []byte) error {
	if !t.canEnqueue() {
		return ackhandler.ErrRetryBufferFull
	}
	t.queue = append(t.queue, append([]byte(nil), payload...))
	return nil
}

func (t *dllTX) handleAck(seq protocol.SequenceNumber) {
	t.retry.Ack(seq)
	t.seq.RecordAck(seq)
	t.sinceProgress = 0
	t.tracer.AcknowledgedTLP(seq)
	t.tracer.UpdatedRetryBuffer(t.retry.Len())
}

func (t *dllTX) handleNak(seq protocol.SequenceNumber) {
	t.retry.Nak(seq)
	t.sinceProgress = 0
}

// nextPacket returns the next packet to hand to the framer, already
// serialized, or false when there is nothing to send this tick.
func (t *dllTX) nextPacket() (pipe.PacketKind, []byte, bool) {
	if len(t.dllps) > 0 {
		d := t.dllps[0]
		t.dllps = t.dllps[1:]
		t.tracer.SentDLLP(d.typ, d.seq)
		return pipe.KindDLLP, wire.AppendDLLP(nil, d.typ, d.seq), true
	}
	if seq, data, ok := t.retry.NextReplay(); ok {
		buf, err := wire.AppendFramedTLP(nil, seq, data)
		if err != nil {
			// entries are validated on push
			utils.Errorf("dropping unframeable retry entry %s: %s", seq, err)
			return 0, nil, false
		}
		t.tracer.ReplayedTLP(seq, len(data))
		return pipe.KindTLP, buf, true
	}
	if len(t.queue) > 0 && !t.retry.Full() {
		payload := t.queue[0]
		t.queue = t.queue[1:]
		seq := t.seq.AllocateTX()
		if err := t.retry.Push(seq, payload); err != nil {
			// cannot happen, Full was checked above
			utils.Errorf("retry buffer rejected packet %s: %s", seq, err)
			return 0, nil, false
		}
		buf, err := wire.AppendFramedTLP(nil, seq, payload)
		if err != nil {
			utils.Errorf("dropping unframeable packet %s: %s", seq, err)
			return 0, nil, false
		}
		t.tracer.SentTLP(seq, len(payload))
		t.tracer.UpdatedRetryBuffer(t.retry.Len())
		return pipe.KindTLP, buf, true
	}
	return 0, nil, false
}

// tickTimer advances the replay timer, once per tick while the link is up.
// When the partner stays silent past the timeout, everything unacknowledged
// is replayed.
func (t *dllTX) tickTimer() {
	if t.replayTimeout <= 0 || t.retry.Empty() || t.retry.Replaying() {
		t.sinceProgress = 0
		return
	}
	t.sinceProgress++
	if t.sinceProgress >= t.replayTimeout {
		utils.Debugf("replay timer expired, replaying %d packets", t.retry.Len())
		t.retry.ReplayAll()
		t.sinceProgress = 0
	}
}

func (t *dllTX) reset() {
	t.queue = nil
	t.dllps = nil
	t.sinceProgress = 0
	t.retry.Reset()
}
