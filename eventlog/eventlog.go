// Package eventlog writes link events as a structured JSON event stream,
// one array entry per event: relative time, category, event name, data.
package eventlog

import (
	"io"
	"log"
	"time"

	"github.com/francoispqt/gojay"

	"github.com/pcie-go/pcie-go/logging"
)

const eventChanSize = 50

type tracer struct {
	w             io.WriteCloser
	referenceTime time.Time

	events     chan event
	encodeErr  error
	runStopped chan struct{}
}

var _ logging.Tracer = &tracer{}

// NewTracer creates a tracer writing the event stream to w. The stream is
// finished and w closed when the tracer is closed.
func NewTracer(w io.WriteCloser) logging.Tracer {
	t := &tracer{
		w:             w,
		referenceTime: time.Now(),
		events:        make(chan event, eventChanSize),
		runStopped:    make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *tracer) run() {
	defer close(t.runStopped)
	if _, err := io.WriteString(t.w, `{"format":"pcie-eventlog","events":[`); err != nil {
		t.encodeErr = err
	}
	enc := gojay.NewEncoder(t.w)
	isFirst := true
	for ev := range t.events {
		if t.encodeErr != nil { // if encoding failed, just continue draining the event channel
			continue
		}
		if !isFirst {
			if _, err := io.WriteString(t.w, ","); err != nil {
				t.encodeErr = err
				continue
			}
		}
		if err := enc.Encode(ev); err != nil {
			t.encodeErr = err
		}
		isFirst = false
	}
}

func (t *tracer) Close() {
	if err := t.export(); err != nil {
		log.Printf("exporting event log failed: %s\n", err)
	}
}

func (t *tracer) export() error {
	close(t.events)
	<-t.runStopped
	if t.encodeErr != nil {
		return t.encodeErr
	}
	if _, err := io.WriteString(t.w, "]}\n"); err != nil {
		return err
	}
	return t.w.Close()
}

func (t *tracer) recordEvent(details eventDetails) {
	t.events <- event{
		RelativeTime: time.Since(t.referenceTime),
		eventDetails: details,
	}
}

func (t *tracer) UpdatedLinkState(old, new logging.LinkState) {
	t.recordEvent(&eventLinkStateUpdated{Old: old, New: new})
}

func (t *tracer) UpdatedLinkSpeed(s logging.Speed) {
	t.recordEvent(&eventLinkSpeedUpdated{Speed: s})
}

func (t *tracer) SentTLP(seq logging.SequenceNumber, size int) {
	t.recordEvent(&eventPacketSent{SeqNum: seq, Size: size})
}

func (t *tracer) ReplayedTLP(seq logging.SequenceNumber, size int) {
	t.recordEvent(&eventPacketSent{SeqNum: seq, Size: size, Replay: true})
}

func (t *tracer) ReceivedTLP(seq logging.SequenceNumber, size int) {
	t.recordEvent(&eventPacketReceived{SeqNum: seq, Size: size})
}

func (t *tracer) DeliveredTLP(seq logging.SequenceNumber, size int) {
	t.recordEvent(&eventPacketDelivered{SeqNum: seq, Size: size})
}

func (t *tracer) AcknowledgedTLP(seq logging.SequenceNumber) {
	t.recordEvent(&eventPacketAcknowledged{SeqNum: seq})
}

func (t *tracer) SentDLLP(typ logging.DLLPType, seq logging.SequenceNumber) {
	t.recordEvent(&eventControlPacket{Sent: true, Type: typ, SeqNum: seq})
}

func (t *tracer) ReceivedDLLP(typ logging.DLLPType, seq logging.SequenceNumber) {
	t.recordEvent(&eventControlPacket{Type: typ, SeqNum: seq})
}

func (t *tracer) DroppedTLP(seq logging.SequenceNumber, size int, reason logging.PacketDropReason) {
	t.recordEvent(&eventPacketDropped{SeqNum: seq, Size: size, Trigger: reason.String()})
}

func (t *tracer) DroppedDLLP(reason logging.PacketDropReason) {
	t.recordEvent(&eventControlPacketDropped{Trigger: reason.String()})
}

func (t *tracer) UpdatedRetryBuffer(length int) {
	t.recordEvent(&eventRetryBufferUpdated{Length: length})
}
