package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingTracer struct {
	Tracer
	states  []LinkState
	sent    []SequenceNumber
	dropped []PacketDropReason
	closed  bool
}

func newRecordingTracer() *recordingTracer {
	return &recordingTracer{Tracer: NullTracer}
}

func (t *recordingTracer) UpdatedLinkState(old, new LinkState) { t.states = append(t.states, new) }
func (t *recordingTracer) SentTLP(seq SequenceNumber, size int) {
	t.sent = append(t.sent, seq)
}
func (t *recordingTracer) DroppedTLP(seq SequenceNumber, size int, reason PacketDropReason) {
	t.dropped = append(t.dropped, reason)
}
func (t *recordingTracer) Close() { t.closed = true }

func TestMultiplexedTracerNoTracers(t *testing.T) {
	require.Nil(t, NewMultiplexedTracer())
}

func TestMultiplexedTracerSingleTracer(t *testing.T) {
	tr := newRecordingTracer()
	require.Equal(t, Tracer(tr), NewMultiplexedTracer(tr))
}

func TestMultiplexedTracerFanOut(t *testing.T) {
	tr1 := newRecordingTracer()
	tr2 := newRecordingTracer()
	tracer := NewMultiplexedTracer(tr1, tr2)

	tracer.SentTLP(42, 8)
	tracer.DroppedTLP(7, 8, PacketDropLCRCError)
	tracer.Close()

	for _, tr := range []*recordingTracer{tr1, tr2} {
		require.Equal(t, []SequenceNumber{42}, tr.sent)
		require.Equal(t, []PacketDropReason{PacketDropLCRCError}, tr.dropped)
		require.True(t, tr.closed)
	}
}
