package logging

type multiplexedTracer struct {
	tracers []Tracer
}

// NewMultiplexedTracer creates a new tracer that multiplexes events to multiple tracers.
func NewMultiplexedTracer(tracers ...Tracer) Tracer {
	if len(tracers) == 0 {
		return nil
	}
	if len(tracers) == 1 {
		return tracers[0]
	}
	return &multiplexedTracer{tracers: tracers}
}

var _ Tracer = &multiplexedTracer{}

func (m *multiplexedTracer) UpdatedLinkState(old, new LinkState) {
	for _, t := range m.tracers {
		t.UpdatedLinkState(old, new)
	}
}

func (m *multiplexedTracer) UpdatedLinkSpeed(s Speed) {
	for _, t := range m.tracers {
		t.UpdatedLinkSpeed(s)
	}
}

func (m *multiplexedTracer) SentTLP(seq SequenceNumber, size int) {
	for _, t := range m.tracers {
		t.SentTLP(seq, size)
	}
}

func (m *multiplexedTracer) ReplayedTLP(seq SequenceNumber, size int) {
	for _, t := range m.tracers {
		t.ReplayedTLP(seq, size)
	}
}

func (m *multiplexedTracer) ReceivedTLP(seq SequenceNumber, size int) {
	for _, t := range m.tracers {
		t.ReceivedTLP(seq, size)
	}
}

func (m *multiplexedTracer) DeliveredTLP(seq SequenceNumber, size int) {
	for _, t := range m.tracers {
		t.DeliveredTLP(seq, size)
	}
}

func (m *multiplexedTracer) AcknowledgedTLP(seq SequenceNumber) {
	for _, t := range m.tracers {
		t.AcknowledgedTLP(seq)
	}
}

func (m *multiplexedTracer) SentDLLP(typ DLLPType, seq SequenceNumber) {
	for _, t := range m.tracers {
		t.SentDLLP(typ, seq)
	}
}

func (m *multiplexedTracer) ReceivedDLLP(typ DLLPType, seq SequenceNumber) {
	for _, t := range m.tracers {
		t.ReceivedDLLP(typ, seq)
	}
}

func (m *multiplexedTracer) DroppedTLP(seq SequenceNumber, size int, reason PacketDropReason) {
	for _, t := range m.tracers {
		t.DroppedTLP(seq, size, reason)
	}
}

func (m *multiplexedTracer) DroppedDLLP(reason PacketDropReason) {
	for _, t := range m.tracers {
		t.DroppedDLLP(reason)
	}
}

func (m *multiplexedTracer) UpdatedRetryBuffer(length int) {
	for _, t := range m.tracers {
		t.UpdatedRetryBuffer(length)
	}
}

func (m *multiplexedTracer) Close() {
	for _, t := range m.tracers {
		t.Close()
	}
}
