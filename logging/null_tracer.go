package logging

// The NullTracer is a Tracer that does nothing.
// It is useful for embedding. Don't modify this variable!
var NullTracer Tracer = &nullTracer{}

type nullTracer struct{}

var _ Tracer = &nullTracer{}

func (n nullTracer) UpdatedLinkState(old, new LinkState)                              {}
func (n nullTracer) UpdatedLinkSpeed(Speed)                                           {}
func (n nullTracer) SentTLP(seq SequenceNumber, size int)                             {}
func (n nullTracer) ReplayedTLP(seq SequenceNumber, size int)                         {}
func (n nullTracer) ReceivedTLP(seq SequenceNumber, size int)                         {}
func (n nullTracer) DeliveredTLP(seq SequenceNumber, size int)                        {}
func (n nullTracer) AcknowledgedTLP(seq SequenceNumber)                               {}
func (n nullTracer) SentDLLP(t DLLPType, seq SequenceNumber)                          {}
func (n nullTracer) ReceivedDLLP(t DLLPType, seq SequenceNumber)                      {}
func (n nullTracer) DroppedTLP(seq SequenceNumber, size int, reason PacketDropReason) {}
func (n nullTracer) DroppedDLLP(reason PacketDropReason)                              {}
func (n nullTracer) UpdatedRetryBuffer(length int)                                    {}
func (n nullTracer) Close()                                                           {}
