package ackhandler

import (
	"errors"
	"fmt"

	"github.com/pcie-go/pcie-go/internal/protocol"
)

// ErrRetryBufferFull is returned by Push when no slot is free. The caller
// must stall new packets until an ACK frees space.
var ErrRetryBufferFull = errors.New("retry buffer full")

type retryEntry struct {
	seq  protocol.SequenceNumber
	data []byte
}

// A RetryBuffer is a circular store of transmitted packets awaiting
// acknowledgment. Entries are released in push order by ACKs and re-emitted
// in push order when a NAK requests replay.
//
// Three pointers chase each other around the ring: writePtr (next free slot),
// ackPtr (oldest unacknowledged entry), and replayPtr (next entry to re-emit
// while replaying). One slot is kept unused so that writePtr == ackPtr means
// empty and next(writePtr) == ackPtr means full.
type RetryBuffer struct {
	entries []retryEntry
	mask    int

	writePtr  int
	ackPtr    int
	replayPtr int
	replaying bool
}

// NewRetryBuffer creates a buffer with the given number of slots. The depth
// must be a power of two.
func NewRetryBuffer(depth int) (*RetryBuffer, error) {
	if depth <= 1 || depth&(depth-1) != 0 {
		return nil, fmt.Errorf("retry buffer depth must be a power of two, got %d", depth)
	}
	return &RetryBuffer{
		entries: make([]retryEntry, depth),
		mask:    depth - 1,
	}, nil
}

func (b *RetryBuffer) next(ptr int) int { return (ptr + 1) & b.mask }

// Empty reports whether every stored entry has been acknowledged.
func (b *RetryBuffer) Empty() bool { return b.writePtr == b.ackPtr }

// Full reports whether no slot is free.
func (b *RetryBuffer) Full() bool { return b.next(b.writePtr) == b.ackPtr }

// Len returns the number of unacknowledged entries.
func (b *RetryBuffer) Len() int {
	return (b.writePtr - b.ackPtr + len(b.entries)) & b.mask
}

// Replaying reports whether a NAK triggered replay that has not yet caught up
// with the write pointer.
func (b *RetryBuffer) Replaying() bool { return b.replaying }

// Push stores a packet with its sequence number. The payload is copied, so
// the caller may reuse the slice.
func (b *RetryBuffer) Push(seq protocol.SequenceNumber, data []byte) error {
	if b.Full() {
		return ErrRetryBufferFull
	}
	e := &b.entries[b.writePtr]
	e.seq = seq
	e.data = append(e.data[:0], data...)
	b.writePtr = b.next(b.writePtr)
	return nil
}

// Ack releases every entry up to and including seq. Acknowledgments arrive in
// push order, so the ack pointer only ever advances; an ACK for a sequence
// that has already been released is a no-op.
func (b *RetryBuffer) Ack(seq protocol.SequenceNumber) {
	for ptr := b.ackPtr; ptr != b.writePtr; ptr = b.next(ptr) {
		if b.entries[ptr].seq == seq {
			b.ackPtr = b.next(ptr)
			return
		}
	}
}

// Nak positions the replay pointer just past the entry with sequence seq (the
// partner's last known-good packet) and enters replay mode. If seq has
// already been released, replay starts at the oldest unacknowledged entry.
func (b *RetryBuffer) Nak(seq protocol.SequenceNumber) {
	b.replayPtr = b.ackPtr
	for ptr := b.ackPtr; ptr != b.writePtr; ptr = b.next(ptr) {
		if b.entries[ptr].seq == seq {
			b.replayPtr = b.next(ptr)
			break
		}
	}
	b.replaying = true
}

// ReplayAll enters replay mode starting at the oldest unacknowledged entry.
// Used when the replay timer expires without acknowledgment progress.
func (b *RetryBuffer) ReplayAll() {
	b.replayPtr = b.ackPtr
	b.replaying = true
}

// NextReplay returns the next entry to retransmit, in original push order.
// Replay mode clears automatically once the replay pointer catches the write
// pointer.
func (b *RetryBuffer) NextReplay() (protocol.SequenceNumber, []byte, bool) {
	if !b.replaying {
		return 0, nil, false
	}
	if b.replayPtr == b.writePtr {
		b.replaying = false
		return 0, nil, false
	}
	e := &b.entries[b.replayPtr]
	b.replayPtr = b.next(b.replayPtr)
	if b.replayPtr == b.writePtr {
		b.replaying = false
	}
	return e.seq, e.data, true
}

// Reset empties the buffer and leaves replay mode.
func (b *RetryBuffer) Reset() {
	b.writePtr = 0
	b.ackPtr = 0
	b.replayPtr = 0
	b.replaying = false
}
