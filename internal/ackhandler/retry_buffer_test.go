package ackhandler

import (
	"testing"

	"github.com/pcie-go/pcie-go/internal/protocol"

	"github.com/stretchr/testify/require"
)

func newBuffer(t *testing.T, depth int) *RetryBuffer {
	t.Helper()
	b, err := NewRetryBuffer(depth)
	require.NoError(t, err)
	return b
}

func TestRetryBufferRejectsBadDepths(t *testing.T) {
	for _, depth := range []int{0, 1, 3, 6, 100} {
		_, err := NewRetryBuffer(depth)
		require.Error(t, err, "depth %d", depth)
	}
	_, err := NewRetryBuffer(2)
	require.NoError(t, err)
}

func TestRetryBufferReplayAfterAck(t *testing.T) {
	b := newBuffer(t, 8)
	require.NoError(t, b.Push(0, []byte{0xA0}))
	require.NoError(t, b.Push(1, []byte{0xA1}))
	require.NoError(t, b.Push(2, []byte{0xA2}))

	b.Ack(0)
	require.Equal(t, 2, b.Len())

	b.Nak(0)
	require.True(t, b.Replaying())

	seq, data, ok := b.NextReplay()
	require.True(t, ok)
	require.Equal(t, protocol.SequenceNumber(1), seq)
	require.Equal(t, []byte{0xA1}, data)

	seq, data, ok = b.NextReplay()
	require.True(t, ok)
	require.Equal(t, protocol.SequenceNumber(2), seq)
	require.Equal(t, []byte{0xA2}, data)

	require.False(t, b.Replaying())
	_, _, ok = b.NextReplay()
	require.False(t, ok)
}

func TestRetryBufferCapacity(t *testing.T) {
	const depth = 8
	b := newBuffer(t, depth)
	for i := 0; i < depth-1; i++ {
		require.False(t, b.Full())
		require.NoError(t, b.Push(protocol.SequenceNumber(i), []byte{byte(i)}))
	}
	require.True(t, b.Full())
	require.ErrorIs(t, b.Push(depth-1, []byte{0xFF}), ErrRetryBufferFull)

	b.Ack(0)
	require.False(t, b.Full())
	require.NoError(t, b.Push(depth-1, []byte{0xFF}))
}

func TestRetryBufferEmptyInvariant(t *testing.T) {
	b := newBuffer(t, 4)
	require.True(t, b.Empty())
	require.NoError(t, b.Push(0, []byte{1}))
	require.False(t, b.Empty())
	b.Ack(0)
	require.True(t, b.Empty())
}

func TestRetryBufferCumulativeAck(t *testing.T) {
	b := newBuffer(t, 8)
	for i := 0; i < 5; i++ {
		require.NoError(t, b.Push(protocol.SequenceNumber(i), []byte{byte(i)}))
	}
	// an ACK for 3 releases 0..3 in one step
	b.Ack(3)
	require.Equal(t, 1, b.Len())
	// acking an already released sequence changes nothing
	b.Ack(1)
	require.Equal(t, 1, b.Len())
}

func TestRetryBufferNakAlreadyReleased(t *testing.T) {
	b := newBuffer(t, 8)
	require.NoError(t, b.Push(0, []byte{0}))
	require.NoError(t, b.Push(1, []byte{1}))
	b.Ack(0)
	// NAK for the released sequence replays everything still outstanding
	b.Nak(0)
	seq, _, ok := b.NextReplay()
	require.True(t, ok)
	require.Equal(t, protocol.SequenceNumber(1), seq)
}

func TestRetryBufferPushDuringReplay(t *testing.T) {
	b := newBuffer(t, 8)
	require.NoError(t, b.Push(0, []byte{0}))
	require.NoError(t, b.Push(1, []byte{1}))
	b.Nak(4095) // nothing matches: replay all outstanding entries

	seq, _, ok := b.NextReplay()
	require.True(t, ok)
	require.Equal(t, protocol.SequenceNumber(0), seq)

	// a packet pushed mid-replay is replayed too, in order
	require.NoError(t, b.Push(2, []byte{2}))
	seq, _, ok = b.NextReplay()
	require.True(t, ok)
	require.Equal(t, protocol.SequenceNumber(1), seq)
	seq, _, ok = b.NextReplay()
	require.True(t, ok)
	require.Equal(t, protocol.SequenceNumber(2), seq)
	require.False(t, b.Replaying())
}

func TestRetryBufferWraparound(t *testing.T) {
	b := newBuffer(t, 4)
	seq := protocol.SequenceNumber(0)
	// push/ack enough times to wrap the ring several times
	for round := 0; round < 10; round++ {
		require.NoError(t, b.Push(seq, []byte{byte(seq)}))
		require.NoError(t, b.Push(seq+1, []byte{byte(seq + 1)}))
		b.Ack(seq)
		b.Ack(seq + 1)
		require.True(t, b.Empty())
		seq += 2
	}
}

func TestRetryBufferPayloadCopied(t *testing.T) {
	b := newBuffer(t, 4)
	payload := []byte{1, 2, 3}
	require.NoError(t, b.Push(0, payload))
	payload[0] = 0xFF
	b.Nak(4095)
	_, data, ok := b.NextReplay()
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, data)
}

func TestRetryBufferReplayAll(t *testing.T) {
	b := newBuffer(t, 8)
	for seq := protocol.SequenceNumber(0); seq < 3; seq++ {
		require.NoError(t, b.Push(seq, []byte{byte(seq)}))
	}
	b.Ack(0)

	b.ReplayAll()
	require.True(t, b.Replaying())
	var seqs []protocol.SequenceNumber
	for {
		seq, _, ok := b.NextReplay()
		if !ok {
			break
		}
		seqs = append(seqs, seq)
	}
	require.Equal(t, []protocol.SequenceNumber{1, 2}, seqs)
	require.False(t, b.Replaying())
}
