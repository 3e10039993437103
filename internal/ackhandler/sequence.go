// Package ackhandler holds the transmit and receive side state of the ACK/NAK
// protocol: sequence number allocation and tracking, and the retry buffer of
// unacknowledged packets.
package ackhandler

import "github.com/pcie-go/pcie-go/internal/protocol"

// A SequenceManager owns the three sequence counters of a link: the next
// number to assign on transmit, the number expected next on receive, and the
// last number the partner has acknowledged.
type SequenceManager struct {
	txNext      protocol.SequenceNumber
	rxExpected  protocol.SequenceNumber
	txLastAcked protocol.SequenceNumber
	rxLastGood  protocol.SequenceNumber
	rxAnyGood   bool
}

// NewSequenceManager returns a manager with all counters at zero.
func NewSequenceManager() *SequenceManager {
	return &SequenceManager{}
}

// AllocateTX returns the sequence number for the next transmitted packet and
// advances the counter.
func (m *SequenceManager) AllocateTX() protocol.SequenceNumber {
	seq := m.txNext
	m.txNext = m.txNext.Next()
	return seq
}

// NextTX peeks at the sequence number the next allocation will return.
func (m *SequenceManager) NextTX() protocol.SequenceNumber { return m.txNext }

// CheckRX reports whether seq is the expected receive sequence number. The
// expected counter advances only on a match: a packet replayed after a loss
// must still find the counter where the loss stopped it.
func (m *SequenceManager) CheckRX(seq protocol.SequenceNumber) bool {
	if seq != m.rxExpected {
		return false
	}
	m.rxExpected = m.rxExpected.Next()
	m.rxLastGood = seq
	m.rxAnyGood = true
	return true
}

// RXExpected returns the sequence number expected on the next receive.
func (m *SequenceManager) RXExpected() protocol.SequenceNumber { return m.rxExpected }

// RXLastGood returns the sequence number of the last in-order packet
// accepted, the value reported in outgoing NAKs. The second return is false
// until any packet has been accepted.
func (m *SequenceManager) RXLastGood() (protocol.SequenceNumber, bool) {
	return m.rxLastGood, m.rxAnyGood
}

// RecordAck records seq as the last sequence number acknowledged by the
// partner.
func (m *SequenceManager) RecordAck(seq protocol.SequenceNumber) {
	m.txLastAcked = seq
}

// TXLastAcked returns the last sequence number the partner acknowledged.
func (m *SequenceManager) TXLastAcked() protocol.SequenceNumber { return m.txLastAcked }

// Reset returns all counters to zero.
func (m *SequenceManager) Reset() {
	*m = SequenceManager{}
}
