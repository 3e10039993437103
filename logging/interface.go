// Package logging defines a logging interface for pcie-go.
// This package should not be considered stable
package logging

import (
	"github.com/pcie-go/pcie-go/internal/ltssm"
	"github.com/pcie-go/pcie-go/internal/protocol"
)

type (
	// A SequenceNumber is the 12 bit sequence number carried by TLPs and ACK / NAK DLLPs.
	SequenceNumber = protocol.SequenceNumber
	// A Speed is a link speed generation.
	Speed = protocol.Speed
	// A DLLPType is the type of a data link layer packet.
	DLLPType = protocol.DLLPType
	// A LinkState is a state of the link training and status state machine.
	LinkState = ltssm.State
)

// A Tracer records events happening on a link.
type Tracer interface {
	// UpdatedLinkState is called on every LTSSM state transition.
	UpdatedLinkState(old, new LinkState)
	UpdatedLinkSpeed(Speed)
	SentTLP(seq SequenceNumber, size int)
	// ReplayedTLP is called when a TLP is retransmitted from the retry buffer.
	ReplayedTLP(seq SequenceNumber, size int)
	ReceivedTLP(seq SequenceNumber, size int)
	// DeliveredTLP is called when a received TLP is handed to the transaction layer.
	DeliveredTLP(seq SequenceNumber, size int)
	// AcknowledgedTLP is called when a TLP is released from the retry buffer.
	AcknowledgedTLP(seq SequenceNumber)
	SentDLLP(t DLLPType, seq SequenceNumber)
	ReceivedDLLP(t DLLPType, seq SequenceNumber)
	DroppedTLP(seq SequenceNumber, size int, reason PacketDropReason)
	DroppedDLLP(reason PacketDropReason)
	UpdatedRetryBuffer(length int)
	// Close is called when the link is shut down.
	Close()
}
