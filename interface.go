// Package pcie implements a software model of the PCI Express data link
// layer: symbol-level packet framing, CRC protection, ACK/NAK retry, and
// link training, advanced one symbol per tick in each direction.
package pcie

import (
	"github.com/pcie-go/pcie-go/internal/ltssm"
	"github.com/pcie-go/pcie-go/internal/pipe"
	"github.com/pcie-go/pcie-go/internal/protocol"
	"github.com/pcie-go/pcie-go/logging"
)

type (
	// A Symbol is one 8-bit value plus a control character flag, the unit
	// exchanged with the physical layer every tick.
	Symbol = pipe.Symbol
	// A SequenceNumber is the 12 bit sequence number carried by data packets
	// and ACK / NAK control packets.
	SequenceNumber = protocol.SequenceNumber
	// A Speed is a link speed generation.
	Speed = protocol.Speed
	// A LinkState is a state of the link training and status state machine.
	LinkState = ltssm.State
)

// Link speed generations.
const (
	Gen1 = protocol.Gen1
	Gen2 = protocol.Gen2
)

// Link training and status states.
const (
	StateDetect           = ltssm.Detect
	StatePolling          = ltssm.Polling
	StateConfiguration    = ltssm.Configuration
	StateL0               = ltssm.L0
	StateRecovery         = ltssm.Recovery
	StateRecoveryRcvrLock = ltssm.RecoveryRcvrLock
	StateRecoveryRcvrCfg  = ltssm.RecoveryRcvrCfg
	StateRecoveryIdle     = ltssm.RecoveryIdle
	StateRecoverySpeed    = ltssm.RecoverySpeed
	StateL0sIdle          = ltssm.L0sIdle
	StateL0sFTS           = ltssm.L0sFTS
	StateL1               = ltssm.L1
	StateL2               = ltssm.L2
)

// Config contains all configuration options of a Link. It may be nil, in
// which case every field takes its default.
type Config struct {
	// MaxSpeed is the highest speed class this side advertises during
	// training. Defaults to Gen1.
	MaxSpeed Speed
	// Lanes is the physical lane count, one of 1, 2, 4, 8, 16 or 32.
	// Defaults to 1.
	Lanes int
	// MaxPayloadBytes is the largest payload Send accepts.
	// Defaults to 256, capped at 4096.
	MaxPayloadBytes int
	// RetryBufferDepth is the number of retry buffer slots. Must be a power
	// of two greater than 1. The buffer holds up to RetryBufferDepth - 1
	// unacknowledged packets. Defaults to 64.
	RetryBufferDepth int
	// TrainingTimeout is the number of ticks to wait for a partner response
	// in a training state before falling back to Detect.
	TrainingTimeout int
	// NFTS is the number of fast training sequence symbols sent when exiting
	// L0s.
	NFTS int
	// SkipInterval is the number of transmitted symbols between two SKP
	// ordered sets. A negative value disables SKP insertion.
	SkipInterval int
	// ReplayTimeout is the number of ticks without acknowledgment progress
	// after which all unacknowledged packets are replayed. A negative value
	// disables the timer.
	ReplayTimeout int

	// EnableL0s, EnableL1 and EnableL2 allow the corresponding link power
	// states to be entered.
	EnableL0s bool
	EnableL1  bool
	EnableL2  bool
	// DetailedSubstates walks the individual Recovery substates instead of
	// the single combined Recovery state.
	DetailedSubstates bool

	// Tracer receives link events. Defaults to a tracer that does nothing.
	Tracer logging.Tracer
}

// TickInput carries the per-tick receive side signals from the physical
// layer.
type TickInput struct {
	// Symbol is the symbol received from the partner this tick, valid only
	// when SymbolValid is set.
	Symbol Symbol
	// SymbolValid reports whether a symbol was received this tick.
	SymbolValid bool
	// RxElecIdle is the receiver electrical idle indication. While asserted,
	// Symbol is ignored.
	RxElecIdle bool
}
