// Package ltssm implements the link training and status state machine. It is
// a pure tick-driven state machine: Step consumes one tick's worth of
// receiver status and returns, with all outputs derived from the committed
// state.
package ltssm

import "fmt"

// A State is one of the link training states.
type State uint8

const (
	Detect State = iota
	Polling
	Configuration
	L0
	Recovery
	RecoveryRcvrLock
	RecoveryRcvrCfg
	RecoveryIdle
	RecoverySpeed
	L0sIdle
	L0sFTS
	L1
	L2
)

func (s State) String() string {
	switch s {
	case Detect:
		return "Detect"
	case Polling:
		return "Polling"
	case Configuration:
		return "Configuration"
	case L0:
		return "L0"
	case Recovery:
		return "Recovery"
	case RecoveryRcvrLock:
		return "Recovery.RcvrLock"
	case RecoveryRcvrCfg:
		return "Recovery.RcvrCfg"
	case RecoveryIdle:
		return "Recovery.Idle"
	case RecoverySpeed:
		return "Recovery.Speed"
	case L0sIdle:
		return "L0s.Idle"
	case L0sFTS:
		return "L0s.FTS"
	case L1:
		return "L1"
	case L2:
		return "L2"
	default:
		return fmt.Sprintf("unknown state (%d)", uint8(s))
	}
}

// A PowerState is the power level requested from the PHY.
type PowerState uint8

const (
	P0  PowerState = 0b00 // full power
	P0s PowerState = 0b01 // power savings
	P1  PowerState = 0b10 // low power
	P2  PowerState = 0b11 // lowest power
)
