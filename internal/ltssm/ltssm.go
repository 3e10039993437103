package ltssm

import (
	"fmt"

	"github.com/pcie-go/pcie-go/internal/protocol"
)

// Config selects the capabilities the state machine may negotiate.
type Config struct {
	// MaxSpeed is the highest speed class this side advertises.
	MaxSpeed protocol.Speed
	// Lanes is the physical lane count.
	Lanes int
	// TrainingTimeout is the number of ticks to wait for a partner response
	// in a training state before falling back to Detect.
	TrainingTimeout int
	// NFTS is the number of fast training sequence ticks sent when exiting
	// L0s.
	NFTS int

	EnableL0s         bool
	EnableL1          bool
	EnableL2          bool
	DetailedSubstates bool
}

// Inputs is everything the state machine samples during one tick.
type Inputs struct {
	// RxElecIdle is the receiver electrical idle status from the PHY.
	RxElecIdle bool
	// TS1Seen / TS2Seen report training sets detected on the receive stream
	// this tick. RateID is the partner's advertised speed class, valid with
	// either.
	TS1Seen bool
	TS2Seen bool
	RateID  byte
	// LaneNumbers are the per-lane lane numbers captured from the partner's
	// training sets, indexed by physical lane. Sampled when its length
	// matches the configured lane count.
	LaneNumbers []uint8

	// Power management requests from the link layer.
	EnterL0s bool
	ExitL0s  bool
	EnterL1  bool
	ExitL1   bool
	EnterL2  bool

	// SpeedChange forces a retrain through Recovery.Speed.
	SpeedChange bool
	// Reset is the hard reset, honored from any state.
	Reset bool
}

// An LTSSM negotiates link readiness. All methods are tick-synchronous: one
// Step call advances exactly one tick.
type LTSSM struct {
	cfg Config

	state State
	ticks int // ticks spent in the current training state

	speed           protocol.Speed
	width           int
	speedChangeNeed bool
	speedChangeDone bool
	ftsRemaining    int
	laneReversal    bool
	laneMap         []uint8
	partnerRateSeen byte
}

// New validates the configuration and returns a state machine in Detect.
func New(cfg Config) (*LTSSM, error) {
	if cfg.MaxSpeed != protocol.Gen1 && cfg.MaxSpeed != protocol.Gen2 {
		return nil, fmt.Errorf("unsupported speed class: %d", cfg.MaxSpeed)
	}
	switch cfg.Lanes {
	case 1, 2, 4, 8, 16, 32:
	default:
		return nil, fmt.Errorf("unsupported lane count: %d", cfg.Lanes)
	}
	if cfg.TrainingTimeout <= 0 {
		cfg.TrainingTimeout = protocol.DefaultTrainingTimeout
	}
	if cfg.NFTS <= 0 {
		cfg.NFTS = protocol.DefaultNFTS
	}
	m := &LTSSM{cfg: cfg}
	m.Reset()
	return m, nil
}

// Reset is the hard reset: back to Detect with all negotiated parameters
// cleared.
func (m *LTSSM) Reset() {
	m.state = Detect
	m.ticks = 0
	m.speed = protocol.Gen1
	m.width = 0
	m.speedChangeNeed = false
	m.speedChangeDone = false
	m.ftsRemaining = 0
	m.laneReversal = false
	m.laneMap = identityMap(m.cfg.Lanes)
	m.partnerRateSeen = 0
}

func identityMap(lanes int) []uint8 {
	mp := make([]uint8, lanes)
	for i := range mp {
		mp[i] = uint8(i)
	}
	return mp
}

// Step advances the state machine by one tick.
func (m *LTSSM) Step(in Inputs) {
	if in.Reset {
		m.Reset()
		return
	}

	if in.TS1Seen || in.TS2Seen {
		m.sampleTraining(in)
	}

	prev := m.state
	m.step(in)
	if m.state != prev {
		m.ticks = 0
	} else {
		m.ticks++
	}
}

func (m *LTSSM) step(in Inputs) {
	switch m.state {
	case Detect:
		if !in.RxElecIdle {
			m.state = Polling
		}

	case Polling:
		if in.TS1Seen {
			m.state = Configuration
			return
		}
		m.checkTimeout()

	case Configuration:
		if in.TS2Seen {
			// link parameters latch on entry to L0
			m.width = m.cfg.Lanes
			m.state = L0
			return
		}
		m.checkTimeout()

	case L0:
		switch {
		case in.RxElecIdle:
			m.state = m.recoveryEntry()
		case in.SpeedChange || (m.speedChangeNeed && !m.speedChangeDone):
			m.state = RecoverySpeed
		case in.EnterL0s && m.cfg.EnableL0s:
			m.state = L0sIdle
		case in.EnterL1 && m.cfg.EnableL1:
			m.state = L1
		}

	case Recovery:
		if !in.RxElecIdle && in.TS1Seen {
			m.state = L0
			return
		}
		m.checkTimeout()

	case RecoveryRcvrLock:
		if !in.RxElecIdle && in.TS1Seen {
			m.state = RecoveryRcvrCfg
			return
		}
		m.checkTimeout()

	case RecoveryRcvrCfg:
		if in.TS2Seen {
			m.state = RecoveryIdle
			return
		}
		m.checkTimeout()

	case RecoveryIdle:
		m.state = L0

	case RecoverySpeed:
		// the rate switches while the transmitter is idle, then the link
		// retrains at the new speed
		m.speed = m.cfg.MaxSpeed
		m.speedChangeDone = true
		m.state = m.recoveryEntry()

	case L0sIdle:
		if in.ExitL0s {
			m.ftsRemaining = m.cfg.NFTS
			m.state = L0sFTS
		}

	case L0sFTS:
		m.ftsRemaining--
		if m.ftsRemaining <= 0 {
			m.state = L0
		}

	case L1:
		switch {
		case in.EnterL2 && m.cfg.EnableL2:
			m.state = L2
		case in.ExitL1:
			m.state = m.recoveryEntry()
		}

	case L2:
		// only a hard reset leaves L2
	}
}

func (m *LTSSM) recoveryEntry() State {
	if m.cfg.DetailedSubstates {
		return RecoveryRcvrLock
	}
	return Recovery
}

func (m *LTSSM) checkTimeout() {
	if m.ticks >= m.cfg.TrainingTimeout {
		// no usable partner response: give up this attempt and retry from
		// Detect, without bound
		m.state = Detect
	}
}

// sampleTraining latches what the partner's training sets advertise: speed
// capability and lane ordering.
func (m *LTSSM) sampleTraining(in Inputs) {
	m.partnerRateSeen = in.RateID
	if in.RateID >= byte(protocol.Gen2) && m.cfg.MaxSpeed >= protocol.Gen2 {
		m.speedChangeNeed = true
	}
	if m.cfg.Lanes > 1 && len(in.LaneNumbers) == m.cfg.Lanes {
		m.sampleLanes(in.LaneNumbers)
	}
}

func (m *LTSSM) sampleLanes(numbers []uint8) {
	n := m.cfg.Lanes
	reversed := true
	straight := true
	for i := 0; i < n; i++ {
		if numbers[i] != uint8(n-1-i) {
			reversed = false
		}
		if numbers[i] != uint8(i) {
			straight = false
		}
	}
	switch {
	case reversed:
		m.laneReversal = true
		for i := 0; i < n; i++ {
			m.laneMap[i] = uint8(n - 1 - i)
		}
	case straight:
		m.laneReversal = false
		m.laneMap = identityMap(n)
	}
	// anything else is a partial capture, keep the previous mapping
}

// State returns the current training state.
func (m *LTSSM) State() State { return m.state }

// LinkUp reports whether the channel is usable for packets. The link stays
// logically up in L0s.
func (m *LTSSM) LinkUp() bool {
	return m.state == L0 || m.state == L0sIdle || m.state == L0sFTS
}

// SendTS1 reports whether TS1 ordered sets should be transmitted.
func (m *LTSSM) SendTS1() bool {
	switch m.state {
	case Polling, Recovery, RecoveryRcvrLock, RecoveryRcvrCfg:
		return true
	}
	return false
}

// SendTS2 reports whether TS2 ordered sets should be transmitted.
func (m *LTSSM) SendTS2() bool {
	return m.state == Configuration || m.state == RecoveryIdle
}

// SendFTS reports whether fast training sequences should be transmitted
// (L0s exit).
func (m *LTSSM) SendFTS() bool { return m.state == L0sFTS }

// TxElecIdle reports whether the transmitter must be electrically idle.
func (m *LTSSM) TxElecIdle() bool {
	switch m.state {
	case Detect, RecoverySpeed, L0sIdle, L1, L2:
		return true
	}
	return false
}

// Powerdown returns the PHY power state matching the current link state.
func (m *LTSSM) Powerdown() PowerState {
	switch m.state {
	case L0sIdle, L0sFTS:
		return P0s
	case L1:
		return P1
	case L2:
		return P2
	default:
		return P0
	}
}

// LinkSpeed returns the negotiated speed class.
func (m *LTSSM) LinkSpeed() protocol.Speed { return m.speed }

// LinkWidth returns the negotiated lane count, zero before training
// completes.
func (m *LTSSM) LinkWidth() int { return m.width }

// LaneReversal reports whether the partner's lane ordering arrived inverted.
func (m *LTSSM) LaneReversal() bool { return m.laneReversal }

// LaneMap returns the physical-to-logical lane mapping. It is the identity
// unless lane reversal was detected.
func (m *LTSSM) LaneMap() []uint8 {
	mp := make([]uint8, len(m.laneMap))
	copy(mp, m.laneMap)
	return mp
}

// AdvertisedRateID is the rate identifier carried in our outgoing training
// sets.
func (m *LTSSM) AdvertisedRateID() byte { return byte(m.cfg.MaxSpeed) }

// PartnerRateID returns the last rate identifier seen in the partner's
// training sets, zero before any was received.
func (m *LTSSM) PartnerRateID() byte { return m.partnerRateSeen }
