package pcie

import (
	"github.com/pcie-go/pcie-go/internal/ackhandler"
	"github.com/pcie-go/pcie-go/internal/ltssm"
	"github.com/pcie-go/pcie-go/internal/pipe"
	"github.com/pcie-go/pcie-go/internal/utils"
	"github.com/pcie-go/pcie-go/logging"
)

// A Link is one end of a point-to-point data link. It is driven by calling
// Tick once per symbol time with the received symbol, and transmits at most
// one symbol per tick in return. A Link is not safe for concurrent use, the
// caller owns the tick loop.
type Link struct {
	config *Config
	tracer logging.Tracer

	ltssm    *ltssm.LTSSM
	framer   *pipe.Packetizer
	deframer *pipe.Depacketizer
	seq      *ackhandler.SequenceManager
	tx       *dllTX
	rx       *dllRX

	reqL0s     bool
	reqL0sExit bool
	reqL1      bool
	reqL1Exit  bool
	reqL2      bool
	reqSpeed   bool
	reqReset   bool

	closed bool
}

// NewLink creates a Link. The config may be nil, all options then take their
// defaults.
func NewLink(config *Config) (*Link, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	config = populateConfig(config)
	lt, err := ltssm.New(ltssm.Config{
		MaxSpeed:          config.MaxSpeed,
		Lanes:             config.Lanes,
		TrainingTimeout:   config.TrainingTimeout,
		NFTS:              config.NFTS,
		EnableL0s:         config.EnableL0s,
		EnableL1:          config.EnableL1,
		EnableL2:          config.EnableL2,
		DetailedSubstates: config.DetailedSubstates,
	})
	if err != nil {
		return nil, err
	}
	retry, err := ackhandler.NewRetryBuffer(config.RetryBufferDepth)
	if err != nil {
		return nil, err
	}
	skipInterval := config.SkipInterval
	if skipInterval < 0 {
		skipInterval = 0
	}
	replayTimeout := config.ReplayTimeout
	if replayTimeout < 0 {
		replayTimeout = 0
	}
	seq := ackhandler.NewSequenceManager()
	tx := newDLLTX(seq, retry, config.RetryBufferDepth, replayTimeout, config.Tracer)
	return &Link{
		config:   config,
		tracer:   config.Tracer,
		ltssm:    lt,
		framer:   pipe.NewPacketizer(skipInterval),
		deframer: pipe.NewDepacketizer(),
		seq:      seq,
		tx:       tx,
		rx:       newDLLRX(seq, tx, config.Tracer),
	}, nil
}

// Tick advances the link by one symbol time. It consumes the received
// symbol, steps the LTSSM, runs the DLL engines, and returns the symbol to
// transmit this tick. The second return is false when the transmitter is
// electrically idle.
func (l *Link) Tick(in TickInput) (Symbol, bool) {
	if l.closed {
		return Symbol{}, false
	}

	var ev pipe.RxEvents
	if in.SymbolValid && !in.RxElecIdle {
		ev = l.deframer.Feed(in.Symbol)
	}

	prevState := l.ltssm.State()
	prevSpeed := l.ltssm.LinkSpeed()
	wasUp := l.ltssm.LinkUp()
	l.ltssm.Step(ltssm.Inputs{
		RxElecIdle:  in.RxElecIdle,
		TS1Seen:     ev.TS1Seen,
		TS2Seen:     ev.TS2Seen,
		RateID:      ev.RateID,
		EnterL0s:    l.reqL0s,
		ExitL0s:     l.reqL0sExit,
		EnterL1:     l.reqL1,
		ExitL1:      l.reqL1Exit,
		EnterL2:     l.reqL2,
		SpeedChange: l.reqSpeed,
		Reset:       l.reqReset,
	})
	hardReset := l.reqReset
	l.clearRequests()

	if st := l.ltssm.State(); st != prevState {
		utils.Infof("link state %s -> %s", prevState, st)
		l.tracer.UpdatedLinkState(prevState, st)
	}
	if sp := l.ltssm.LinkSpeed(); sp != prevSpeed {
		utils.Infof("link speed now %s", sp)
		l.tracer.UpdatedLinkSpeed(sp)
	}

	if hardReset {
		l.resetDataLink()
	} else if wasUp && !l.ltssm.LinkUp() {
		// retrain in progress: the retry buffer and sequence counters
		// survive, anything mid-frame does not
		l.framer.Reset()
		l.deframer.Reset()
	}

	if ev.HasPacket {
		if l.ltssm.LinkUp() {
			l.rx.handlePacket(ev.PacketKind, ev.Packet)
		} else if ev.PacketKind == pipe.KindDLLP {
			l.tracer.DroppedDLLP(logging.PacketDropLinkDown)
		} else {
			l.tracer.DroppedTLP(0, len(ev.Packet), logging.PacketDropLinkDown)
		}
	}

	if l.ltssm.LinkUp() {
		l.tx.tickTimer()
		if !l.framer.Busy() {
			if kind, data, ok := l.tx.nextPacket(); ok {
				l.framer.StartPacket(kind, data)
			}
		}
	}

	return l.framer.Tick(pipe.TxControl{
		ElecIdle: l.ltssm.TxElecIdle(),
		SendTS1:  l.ltssm.SendTS1(),
		SendTS2:  l.ltssm.SendTS2(),
		SendFTS:  l.ltssm.SendFTS(),
		LinkUp:   l.ltssm.LinkUp(),
		RateID:   l.ltssm.AdvertisedRateID(),
	})
}

func (l *Link) clearRequests() {
	l.reqL0s = false
	l.reqL0sExit = false
	l.reqL1 = false
	l.reqL1Exit = false
	l.reqL2 = false
	l.reqSpeed = false
	l.reqReset = false
}

func (l *Link) resetDataLink() {
	l.seq.Reset()
	l.tx.reset()
	l.rx.reset()
	l.framer.Reset()
	l.deframer.Reset()
}

// CanSend reports whether Send would accept a payload right now.
func (l *Link) CanSend() bool {
	return !l.closed && l.ltssm.LinkUp() && l.tx.canEnqueue()
}

// Send queues a payload for transmission as a data packet. The payload is
// copied. Send fails when the link is not up or when the retry buffer,
// including everything already queued, has no free slot.
func (l *Link) Send(payload []byte) error {
	if l.closed {
		return ErrLinkClosed
	}
	if len(payload) == 0 || len(payload) > l.config.MaxPayloadBytes {
		return ErrInvalidPayloadSize
	}
	if !l.ltssm.LinkUp() {
		return ErrLinkDown
	}
	return l.tx.enqueue(payload)
}

// Receive returns the next payload delivered by the receive engine, in
// arrival order. The second return is false when nothing is pending.
func (l *Link) Receive() ([]byte, bool) {
	return l.rx.pop()
}

// State returns the current LTSSM state.
func (l *Link) State() LinkState { return l.ltssm.State() }

// LinkUp reports whether the link is trained and can carry packets.
func (l *Link) LinkUp() bool { return l.ltssm.LinkUp() }

// LinkSpeed returns the negotiated speed generation.
func (l *Link) LinkSpeed() Speed { return l.ltssm.LinkSpeed() }

// LinkWidth returns the negotiated lane count.
func (l *Link) LinkWidth() int { return l.ltssm.LinkWidth() }

// LaneReversal reports whether the partner's lanes arrived in reversed
// order.
func (l *Link) LaneReversal() bool { return l.ltssm.LaneReversal() }

// RequestL0s asks the LTSSM to enter the L0s power state on the next tick.
// Ignored unless EnableL0s is set.
func (l *Link) RequestL0s() { l.reqL0s = true }

// ExitL0s asks the LTSSM to leave L0s via fast training sequences.
func (l *Link) ExitL0s() { l.reqL0sExit = true }

// RequestL1 asks the LTSSM to enter the L1 power state on the next tick.
// Ignored unless EnableL1 is set.
func (l *Link) RequestL1() { l.reqL1 = true }

// ExitL1 asks the LTSSM to leave L1. The link retrains through Recovery.
func (l *Link) ExitL1() { l.reqL1Exit = true }

// RequestL2 asks the LTSSM to enter the L2 power state on the next tick.
// Only a Reset leaves L2. Ignored unless EnableL2 is set.
func (l *Link) RequestL2() { l.reqL2 = true }

// RequestSpeedChange forces a retrain through Recovery to renegotiate the
// link speed.
func (l *Link) RequestSpeedChange() { l.reqSpeed = true }

// Reset performs a hard reset on the next tick: the LTSSM returns to Detect
// and all data link state is discarded.
func (l *Link) Reset() { l.reqReset = true }

// Close shuts the link down and releases the tracer. The Link must not be
// ticked afterwards.
func (l *Link) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	l.tracer.Close()
	return nil
}
