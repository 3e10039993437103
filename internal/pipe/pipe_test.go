package pipe

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func collectPacket(t *testing.T, p *Packetizer, ctrl TxControl) []Symbol {
	t.Helper()
	var syms []Symbol
	for p.Busy() {
		sym, ok := p.Tick(ctrl)
		require.True(t, ok)
		syms = append(syms, sym)
	}
	return syms
}

func TestPacketizerFramesPacket(t *testing.T) {
	p := NewPacketizer(0)
	payload := []byte{0x11, 0x22, 0x33}
	p.StartPacket(KindTLP, payload)
	syms := collectPacket(t, p, TxControl{LinkUp: true})

	require.Len(t, syms, len(payload)+2)
	require.Equal(t, Symbol{Data: KStp, Ctrl: true}, syms[0])
	for i, b := range payload {
		require.Equal(t, Symbol{Data: b}, syms[i+1])
	}
	require.Equal(t, Symbol{Data: KEnd, Ctrl: true}, syms[len(syms)-1])
}

func TestPacketizerControlPacketDelimiter(t *testing.T) {
	p := NewPacketizer(0)
	p.StartPacket(KindDLLP, []byte{0x00})
	sym, ok := p.Tick(TxControl{LinkUp: true})
	require.True(t, ok)
	require.Equal(t, Symbol{Data: KSdp, Ctrl: true}, sym)
}

func TestPacketizerIdleBetweenPackets(t *testing.T) {
	p := NewPacketizer(0)
	sym, ok := p.Tick(TxControl{LinkUp: true})
	require.True(t, ok)
	require.False(t, sym.Ctrl) // logical idle, never invented data framing
}

func TestPacketizerElectricalIdle(t *testing.T) {
	p := NewPacketizer(0)
	p.StartPacket(KindTLP, []byte{1, 2, 3})
	_, ok := p.Tick(TxControl{ElecIdle: true})
	require.False(t, ok)
	// entering idle aborted the packet
	require.False(t, p.Busy())
}

func TestRoundTrip(t *testing.T) {
	p := NewPacketizer(0)
	d := NewDepacketizer()
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0xBC, 0xFD, 0x01}

	p.StartPacket(KindTLP, payload)
	var got []byte
	var kind PacketKind
	delivered := false
	for p.Busy() {
		sym, ok := p.Tick(TxControl{LinkUp: true})
		require.True(t, ok)
		require.False(t, sym.Ctrl && sym.Data != KStp && sym.Data != KEnd,
			"payload byte leaked as control symbol")
		ev := d.Feed(sym)
		if ev.HasPacket {
			got = ev.Packet
			kind = ev.PacketKind
			delivered = true
		}
	}
	require.True(t, delivered)
	require.Equal(t, KindTLP, kind)
	require.Empty(t, cmp.Diff(payload, got))
}

func TestDepacketizerIgnoresSkipInsidePacket(t *testing.T) {
	d := NewDepacketizer()
	d.Feed(Symbol{Data: KStp, Ctrl: true})
	d.Feed(Symbol{Data: 0xAA})
	// clock compensation symbols in mid-packet are transparent
	d.Feed(Symbol{Data: KSkp, Ctrl: true})
	d.Feed(Symbol{Data: KCom, Ctrl: true})
	d.Feed(Symbol{Data: 0xBB})
	ev := d.Feed(Symbol{Data: KEnd, Ctrl: true})
	require.True(t, ev.HasPacket)
	require.Equal(t, []byte{0xAA, 0xBB}, ev.Packet)
}

func TestDepacketizerNoEndNoDelivery(t *testing.T) {
	d := NewDepacketizer()
	d.Feed(Symbol{Data: KStp, Ctrl: true})
	for i := 0; i < 1000; i++ {
		ev := d.Feed(Symbol{Data: byte(i)})
		require.False(t, ev.HasPacket)
	}
}

func TestDepacketizerDropsNullifiedPacket(t *testing.T) {
	d := NewDepacketizer()
	d.Feed(Symbol{Data: KStp, Ctrl: true})
	d.Feed(Symbol{Data: 0x55})
	ev := d.Feed(Symbol{Data: KEdb, Ctrl: true})
	require.False(t, ev.HasPacket)

	// and it is back to idle, ready for the next packet
	d.Feed(Symbol{Data: KStp, Ctrl: true})
	d.Feed(Symbol{Data: 0x66})
	ev = d.Feed(Symbol{Data: KEnd, Ctrl: true})
	require.True(t, ev.HasPacket)
	require.Equal(t, []byte{0x66}, ev.Packet)
}

func TestTrainingSetDetection(t *testing.T) {
	p := NewPacketizer(0)
	d := NewDepacketizer()

	sawTS1 := false
	for i := 0; i < 8; i++ {
		sym, ok := p.Tick(TxControl{SendTS1: true, RateID: 2})
		require.True(t, ok)
		ev := d.Feed(sym)
		if ev.TS1Seen {
			sawTS1 = true
			require.Equal(t, byte(2), ev.RateID)
		}
		require.False(t, ev.TS2Seen)
	}
	require.True(t, sawTS1)

	sawTS2 := false
	for i := 0; i < 8; i++ {
		sym, _ := p.Tick(TxControl{SendTS2: true, RateID: 1})
		if ev := d.Feed(sym); ev.TS2Seen {
			sawTS2 = true
			require.Equal(t, byte(1), ev.RateID)
		}
	}
	require.True(t, sawTS2)
}

func TestSkipInsertionAndDetection(t *testing.T) {
	p := NewPacketizer(8)
	d := NewDepacketizer()

	sawSkip := false
	for i := 0; i < 40; i++ {
		sym, ok := p.Tick(TxControl{LinkUp: true})
		require.True(t, ok)
		if ev := d.Feed(sym); ev.SkipSeen {
			sawSkip = true
		}
	}
	require.True(t, sawSkip)
}

func TestSkipNotInsertedInsidePacket(t *testing.T) {
	p := NewPacketizer(2)
	// prime the skip counter
	p.Tick(TxControl{LinkUp: true})
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	p.StartPacket(KindTLP, payload)
	syms := collectPacket(t, p, TxControl{LinkUp: true})

	// a due SKP set may precede the start delimiter but never splits the
	// packet
	start := 0
	for syms[start].Data != KStp {
		require.True(t, syms[start].Ctrl)
		start++
	}
	for _, sym := range syms[start+1 : len(syms)-1] {
		require.False(t, sym.Ctrl)
	}
	require.Equal(t, Symbol{Data: KEnd, Ctrl: true}, syms[len(syms)-1])
}

func TestSkipInsertedUnderSustainedTraffic(t *testing.T) {
	p := NewPacketizer(8)
	d := NewDepacketizer()

	// back-to-back packets keep the transmitter busy the whole time, clock
	// compensation sets must still go out between them
	sawSkip := false
	packets := 0
	for i := 0; i < 100; i++ {
		if !p.Busy() {
			p.StartPacket(KindTLP, []byte{0x5a, byte(i)})
		}
		sym, ok := p.Tick(TxControl{LinkUp: true})
		require.True(t, ok)
		ev := d.Feed(sym)
		if ev.SkipSeen {
			sawSkip = true
		}
		if ev.HasPacket {
			packets++
		}
	}
	require.True(t, sawSkip)
	require.Greater(t, packets, 5)
}
