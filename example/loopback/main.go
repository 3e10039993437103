// Command loopback trains two links against each other and moves a few
// payloads across the resulting channel, writing an event log for one side.
package main

import (
	"fmt"
	"log"
	"os"

	pcie "github.com/pcie-go/pcie-go"
	"github.com/pcie-go/pcie-go/eventlog"
)

func main() {
	logfile, err := os.Create("loopback.events.json")
	if err != nil {
		log.Fatal(err)
	}

	a, err := pcie.NewLink(&pcie.Config{
		MaxSpeed: pcie.Gen2,
		Tracer:   eventlog.NewTracer(logfile),
	})
	if err != nil {
		log.Fatal(err)
	}
	b, err := pcie.NewLink(&pcie.Config{MaxSpeed: pcie.Gen2})
	if err != nil {
		log.Fatal(err)
	}

	var aIn, bIn pcie.TickInput
	tick := func() {
		aSym, aValid := a.Tick(aIn)
		bSym, bValid := b.Tick(bIn)
		aIn = pcie.TickInput{Symbol: bSym, SymbolValid: bValid}
		bIn = pcie.TickInput{Symbol: aSym, SymbolValid: aValid}
	}

	// train to L0, then let both sides retrain to Gen2 on their own
	ticks := 0
	for ; ticks < 10000 && !(a.LinkUp() && b.LinkUp() && a.LinkSpeed() == pcie.Gen2); ticks++ {
		tick()
	}
	if !a.LinkUp() {
		log.Fatalf("link did not train, stuck in %s", a.State())
	}
	fmt.Printf("link up after %d ticks, speed %s, width x%d\n", ticks, a.LinkSpeed(), a.LinkWidth())

	payloads := [][]byte{
		[]byte("hello"),
		[]byte("data link layer"),
		{0x00, 0x01, 0x02, 0x03},
	}
	for _, p := range payloads {
		if err := a.Send(p); err != nil {
			log.Fatal(err)
		}
	}

	received := 0
	for ; ticks < 50000 && received < len(payloads); ticks++ {
		tick()
		if p, ok := b.Receive(); ok {
			fmt.Printf("delivered %q\n", p)
			received++
		}
	}
	if received < len(payloads) {
		log.Fatalf("only %d of %d payloads delivered", received, len(payloads))
	}

	if err := a.Close(); err != nil {
		log.Fatal(err)
	}
	if err := b.Close(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("done after %d ticks, event log in %s\n", ticks, logfile.Name())
}
