//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-psxsniff/sniff"
)

// Wiring (controller port -> Pico):
//   DAT GP5, CMD GP6, SEL GP7, CLK GP8, ACK GP9, GND.
func main() {
	// Give the USB console time to enumerate.
	time.Sleep(2 * time.Second)
	println("\n\nBeginning Execution...")

	bus := sniff.Bus0
	session := sniff.NewSession(bus, sniff.DefaultConfig())
	if err := bus.Configure(sniff.BusConfig{}); err != nil {
		println("bus configure error:", err.Error())
		halt()
	}

	capture := session.Run()
	_ = bus.Close()

	txs := sniff.Segment(capture)
	println("captured", capture.Len(), "samples,", len(txs), "transactions")
	if err := sniff.WriteTranscript(machine.Serial, txs); err != nil {
		println("transcript write error:", err.Error())
	}
	halt()
}

func halt() {
	for {
		time.Sleep(time.Hour)
	}
}
