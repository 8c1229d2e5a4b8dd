//go:build (rp2040 || rp2350) && sniffdebug

package main

import (
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-psxsniff/sniff"
)

// Short capture with register and counter dumps, for checking the wiring
// and the IRQ fire pattern on a live console.
const probeSamples = 256

func printRegs(label string) {
	r := sniff.Bus0.DebugRegs()
	println("==", label)
	print("CTRL   = 0x")
	printlnHex(r.CTRL)
	print("FSTAT  = 0x")
	printlnHex(r.FSTAT)
	print("FDEBUG = 0x")
	printlnHex(r.FDEBUG)
	print("FLEVEL = 0x")
	printlnHex(r.FLEVEL)
	print("IRQ    = 0x")
	printlnHex(r.IRQ)
	print("INTR   = 0x")
	printlnHex(r.INTR)
	println("PC:     sel=", r.SelAddr, " cmd=", r.CmdAddr, " dat=", r.DatAddr)
}

func printStats(label string) {
	s := sniff.DebugStats()
	println("==", label)
	println("Resyncs:", s.Resyncs)
	println("Samples:", s.Samples, " starts=", s.Starts)
	println("Fires:  total=", s.Fires, " multi=", s.MultiFire, " max/interval=", s.MaxFires)
	println("Rule:   suppressed=", s.Suppressed)
}

func main() {
	delay := 5
	for i := 0; i < delay; i++ {
		println("probe starting in ", delay-i, " seconds")
		time.Sleep(time.Second)
	}
	println("psxsniff PIO probe")

	bus := sniff.Bus0
	cfg := sniff.DefaultConfig()
	cfg.Capacity = probeSamples
	session := sniff.NewSession(bus, cfg)
	if err := bus.Configure(sniff.BusConfig{}); err != nil {
		println("fatal:", err.Error())
		halt()
	}
	printRegs("after Configure")

	sniff.DebugReset()
	capture := session.Run()
	printRegs("after capture")
	printStats("after capture")

	txs := sniff.Segment(capture)
	println("transactions:", len(txs))
	_ = sniff.WriteTranscript(machine.Serial, txs)
	_ = bus.Close()
	println("\ndone")
	halt()
}

func printlnHex(v uint32) {
	const hexdigits = "0123456789abcdef"
	var b [8]byte
	for i := 0; i < 8; i++ {
		shift := uint(28 - 4*i)
		b[i] = hexdigits[(v>>shift)&0xF]
	}
	println(string(b[:]))
}

func halt() {
	for {
		time.Sleep(time.Hour)
	}
}
