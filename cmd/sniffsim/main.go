//go:build !rp2040 && !rp2350

// Command sniffsim runs the capture pipeline against the simulated bus with
// synthetic console traffic and prints the resulting transcript.
package main

import (
	"bufio"
	"flag"
	"log"
	"math/rand"
	"os"

	"github.com/jangala-dev/tinygo-psxsniff/sniff"
)

func main() {
	var (
		samples = flag.Int("n", sniff.DefaultCapacity, "sample pairs to acquire")
		fires   = flag.Int("fires", sniff.DefaultFiresPerEdge, "resync IRQ fires per SEL edge")
		rule    = flag.String("rule", sniff.RuleHalfOdd.String(), "fire count reduction: half-odd, odd or nonzero")
		seed    = flag.Int64("seed", 1, "traffic generator seed")
	)
	flag.Parse()

	r, err := sniff.ParseRule(*rule)
	if err != nil {
		log.Fatalf("-rule %q: %v", *rule, err)
	}

	bus := sniff.NewSimBus(*fires)
	bus.Pace = true
	session := sniff.NewSession(bus, sniff.Config{Capacity: *samples, Rule: r})

	go console(bus, rand.New(rand.NewSource(*seed)))

	capture := session.Run()
	txs := sniff.Segment(capture)

	w := bufio.NewWriter(os.Stdout)
	if err := sniff.WriteTranscript(w, txs); err != nil {
		log.Fatalf("write transcript: %v", err)
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("write transcript: %v", err)
	}
	log.Printf("captured %d samples, %d transactions (rule %s, %d fires/edge)",
		capture.Len(), len(txs), r, *fires)
}

// console plays a PSX polling controller and memory card forever. It starts
// mid-transfer so the capture opens with a partial transaction.
func console(bus *sniff.SimBus, rng *rand.Rand) {
	bus.Exchange([]byte{0x00, 0x00}, []byte{0xFF, 0xFF})
	for i := 0; i < 3; i++ {
		bus.Clock(true, false) // stray bits, dropped by the first resync
	}
	bus.Deselect()
	for frame := 0; ; frame++ {
		cmd, dat := joypadPoll(rng)
		bus.Exchange(cmd, dat)
		bus.Deselect()
		switch {
		case frame%16 == 15:
			cmd, dat := cardRead(rng, uint16(frame/16))
			bus.Exchange(cmd, dat)
			bus.Deselect()
		case frame%7 == 3:
			// Port probe nobody answers.
			bus.Exchange([]byte{0x21, 0x42}, []byte{0xFF, 0xFF})
			bus.Deselect()
		}
	}
}

func joypadPoll(rng *rand.Rand) (cmd, dat []byte) {
	buttons := uint16(rng.Intn(0x10000))
	cmd = []byte{sniff.AddrJoypad, 0x42, 0x00, 0x00, 0x00}
	dat = []byte{0xFF, 0x41, 0x5A, byte(buttons), byte(buttons >> 8)}
	return cmd, dat
}

// cardRead builds a memory card sector read: 10 header bytes, 128 data
// bytes, checksum and end marker.
func cardRead(rng *rand.Rand, sector uint16) (cmd, dat []byte) {
	msb, lsb := byte(sector>>8), byte(sector)
	cmd = []byte{sniff.AddrMemoryCard, 0x52, 0x00, 0x00, msb, lsb, 0x00, 0x00, 0x00, 0x00}
	dat = []byte{0xFF, 0x08, 0x5A, 0x5D, 0x00, 0x00, 0x5C, 0x5D, msb, lsb}
	sum := msb ^ lsb
	for i := 0; i < 128; i++ {
		b := byte(rng.Intn(0x100))
		sum ^= b
		cmd = append(cmd, 0x00)
		dat = append(dat, b)
	}
	cmd = append(cmd, 0x00, 0x00)
	dat = append(dat, sum, 'G')
	return cmd, dat
}
