//go:build !rp2040 && !rp2350

package sniff

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Host shim: a bit-level model of the PIO readers, no device/rp or machine deps.

// fifoDepth matches a PIO RX FIFO joined to eight entries.
const fifoDepth = 8

// DefaultFiresPerEdge reproduces the double-firing SEL interrupt seen on
// real hardware.
const DefaultFiresPerEdge = 2

// SimBus models the sampling hardware. A producer goroutine plays the console
// by clocking bits and raising SEL; the sampler reads from the other side.
type SimBus struct {
	// Pace makes Deselect wait until the sniffer has drained both FIFOs and
	// is blocked on the next command byte, like the gap between real
	// transactions. Leave it off when nothing is reading the bus.
	Pace bool

	fires int

	mu       sync.Mutex
	enabled  bool
	cmd, dat simChannel
	handler  func()

	closed    chan struct{}
	closeOnce sync.Once
}

// simChannel is one reader state machine: an 8-bit input shift register
// with autopush into a bounded FIFO.
type simChannel struct {
	shift   byte
	bits    uint8
	fifo    chan byte
	waiting atomic.Int32
}

// NewSimBus returns an enabled bus whose SEL event fires firesPerEdge times
// per rising edge. Values below 1 select DefaultFiresPerEdge.
func NewSimBus(firesPerEdge int) *SimBus {
	if firesPerEdge < 1 {
		firesPerEdge = DefaultFiresPerEdge
	}
	return &SimBus{
		fires:   firesPerEdge,
		enabled: true,
		cmd:     simChannel{fifo: make(chan byte, fifoDepth)},
		dat:     simChannel{fifo: make(chan byte, fifoDepth)},
		closed:  make(chan struct{}),
	}
}

// ReadByteBlocking pops the next decoded byte.
func (c *simChannel) ReadByteBlocking() byte {
	c.waiting.Add(1)
	b := <-c.fifo
	c.waiting.Add(-1)
	return b
}

// in shifts one bit in from the MSB side (shift right), returning the byte
// once eight bits are in. Bits arrive LSB first on the wire.
func (c *simChannel) in(bit bool) (byte, bool) {
	c.shift >>= 1
	if bit {
		c.shift |= 0x80
	}
	c.bits++
	if c.bits < 8 {
		return 0, false
	}
	b := c.shift
	c.shift, c.bits = 0, 0
	return b, true
}

func (c *simChannel) rewind() { c.shift, c.bits = 0, 0 }

func (b *SimBus) Command() ByteChannel  { return &b.cmd }
func (b *SimBus) Response() ByteChannel { return &b.dat }

func (b *SimBus) HandleResync(fn func()) {
	b.mu.Lock()
	b.handler = fn
	b.mu.Unlock()
}

func (b *SimBus) DisableChannels() {
	b.mu.Lock()
	b.enabled = false
	b.mu.Unlock()
}

func (b *SimBus) RewindChannels() {
	b.mu.Lock()
	b.cmd.rewind()
	b.dat.rewind()
	b.mu.Unlock()
}

// AckResync has nothing to clear: Deselect raises the event by calling the
// handler directly.
func (b *SimBus) AckResync() {}

func (b *SimBus) EnableChannelsInSync() {
	b.mu.Lock()
	b.enabled = true
	b.mu.Unlock()
}

// Clock presents one bit on each line at a rising clock edge. A complete
// byte is pushed to its FIFO, blocking while the FIFO is full.
func (b *SimBus) Clock(cmdBit, datBit bool) {
	b.mu.Lock()
	if !b.enabled {
		b.mu.Unlock()
		return
	}
	cb, cok := b.cmd.in(cmdBit)
	db, dok := b.dat.in(datBit)
	b.mu.Unlock()
	if cok {
		b.push(b.cmd.fifo, cb)
	}
	if dok {
		b.push(b.dat.fifo, db)
	}
}

func (b *SimBus) push(fifo chan byte, v byte) {
	select {
	case fifo <- v:
	case <-b.closed:
	}
}

// Exchange clocks a full transfer of byte pairs, LSB first. The shorter
// side is padded with 0xFF, the idle level of both lines.
func (b *SimBus) Exchange(cmd, dat []byte) {
	n := max(len(cmd), len(dat))
	for i := 0; i < n; i++ {
		c, d := byte(0xFF), byte(0xFF)
		if i < len(cmd) {
			c = cmd[i]
		}
		if i < len(dat) {
			d = dat[i]
		}
		for bit := 0; bit < 8; bit++ {
			b.Clock(c>>bit&1 == 1, d>>bit&1 == 1)
		}
	}
}

// Deselect models SEL going high: the resync event fires once per
// configured repeat, each time running the installed handler.
func (b *SimBus) Deselect() {
	if b.Pace && !b.waitIdle() {
		return
	}
	b.mu.Lock()
	fn := b.handler
	b.mu.Unlock()
	if fn == nil {
		return
	}
	for i := 0; i < b.fires; i++ {
		fn()
	}
}

// waitIdle spins until the reader has consumed everything and is parked on
// the command FIFO, i.e. it has finished tagging the previous sample. It
// returns false if the bus was closed first.
func (b *SimBus) waitIdle() bool {
	for len(b.cmd.fifo) > 0 || len(b.dat.fifo) > 0 || b.cmd.waiting.Load() == 0 {
		select {
		case <-b.closed:
			return false
		default:
		}
		runtime.Gosched()
	}
	return true
}

// Closed returns a channel closed by Close. Producers use it to stop.
func (b *SimBus) Closed() <-chan struct{} { return b.closed }

// Close stops the bus: pending and future pushes are dropped and a paced
// Deselect returns without firing.
func (b *SimBus) Close() error {
	b.closeOnce.Do(func() { close(b.closed) })
	return nil
}
