// sniff/bus_rp2.go

//go:build rp2040 || rp2350

package sniff

import (
	"device/rp"
	"errors"
	"machine"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"
)

var (
	ErrBadPin       = errors.New("pin not usable for bus sampling")
	ErrProgramSpace = errors.New("PIO instruction memory full")
)

// BusConfig names the pins of the controller port. The zero value selects
// the default wiring.
type BusConfig struct {
	DAT machine.Pin // peripheral -> console data
	CMD machine.Pin // console -> peripheral data
	SEL machine.Pin // chip select, active low
	CLK machine.Pin // bus clock, data valid on the rising edge
	ACK machine.Pin // peripheral acknowledge (not sampled)
}

func defaultBusConfig() BusConfig {
	return BusConfig{DAT: 5, CMD: 6, SEL: 7, CLK: 8, ACK: 9}
}

// State machine allocation on PIO0.
const (
	smSel = 0 // SEL monitor, raises PIO IRQ flag 0 on SEL rising
	smCmd = 1 // CMD reader
	smDat = 2 // DAT reader

	readerMask = 1<<smCmd | 1<<smDat
	allMask    = 1<<smSel | readerMask
)

// PIO register fields (RP2040 datasheet 3.7).
const (
	ctrlSMEnablePos      = 0
	ctrlSMRestartPos     = 4
	ctrlClkdivRestartPos = 8

	fstatRxEmptyPos = 8

	execWrapBottomPos = 7
	execWrapTopPos    = 12

	shiftAutopush   = 1 << 16
	shiftInRight    = 1 << 18
	shiftOutRight   = 1 << 19
	shiftPushThrPos = 20
	shiftFJoinRX    = 1 << 31

	pinInBasePos = 15

	clkdivIntPos = 16

	inteSM0 = 1 << 8 // IRQ0_INTE: SM IRQ flag 0
	irqSel  = 1 << 0 // IRQ flag raised by the SEL monitor

	numInstr = 32
)

// Per state machine register block: CLKDIV, EXECCTRL, SHIFTCTRL, ADDR, INSTR, PINCTRL.
const (
	smClkdiv = iota
	smExecctrl
	smShiftctrl
	smAddr
	smInstr
	smPinctrl
	smRegCount
)

var (
	instrMem = (*[numInstr]volatile.Register32)(unsafe.Pointer(&rp.PIO0.INSTR_MEM0))
	smRegs   = (*[4][smRegCount]volatile.Register32)(unsafe.Pointer(&rp.PIO0.SM0_CLKDIV))
	rxFIFO   = (*[4]volatile.Register32)(unsafe.Pointer(&rp.PIO0.RXF0))
)

// Instruction encodings, as pioasm -o go would emit them.
func encWaitGPIO(level bool, pin machine.Pin) uint16 {
	v := uint16(0x2000) | uint16(pin)&0x1F
	if level {
		v |= 0x80
	}
	return v
}

func encJmp(addr uint8) uint16 { return uint16(addr) & 0x1F }

const (
	instrInPins1 = 0x4001 // in pins, 1
	instrIRQ0    = 0xC000 // irq 0
)

// selMonitorProgram raises IRQ 0 each time SEL goes high.
//
//	.wrap_target
//	    wait 1 gpio SEL
//	    irq 0
//	    wait 0 gpio SEL
//	.wrap
func selMonitorProgram(sel machine.Pin) []uint16 {
	return []uint16{
		encWaitGPIO(true, sel),
		instrIRQ0,
		encWaitGPIO(false, sel),
	}
}

// readerProgram samples one bit per rising CLK while SEL is low. Shared by
// both readers; in_base picks the line.
//
//	    wait 0 gpio SEL
//	.wrap_target
//	    wait 0 gpio CLK
//	    wait 1 gpio CLK
//	    in pins, 1
//	.wrap
func readerProgram(sel, clk machine.Pin) []uint16 {
	return []uint16{
		encWaitGPIO(false, sel),
		encWaitGPIO(false, clk),
		encWaitGPIO(true, clk),
		instrInPins1,
	}
}

// PIOBus samples the controller port with three PIO0 state machines.
type PIOBus struct {
	cfg       BusConfig
	selOffset uint8
	rdOffset  uint8
	cmd, dat  pioChannel

	Interrupt interrupt.Interrupt
}

// pioChannel is one reader state machine.
type pioChannel struct{ sm uint8 }

// Bus0 is the sniffer on PIO0.
var Bus0 = &PIOBus{
	cmd: pioChannel{sm: smCmd},
	dat: pioChannel{sm: smDat},
}

// resyncHandler runs from the PIO0_IRQ_0 handler.
var resyncHandler func()

// Configure resets PIO0, loads the programs, starts all three state
// machines in sync and unmasks the SEL interrupt. Install the resync handler
// first.
func (b *PIOBus) Configure(cfg BusConfig) error {
	if cfg == (BusConfig{}) {
		cfg = defaultBusConfig()
	}
	for _, p := range []machine.Pin{cfg.DAT, cfg.CMD, cfg.SEL, cfg.CLK, cfg.ACK} {
		if p >= 30 {
			return ErrBadPin
		}
	}
	b.cfg = cfg

	resetPIO0()

	for _, p := range []machine.Pin{cfg.DAT, cfg.CMD, cfg.SEL, cfg.CLK, cfg.ACK} {
		p.Configure(machine.PinConfig{Mode: machine.PinInput})
	}

	// 1) Load programs back to back from address 0.
	sel := selMonitorProgram(cfg.SEL)
	rd := readerProgram(cfg.SEL, cfg.CLK)
	if len(sel)+len(rd) > numInstr {
		return ErrProgramSpace
	}
	b.selOffset = 0
	b.rdOffset = uint8(len(sel))
	loadProgram(sel, b.selOffset)
	loadProgram(rd, b.rdOffset)

	// 2) State machine setup. Full speed clock; readers shift right and
	// autopush every 8 bits into a joined 8-deep RX FIFO.
	initSM(smSel, b.selOffset, b.selOffset, b.selOffset+uint8(len(sel))-1,
		shiftInRight|shiftOutRight, 0)
	readerShift := uint32(shiftAutopush | shiftInRight | shiftOutRight | 8<<shiftPushThrPos | shiftFJoinRX)
	wrapEnd := b.rdOffset + uint8(len(rd)) - 1
	initSM(smCmd, b.rdOffset, b.rdOffset+1, wrapEnd, readerShift, uint32(cfg.CMD)<<pinInBasePos)
	initSM(smDat, b.rdOffset, b.rdOffset+1, wrapEnd, readerShift, uint32(cfg.DAT)<<pinInBasePos)

	// 3) IRQ: clear stale flags, route SM flag 0 to PIO0_IRQ_0.
	rp.PIO0.IRQ.Set(0xFF)
	if b.Interrupt == (interrupt.Interrupt{}) {
		b.Interrupt = interrupt.New(rp.IRQ_PIO0_IRQ_0, handlePIO0IRQ0)
		b.Interrupt.SetPriority(0x00)
	}
	rp.PIO0.IRQ0_INTE.Set(inteSM0)
	b.Interrupt.Enable()

	// 4) Start all three together.
	rp.PIO0.CTRL.SetBits(allMask<<ctrlSMEnablePos | allMask<<ctrlClkdivRestartPos)
	return nil
}

func (b *PIOBus) Command() ByteChannel  { return &b.cmd }
func (b *PIOBus) Response() ByteChannel { return &b.dat }

// HandleResync installs fn for the SEL interrupt. Call before Configure.
func (b *PIOBus) HandleResync(fn func()) { resyncHandler = fn }

func (b *PIOBus) DisableChannels() {
	rp.PIO0.CTRL.ClearBits(readerMask << ctrlSMEnablePos)
}

// RewindChannels clears the readers' shift counters and jumps them back to
// the first instruction, so decoding restarts at bit zero.
func (b *PIOBus) RewindChannels() {
	rp.PIO0.CTRL.SetBits(readerMask << ctrlSMRestartPos)
	jmp := uint32(encJmp(b.rdOffset))
	smRegs[smCmd][smInstr].Set(jmp)
	smRegs[smDat][smInstr].Set(jmp)
}

func (b *PIOBus) AckResync() { rp.PIO0.IRQ.Set(irqSel) }

// EnableChannelsInSync enables both readers and restarts their clock
// dividers in one register write.
func (b *PIOBus) EnableChannelsInSync() {
	rp.PIO0.CTRL.SetBits(readerMask<<ctrlSMEnablePos | readerMask<<ctrlClkdivRestartPos)
}

// Close masks the SEL interrupt and stops all state machines.
func (b *PIOBus) Close() error {
	rp.PIO0.IRQ0_INTE.ClearBits(inteSM0)
	rp.PIO0.CTRL.ClearBits(allMask << ctrlSMEnablePos)
	return nil
}

// ReadByteBlocking spins on the RX FIFO. The byte sits in the top 8 bits
// after a right-shifting autopush.
func (c *pioChannel) ReadByteBlocking() byte {
	for rp.PIO0.FSTAT.HasBits(1 << (fstatRxEmptyPos + uint32(c.sm))) {
	}
	return byte(rxFIFO[c.sm].Get() >> 24)
}

// ------------------------------- Internals --------------------------------

func handlePIO0IRQ0(interrupt.Interrupt) {
	if resyncHandler != nil {
		resyncHandler()
		return
	}
	rp.PIO0.IRQ.Set(irqSel)
}

func resetPIO0() {
	const mask = rp.RESETS_RESET_PIO0
	rp.RESETS.RESET.SetBits(mask)
	rp.RESETS.RESET.ClearBits(mask)
	for !rp.RESETS.RESET_DONE.HasBits(mask) {
	}
}

func loadProgram(prog []uint16, offset uint8) {
	for i, instr := range prog {
		instrMem[int(offset)+i].Set(uint32(instr))
	}
}

func initSM(sm int, start, wrapBottom, wrapTop uint8, shiftctrl, pinctrl uint32) {
	rp.PIO0.CTRL.ClearBits(1 << (ctrlSMEnablePos + uint32(sm)))
	r := &smRegs[sm]
	r[smClkdiv].Set(1 << clkdivIntPos)
	r[smExecctrl].Set(uint32(wrapTop)<<execWrapTopPos | uint32(wrapBottom)<<execWrapBottomPos)
	r[smShiftctrl].Set(shiftctrl)
	r[smPinctrl].Set(pinctrl)
	rp.PIO0.CTRL.SetBits(1 << (ctrlSMRestartPos + uint32(sm)))
	r[smInstr].Set(uint32(encJmp(start)))
}
