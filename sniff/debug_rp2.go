//go:build (rp2040 || rp2350) && sniffdebug

package sniff

import "device/rp"

// Regs is a snapshot of the PIO0 registers the sniffer uses.
type Regs struct {
	CTRL    uint32 // SM enable bits
	FSTAT   uint32 // FIFO full/empty flags
	FDEBUG  uint32 // sticky stall/overflow flags
	FLEVEL  uint32 // FIFO fill levels
	IRQ     uint32 // raised SM IRQ flags
	INTR    uint32 // raw interrupt status
	SelAddr uint32 // program counters
	CmdAddr uint32
	DatAddr uint32
}

func (b *PIOBus) DebugRegs() Regs {
	return Regs{
		CTRL:    rp.PIO0.CTRL.Get(),
		FSTAT:   rp.PIO0.FSTAT.Get(),
		FDEBUG:  rp.PIO0.FDEBUG.Get(),
		FLEVEL:  rp.PIO0.FLEVEL.Get(),
		IRQ:     rp.PIO0.IRQ.Get(),
		INTR:    rp.PIO0.INTR.Get(),
		SelAddr: smRegs[smSel][smAddr].Get(),
		CmdAddr: smRegs[smCmd][smAddr].Get(),
		DatAddr: smRegs[smDat][smAddr].Get(),
	}
}
