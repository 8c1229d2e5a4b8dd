//go:build (rp2040 || rp2350) && !sniffdebug

package sniff

type Regs struct{}

func (b *PIOBus) DebugRegs() Regs { return Regs{} }
