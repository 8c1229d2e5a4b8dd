//go:build !sniffdebug

package sniff

func dbgResync()             {}
func dbgSample(uint32, bool) {}

type Stats struct{}

func DebugReset()       {}
func DebugStats() Stats { return Stats{} }
