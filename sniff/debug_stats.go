//go:build sniffdebug

package sniff

import "sync/atomic"

// Stats holds acquisition counters since the last reset.
type Stats struct {
	Resyncs    uint32 // handler invocations, consumed or not
	Samples    uint32 // sample pairs stored
	Fires      uint32 // resync fires consumed by the sampler
	Starts     uint32 // samples tagged as segment start
	MultiFire  uint32 // sample intervals that saw more than one fire
	Suppressed uint32 // intervals with fires that the rule reduced to false
	MaxFires   uint32 // most fires seen in a single interval
}

var stats Stats

// Called from the handler, in interrupt context on hardware.
func dbgResync() {
	atomic.AddUint32(&stats.Resyncs, 1)
}

func dbgSample(fires uint32, start bool) {
	atomic.AddUint32(&stats.Samples, 1)
	if fires == 0 {
		return
	}
	atomic.AddUint32(&stats.Fires, fires)
	if start {
		atomic.AddUint32(&stats.Starts, 1)
	} else {
		atomic.AddUint32(&stats.Suppressed, 1)
	}
	if fires > 1 {
		atomic.AddUint32(&stats.MultiFire, 1)
	}
	for {
		cur := atomic.LoadUint32(&stats.MaxFires)
		if fires <= cur {
			break
		}
		if atomic.CompareAndSwapUint32(&stats.MaxFires, cur, fires) {
			break
		}
	}
}

// DebugReset zeroes the counters.
func DebugReset() {
	atomic.StoreUint32(&stats.Resyncs, 0)
	atomic.StoreUint32(&stats.Samples, 0)
	atomic.StoreUint32(&stats.Fires, 0)
	atomic.StoreUint32(&stats.Starts, 0)
	atomic.StoreUint32(&stats.MultiFire, 0)
	atomic.StoreUint32(&stats.Suppressed, 0)
	atomic.StoreUint32(&stats.MaxFires, 0)
}

// DebugStats returns a copy of the counters.
func DebugStats() Stats {
	return Stats{
		Resyncs:    atomic.LoadUint32(&stats.Resyncs),
		Samples:    atomic.LoadUint32(&stats.Samples),
		Fires:      atomic.LoadUint32(&stats.Fires),
		Starts:     atomic.LoadUint32(&stats.Starts),
		MultiFire:  atomic.LoadUint32(&stats.MultiFire),
		Suppressed: atomic.LoadUint32(&stats.Suppressed),
		MaxFires:   atomic.LoadUint32(&stats.MaxFires),
	}
}
