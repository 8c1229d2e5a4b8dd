//go:build sniffdebug && !rp2040 && !rp2350

package sniff

import "testing"

func TestDebugStats_Counters(t *testing.T) {
	DebugReset()

	var rec ResyncRecord
	h := NewHandler(&opRecorder{}, &rec)
	fires := []int{0, 2, 3, 1}
	rsp := &fakeChannel{data: []byte{10, 11, 12, 13}, hook: func(i int) {
		for n := 0; n < fires[i]; n++ {
			h.Resync()
		}
	}}
	s := NewSampler(&fakeChannel{data: []byte{0, 1, 2, 3}}, rsp, &rec, RuleHalfOdd)
	s.Acquire(NewBuffer(len(fires)))

	// A fire after buffer-full is seen by the handler but never consumed.
	h.Resync()

	got := DebugStats()
	want := Stats{
		Resyncs:    7,
		Samples:    4,
		Fires:      6,
		Starts:     2, // 2 and 3 fires
		MultiFire:  2,
		Suppressed: 1, // 1 fire halves to 0
		MaxFires:   3,
	}
	if got != want {
		t.Fatalf("stats = %+v\nwant    %+v", got, want)
	}

	DebugReset()
	if got := DebugStats(); got != (Stats{}) {
		t.Fatalf("after reset: %+v", got)
	}
}
