//go:build !rp2040 && !rp2350

package sniff

import (
	"bytes"
	"testing"
	"time"
)

var (
	joyCmd = []byte{0x01, 0x42, 0x00, 0x00, 0x00}
	joyDat = []byte{0xFF, 0x41, 0x5A, 0xFF, 0xF7}
	mcCmd  = []byte{0x81, 0x53, 0x00}
	mcDat  = []byte{0xFF, 0x08, 0x5A}
)

// play drives bus like a console until the bus is closed: a partial frame
// with stray bits, then joypad and memory card frames each closed by SEL.
func play(bus *SimBus) {
	bus.Exchange([]byte{0x00}, []byte{0xFF})
	for i := 0; i < 3; i++ {
		bus.Clock(true, false)
	}
	bus.Deselect()
	for {
		select {
		case <-bus.Closed():
			return
		default:
		}
		bus.Exchange(joyCmd, joyDat)
		bus.Deselect()
		bus.Exchange(mcCmd, mcDat)
		bus.Deselect()
	}
}

func runSession(t *testing.T, fires int, cfg Config) Capture {
	t.Helper()
	bus := NewSimBus(fires)
	bus.Pace = true
	s := NewSession(bus, cfg)

	done := make(chan struct{})
	go func() {
		defer close(done)
		play(bus)
	}()

	got := make(chan Capture, 1)
	go func() { got <- s.Run() }()

	var c Capture
	select {
	case c = <-got:
	case <-time.After(5 * time.Second):
		bus.Close()
		t.Fatal("timeout waiting for acquisition")
	}
	bus.Close()
	<-done
	return c
}

func TestSession_DoubleFireHalfOdd(t *testing.T) {
	// 1 leading + 5 joy + 3 mc + 5 joy + first 2 of mc.
	c := runSession(t, 2, Config{Capacity: 16, Rule: RuleHalfOdd})
	if c.Len() != 16 {
		t.Fatalf("capture len = %d; want 16", c.Len())
	}

	txs := Segment(c)
	if len(txs) != 3 {
		t.Fatalf("got %d transactions; want 3 (starts %v)", len(txs), c.Starts())
	}
	want := []struct {
		start  int
		target Target
		tx, rx []byte
	}{
		{1, TargetJoypad, joyCmd, joyDat},
		{6, TargetMemoryCard, mcCmd, mcDat},
		{9, TargetJoypad, joyCmd, joyDat},
	}
	for i, w := range want {
		tx := txs[i]
		if tx.Start != w.start || tx.Target != w.target {
			t.Fatalf("tx%d = [%d,%d) %s; want start %d %s", i, tx.Start, tx.End, tx.Target, w.start, w.target)
		}
		if !bytes.Equal(tx.TX(), w.tx) || !bytes.Equal(tx.RX(), w.rx) {
			t.Fatalf("tx%d TX=% X RX=% X; want TX=% X RX=% X", i, tx.TX(), tx.RX(), w.tx, w.rx)
		}
	}
	if c.At(0).Start {
		t.Fatal("leading partial sample tagged as start")
	}
}

func TestSession_SingleFireNonZero(t *testing.T) {
	c := runSession(t, 1, Config{Capacity: 16, Rule: RuleNonZero})
	if got := c.Starts(); len(got) != 4 || got[0] != 1 || got[3] != 14 {
		t.Fatalf("starts = %v; want [1 6 9 14]", got)
	}
	if txs := Segment(c); len(txs) != 3 {
		t.Fatalf("got %d transactions; want 3", len(txs))
	}
}

func TestSession_OddRuleMissesDoubleFire(t *testing.T) {
	// Two fires per edge reduce to false under the odd-count rule, so no
	// boundary is ever seen.
	c := runSession(t, 2, Config{Capacity: 16, Rule: RuleOddCount})
	if got := c.Starts(); len(got) != 0 {
		t.Fatalf("starts = %v; want none", got)
	}
	if txs := Segment(c); len(txs) != 0 {
		t.Fatalf("got %d transactions; want 0", len(txs))
	}
}

func TestSession_DefaultCapacity(t *testing.T) {
	c := runSession(t, 2, Config{})
	if c.Len() != DefaultCapacity {
		t.Fatalf("capture len = %d; want %d", c.Len(), DefaultCapacity)
	}
	// 8 samples per joy+mc pair after the single leading sample.
	txs := Segment(c)
	if want := (DefaultCapacity-1)/8*2 - 1; len(txs) < want {
		t.Fatalf("got %d transactions; want at least %d", len(txs), want)
	}
	for i, tx := range txs {
		if tx.Target == TargetUnknown {
			t.Fatalf("tx%d at %d has unknown target", i, tx.Start)
		}
	}
}

type fakeChannel struct {
	data []byte
	i    int
	hook func(i int)
}

func (c *fakeChannel) ReadByteBlocking() byte {
	if c.hook != nil {
		c.hook(c.i)
	}
	b := c.data[c.i]
	c.i++
	return b
}

func TestSampler_TagsFirstPairAfterResync(t *testing.T) {
	var rec ResyncRecord
	h := NewHandler(&opRecorder{}, &rec)

	// The resync lands while the sampler waits for byte 2 of the response
	// line; byte pair 2 must carry it, and only pair 2.
	rsp := &fakeChannel{data: []byte{10, 11, 12, 13}, hook: func(i int) {
		if i == 2 {
			h.Resync()
			h.Resync()
		}
	}}
	cmd := &fakeChannel{data: []byte{0, 1, 2, 3}}
	s := NewSampler(cmd, rsp, &rec, RuleHalfOdd)

	c := s.Acquire(NewBuffer(4))
	for i := 0; i < c.Len(); i++ {
		sm := c.At(i)
		if sm.Cmd != byte(i) || sm.Rsp != byte(10+i) {
			t.Fatalf("sample %d = %+v", i, sm)
		}
		if sm.Start != (i == 2) {
			t.Fatalf("sample %d start = %v", i, sm.Start)
		}
	}
}

func TestBuffer_SealTransfersOwnership(t *testing.T) {
	var rec ResyncRecord
	buf := NewBuffer(2)
	s := NewSampler(&fakeChannel{data: []byte{1, 2}}, &fakeChannel{data: []byte{3, 4}}, &rec, RuleHalfOdd)

	c := s.Acquire(buf)
	if c.Len() != 2 || buf.Len() != 0 || buf.Cap() != 0 {
		t.Fatalf("capture len=%d buffer len=%d cap=%d", c.Len(), buf.Len(), buf.Cap())
	}
}
