//go:build !rp2040 && !rp2350

package sniff

import (
	"testing"
	"time"
)

func readWithin(t *testing.T, c ByteChannel, d time.Duration) byte {
	t.Helper()
	got := make(chan byte, 1)
	go func() { got <- c.ReadByteBlocking() }()
	select {
	case b := <-got:
		return b
	case <-time.After(d):
		t.Fatal("timeout waiting for byte")
		return 0
	}
}

func TestSimBus_LSBFirst(t *testing.T) {
	bus := NewSimBus(1)
	defer bus.Close()

	bus.Exchange([]byte{0x81, 0x42}, []byte{0x5A})

	for _, want := range []byte{0x81, 0x42} {
		if got := readWithin(t, bus.Command(), 200*time.Millisecond); got != want {
			t.Fatalf("cmd got 0x%02X want 0x%02X", got, want)
		}
	}
	for _, want := range []byte{0x5A, 0xFF} {
		if got := readWithin(t, bus.Response(), 200*time.Millisecond); got != want {
			t.Fatalf("dat got 0x%02X want 0x%02X", got, want)
		}
	}
}

func TestSimBus_DisabledDropsBits(t *testing.T) {
	bus := NewSimBus(1)
	defer bus.Close()

	bus.DisableChannels()
	bus.Exchange([]byte{0x11}, []byte{0x22})
	bus.EnableChannelsInSync()
	bus.Exchange([]byte{0x33}, []byte{0x44})

	if got := readWithin(t, bus.Command(), 200*time.Millisecond); got != 0x33 {
		t.Fatalf("cmd got 0x%02X want 0x33", got)
	}
	if got := readWithin(t, bus.Response(), 200*time.Millisecond); got != 0x44 {
		t.Fatalf("dat got 0x%02X want 0x44", got)
	}
}

func TestSimBus_RewindRealigns(t *testing.T) {
	stray := func(bus *SimBus) {
		for i := 0; i < 3; i++ {
			bus.Clock(true, true)
		}
	}

	bus := NewSimBus(1)
	defer bus.Close()
	stray(bus)
	bus.Exchange([]byte{0x42}, []byte{0x5A})
	if got := readWithin(t, bus.Command(), 200*time.Millisecond); got == 0x42 {
		t.Fatal("expected misaligned byte without rewind")
	}

	bus = NewSimBus(1)
	defer bus.Close()
	stray(bus)
	bus.RewindChannels()
	bus.Exchange([]byte{0x42}, []byte{0x5A})
	if got := readWithin(t, bus.Command(), 200*time.Millisecond); got != 0x42 {
		t.Fatalf("cmd got 0x%02X want 0x42", got)
	}
	if got := readWithin(t, bus.Response(), 200*time.Millisecond); got != 0x5A {
		t.Fatalf("dat got 0x%02X want 0x5A", got)
	}
}

func TestSimBus_DeselectFiresPerEdge(t *testing.T) {
	bus := NewSimBus(2)
	defer bus.Close()

	calls := 0
	bus.HandleResync(func() { calls++ })
	bus.Deselect()
	bus.Deselect()
	if calls != 4 {
		t.Fatalf("handler calls = %d; want 4", calls)
	}
}

func TestSimBus_DefaultFiresPerEdge(t *testing.T) {
	for _, n := range []int{0, -1} {
		bus := NewSimBus(n)
		calls := 0
		bus.HandleResync(func() { calls++ })
		bus.Deselect()
		bus.Close()
		if calls != DefaultFiresPerEdge {
			t.Fatalf("NewSimBus(%d): handler calls = %d; want %d", n, calls, DefaultFiresPerEdge)
		}
	}
}

func TestSimBus_CloseUnblocksProducer(t *testing.T) {
	bus := NewSimBus(1)
	bus.Pace = true

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Nobody reads: the FIFO fills and the paced Deselect never settles.
		bus.Exchange(make([]byte, 2*fifoDepth), nil)
		bus.Deselect()
	}()

	time.Sleep(20 * time.Millisecond)
	bus.Close()

	select {
	case <-done:
	case <-time.After(300 * time.Millisecond):
		t.Fatal("producer still blocked after Close")
	}
}
