package sniff

// Sample is one command/response byte pair. Start is set on the first
// sample taken after a resync.
type Sample struct {
	Cmd   byte
	Rsp   byte
	Start bool
}

// Buffer is the fixed-capacity sample store written by the Sampler. It is
// append-only and never wraps.
type Buffer struct {
	samples []Sample
}

// NewBuffer allocates a buffer for capacity samples up front.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{samples: make([]Sample, 0, capacity)}
}

func (b *Buffer) Len() int   { return len(b.samples) }
func (b *Buffer) Cap() int   { return cap(b.samples) }
func (b *Buffer) Full() bool { return len(b.samples) == cap(b.samples) }

func (b *Buffer) append(s Sample) {
	b.samples = append(b.samples, s)
}

// seal hands the samples over as a Capture. The buffer keeps no reference,
// so nothing can write to the capture afterwards.
func (b *Buffer) seal() Capture {
	c := Capture{samples: b.samples}
	b.samples = nil
	return c
}

// Capture is the read-only result of one acquisition.
type Capture struct {
	samples []Sample
}

// NewCapture copies samples into a capture, for offline segmentation.
func NewCapture(samples []Sample) Capture {
	return Capture{samples: append([]Sample(nil), samples...)}
}

func (c Capture) Len() int        { return len(c.samples) }
func (c Capture) At(i int) Sample { return c.samples[i] }

// Starts returns the indices of the segment-start samples.
func (c Capture) Starts() []int {
	var idx []int
	for i := range c.samples {
		if c.samples[i].Start {
			idx = append(idx, i)
		}
	}
	return idx
}
