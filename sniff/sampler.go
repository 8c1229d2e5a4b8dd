package sniff

// Sampler is the acquisition loop. It owns the Buffer while running.
type Sampler struct {
	cmd, rsp ByteChannel
	rec      *ResyncRecord
	rule     ResyncRule
}

// NewSampler returns a sampler reading cmd and rsp and tagging samples from
// rec through rule.
func NewSampler(cmd, rsp ByteChannel, rec *ResyncRecord, rule ResyncRule) *Sampler {
	return &Sampler{cmd: cmd, rsp: rsp, rec: rec, rule: rule}
}

// Acquire fills buf to capacity and returns it sealed as a Capture.
//
// Each iteration blocks for one command byte, then one response byte, and
// only then consumes the resync record. The bus guarantees the resync for a
// boundary is handled before the first byte of the next transaction, so the
// first pair after the boundary is the one that sees the fires.
func (s *Sampler) Acquire(buf *Buffer) Capture {
	for !buf.Full() {
		c := s.cmd.ReadByteBlocking()
		r := s.rsp.ReadByteBlocking()
		fires := s.rec.consume()
		start := s.rule.Reduce(fires)
		dbgSample(fires, start)
		buf.append(Sample{Cmd: c, Rsp: r, Start: start})
	}
	return buf.seal()
}
