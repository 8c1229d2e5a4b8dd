package sniff

// Transaction is a view of one complete exchange, samples [Start, End) of a
// Capture. It never copies or modifies the capture.
type Transaction struct {
	Start, End int
	Target     Target

	capture Capture
}

// Len returns the number of byte pairs in the transaction.
func (t Transaction) Len() int { return t.End - t.Start }

// TX returns the bytes sent by the console (CMD line).
func (t Transaction) TX() []byte {
	p := make([]byte, 0, t.Len())
	for i := t.Start; i < t.End; i++ {
		p = append(p, t.capture.samples[i].Cmd)
	}
	return p
}

// RX returns the bytes sent back by the peripheral (DAT line).
func (t Transaction) RX() []byte {
	p := make([]byte, 0, t.Len())
	for i := t.Start; i < t.End; i++ {
		p = append(p, t.capture.samples[i].Rsp)
	}
	return p
}

// Segment splits c into transactions in one pass.
//
// A transaction runs from a segment-start sample up to the next one. Samples
// before the first start are the tail of a transfer already in progress when
// acquisition began and are dropped; a start at index 0 opens a real
// transaction. The run after the last start is still open at buffer-full time
// and is dropped too. Runs shorter than one sample are never emitted.
func Segment(c Capture) []Transaction {
	var txs []Transaction
	cur := -1
	for i := range c.samples {
		if !c.samples[i].Start {
			continue
		}
		if cur >= 0 && i-cur >= 1 {
			txs = append(txs, Transaction{
				Start:   cur,
				End:     i,
				Target:  Classify(c.samples[cur].Cmd),
				capture: c,
			})
		}
		cur = i
	}
	return txs
}
