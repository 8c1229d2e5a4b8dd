package sniff

import "io"

const hexdigits = "0123456789ABCDEF"

// AppendText appends the transcript block for t:
//
//	Target=MC
//	TX: 81 52 00
//	RX: FF 08 5A
//
// followed by a blank line.
func (t Transaction) AppendText(dst []byte) []byte {
	dst = append(dst, "Target="...)
	dst = append(dst, t.Target.String()...)
	dst = append(dst, "\nTX:"...)
	for i := t.Start; i < t.End; i++ {
		dst = appendHexByte(dst, t.capture.samples[i].Cmd)
	}
	dst = append(dst, "\nRX:"...)
	for i := t.Start; i < t.End; i++ {
		dst = appendHexByte(dst, t.capture.samples[i].Rsp)
	}
	return append(dst, '\n', '\n')
}

func appendHexByte(dst []byte, b byte) []byte {
	return append(dst, ' ', hexdigits[b>>4], hexdigits[b&0x0F])
}

// WriteTranscript writes one block per transaction, in order, stopping at
// the first write error. No fmt: this runs on the device.
func WriteTranscript(w io.Writer, txs []Transaction) error {
	var line []byte
	for _, t := range txs {
		line = t.AppendText(line[:0])
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}
