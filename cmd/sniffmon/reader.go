//go:build linux

package main

import (
	"io"
	"time"
)

// idleReader turns the port's read timeouts into retries. The port is opened
// with MinimumReadSize 0, so an idle line makes Read return (0, io.EOF)
// every InterCharacterTimeout; idleReader reports a real io.EOF only once
// stop is closed or the line has been silent for longer than idle (if idle
// is non-zero).
type idleReader struct {
	r    io.Reader
	stop <-chan struct{}
	idle time.Duration

	now func() time.Time
}

func newIdleReader(r io.Reader, stop <-chan struct{}, idle time.Duration) *idleReader {
	return &idleReader{r: r, stop: stop, idle: idle, now: time.Now}
}

func (ir *idleReader) Read(p []byte) (int, error) {
	last := ir.now()
	for {
		select {
		case <-ir.stop:
			return 0, io.EOF
		default:
		}
		n, err := ir.r.Read(p)
		if n > 0 {
			return n, nil
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
		if ir.idle > 0 && ir.now().Sub(last) >= ir.idle {
			return 0, io.EOF
		}
	}
}
