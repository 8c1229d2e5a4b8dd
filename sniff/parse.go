package sniff

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Exchange is a transaction read back from a transcript.
type Exchange struct {
	Target Target
	TX     []byte
	RX     []byte
}

// ParseError reports a malformed transcript block.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// TranscriptScanner reads transcript blocks from a stream, for example the
// sniffer's serial console. Lines outside blocks (boot banner, noise) are
// skipped. Use it like bufio.Scanner.
type TranscriptScanner struct {
	sc   *bufio.Scanner
	line int
	ex   Exchange
	err  error
}

// NewTranscriptScanner returns a scanner reading from r.
func NewTranscriptScanner(r io.Reader) *TranscriptScanner {
	return &TranscriptScanner{sc: bufio.NewScanner(r)}
}

// Scan advances to the next block. It returns false at end of input or on
// the first error; Err tells which.
func (s *TranscriptScanner) Scan() bool {
	if s.err != nil {
		return false
	}
	var target string
	for {
		text, ok := s.next()
		if !ok {
			return false
		}
		if v, found := strings.CutPrefix(text, "Target="); found {
			target = v
			break
		}
	}
	t, ok := ParseTarget(target)
	if !ok {
		s.err = &ParseError{Line: s.line, Msg: "unknown target " + target}
		return false
	}
	tx, ok := s.bytesLine("TX:")
	if !ok {
		return false
	}
	rx, ok := s.bytesLine("RX:")
	if !ok {
		return false
	}
	if len(tx) != len(rx) {
		s.err = &ParseError{Line: s.line, Msg: fmt.Sprintf("TX has %d bytes, RX has %d", len(tx), len(rx))}
		return false
	}
	s.ex = Exchange{Target: t, TX: tx, RX: rx}
	return true
}

// Exchange returns the block read by the last successful Scan.
func (s *TranscriptScanner) Exchange() Exchange { return s.ex }

// Err returns the first error met, or nil at a clean end of input.
func (s *TranscriptScanner) Err() error { return s.err }

func (s *TranscriptScanner) next() (string, bool) {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			s.err = fmt.Errorf("read transcript: %w", err)
		}
		return "", false
	}
	s.line++
	return strings.TrimRight(s.sc.Text(), "\r"), true
}

func (s *TranscriptScanner) bytesLine(prefix string) ([]byte, bool) {
	text, ok := s.next()
	if !ok {
		if s.err == nil {
			s.err = &ParseError{Line: s.line, Msg: "truncated block, want " + prefix}
		}
		return nil, false
	}
	rest, found := strings.CutPrefix(text, prefix)
	if !found {
		s.err = &ParseError{Line: s.line, Msg: fmt.Sprintf("want %q line, got %q", prefix, text)}
		return nil, false
	}
	// strings.Fields tolerates the trailing space older firmware printed.
	fields := strings.Fields(rest)
	p := make([]byte, 0, len(fields))
	for _, f := range fields {
		if len(f) != 2 {
			s.err = &ParseError{Line: s.line, Msg: fmt.Sprintf("bad byte %q", f)}
			return nil, false
		}
		b, err := hex.DecodeString(f)
		if err != nil {
			s.err = fmt.Errorf("line %d: %w", s.line, err)
			return nil, false
		}
		p = append(p, b[0])
	}
	return p, true
}

// ParseTranscript reads every block from r.
func ParseTranscript(r io.Reader) ([]Exchange, error) {
	s := NewTranscriptScanner(r)
	var out []Exchange
	for s.Scan() {
		out = append(out, s.Exchange())
	}
	return out, s.Err()
}

// Summary counts blocks and byte pairs per target.
type Summary struct {
	Blocks [numTargets]int
	Bytes  [numTargets]int
}

// Summarize tallies exchanges by target.
func Summarize(exs []Exchange) Summary {
	var s Summary
	for _, ex := range exs {
		s.Add(ex)
	}
	return s
}

// Add counts one more exchange. Targets outside the known set count as
// TargetUnknown.
func (s *Summary) Add(ex Exchange) {
	t := ex.Target
	if t >= numTargets {
		t = TargetUnknown
	}
	s.Blocks[t]++
	s.Bytes[t] += len(ex.TX)
}

// Count returns the blocks seen for t.
func (s Summary) Count(t Target) int {
	if t >= numTargets {
		t = TargetUnknown
	}
	return s.Blocks[t]
}

// Total returns the number of blocks over all targets.
func (s Summary) Total() int {
	n := 0
	for _, b := range s.Blocks {
		n += b
	}
	return n
}
