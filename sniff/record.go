package sniff

import (
	"errors"
	"sync/atomic"
)

// ResyncRecord counts resync events since the sampler last looked.
// The handler is its only writer and the sampler its only reader.
type ResyncRecord struct {
	fires atomic.Uint32
}

func (r *ResyncRecord) fire() { r.fires.Add(1) }

// consume returns the count since the previous consume and zeroes it in the
// same atomic step, so a fire landing between read and reset is kept for the
// next sample rather than lost.
func (r *ResyncRecord) consume() uint32 { return r.fires.Swap(0) }

// Pending reports the fires not yet consumed.
func (r *ResyncRecord) Pending() uint32 { return r.fires.Load() }

// ResyncRule reduces the number of resync fires seen during one sample
// interval to the segment-start flag of that sample.
//
// The SEL monitor IRQ has been seen to fire twice per physical edge, cause
// unknown. RuleHalfOdd keeps the heuristic the hardware was first brought up
// with; it is inherited behaviour, not a fix.
type ResyncRule uint8

const (
	// RuleHalfOdd tags a sample when (fires/2) is odd. Default.
	RuleHalfOdd ResyncRule = iota
	// RuleOddCount tags a sample when fires is odd.
	RuleOddCount
	// RuleNonZero tags a sample on any fire. Only correct for single-fire hardware.
	RuleNonZero
)

var errUnknownRule = errors.New("unknown resync rule")

// Reduce applies the rule to a raw fire count.
func (r ResyncRule) Reduce(fires uint32) bool {
	switch r {
	case RuleOddCount:
		return fires%2 == 1
	case RuleNonZero:
		return fires > 0
	default:
		return (fires/2)%2 == 1
	}
}

func (r ResyncRule) String() string {
	switch r {
	case RuleHalfOdd:
		return "half-odd"
	case RuleOddCount:
		return "odd"
	case RuleNonZero:
		return "nonzero"
	}
	return "unknown"
}

// ParseRule is the inverse of ResyncRule.String.
func ParseRule(s string) (ResyncRule, error) {
	switch s {
	case "half-odd":
		return RuleHalfOdd, nil
	case "odd":
		return RuleOddCount, nil
	case "nonzero":
		return RuleNonZero, nil
	}
	return 0, errUnknownRule
}
