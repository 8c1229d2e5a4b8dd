package sniff

// Target is the peripheral class addressed by a transaction, taken from its
// first command byte.
type Target uint8

const (
	TargetUnknown    Target = iota
	TargetJoypad            // controller, address 0x01
	TargetMemoryCard        // memory card, address 0x81
	numTargets
)

// Device addresses sent as the first CMD byte of a transaction.
const (
	AddrJoypad     byte = 0x01
	AddrMemoryCard byte = 0x81
)

// targetByAddr covers every byte value; unlisted ones are TargetUnknown.
var targetByAddr = [256]Target{
	AddrJoypad:     TargetJoypad,
	AddrMemoryCard: TargetMemoryCard,
}

// Classify returns the target addressed by first command byte addr.
func Classify(addr byte) Target { return targetByAddr[addr] }

func (t Target) String() string {
	switch t {
	case TargetJoypad:
		return "JOY"
	case TargetMemoryCard:
		return "MC"
	}
	return "UNKNOWN"
}

// ParseTarget maps a transcript label back to a Target.
func ParseTarget(s string) (Target, bool) {
	switch s {
	case "JOY":
		return TargetJoypad, true
	case "MC":
		return TargetMemoryCard, true
	case "UNKNOWN":
		return TargetUnknown, true
	}
	return TargetUnknown, false
}
