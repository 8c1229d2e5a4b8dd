// sniff/sniff.go

// Package sniff captures PSX controller-port traffic (CMD and DAT lines,
// framed by SEL) and splits it into bus transactions.
//
// A capture session runs in two phases. During acquisition a Sampler pulls
// one byte from each line per iteration into a fixed-capacity Buffer while a
// Handler, driven by the SEL-deasserted interrupt, rewinds both byte decoders
// and bumps a shared ResyncRecord. Once the buffer is full, Segment turns the
// read-only Capture into Transactions which WriteTranscript prints.
//
// The hardware backend (PIO0 on RP2040/RP2350) lives in bus_rp2.go; host
// builds get a bit-level simulated bus for tests and tooling.
package sniff

// DefaultCapacity is the number of sample pairs in one session.
const DefaultCapacity = 4096

// Config holds the session parameters. Zero fields take defaults.
type Config struct {
	Capacity int        // sample pairs to acquire
	Rule     ResyncRule // fire-count reduction, see ResyncRule
}

// DefaultConfig returns the configuration used by the firmware.
func DefaultConfig() Config {
	return Config{
		Capacity: DefaultCapacity,
		Rule:     RuleHalfOdd,
	}
}

// ByteChannel is a decoded byte stream. ReadByteBlocking waits until a whole
// byte has been shifted in; it never fails and never times out.
type ByteChannel interface {
	ReadByteBlocking() byte
}

// Restarter rewinds the command/response decoder pair. The methods are
// always applied to both channels together.
type Restarter interface {
	// DisableChannels stops both decoders.
	DisableChannels()
	// RewindChannels puts both decoders back at their program start.
	RewindChannels()
	// AckResync clears the event that triggered the resync.
	AckResync()
	// EnableChannelsInSync restarts both decoders on the same clock.
	EnableChannelsInSync()
}

// Bus is a sampling device: two byte channels plus the restart primitives,
// and a hook for the SEL-deasserted event.
type Bus interface {
	Restarter
	Command() ByteChannel
	Response() ByteChannel
	// HandleResync installs fn as the resync event handler. fn runs in
	// interrupt context on hardware.
	HandleResync(fn func())
}

// Session wires one acquisition: a fresh ResyncRecord, the Handler that
// writes it and the Sampler that reads it.
type Session struct {
	rec     ResyncRecord
	handler Handler
	sampler Sampler
	buf     *Buffer
}

// NewSession builds a session over bus and installs its handler. Install
// before the bus starts raising events.
func NewSession(bus Bus, cfg Config) *Session {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	s := &Session{buf: NewBuffer(cfg.Capacity)}
	s.handler = Handler{bus: bus, rec: &s.rec}
	s.sampler = Sampler{
		cmd:  bus.Command(),
		rsp:  bus.Response(),
		rec:  &s.rec,
		rule: cfg.Rule,
	}
	bus.HandleResync(s.handler.Resync)
	return s
}

// Run acquires until the buffer is full and returns the capture. It is not
// cancellable; a silent channel stalls it forever.
func (s *Session) Run() Capture {
	return s.sampler.Acquire(s.buf)
}
