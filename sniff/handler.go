package sniff

// Handler reacts to SEL being deasserted. It must stay short: on hardware it
// runs in interrupt context ahead of the next byte on either line.
type Handler struct {
	bus Restarter
	rec *ResyncRecord
}

// NewHandler returns a handler that rewinds bus and counts into rec.
func NewHandler(bus Restarter, rec *ResyncRecord) *Handler {
	return &Handler{bus: bus, rec: rec}
}

// Resync rewinds both decoders to byte boundary zero and records the event.
// The decoders are disabled across the rewind and re-enabled together so the
// two streams cannot drift apart by a bit.
func (h *Handler) Resync() {
	h.bus.DisableChannels()
	h.bus.RewindChannels()
	h.bus.AckResync()
	h.bus.EnableChannelsInSync()
	h.rec.fire()
	dbgResync()
}
