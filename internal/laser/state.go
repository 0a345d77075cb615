// internal/laser/state.go
package laser

// State is the believed on/off state of one laser channel.
// There is no unknown value: absence of hardware confirmation still
// yields a definite cached state.
type State int

const (
	Off State = iota
	On
)

func (s State) String() string {
	if s == On {
		return "ON"
	}
	return "OFF"
}

// Mode is the wire protocol negotiated at connect time. It is fixed
// for the life of a connection; SCPI may downgrade to Legacy during
// negotiation but never the reverse mid-session.
type Mode int

const (
	// ModeLegacy is the minimal toggle-only protocol. It has no state
	// query, so the cache is the only source of channel state.
	ModeLegacy Mode = iota

	// ModeSCPI is the SCPI command protocol with per-channel set and
	// query plus a bulk state query.
	ModeSCPI
)

func (m Mode) String() string {
	if m == ModeSCPI {
		return "scpi"
	}
	return "legacy"
}

// ConnState is the controller connection lifecycle state.
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Connected
	Closing
)

func (s ConnState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Closing:
		return "closing"
	default:
		return "disconnected"
	}
}

// resetCache forces every cached entry to Off in place. The slice is
// created once per controller and never reallocated.
func resetCache(cache []State) {
	for i := range cache {
		cache[i] = Off
	}
}
