// internal/laser/errors.go
package laser

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned by every operation attempted while
	// the controller is not in the Connected state.
	ErrNotConnected = errors.New("laser: not connected")

	// ErrSCPIOnly is returned by operations the legacy protocol cannot
	// express (identification, version, status commands).
	ErrSCPIOnly = errors.New("laser: operation requires scpi mode")
)

// ChannelRangeError reports a channel index outside 1..Channels.
// Index checks happen before any wire traffic.
type ChannelRangeError struct {
	Channel  int
	Channels int
}

func (e *ChannelRangeError) Error() string {
	return fmt.Sprintf("laser: channel %d out of range 1..%d", e.Channel, e.Channels)
}
