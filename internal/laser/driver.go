// internal/laser/driver.go
package laser

import "github.com/kwbong/multilaser/internal/scpi"

// wire is the exact transport contract the drivers use.
// IMPORTANT: There must be NO other version of this interface anywhere.
type wire interface {
	Send(command string) error
	Query(command string) (string, error)
}

// driver carries one protocol mode's command formatting and
// cache-update policy. The controller validates indices and
// connection state; drivers assume both are already checked.
type driver interface {
	mode() Mode

	toggle(channel int) error
	set(channel int, s State) error
	get(channel int) State
	getAll() []State

	// allOff drives every channel off and forces the whole cache to
	// Off even when the wire write fails (assume-off policy).
	allOff() error
	allOn() error

	identify() (string, error)
	version() (string, error)
	clearStatus() error
	operationComplete() (bool, error)
	drainErrors() []scpi.ErrorRecord
}
