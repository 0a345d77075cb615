// internal/laser/legacy.go
package laser

import (
	"fmt"
	"log"

	"github.com/kwbong/multilaser/internal/scpi"
)

// legacyDriver speaks the toggle-only protocol: a bare decimal index
// toggles that channel, "all_off" drives everything off, and nothing
// ever answers.
//
// Known limitation: the firmware offers no state query, so every
// cached state is an assumption seeded by the post-connect all-off.
// Any external interference (front-panel button, power cycle, dropped
// command) silently desynchronizes the cache, and set() will then
// drive the wrong polarity for that channel until the next all-off or
// reconnect. There is no way to detect or repair this on the wire;
// it is surfaced through logging only.
type legacyDriver struct {
	w     wire
	cache []State
	log   *log.Logger
}

func (d *legacyDriver) mode() Mode { return ModeLegacy }

// toggle sends the index and flips the cached entry. The flip is
// optimistic; the hardware never confirms. On a write failure the
// cache is left untouched.
func (d *legacyDriver) toggle(channel int) error {
	if err := d.w.Send(scpi.LegacyToggle(channel)); err != nil {
		return fmt.Errorf("laser: toggle channel %d: %w", channel, err)
	}

	next := On
	if d.cache[channel-1] == On {
		next = Off
	}
	d.cache[channel-1] = next
	d.log.Printf("channel %d toggled to %s (assumed)", channel, next)
	return nil
}

// set synthesizes set-to-state from the toggle primitive: toggle only
// when the cached state differs. Correct exactly as long as the cache
// matches the hardware.
func (d *legacyDriver) set(channel int, s State) error {
	if d.cache[channel-1] == s {
		return nil
	}
	return d.toggle(channel)
}

func (d *legacyDriver) get(channel int) State {
	return d.cache[channel-1]
}

func (d *legacyDriver) getAll() []State {
	out := make([]State, len(d.cache))
	copy(out, d.cache)
	return out
}

func (d *legacyDriver) allOff() error {
	err := d.w.Send(scpi.LegacyAllOff)

	// Assume-off: the cache goes Off even if the write failed. An
	// unconfirmed "maybe on" must never persist past an all-off.
	resetCache(d.cache)

	if err != nil {
		return fmt.Errorf("laser: all off: %w", err)
	}
	d.log.Printf("all channels off")
	return nil
}

// allOn has no legacy wire primitive; it is synthesized per channel.
func (d *legacyDriver) allOn() error {
	for ch := 1; ch <= len(d.cache); ch++ {
		if err := d.set(ch, On); err != nil {
			return err
		}
	}
	return nil
}

func (d *legacyDriver) identify() (string, error)        { return "", ErrSCPIOnly }
func (d *legacyDriver) version() (string, error)         { return "", ErrSCPIOnly }
func (d *legacyDriver) clearStatus() error               { return ErrSCPIOnly }
func (d *legacyDriver) operationComplete() (bool, error) { return false, ErrSCPIOnly }

// drainErrors returns an empty list without touching the wire; the
// legacy firmware has no error queue.
func (d *legacyDriver) drainErrors() []scpi.ErrorRecord { return nil }
