// internal/laser/scpi.go
package laser

import (
	"fmt"
	"log"

	"github.com/kwbong/multilaser/internal/scpi"
)

// maxErrorDrain bounds the error-queue drain in case the firmware
// never reports the 0,"No error" sentinel.
const maxErrorDrain = 64

// scpiDriver speaks the SCPI protocol. Writes are idempotent per
// channel; queries are authoritative and overwrite the cache, but
// degrade to the cached value on communication or parse failure.
type scpiDriver struct {
	w     wire
	cache []State
	log   *log.Logger
}

func (d *scpiDriver) mode() Mode { return ModeSCPI }

func (d *scpiDriver) toggle(channel int) error {
	next := On
	if d.cache[channel-1] == On {
		next = Off
	}
	return d.set(channel, next)
}

// set always sends SOURn:STAT regardless of the cached state, then
// updates the cache optimistically. A failed write leaves the cache
// untouched.
func (d *scpiDriver) set(channel int, s State) error {
	if err := d.w.Send(scpi.SetSource(channel, s == On)); err != nil {
		return fmt.Errorf("laser: set channel %d %s: %w", channel, s, err)
	}
	d.cache[channel-1] = s
	d.log.Printf("channel %d set to %s", channel, s)
	return nil
}

// get queries the hardware and refreshes the cache. On any failure it
// logs a warning and falls back to the cached value; queries degrade,
// they do not propagate.
func (d *scpiDriver) get(channel int) State {
	reply, err := d.w.Query(scpi.QuerySource(channel))
	if err != nil {
		d.log.Printf("warning: channel %d state query failed: %v (using cached state)", channel, err)
		return d.cache[channel-1]
	}

	s := Off
	if scpi.ParseBool(reply) {
		s = On
	}
	d.cache[channel-1] = s
	return s
}

// getAll refreshes the whole cache from one STAT? reply. The cache is
// overwritten atomically: on any failure, including a short state
// vector, the existing cache is returned unchanged.
func (d *scpiDriver) getAll() []State {
	out := make([]State, len(d.cache))

	reply, err := d.w.Query(scpi.CmdAllStates)
	if err != nil {
		d.log.Printf("warning: bulk state query failed: %v (using cached states)", err)
		copy(out, d.cache)
		return out
	}

	states, err := scpi.ParseStateVector(reply, len(d.cache))
	if err != nil {
		d.log.Printf("warning: bulk state reply %q: %v (using cached states)", reply, err)
		copy(out, d.cache)
		return out
	}

	for i, on := range states {
		if on {
			d.cache[i] = On
		} else {
			d.cache[i] = Off
		}
	}
	copy(out, d.cache)
	return out
}

func (d *scpiDriver) allOff() error {
	err := d.w.Send(scpi.CmdAllOff)

	// Assume-off even on a failed write, same policy as legacy.
	resetCache(d.cache)

	if err != nil {
		return fmt.Errorf("laser: all off: %w", err)
	}
	d.log.Printf("all channels off")
	return nil
}

func (d *scpiDriver) allOn() error {
	if err := d.w.Send(scpi.CmdAllOn); err != nil {
		return fmt.Errorf("laser: all on: %w", err)
	}
	for i := range d.cache {
		d.cache[i] = On
	}
	d.log.Printf("all channels on")
	return nil
}

func (d *scpiDriver) identify() (string, error) {
	return d.w.Query(scpi.CmdIdentify)
}

func (d *scpiDriver) version() (string, error) {
	return d.w.Query(scpi.CmdVersion)
}

func (d *scpiDriver) clearStatus() error {
	return d.w.Send(scpi.CmdClearStatus)
}

func (d *scpiDriver) operationComplete() (bool, error) {
	reply, err := d.w.Query(scpi.CmdOperationComplete)
	if err != nil {
		return false, err
	}
	return scpi.ParseBool(reply), nil
}

// drainErrors pops the device error queue until the zero sentinel.
// Any communication or parse failure mid-drain is treated as queue
// exhausted: the records accumulated so far are returned and the
// failure is logged, not propagated.
func (d *scpiDriver) drainErrors() []scpi.ErrorRecord {
	var records []scpi.ErrorRecord

	for i := 0; i < maxErrorDrain; i++ {
		reply, err := d.w.Query(scpi.CmdNextError)
		if err != nil {
			d.log.Printf("warning: error queue query failed: %v", err)
			break
		}

		rec, err := scpi.ParseErrorRecord(reply)
		if err != nil {
			d.log.Printf("warning: error queue reply %q: %v", reply, err)
			break
		}

		if rec.Code == 0 {
			break
		}

		records = append(records, rec)
		d.log.Printf("warning: device error %d: %s", rec.Code, rec.Message)
	}

	return records
}
