// internal/laser/choreography.go
package laser

import "time"

// patternSettle is the fixed pause after each all-off inside a
// sequential pattern, giving the drivers time to discharge.
const patternSettle = 100 * time.Millisecond

// Flash blinks one channel count times with the given on/off
// duration, then restores the state the channel had beforehand.
// Built purely from set/get, so it behaves identically in both
// protocol modes. Any primitive failure aborts and is returned.
func (c *Controller) Flash(channel, count int, duration time.Duration) error {
	if err := c.guard(channel); err != nil {
		return err
	}

	original := c.drv.get(channel)

	for i := 0; i < count; i++ {
		if err := c.drv.set(channel, On); err != nil {
			return err
		}
		c.sleep(duration)
		if err := c.drv.set(channel, Off); err != nil {
			return err
		}
		c.sleep(duration)
	}

	if original == On {
		return c.drv.set(channel, On)
	}

	c.log.Printf("flashed channel %d %d times", channel, count)
	return nil
}

// SequentialPattern walks every channel in ascending order, holding
// each exclusively on for delay, for the given number of cycles.
// Every step starts from all-off and the pattern ends all-off. Any
// primitive failure aborts the whole pattern and is returned.
func (c *Controller) SequentialPattern(delay time.Duration, cycles int) error {
	if c.conn != Connected {
		return ErrNotConnected
	}

	for cycle := 0; cycle < cycles; cycle++ {
		c.log.Printf("sequential pattern cycle %d/%d", cycle+1, cycles)

		for ch := 1; ch <= c.cfg.Channels; ch++ {
			if err := c.drv.allOff(); err != nil {
				return err
			}
			c.sleep(patternSettle)
			if err := c.drv.set(ch, On); err != nil {
				return err
			}
			c.sleep(delay)
		}

		if err := c.drv.allOff(); err != nil {
			return err
		}
		if cycle < cycles-1 {
			c.sleep(delay)
		}
	}

	return nil
}
