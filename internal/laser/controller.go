// internal/laser/controller.go
package laser

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kwbong/multilaser/internal/scpi"
	"github.com/kwbong/multilaser/internal/transport"
)

// Config is the immutable controller configuration.
type Config struct {
	Port     string
	BaudRate int

	// Timeout bounds every wire write and every query read.
	Timeout time.Duration

	// Channels is the number of laser channels, indexed 1..Channels.
	Channels int

	// PreferSCPI probes *IDN? on connect; on any failure the session
	// silently downgrades to the legacy protocol.
	PreferSCPI bool

	// Settle is the firmware boot wait after opening the port.
	Settle time.Duration
}

// Controller is the facade over one serial-attached laser array.
//
// It is synchronous and single-owner by contract: every operation
// blocks for one write (plus one bounded read for queries), and
// neither the transport nor the state cache carries internal locking.
// Callers sharing one instance must serialize access themselves.
type Controller struct {
	cfg  Config
	open transport.Opener
	log  *log.Logger

	conn    ConnState
	mode    Mode
	channel *transport.Channel
	drv     driver

	// cache holds the believed state of channel i at index i-1.
	// Allocated once, all Off; reset to all Off on connect,
	// disconnect and emergency stop.
	cache []State

	// sleep is time.Sleep, replaceable in choreography tests.
	sleep func(time.Duration)
}

// New validates the config and returns a disconnected controller.
// A nil opener uses the real serial port; a nil logger uses the
// process default.
func New(cfg Config, open transport.Opener, logger *log.Logger) (*Controller, error) {
	if cfg.Port == "" {
		return nil, errors.New("laser: port required")
	}
	if cfg.Channels <= 0 {
		return nil, errors.New("laser: channel count must be > 0")
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("laser: timeout must be > 0")
	}

	if open == nil {
		open = transport.Open
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Controller{
		cfg:   cfg,
		open:  open,
		log:   logger,
		conn:  Disconnected,
		cache: make([]State, cfg.Channels),
		sleep: time.Sleep,
	}, nil
}

// Connect opens the link, negotiates the protocol mode, and drives
// the array to the all-off posture. No public operation is permitted,
// and the state is not Connected, until that all-off has been issued.
func (c *Controller) Connect() error {
	if c.conn != Disconnected {
		return fmt.Errorf("laser: connect while %s", c.conn)
	}

	c.conn = Connecting

	port, err := c.open(transport.Config{
		Port:     c.cfg.Port,
		BaudRate: c.cfg.BaudRate,
		Timeout:  c.cfg.Timeout,
		Settle:   c.cfg.Settle,
	})
	if err != nil {
		c.conn = Disconnected
		return err
	}
	c.channel = transport.NewChannel(port, c.cfg.Timeout)

	// Mode negotiation: SCPI is accepted only on a good *IDN? reply;
	// any failure downgrades to legacy without failing the connect.
	c.mode = ModeLegacy
	if c.cfg.PreferSCPI {
		idn, err := c.channel.Query(scpi.CmdIdentify)
		switch {
		case err != nil:
			c.log.Printf("warning: SCPI identification failed: %v (falling back to legacy mode)", err)
		case idn == "":
			c.log.Printf("warning: SCPI identification returned an empty reply (falling back to legacy mode)")
		default:
			c.mode = ModeSCPI
			c.log.Printf("connected to SCPI device: %s", idn)
		}
	}

	switch c.mode {
	case ModeSCPI:
		c.drv = &scpiDriver{w: c.channel, cache: c.cache, log: c.log}
		// *RST is the SCPI all-off primitive here: reset to the
		// power-on state before anything else runs.
		if err := c.channel.Send(scpi.CmdReset); err != nil {
			c.log.Printf("warning: post-connect reset failed: %v", err)
		}
		resetCache(c.cache)
	default:
		c.drv = &legacyDriver{w: c.channel, cache: c.cache, log: c.log}
		if err := c.drv.allOff(); err != nil {
			c.log.Printf("warning: post-connect all-off failed: %v", err)
		}
		c.log.Printf("connected to laser controller on %s", c.cfg.Port)
	}

	c.conn = Connected
	return nil
}

// Disconnect drives the array off, then releases the port. The safety
// action precedes resource release on every path; a device that no
// longer answers does not block the teardown.
func (c *Controller) Disconnect() error {
	if c.conn == Disconnected || c.channel == nil {
		return nil
	}

	c.conn = Closing

	if c.drv != nil {
		if err := c.drv.allOff(); err != nil {
			c.log.Printf("warning: all-off during disconnect: %v", err)
		}
	}

	err := c.channel.Close()
	c.channel = nil
	c.drv = nil
	c.conn = Disconnected
	resetCache(c.cache)

	c.log.Printf("disconnected from %s", c.cfg.Port)
	return err
}

// Session connects, runs fn, and guarantees all-off plus disconnect
// on every exit path, including an error returned by fn.
func (c *Controller) Session(fn func(*Controller) error) error {
	if err := c.Connect(); err != nil {
		return err
	}
	defer c.Disconnect()
	defer c.EmergencyStop()
	return fn(c)
}

// ---- channel operations ----

// Toggle flips one channel. In legacy mode the flip is optimistic
// (no confirmation exists); in SCPI mode it sends an explicit set.
func (c *Controller) Toggle(channel int) error {
	if err := c.guard(channel); err != nil {
		return err
	}
	return c.drv.toggle(channel)
}

// Set drives one channel to the desired state.
func (c *Controller) Set(channel int, s State) error {
	if err := c.guard(channel); err != nil {
		return err
	}
	return c.drv.set(channel, s)
}

func (c *Controller) TurnOn(channel int) error  { return c.Set(channel, On) }
func (c *Controller) TurnOff(channel int) error { return c.Set(channel, Off) }

// Get returns the state of one channel: the cached value in legacy
// mode, a hardware query (degrading to cache on failure) in SCPI mode.
func (c *Controller) Get(channel int) (State, error) {
	if err := c.guard(channel); err != nil {
		return Off, err
	}
	return c.drv.get(channel), nil
}

// GetAll returns the state of every channel; index i-1 holds channel i.
func (c *Controller) GetAll() ([]State, error) {
	if c.conn != Connected {
		return nil, ErrNotConnected
	}
	return c.drv.getAll(), nil
}

// TurnOffAll drives every channel off. The cache goes all-Off even
// when the wire write fails.
func (c *Controller) TurnOffAll() error {
	if c.conn != Connected {
		return ErrNotConnected
	}
	return c.drv.allOff()
}

// TurnOnAll drives every channel on.
func (c *Controller) TurnOnAll() error {
	if c.conn != Connected {
		return ErrNotConnected
	}
	return c.drv.allOn()
}

// EmergencyStop drives every channel off and reports a definite
// outcome. It never propagates a lower-level failure.
func (c *Controller) EmergencyStop() bool {
	if c.conn != Connected {
		return false
	}
	if err := c.drv.allOff(); err != nil {
		c.log.Printf("emergency stop failed: %v", err)
		return false
	}
	c.log.Printf("emergency stop: all channels off")
	return true
}

// ---- SCPI-only operations ----

// Identify returns the device identification string. ErrSCPIOnly in
// legacy mode.
func (c *Controller) Identify() (string, error) {
	if c.conn != Connected {
		return "", ErrNotConnected
	}
	return c.drv.identify()
}

// SCPIVersion returns the device's SCPI version string.
func (c *Controller) SCPIVersion() (string, error) {
	if c.conn != Connected {
		return "", ErrNotConnected
	}
	return c.drv.version()
}

// ClearStatus clears the device status registers and error queue.
func (c *Controller) ClearStatus() error {
	if c.conn != Connected {
		return ErrNotConnected
	}
	return c.drv.clearStatus()
}

// OperationComplete reports whether the device is idle (*OPC?).
func (c *Controller) OperationComplete() (bool, error) {
	if c.conn != Connected {
		return false, ErrNotConnected
	}
	return c.drv.operationComplete()
}

// CheckErrors drains the device error queue in device-reported order.
// The zero sentinel record is never included. Legacy mode returns an
// empty list without touching the wire.
func (c *Controller) CheckErrors() ([]scpi.ErrorRecord, error) {
	if c.conn != Connected {
		return nil, ErrNotConnected
	}
	return c.drv.drainErrors(), nil
}

// ---- introspection ----

func (c *Controller) Mode() Mode                { return c.mode }
func (c *Controller) ConnectionState() ConnState { return c.conn }
func (c *Controller) Channels() int             { return c.cfg.Channels }

// guard rejects operations while disconnected and out-of-range
// indices, both before any wire traffic.
func (c *Controller) guard(channel int) error {
	if c.conn != Connected {
		return ErrNotConnected
	}
	if channel < 1 || channel > c.cfg.Channels {
		return &ChannelRangeError{Channel: channel, Channels: c.cfg.Channels}
	}
	return nil
}
