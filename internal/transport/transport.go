// internal/transport/transport.go
package transport

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Port is the minimal serial port contract the channel needs.
// go.bug.st/serial.Port satisfies it; tests substitute fakes.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	ResetOutputBuffer() error
}

// Config is the transport-level configuration.
type Config struct {
	Port     string
	BaudRate int

	// Timeout bounds every read and write on the link.
	Timeout time.Duration

	// Settle is the firmware boot wait after opening the port.
	// The MCU resets on DTR assertion and must not see traffic before
	// it has booted.
	Settle time.Duration
}

// Opener opens a Port for a Config. Injectable for tests.
type Opener func(cfg Config) (Port, error)

// ErrConnect marks a port open failure.
var ErrConnect = errors.New("transport: connect failed")

// Open opens the named serial device, waits out the firmware settle
// period, and discards anything buffered in both directions.
func Open(cfg Config) (Port, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnect, cfg.Port, err)
	}

	if err := port.SetReadTimeout(cfg.Timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrConnect, cfg.Port, err)
	}

	time.Sleep(cfg.Settle)

	// Boot chatter must not be mistaken for a reply later.
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrConnect, cfg.Port, err)
	}
	if err := port.ResetOutputBuffer(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrConnect, cfg.Port, err)
	}

	return port, nil
}
