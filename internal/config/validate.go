// internal/config/validate.go
package config

import (
	"fmt"
)

// MaxChannels bounds the channel count; the shipped driver boards carry
// at most 8 TTL outputs.
const MaxChannels = 8

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	l := cfg.Laser

	if l.Port == "" {
		return fmt.Errorf("laser: port is required")
	}

	if l.BaudRate < 0 {
		return fmt.Errorf("laser: baud_rate must be positive, got %d", l.BaudRate)
	}

	if l.TimeoutMs < 0 {
		return fmt.Errorf("laser: timeout_ms must be positive, got %d", l.TimeoutMs)
	}

	if l.SettleMs < 0 {
		return fmt.Errorf("laser: settle_ms must not be negative, got %d", l.SettleMs)
	}

	if l.Channels < 0 || l.Channels > MaxChannels {
		return fmt.Errorf("laser: channels must be in 1..%d, got %d", MaxChannels, l.Channels)
	}

	switch l.Protocol {
	case "", ProtocolLegacy, ProtocolSCPI:
	default:
		return fmt.Errorf("laser: protocol must be %q or %q, got %q",
			ProtocolLegacy, ProtocolSCPI, l.Protocol)
	}

	return nil
}
