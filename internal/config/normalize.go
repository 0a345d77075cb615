// internal/config/normalize.go
package config

// Defaults applied by Normalize. They match the MCU firmware defaults.
const (
	DefaultBaudRate  = 9600
	DefaultTimeoutMs = 2000
	DefaultChannels  = 3
	DefaultSettleMs  = 2000
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	l := &cfg.Laser

	if l.BaudRate == 0 {
		l.BaudRate = DefaultBaudRate
	}
	if l.TimeoutMs == 0 {
		l.TimeoutMs = DefaultTimeoutMs
	}
	if l.Channels == 0 {
		l.Channels = DefaultChannels
	}
	if l.SettleMs == 0 {
		l.SettleMs = DefaultSettleMs
	}
	if l.Protocol == "" {
		l.Protocol = ProtocolLegacy
	}
}
