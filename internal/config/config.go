// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Laser LaserConfig `yaml:"laser"`
}

// ---- LASER ----

type LaserConfig struct {
	// Port is the serial device name (e.g. /dev/ttyUSB0, COM3).
	Port string `yaml:"port"`

	BaudRate  int `yaml:"baud_rate"`
	TimeoutMs int `yaml:"timeout_ms"`

	// Channels is the number of laser channels wired to the MCU.
	Channels int `yaml:"channels"`

	// Protocol selects the preferred wire protocol: "legacy" or "scpi".
	// SCPI is probed on connect and falls back to legacy on failure.
	Protocol string `yaml:"protocol"`

	// SettleMs is the firmware boot wait after opening the port.
	SettleMs int `yaml:"settle_ms"`
}

// Protocol preference values.
const (
	ProtocolLegacy = "legacy"
	ProtocolSCPI   = "scpi"
)

// Load reads and decodes a yaml configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &cfg, nil
}
