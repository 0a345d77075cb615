// internal/laser/builder.go
package laser

import (
	"log"
	"time"

	"github.com/kwbong/multilaser/internal/config"
)

// Build constructs a Controller from file configuration.
// The config MUST already be validated and normalized.
func Build(lc config.LaserConfig, logger *log.Logger) (*Controller, error) {
	return New(Config{
		Port:       lc.Port,
		BaudRate:   lc.BaudRate,
		Timeout:    time.Duration(lc.TimeoutMs) * time.Millisecond,
		Channels:   lc.Channels,
		PreferSCPI: lc.Protocol == config.ProtocolSCPI,
		Settle:     time.Duration(lc.SettleMs) * time.Millisecond,
	}, nil, logger)
}
