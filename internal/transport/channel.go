// internal/transport/channel.go
package transport

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Line terminator for both wire protocols.
const terminator = '\n'

var (
	// ErrTimeout marks a query that produced no complete reply line
	// within the configured timeout.
	ErrTimeout = errors.New("transport: read timeout")

	// ErrClosed marks use of a channel after Close.
	ErrClosed = errors.New("transport: channel closed")
)

// Channel frames newline-terminated command strings over a Port.
// Send is fire-and-forget; Query blocks for exactly one reply line.
// Not safe for concurrent use.
type Channel struct {
	port    Port
	timeout time.Duration
}

// NewChannel wraps an open port. The timeout bounds each Query.
func NewChannel(port Port, timeout time.Duration) *Channel {
	return &Channel{port: port, timeout: timeout}
}

// Send writes one terminated command string to the device.
func (c *Channel) Send(command string) error {
	if c == nil || c.port == nil {
		return ErrClosed
	}

	buf := []byte(command)
	buf = append(buf, terminator)

	for len(buf) > 0 {
		n, err := c.port.Write(buf)
		if err != nil {
			return fmt.Errorf("transport: write %q: %w", command, err)
		}
		buf = buf[n:]
	}
	return nil
}

// Query sends a command and reads one reply line, trimmed of
// surrounding whitespace. Used only where the protocol defines a
// reply (SCPI queries); the legacy protocol never answers.
func (c *Channel) Query(command string) (string, error) {
	if err := c.Send(command); err != nil {
		return "", err
	}
	return c.readLine()
}

// readLine accumulates bytes until the terminator or the deadline.
// A read that yields no bytes means the port-level timeout elapsed;
// that is reported as ErrTimeout, never as an empty line.
func (c *Channel) readLine() (string, error) {
	var line strings.Builder
	deadline := time.Now().Add(c.timeout)

	buf := make([]byte, 1)
	for {
		n, err := c.port.Read(buf)
		if err != nil {
			return "", fmt.Errorf("transport: read: %w", err)
		}
		if n == 0 {
			return "", ErrTimeout
		}

		if buf[0] == terminator {
			return strings.TrimSpace(line.String()), nil
		}
		line.WriteByte(buf[0])

		if time.Now().After(deadline) {
			return "", ErrTimeout
		}
	}
}

// Close releases the underlying port. The channel is unusable after.
func (c *Channel) Close() error {
	if c == nil || c.port == nil {
		return nil
	}
	err := c.port.Close()
	c.port = nil
	return err
}
