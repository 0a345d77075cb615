// internal/laser/fake_test.go
package laser

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/kwbong/multilaser/internal/transport"
)

// fakePort scripts the MCU side of the wire: it records every
// complete command line and feeds back queued replies per command.
// Read returns (0, nil) once drained, matching go.bug.st/serial
// read-timeout semantics.
type fakePort struct {
	// events records commands in arrival order plus a "<close>"
	// marker, so tests can assert safety ordering.
	events []string

	// replies queues reply lines per command; consumed front-first.
	replies map[string][]string

	// failCmds makes Write fail for specific commands.
	failCmds map[string]bool

	readQueue bytes.Buffer
	closed    bool
}

func newFakePort() *fakePort {
	return &fakePort{
		replies:  map[string][]string{},
		failCmds: map[string]bool{},
	}
}

func (f *fakePort) Write(p []byte) (int, error) {
	cmd := strings.TrimSuffix(string(p), "\n")
	if f.failCmds[cmd] {
		return 0, errors.New("write failed")
	}

	f.events = append(f.events, cmd)

	if queued := f.replies[cmd]; len(queued) > 0 {
		f.readQueue.WriteString(queued[0] + "\n")
		f.replies[cmd] = queued[1:]
	}
	return len(p), nil
}

func (f *fakePort) Read(p []byte) (int, error) {
	if f.readQueue.Len() == 0 {
		return 0, nil // port-level timeout
	}
	return f.readQueue.Read(p)
}

func (f *fakePort) Close() error {
	f.closed = true
	f.events = append(f.events, "<close>")
	return nil
}

func (f *fakePort) SetReadTimeout(time.Duration) error { return nil }
func (f *fakePort) ResetInputBuffer() error            { return nil }
func (f *fakePort) ResetOutputBuffer() error           { return nil }

// commands returns the recorded wire traffic without lifecycle markers.
func (f *fakePort) commands() []string {
	var out []string
	for _, e := range f.events {
		if e != "<close>" {
			out = append(out, e)
		}
	}
	return out
}

// newTestController builds a controller wired to a fresh fakePort.
// Choreography sleeps are stubbed out.
func newTestController(channels int, preferSCPI bool) (*Controller, *fakePort) {
	port := newFakePort()

	opener := func(transport.Config) (transport.Port, error) {
		return port, nil
	}

	c, err := New(Config{
		Port:       "/dev/ttyFAKE",
		BaudRate:   9600,
		Timeout:    50 * time.Millisecond,
		Channels:   channels,
		PreferSCPI: preferSCPI,
	}, opener, log.New(os.Stderr, "test ", log.LstdFlags))
	if err != nil {
		panic(err)
	}
	c.sleep = func(time.Duration) {}

	return c, port
}

// scpiController connects a controller in SCPI mode against the fake.
func scpiController(channels int) (*Controller, *fakePort, error) {
	c, port := newTestController(channels, true)
	port.replies[`*IDN?`] = []string{"ACME,LaserArray,0,1.2"}
	err := c.Connect()
	return c, port, err
}
