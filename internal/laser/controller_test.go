// internal/laser/controller_test.go
package laser

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwbong/multilaser/internal/transport"
)

// ---- connect / negotiation ----

func TestConnect_LegacyAllOffPosture(t *testing.T) {
	c, port := newTestController(3, false)

	require.NoError(t, c.Connect())

	assert.Equal(t, Connected, c.ConnectionState())
	assert.Equal(t, ModeLegacy, c.Mode())
	assert.Equal(t, []string{"all_off"}, port.commands())

	states, err := c.GetAll()
	require.NoError(t, err)
	for i, s := range states {
		assert.Equal(t, Off, s, "channel %d", i+1)
	}
}

func TestConnect_SCPIProbeAccepted(t *testing.T) {
	c, port, err := scpiController(3)
	require.NoError(t, err)

	assert.Equal(t, ModeSCPI, c.Mode())
	// Probe, then reset to the power-on (all-off) state.
	assert.Equal(t, []string{"*IDN?", "*RST"}, port.commands())

	for ch := 1; ch <= 3; ch++ {
		s, err := c.Get(ch)
		require.NoError(t, err)
		assert.Equal(t, Off, s)
	}
}

func TestConnect_SCPIFallbackOnTimeout(t *testing.T) {
	c, port := newTestController(3, true)
	// No *IDN? reply queued: the probe times out.

	require.NoError(t, c.Connect(), "fallback must not fail the connect")

	assert.Equal(t, Connected, c.ConnectionState())
	assert.Equal(t, ModeLegacy, c.Mode())
	assert.Equal(t, []string{"*IDN?", "all_off"}, port.commands())
}

func TestConnect_SCPIFallbackOnEmptyReply(t *testing.T) {
	c, _ := newTestController(3, true)
	port := newFakePort()
	port.replies[`*IDN?`] = []string{"   "}
	c.open = func(transport.Config) (transport.Port, error) { return port, nil }

	require.NoError(t, c.Connect())
	assert.Equal(t, ModeLegacy, c.Mode())
}

func TestConnect_OpenFailurePropagates(t *testing.T) {
	c, _ := newTestController(3, false)
	boom := errors.New("no such device")
	c.open = func(transport.Config) (transport.Port, error) { return nil, boom }

	err := c.Connect()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, Disconnected, c.ConnectionState())
}

func TestConnect_Twice(t *testing.T) {
	c, _ := newTestController(3, false)
	require.NoError(t, c.Connect())
	require.Error(t, c.Connect())
}

// ---- guards ----

func TestOperations_RequireConnected(t *testing.T) {
	c, port := newTestController(3, false)

	assert.ErrorIs(t, c.Toggle(1), ErrNotConnected)
	assert.ErrorIs(t, c.Set(1, On), ErrNotConnected)
	assert.ErrorIs(t, c.TurnOffAll(), ErrNotConnected)
	_, err := c.Get(1)
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = c.GetAll()
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = c.Identify()
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = c.CheckErrors()
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.False(t, c.EmergencyStop())

	assert.Empty(t, port.commands(), "no wire traffic while disconnected")
}

func TestInvalidChannel_NoWireTraffic(t *testing.T) {
	c, port := newTestController(3, false)
	require.NoError(t, c.Connect())
	before := len(port.commands())

	var rangeErr *ChannelRangeError
	require.ErrorAs(t, c.Toggle(0), &rangeErr)
	assert.Equal(t, 0, rangeErr.Channel)
	assert.Equal(t, 3, rangeErr.Channels)

	require.ErrorAs(t, c.Set(4, On), &rangeErr)
	_, err := c.Get(99)
	require.ErrorAs(t, err, &rangeErr)
	require.ErrorAs(t, c.Flash(-1, 2, time.Millisecond), &rangeErr)

	assert.Equal(t, before, len(port.commands()), "guard must precede wire traffic")
}

// ---- safety ordering ----

func TestDisconnect_SafetyPrecedesRelease(t *testing.T) {
	c, port := newTestController(3, false)
	require.NoError(t, c.Connect())
	require.NoError(t, c.TurnOn(2))

	require.NoError(t, c.Disconnect())

	assert.Equal(t, Disconnected, c.ConnectionState())
	assert.Equal(t, []string{"all_off", "2", "all_off", "<close>"}, port.events)

	states := make([]State, len(c.cache))
	copy(states, c.cache)
	for _, s := range states {
		assert.Equal(t, Off, s)
	}
}

func TestDisconnect_DeadDeviceStillReleases(t *testing.T) {
	c, port := newTestController(3, false)
	require.NoError(t, c.Connect())
	port.failCmds["all_off"] = true

	require.NoError(t, c.Disconnect())
	assert.True(t, port.closed)
	assert.Equal(t, Disconnected, c.ConnectionState())
}

func TestDisconnect_Idempotent(t *testing.T) {
	c, _ := newTestController(3, false)
	require.NoError(t, c.Disconnect())
	require.NoError(t, c.Connect())
	require.NoError(t, c.Disconnect())
	require.NoError(t, c.Disconnect())
}

func TestEmergencyStop_DefiniteOutcome(t *testing.T) {
	c, port := newTestController(3, false)
	require.NoError(t, c.Connect())
	require.NoError(t, c.TurnOn(1))

	assert.True(t, c.EmergencyStop())

	port.failCmds["all_off"] = true
	assert.False(t, c.EmergencyStop(), "wire failure reports false, never propagates")

	states, err := c.GetAll()
	require.NoError(t, err)
	for _, s := range states {
		assert.Equal(t, Off, s, "assume-off even when the write failed")
	}
}

func TestSession_CleansUpOnError(t *testing.T) {
	c, port := newTestController(2, false)
	boom := errors.New("experiment failed")

	err := c.Session(func(c *Controller) error {
		if err := c.TurnOn(1); err != nil {
			return err
		}
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, Disconnected, c.ConnectionState())
	assert.True(t, port.closed)
	// connect all-off, on(1), emergency all-off, disconnect all-off, close
	assert.Equal(t, []string{"all_off", "1", "all_off", "all_off", "<close>"}, port.events)
}

func TestSession_ConnectFailure(t *testing.T) {
	c, _ := newTestController(2, false)
	boom := errors.New("no device")
	c.open = func(transport.Config) (transport.Port, error) { return nil, boom }

	ran := false
	err := c.Session(func(*Controller) error { ran = true; return nil })
	require.ErrorIs(t, err, boom)
	assert.False(t, ran)
}
