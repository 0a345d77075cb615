// internal/scpi/commands.go
package scpi

import "fmt"

// Wire vocabulary for the laser MCU firmware.
// These strings define the protocol and MUST NOT be configurable.

// ---- IEEE 488.2 COMMON COMMANDS ----

// CmdIdentify requests the device identification string.
const CmdIdentify = "*IDN?"

// CmdReset resets the device to its power-on state (all channels off).
const CmdReset = "*RST"

// CmdClearStatus clears status registers and the error queue.
const CmdClearStatus = "*CLS"

// CmdOperationComplete queries operation completion ("1" when idle).
const CmdOperationComplete = "*OPC?"

// ---- SYSTEM SUBSYSTEM ----

// CmdNextError pops one record from the device error queue.
// Replies are code,"message"; code 0 means the queue is empty.
const CmdNextError = "SYST:ERR?"

// CmdVersion queries the SCPI version string.
const CmdVersion = "SYST:VERS?"

// ---- BULK CHANNEL COMMANDS ----

// CmdAllStates queries every channel state as a comma-separated vector.
const CmdAllStates = "STAT?"

// CmdAllOn drives every channel on.
const CmdAllOn = "ALL_ON"

// CmdAllOff drives every channel off.
const CmdAllOff = "ALL_OFF"

// ---- LEGACY PROTOCOL ----

// LegacyAllOff is the only non-index token of the legacy toggle protocol.
const LegacyAllOff = "all_off"

// LegacyToggle formats the legacy toggle command for one channel:
// the bare decimal index. No reply is produced by the firmware.
func LegacyToggle(channel int) string {
	return fmt.Sprintf("%d", channel)
}

// ---- SOURCE SUBSYSTEM ----

// SetSource formats SOURn:STAT ON|OFF for one channel.
func SetSource(channel int, on bool) string {
	if on {
		return fmt.Sprintf("SOUR%d:STAT ON", channel)
	}
	return fmt.Sprintf("SOUR%d:STAT OFF", channel)
}

// QuerySource formats SOURn:STAT? for one channel.
func QuerySource(channel int) string {
	return fmt.Sprintf("SOUR%d:STAT?", channel)
}
