// internal/scpi/parse.go
package scpi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Response grammar for the three reply shapes the firmware produces.
// Parsing only. No IO. No side effects.

// ErrProtocol marks a reply that does not match the expected grammar.
var ErrProtocol = errors.New("scpi: malformed response")

// ErrorRecord is one entry popped from the device error queue.
// Code 0 is the no-more-errors sentinel and is never stored in results.
type ErrorRecord struct {
	Code    int
	Message string
}

// ParseErrorRecord parses a SYST:ERR? reply of the form:
//
//	code,"message"
//
// The line is split on the first comma; surrounding quotes on the
// remainder are stripped. A missing message yields "Unknown".
func ParseErrorRecord(line string) (ErrorRecord, error) {
	code, msg, found := strings.Cut(strings.TrimSpace(line), ",")

	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return ErrorRecord{}, fmt.Errorf("%w: error code %q", ErrProtocol, code)
	}

	if !found {
		return ErrorRecord{Code: n, Message: "Unknown"}, nil
	}
	return ErrorRecord{Code: n, Message: strings.Trim(msg, `"`)}, nil
}

// ParseStateVector parses a STAT? reply: comma-separated state tokens,
// "1" meaning on and anything else off. At least count tokens must be
// present; tokens beyond count are ignored.
func ParseStateVector(line string, count int) ([]bool, error) {
	tokens := strings.Split(strings.TrimSpace(line), ",")
	if len(tokens) < count {
		return nil, fmt.Errorf("%w: state vector has %d tokens, want %d",
			ErrProtocol, len(tokens), count)
	}

	out := make([]bool, count)
	for i := 0; i < count; i++ {
		out[i] = strings.TrimSpace(tokens[i]) == "1"
	}
	return out, nil
}

// ParseBool interprets a single-token boolean reply (SOURn:STAT?, *OPC?):
// "1" is true, anything else false.
func ParseBool(line string) bool {
	return strings.TrimSpace(line) == "1"
}
