package domain

import (
	"fmt"
	"strings"
)

// FormatError reports simulation output that does not have the expected
// layout: a missing dictionary sentinel, a data section that is not a whole
// number of timesteps, or a series of the wrong length.
type FormatError struct {
	Reason string
	Line   int // zero-based line index, -1 when not tied to a line
}

func (e *FormatError) Error() string {
	if e.Line < 0 {
		return "simulation output format: " + e.Reason
	}
	return fmt.Sprintf("simulation output format: %s (line %d)", e.Reason, e.Line)
}

// ParseError reports a value field that is not numeric.
type ParseError struct {
	Line  int // zero-based line index
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse value %q at line %d: %v", e.Field, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConfigMismatchError reports that the surface temperature was simulated
// under a different shading state than the one requested downstream.
type ConfigMismatchError struct {
	SimulatedShaded bool
	RequestedShaded bool
}

func (e *ConfigMismatchError) Error() string {
	return fmt.Sprintf("ground surface temperature %s shaded but this calculation %s; these must match",
		isOrIsnt(e.SimulatedShaded), isOrIsnt(e.RequestedShaded))
}

func isOrIsnt(b bool) string {
	if b {
		return "is"
	}
	return "isn't"
}

// ExternalProcessError reports an external engine that exited nonzero or
// could not be started.
type ExternalProcessError struct {
	Command  string
	Args     []string
	ExitCode int // -1 when the process never produced an exit status
	Stderr   string
	Err      error
}

func (e *ExternalProcessError) Error() string {
	msg := fmt.Sprintf("external process %s exited with code %d", e.Command, e.ExitCode)
	if e.Err != nil && e.ExitCode < 0 {
		msg = fmt.Sprintf("external process %s failed: %v", e.Command, e.Err)
	}
	if tail := lastLine(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func (e *ExternalProcessError) Unwrap() error { return e.Err }

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
