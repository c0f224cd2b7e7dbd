// Package logger implements the verbosity-tiered output model used across
// tzbuild. Every message is tagged with a target mode (the tier it belongs to)
// and a severity; the active mode decides whether the line is printed, while
// error/warning statistics are counted regardless so the final exit code does
// not depend on verbosity.
package logger

import (
	"fmt"
	"io"
	"os"
)

// Mode represents a verbosity tier. The three modes are mutually exclusive.
type Mode int

const (
	Silent Mode = iota
	Normal
	Verbose
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case Silent:
		return "silent"
	case Normal:
		return "normal"
	case Verbose:
		return "verbose"
	default:
		return "unknown"
	}
}

// accepts reports whether a logger running in mode m emits a message
// targeted at tier target. Silent emits only the silent summary channel,
// Normal the human channel, Verbose the human channel plus verbose detail.
func (m Mode) accepts(target Mode) bool {
	switch m {
	case Silent:
		return target == Silent
	case Normal:
		return target == Normal
	case Verbose:
		return target == Normal || target == Verbose
	default:
		return false
	}
}

// Severity represents the severity of a single message
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarn
	SeverityInfo
)

// label returns the human-tier prefix for the severity
func (s Severity) label() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarn:
		return "WARN "
	default:
		return "INFO "
	}
}

// Statistics counts errors and warnings observed over a run, independent of
// whether the corresponding lines were actually printed.
type Statistics struct {
	Errors   uint32
	Warnings uint32
}

// Config holds the logger configuration
type Config struct {
	Mode Mode
	Out  io.Writer
}

// Logger is the per-run logging context. It is constructed once per command
// invocation and passed explicitly to collaborators; there is no process-wide
// default instance.
type Logger struct {
	mode  Mode
	out   io.Writer
	stats Statistics
}

// New creates a logger from the given configuration
func New(config Config) *Logger {
	out := config.Out
	if out == nil {
		out = os.Stdout
	}
	return &Logger{mode: config.Mode, out: out}
}

// Mode returns the active verbosity mode
func (l *Logger) Mode() Mode {
	return l.mode
}

// Log emits a message targeted at the given tier. Error and warning calls are
// counted even when the active mode filters the line out. Silent-tier lines
// are printed raw (machine-readable channel); human tiers carry a severity
// label prefix.
func (l *Logger) Log(target Mode, severity Severity, format string, args ...interface{}) {
	switch severity {
	case SeverityError:
		l.stats.Errors++
	case SeverityWarn:
		l.stats.Warnings++
	}

	if !l.mode.accepts(target) {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if l.mode == Silent {
		fmt.Fprintf(l.out, "%s\n", msg)
		return
	}
	fmt.Fprintf(l.out, "%s %s\n", severity.label(), msg)
}

// Silentf logs to the silent summary tier
func (l *Logger) Silentf(severity Severity, format string, args ...interface{}) {
	l.Log(Silent, severity, format, args...)
}

// Normalf logs to the normal human tier
func (l *Logger) Normalf(severity Severity, format string, args ...interface{}) {
	l.Log(Normal, severity, format, args...)
}

// Verbosef logs to the verbose detail tier
func (l *Logger) Verbosef(severity Severity, format string, args ...interface{}) {
	l.Log(Verbose, severity, format, args...)
}

// Statistics returns a snapshot of the counters
func (l *Logger) Statistics() Statistics {
	return l.stats
}
