// Package trainzutil drives the external TrainzUtil executable and parses its
// stdout text protocol. Every invocation's output ends with a summary line of
// the form `OK (<n> Errors, <n> Warnings)`; validation output additionally
// carries per-asset diagnostic lines with a single-character severity prefix.
package trainzutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/trainzkit/tzbuild/pkg/logger"
)

var (
	summaryPattern    = regexp.MustCompile(`(?i)OK\s*\(\s*(\d+)\s+Errors\s*,\s*(\d+)\s+Warnings\s*\)`)
	diagnosticPattern = regexp.MustCompile(`^([-+!;])\s*<(.+?)>\s*:\s*(.+)$`)
)

// Output is the parsed result of one TrainzUtil invocation: the captured
// stdout lines (summary line removed) plus the error/warning counts from the
// trailing summary line.
type Output struct {
	Lines    []string
	Errors   uint32
	Warnings uint32
}

// ParseError indicates that the mandatory trailing summary line was absent or
// malformed. This is a contract violation with the external tool and is fatal
// to the whole run, never a per-asset condition.
type ParseError struct {
	Line string
}

func (e *ParseError) Error() string {
	if e.Line == "" {
		return "TrainzUtil output is missing the trailing summary line"
	}
	return fmt.Sprintf("TrainzUtil output ends with %q, expected `OK (<n> Errors, <n> Warnings)`", e.Line)
}

// ParseOutput maps raw captured stdout into an Output. Lines are split on
// newlines with a single trailing carriage return stripped per line. The last
// line must match the summary grammar; it is consumed and not retained in
// Lines.
func ParseOutput(raw []byte) (*Output, error) {
	text := strings.TrimSuffix(string(raw), "\n")
	if text == "" {
		return nil, &ParseError{}
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	last := lines[len(lines)-1]
	m := summaryPattern.FindStringSubmatch(last)
	if m == nil {
		return nil, &ParseError{Line: last}
	}

	errs, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return nil, &ParseError{Line: last}
	}
	warns, err := strconv.ParseUint(m[2], 10, 32)
	if err != nil {
		return nil, &ParseError{Line: last}
	}

	return &Output{
		Lines:    lines[:len(lines)-1],
		Errors:   uint32(errs),
		Warnings: uint32(warns),
	}, nil
}

// String re-renders the output in the tool's own wire shape
func (o *Output) String() string {
	var b strings.Builder
	for _, line := range o.Lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "OK (%d Errors, %d Warnings)", o.Errors, o.Warnings)
	return b.String()
}

// Diagnostic is one classified validation line
type Diagnostic struct {
	Prefix  byte
	KUID    string
	Message string
}

// ParseDiagnostic applies the diagnostic-line grammar to a single output
// line. Lines that do not match are not diagnostics; they stay in the raw
// Lines sequence for verbose dumping but carry no classification.
func ParseDiagnostic(line string) (Diagnostic, bool) {
	m := diagnosticPattern.FindStringSubmatch(line)
	if m == nil {
		return Diagnostic{}, false
	}
	return Diagnostic{Prefix: m[1][0], KUID: m[2], Message: m[3]}, true
}

// Severity maps the prefix character to a log severity
func (d Diagnostic) Severity() logger.Severity {
	switch d.Prefix {
	case '-':
		return logger.SeverityError
	case '!':
		return logger.SeverityWarn
	default:
		return logger.SeverityInfo
	}
}

// VerboseOnly reports whether the diagnostic belongs to the verbose tier
func (d Diagnostic) VerboseOnly() bool {
	return d.Prefix == ';'
}

// Prefixed prepends prefix to every line of text, for indenting captured tool
// output inside diagnostics.
func Prefixed(prefix, text string) string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
