package trainzutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainzkit/tzbuild/pkg/logger"
)

func TestParseOutput(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		lines    []string
		errors   uint32
		warnings uint32
	}{
		{
			name:     "summary only",
			raw:      "OK (0 Errors, 0 Warnings)\n",
			lines:    []string{},
			errors:   0,
			warnings: 0,
		},
		{
			name:     "lines before summary",
			raw:      "Validating asset\n- <kuid:1:2> : broken mesh\nOK (1 Errors, 2 Warnings)\n",
			lines:    []string{"Validating asset", "- <kuid:1:2> : broken mesh"},
			errors:   1,
			warnings: 2,
		},
		{
			name:     "windows line endings stripped",
			raw:      "first\r\nsecond\r\nOK (3 Errors, 4 Warnings)\r\n",
			lines:    []string{"first", "second"},
			errors:   3,
			warnings: 4,
		},
		{
			name:     "no trailing newline",
			raw:      "line\nOK (0 Errors, 1 Warnings)",
			lines:    []string{"line"},
			errors:   0,
			warnings: 1,
		},
		{
			name:     "case insensitive summary",
			raw:      "ok (2 errors, 5 warnings)\n",
			lines:    []string{},
			errors:   2,
			warnings: 5,
		},
		{
			name:     "loose summary whitespace",
			raw:      "OK ( 7 Errors , 8 Warnings )\n",
			lines:    []string{},
			errors:   7,
			warnings: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := ParseOutput([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.lines, output.Lines)
			assert.Equal(t, tt.errors, output.Errors)
			assert.Equal(t, tt.warnings, output.Warnings)
		})
	}
}

func TestParseOutputMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty input", ""},
		{"missing summary", "just a line\nanother line\n"},
		{"wrong keyword", "DONE (0 Errors, 0 Warnings)\n"},
		{"summary not last", "OK (0 Errors, 0 Warnings)\ntrailing line\n"},
		{"non-numeric counts", "OK (x Errors, 0 Warnings)\n"},
		{"missing warnings", "OK (1 Errors)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := ParseOutput([]byte(tt.raw))
			assert.Nil(t, output, "no partial result on malformed input")
			var parseErr *ParseError
			assert.True(t, errors.As(err, &parseErr))
		})
	}
}

func TestOutputString(t *testing.T) {
	output := &Output{Lines: []string{"a", "b"}, Errors: 1, Warnings: 2}
	assert.Equal(t, "a\nb\nOK (1 Errors, 2 Warnings)", output.String())

	roundTrip, err := ParseOutput([]byte(output.String()))
	require.NoError(t, err)
	assert.Equal(t, output.Lines, roundTrip.Lines)
}

func TestParseDiagnostic(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		ok          bool
		severity    logger.Severity
		verboseOnly bool
		kuid        string
		message     string
	}{
		{
			name:     "error prefix",
			line:     "- <kuid:12345:1:0> : broken mesh reference",
			ok:       true,
			severity: logger.SeverityError,
			kuid:     "kuid:12345:1:0",
			message:  "broken mesh reference",
		},
		{
			name:     "warning prefix",
			line:     "! <kuid:1:2> : texture too large",
			ok:       true,
			severity: logger.SeverityWarn,
			kuid:     "kuid:1:2",
			message:  "texture too large",
		},
		{
			name:     "info prefix",
			line:     "+ <kuid:1:2> : installed",
			ok:       true,
			severity: logger.SeverityInfo,
			kuid:     "kuid:1:2",
			message:  "installed",
		},
		{
			name:        "verbose info prefix",
			line:        "; <kuid:1:2> : checked 14 meshes",
			ok:          true,
			severity:    logger.SeverityInfo,
			verboseOnly: true,
			kuid:        "kuid:1:2",
			message:     "checked 14 meshes",
		},
		{
			name:     "tight spacing",
			line:     "-<kuid:1:2>:msg",
			ok:       true,
			severity: logger.SeverityError,
			kuid:     "kuid:1:2",
			message:  "msg",
		},
		{name: "plain line", line: "Validating asset", ok: false},
		{name: "unknown prefix", line: "* <kuid:1:2> : msg", ok: false},
		{name: "missing kuid", line: "- : msg", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ParseDiagnostic(tt.line)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.severity, d.Severity())
			assert.Equal(t, tt.verboseOnly, d.VerboseOnly())
			assert.Equal(t, tt.kuid, d.KUID)
			assert.Equal(t, tt.message, d.Message)
		})
	}
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "> one\n> two", Prefixed("> ", "one\ntwo"))
	assert.Equal(t, "> one", Prefixed("> ", "one\n"))
	assert.Equal(t, "> ", Prefixed("> ", ""))
}
