package trainzutil

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
)

const (
	// EnvToolPath names the environment variable supplying a default
	// TrainzUtil path when no explicit flag is given.
	EnvToolPath = "TZBUILD_TRAINZUTIL"

	// DefaultToolName is resolved through the host's executable search when
	// neither a flag nor the environment names a path.
	DefaultToolName = "TrainzUtil"
)

// ErrNotFound indicates the tool path does not resolve to an executable
var ErrNotFound = errors.New("TrainzUtil executable was not found")

// CommandError indicates the tool started but exited with a non-success
// status. It carries the parsed output for diagnostic display.
type CommandError struct {
	Output *Output
}

func (e *CommandError) Error() string {
	return "TrainzUtil command failed with following output:\n" + Prefixed("> ", e.Output.String())
}

// ResolveTool picks the TrainzUtil path: explicit override first, then the
// TZBUILD_TRAINZUTIL environment variable, then the bare executable name
// resolved via PATH at invocation time.
func ResolveTool(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvToolPath); env != "" {
		return env
	}
	return DefaultToolName
}

// Client invokes the external TrainzUtil executable
type Client struct {
	path string
}

// NewClient creates a client for the tool at path
func NewClient(path string) *Client {
	return &Client{path: path}
}

// Path returns the configured tool path
func (c *Client) Path() string {
	return c.path
}

// Run spawns the tool with the given arguments, waits for completion and
// parses the captured stdout. Failure taxonomy: ErrNotFound when the path
// does not resolve to an executable, *CommandError on a non-zero exit,
// *ParseError when the output violates the summary-line contract, and an
// opaque wrapped error for any other spawn failure.
func (c *Client) Run(args ...string) (*Output, error) {
	cmd := exec.Command(c.path, args...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to execute %s: %w", c.path, err)
		}

		output, parseErr := ParseOutput(stdout.Bytes())
		if parseErr != nil {
			return nil, parseErr
		}
		return nil, &CommandError{Output: output}
	}

	return ParseOutput(stdout.Bytes())
}
