// Package exitcode provides standardized exit codes for tzbuild
package exitcode

// Exit codes for the tzbuild CLI
const (
	Success         = 0
	BuildFailed     = 1
	ToolUnreachable = 2
	SetupError      = 3
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case BuildFailed:
		return "One or more assets failed to build"
	case ToolUnreachable:
		return "TrainzUtil could not be reached"
	case SetupError:
		return "Configuration error"
	default:
		return "Unknown error"
	}
}
