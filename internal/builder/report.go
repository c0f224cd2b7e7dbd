package builder

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/trainzkit/tzbuild/pkg/logger"
)

// DiagnosticRecord is one classified validation line in the report
type DiagnosticRecord struct {
	Severity string `yaml:"severity"`
	Message  string `yaml:"message"`
}

// Outcome is the per-asset result
type Outcome struct {
	KUID        string             `yaml:"kuid"`
	Name        string             `yaml:"name"`
	Label       string             `yaml:"label"`
	Success     bool               `yaml:"success"`
	Failure     string             `yaml:"failure,omitempty"`
	Diagnostics []DiagnosticRecord `yaml:"diagnostics,omitempty"`
}

// Report aggregates one batch run. It is built incrementally while assets
// are processed and finalized once by Emit.
type Report struct {
	Total     int       `yaml:"total"`
	Succeeded int       `yaml:"succeeded"`
	Failed    int       `yaml:"failed"`
	Errors    uint32    `yaml:"errors"`
	Warnings  uint32    `yaml:"warnings"`
	Outcomes  []Outcome `yaml:"assets"`
}

func (r *Report) add(o Outcome) {
	r.Total++
	if o.Success {
		r.Succeeded++
	} else {
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Emit prints the final report: a rule-wrapped summary line on the human
// tiers and the machine-readable `OK (...)` line on the silent tier, then
// freezes the logger counters into the report.
func (r *Report) Emit(log *logger.Logger) {
	status := "SUCCESS"
	severity := logger.SeverityInfo
	if r.Failed > 0 {
		status = "FAILED"
		severity = logger.SeverityError
	}

	msg := fmt.Sprintf("BUILD %s (%d Total, %d Succeeded, %d Failed)", status, r.Total, r.Succeeded, r.Failed)
	rule := strings.Repeat("=", len(msg))
	log.Normalf(logger.SeverityInfo, "%s", rule)
	log.Normalf(severity, "%s", msg)
	log.Normalf(logger.SeverityInfo, "%s", rule)

	log.Silentf(logger.SeverityInfo, "OK (%d Errors, 0 Warnings)", r.Failed)

	stats := log.Statistics()
	r.Errors = stats.Errors
	r.Warnings = stats.Warnings
}

// WriteFile writes the report as YAML
func (r *Report) WriteFile(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
