// Package builder sequences the per-asset build pipeline: stage a working
// copy, install it through TrainzUtil, commit, validate, optionally delete.
// One asset failing never aborts the batch; the external tool being
// unreachable at pre-flight aborts the run before any asset is touched.
package builder

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/trainzkit/tzbuild/pkg/asset"
	"github.com/trainzkit/tzbuild/pkg/logger"
	"github.com/trainzkit/tzbuild/pkg/trainzutil"
)

const (
	// DummyKUID is the fixed identity installed in place of the asset's own
	// kuid when building an isolated staged copy.
	DummyKUID = "kuid:298469:999999"

	dummyKUIDTag = "kuid  <kuid:298469:999999>"
)

// LabelMode selects how assets are rendered in log and report lines
type LabelMode int

const (
	// LabelRelPath renders the asset root relative to the scan root
	LabelRelPath LabelMode = iota
	// LabelConfigPath renders the marker-file path relative to the scan root
	LabelConfigPath
	// LabelKUID renders the asset's own identity
	LabelKUID
)

// Options configures a batch run
type Options struct {
	// Root is the absolute scan root; labels are always computed against it
	Root string
	// DirectInstall skips staging and the dummy-identity rewrite: the
	// asset's own path and kuid are used for every tool call.
	DirectInstall bool
	// StagingDir, when set, is a persistent staging directory reset before
	// each asset. When empty an ephemeral temp directory is created per
	// asset and removed on every exit path.
	StagingDir string
	// Cleanup runs `delete <kuid>` after validation
	Cleanup bool
	// SettleDelay is a pause between commit and validate; TrainzUtil needs a
	// moment to finish committing before validation sees the asset.
	SettleDelay time.Duration
	Label       LabelMode
}

// Builder runs the build pipeline over located assets
type Builder struct {
	opts   Options
	client *trainzutil.Client
	log    *logger.Logger
}

// New creates a builder using the given tool client and logging context
func New(client *trainzutil.Client, log *logger.Logger, opts Options) *Builder {
	return &Builder{opts: opts, client: client, log: log}
}

// Preflight verifies the external tool responds to `version`. Failure means
// the whole run must abort with no assets processed.
func (b *Builder) Preflight() error {
	output, err := b.client.Run("version")
	if err != nil {
		return fmt.Errorf("TrainzUtil error: %w", err)
	}
	if len(output.Lines) > 0 {
		b.log.Verbosef(logger.SeverityInfo, "TrainzUtil version: %s", output.Lines[0])
	}
	return nil
}

// Run processes every asset strictly in order and returns the batch report.
// A non-nil error is fatal to the run (a tool output contract violation);
// per-asset failures are recorded in the report instead.
func (b *Builder) Run(assets []asset.Asset) (*Report, error) {
	report := &Report{}
	for _, a := range assets {
		outcome, err := b.buildAsset(a)
		if err != nil {
			return nil, err
		}
		report.add(outcome)
	}
	return report, nil
}

// buildAsset drives one asset through the staged pipeline. The returned
// error is reserved for fatal conditions; everything recoverable lands in
// the outcome.
func (b *Builder) buildAsset(a asset.Asset) (Outcome, error) {
	label := b.label(a)
	outcome := Outcome{KUID: a.KUID, Name: a.DisplayName(), Label: label}

	b.log.Normalf(logger.SeverityInfo, "Building asset %s", label)

	path, kuid := a.Root, a.KUID
	if !b.opts.DirectInstall {
		staged, release, err := b.stage(a)
		if err != nil {
			b.log.Normalf(logger.SeverityError, "Failed to stage asset %s: %v", label, err)
			outcome.Failure = err.Error()
			return outcome, nil
		}
		defer release()
		path, kuid = staged, DummyKUID
	}

	for _, stage := range []struct {
		name string
		args []string
	}{
		{"install", []string{"installfrompath", path}},
		{"commit", []string{"commit", kuid}},
	} {
		b.log.Verbosef(logger.SeverityInfo, "Running %s...", stage.name)
		output, err := b.client.Run(stage.args...)
		if err != nil {
			if fatal(err) {
				return Outcome{}, err
			}
			b.log.Normalf(logger.SeverityError, "Failed to %s asset %s: %v", stage.name, label, err)
			outcome.Failure = err.Error()
			return outcome, nil
		}
		b.log.Verbosef(logger.SeverityInfo, "Success! TrainzUtil output:\n%s", trainzutil.Prefixed("> ", output.String()))
	}

	time.Sleep(b.opts.SettleDelay)

	ok, err := b.validate(kuid, label, &outcome)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return outcome, nil
	}

	if b.opts.Cleanup {
		b.log.Verbosef(logger.SeverityInfo, "Deleting...")
		output, err := b.client.Run("delete", kuid)
		if err != nil {
			if fatal(err) {
				return Outcome{}, err
			}
			b.log.Normalf(logger.SeverityError, "Failed to delete asset %s: %v", label, err)
			outcome.Failure = err.Error()
			return outcome, nil
		}
		b.log.Verbosef(logger.SeverityInfo, "Success! TrainzUtil output:\n%s", trainzutil.Prefixed("> ", output.String()))
	}

	outcome.Success = true
	return outcome, nil
}

// validate runs the validate stage and classifies its diagnostic lines.
// Every matched line is emitted twice: once on the human tier at its
// severity, once flattened on the silent summary tier.
func (b *Builder) validate(kuid, label string, outcome *Outcome) (bool, error) {
	b.log.Verbosef(logger.SeverityInfo, "Validating...")
	output, err := b.client.Run("validate", kuid)
	if err != nil {
		if fatal(err) {
			return false, err
		}
		b.log.Normalf(logger.SeverityError, "Failed to validate asset %s: %v", label, err)
		outcome.Failure = err.Error()
		return false, nil
	}

	for _, line := range output.Lines {
		d, ok := trainzutil.ParseDiagnostic(line)
		if !ok {
			continue
		}
		tier := logger.Normal
		if d.VerboseOnly() {
			tier = logger.Verbose
		}
		b.log.Log(tier, d.Severity(), "%s : %s", label, d.Message)
		b.log.Silentf(d.Severity(), "%c %s : %s", d.Prefix, label, d.Message)
		outcome.Diagnostics = append(outcome.Diagnostics, DiagnosticRecord{
			Severity: severityName(d.Severity()),
			Message:  d.Message,
		})
	}
	b.log.Verbosef(logger.SeverityInfo, "TrainzUtil output:\n%s", trainzutil.Prefixed("> ", output.String()))

	if output.Errors > 0 {
		b.log.Normalf(logger.SeverityError, "Asset %s failed validation (%d Errors, %d Warnings)", label, output.Errors, output.Warnings)
		outcome.Failure = fmt.Sprintf("validation reported %d errors", output.Errors)
		return false, nil
	}
	return true, nil
}

// label renders the asset per the configured labeling rule, always relative
// to the original scan root, never the staged copy.
func (b *Builder) label(a asset.Asset) string {
	switch b.opts.Label {
	case LabelConfigPath:
		return "[" + b.rel(filepath.Join(a.Root, asset.MarkerFile)) + "]"
	case LabelKUID:
		return "<" + a.KUID + ">"
	default:
		return "[" + b.rel(a.Root) + "]"
	}
}

func (b *Builder) rel(path string) string {
	rel, err := filepath.Rel(b.opts.Root, path)
	if err != nil {
		return path
	}
	return rel
}

// fatal reports whether a client error must abort the whole run rather than
// the current asset. Only output-contract violations qualify; the builder is
// the single place that makes this call.
func fatal(err error) bool {
	var parseErr *trainzutil.ParseError
	return errors.As(err, &parseErr)
}

func severityName(s logger.Severity) string {
	switch s {
	case logger.SeverityError:
		return "error"
	case logger.SeverityWarn:
		return "warning"
	default:
		return "info"
	}
}
