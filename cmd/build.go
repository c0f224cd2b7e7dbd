package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/trainzkit/tzbuild/internal/builder"
	"github.com/trainzkit/tzbuild/pkg/asset"
	"github.com/trainzkit/tzbuild/pkg/config"
	"github.com/trainzkit/tzbuild/pkg/exitcode"
	"github.com/trainzkit/tzbuild/pkg/logger"
	"github.com/trainzkit/tzbuild/pkg/trainzutil"
)

var buildCmd = &cobra.Command{
	Use:   "build <path>",
	Short: "Build every asset found under a directory tree",
	Long: `Build recursively discovers assets under <path>, stages each one into an
isolated copy under a dummy kuid, then installs, commits and validates it.
A failing asset is reported and skipped; the batch always runs to the end.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args[0], false)
	},
}

var installCmd = &cobra.Command{
	Use:   "install <path>",
	Short: "Install assets in place under their own kuid",
	Long: `Install runs the same pipeline as build but without staging: the asset's
own directory and kuid are handed to TrainzUtil unmodified. Discovery is
non-recursive unless --recursive is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args[0], true)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{buildCmd, installCmd} {
		cmd.Flags().String("trainzutil", "", "Path to the TrainzUtil executable (default: $TZBUILD_TRAINZUTIL, then PATH)")
		cmd.Flags().String("staging-dir", "", "Persistent staging directory, reset before each asset (default: per-asset temp dir)")
		cmd.Flags().Bool("cleanup", false, "Delete the installed kuid from Trainz after validation")
		cmd.Flags().Duration("settle-delay", 2*time.Second, "Pause between commit and validate")
		cmd.Flags().String("report", "", "Write the batch report to this file as YAML")
		cmd.Flags().Bool("show-config-path", false, "Label assets by their config.txt path")
		cmd.Flags().Bool("show-kuid", false, "Label assets by their kuid")
		cmd.Flags().BoolP("verbose", "v", false, "Detailed output")
		cmd.Flags().BoolP("silent", "s", false, "Machine-readable summary output only (wins over --verbose)")
	}
	buildCmd.Flags().Bool("recursive", true, "Descend into subdirectories looking for assets")
	installCmd.Flags().Bool("recursive", false, "Descend into subdirectories looking for assets")
}

// runPipeline is the shared driver behind build and install. It exits the
// process directly with the pipeline's CI code; a returned error means a
// setup problem handled by Execute.
func runPipeline(cmd *cobra.Command, path string, directInstall bool) error {
	log := logger.New(logger.Config{Mode: verbosityMode(cmd)})

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	root, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	recursive, _ := cmd.Flags().GetBool("recursive")
	client := trainzutil.NewClient(trainzutil.ResolveTool(cfg.Trainzutil))

	log.Verbosef(logger.SeverityInfo, "Build path: %s", root)
	log.Verbosef(logger.SeverityInfo, "TrainzUtil path: %s", client.Path())

	b := builder.New(client, log, builder.Options{
		Root:          root,
		DirectInstall: directInstall,
		StagingDir:    cfg.StagingDir,
		Cleanup:       cfg.Cleanup,
		SettleDelay:   cfg.SettleDelay,
		Label:         labelMode(cmd),
	})

	if err := b.Preflight(); err != nil {
		log.Normalf(logger.SeverityError, "%v", err)
		log.Silentf(logger.SeverityError, "%v", err)
		os.Exit(exitcode.ToolUnreachable)
	}

	assets, err := asset.Locate(root, asset.Options{
		Recursive:    recursive,
		SkipPatterns: cfg.Discovery.Skip,
	})
	if err != nil {
		log.Normalf(logger.SeverityError, "%v", err)
		log.Silentf(logger.SeverityError, "%v", err)
		os.Exit(exitcode.BuildFailed)
	}
	for _, a := range assets {
		log.Normalf(logger.SeverityInfo, "Found asset: <%s>, %s", a.KUID, a.Root)
	}

	report, err := b.Run(assets)
	if err != nil {
		// Output-contract violation: abort without a partial report
		log.Normalf(logger.SeverityError, "%v", err)
		log.Silentf(logger.SeverityError, "%v", err)
		os.Exit(exitcode.BuildFailed)
	}

	report.Emit(log)
	if cfg.Report != "" {
		if err := report.WriteFile(cfg.Report); err != nil {
			return err
		}
	}

	if report.Failed > 0 || log.Statistics().Errors > 0 {
		os.Exit(exitcode.BuildFailed)
	}
	return nil
}

func verbosityMode(cmd *cobra.Command) logger.Mode {
	silent, _ := cmd.Flags().GetBool("silent")
	verbose, _ := cmd.Flags().GetBool("verbose")
	switch {
	case silent:
		return logger.Silent
	case verbose:
		return logger.Verbose
	default:
		return logger.Normal
	}
}

func labelMode(cmd *cobra.Command) builder.LabelMode {
	showConfig, _ := cmd.Flags().GetBool("show-config-path")
	showKUID, _ := cmd.Flags().GetBool("show-kuid")
	switch {
	case showConfig:
		return builder.LabelConfigPath
	case showKUID:
		return builder.LabelKUID
	default:
		return builder.LabelRelPath
	}
}
