package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trainzkit/tzbuild/pkg/buildinfo"
	"github.com/trainzkit/tzbuild/pkg/exitcode"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tzbuild",
		Short: "Build, install and validate Trainz content assets via TrainzUtil",
		Long: `Tzbuild automates the TrainzUtil workflow for content assets kept in a
directory tree. Assets are directories whose config.txt carries a kuid tag:

  kuid <(kuid|kuid2):<int>:<int>[:<int>]>

Each asset is staged into an isolated copy with a dummy kuid, installed,
committed and validated; results are aggregated into a batch report with a
CI-friendly exit code.

Examples:
   tzbuild build ./assets             # Build every asset under ./assets
   tzbuild install ./assets/loco42    # Install one asset under its own kuid
   tzbuild version                    # Show version`,
		SilenceUsage: true,
	}

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("tzbuild {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
// This is called from init() for production and can be called explicitly in tests.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(buildCmd)
	cmd.AddCommand(installCmd)
	cmd.AddCommand(versionCmd)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR %v\n", err)
		os.Exit(exitcode.SetupError)
	}
}

func init() {
	registerSubcommands(rootCmd)
}
