package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trainzkit/tzbuild/pkg/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		extended, _ := cmd.Flags().GetBool("extended")
		fmt.Fprintf(cmd.OutOrStdout(), "tzbuild %s\n", buildinfo.BinaryVersion)
		if extended {
			if mv := buildinfo.ModuleVersion(); mv != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "module %s\n", mv)
			}
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("extended", false, "Include module build info")
}
