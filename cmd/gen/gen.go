package gen

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate documentation for the ola command",
	Long: `Generate documentation for the ola command.

The generated files describe every subcommand and flag, so they stay in
step with the binary that produced them.`,
}

func init() {
	RootCmd.AddCommand(ManPagesCmd)
}
