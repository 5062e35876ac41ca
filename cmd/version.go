package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luma/ola/internal/meta"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), meta.GetInfo().String())
		return err
	},
}
