package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luma/ola/cmd/gen"
)

var RootCmd = &cobra.Command{
	Use:   "ola",
	Short: "Client and simulated daemon for the OLA lighting protocol",
	Long: `Client and simulated daemon for the OLA lighting protocol.

The console command talks to an OLA daemon; the serve command runs a
simulated daemon for development and testing.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(ServeCmd)
	RootCmd.AddCommand(ConsoleCmd)
	RootCmd.AddCommand(VersionCmd)
	RootCmd.AddCommand(gen.RootCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
