package cmd

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/ola/internal/console"
	"github.com/luma/ola/internal/env"
	"github.com/luma/ola/ola"
)

var (
	// Overrides OLA_HOST and OLA_PORT when set
	consoleHost string
	consolePort int
)

func init() {
	flags := ConsoleCmd.PersistentFlags()

	flags.StringVarP(&consoleHost, "host", "a", "", "The daemon's host, defaults to $OLA_HOST")
	flags.IntVarP(&consolePort, "port", "p", 0, "The daemon's RPC port, defaults to $OLA_PORT")
}

var ConsoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive console for an OLA daemon",
	Long: `Connect to an OLA daemon and run operations from a numbered menu.

Usage
	ola console --host localhost --port 9010

`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		conf, err := env.LoadConfig(ctx)
		if err != nil {
			return err
		}

		log, err := env.MakeLogger(conf.LogLevel)
		if err != nil {
			return err
		}
		defer log.Sync()

		addr := conf.Addr()
		if consoleHost != "" || consolePort != 0 {
			host, port := conf.Host, conf.Port
			if consoleHost != "" {
				host = consoleHost
			}
			if consolePort != 0 {
				port = consolePort
			}

			addr = net.JoinHostPort(host, strconv.Itoa(port))
		}

		client, err := ola.Dial(ctx, addr, log.Named("client"))
		if err != nil {
			return err
		}
		defer client.Close()

		log.Info("Connected", zap.String("addr", addr))

		term, err := console.NewTerminal()
		if err != nil {
			return err
		}

		return console.New(client, term, log.Named("console")).Run(ctx)
	},
}
