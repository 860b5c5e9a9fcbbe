// Command drtrace-daemon runs the DrTrace ingestion/query daemon: an
// HTTP server accepting client log batches, serving queries over the
// stored log history, and running the background retention sweep.
//
// Config load, log store init, and migrations are split into cobra
// subcommands (serve, migrate, version) of a single binary.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

const (
	serviceName    = "drtrace-daemon"
	serviceVersion = "0.1.0"
)

func main() {
	root := &cobra.Command{
		Use:   "drtrace-daemon",
		Short: "DrTrace local observability daemon",
	}

	var configPath string
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (optional)")

	root.AddCommand(newServeCommand(&configPath))
	root.AddCommand(newMigrateCommand(&configPath))
	root.AddCommand(newVersionCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the daemon version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Printf("%s version %s\n", serviceName, serviceVersion)
			return nil
		},
	}
}
