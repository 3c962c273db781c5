// Package cli implements the seatctl command line: contention
// simulations against a running server or in-process stores, and
// database setup.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "seatctl",
		Short:         "Seat reservation tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}
	cmd.AddCommand(NewSimulateCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	return cmd
}
