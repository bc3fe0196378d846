// Command pharmactl runs operational tasks against the PharmaCare database:
// schema migrations, seeding an administrator and hashing passwords.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pharmactl",
		Short:        "PharmaCare operations tool",
		SilenceUsage: true,
	}
	root.AddCommand(migrateCmd())
	root.AddCommand(seedAdminCmd())
	root.AddCommand(hashPasswordCmd())
	return root
}
