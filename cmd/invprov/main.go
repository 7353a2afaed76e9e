package main

import (
	"os"

	"github.com/spf13/cobra"

	"invprov/internal/interfaces/cli/migrate"
	"invprov/internal/interfaces/cli/seed"
	"invprov/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "invprov",
		Short:        "Inventory provisioning service",
		Long:         `invprov provisions subscriber services into the network inventory graph and serves the provisioning API.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		seed.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
