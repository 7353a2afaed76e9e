package seed

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"invprov/internal/infrastructure/config"
	"invprov/internal/infrastructure/database"
	"invprov/internal/infrastructure/persistence/seeds"
	httpRouter "invprov/internal/interfaces/http"
	"invprov/internal/shared/logger"
)

var (
	env        string
	configPath string
	file       string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Preload devices into the free pool",
		Long:  `Create the devices listed in a YAML inventory file. Devices that already exist are skipped.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the inventory seed file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	seedCmd, err := seeds.LoadFile(file)
	if err != nil {
		return err
	}

	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.WithComponent("seed")

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	container, err := httpRouter.NewContainer(ctx, database.Get(), cfg, log)
	if err != nil {
		return err
	}
	defer container.Shutdown()

	result, err := container.UseCases.SeedInventory.Execute(ctx, *seedCmd)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	log.Infow("inventory seeded", "file", file, "created", len(result.Created), "skipped", len(result.Skipped))
	fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d devices\n", len(result.Created), len(result.Skipped))
	return nil
}
