package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alterd/checkout/internal/config"
	"github.com/alterd/checkout/internal/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "checkoutctl",
		Short:        "Operator tooling for the checkout service",
		Version:      Version,
		SilenceUsage: true,
	}
	root.AddCommand(migrateCmd())
	root.AddCommand(signCmd())
	root.AddCommand(seedCmd())
	root.AddCommand(productsCmd())
	return root
}

func connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg := config.Load()
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, "checkoutctl")
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return db, nil
}
