package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/catalog"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/clock"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/config"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/customer"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/migration"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/observability"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/redis"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/server"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "keasy",
		Short: "Keasy billing service",
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newAllCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the billing API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations, then start the billing API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			runServe()
			return nil
		},
	}
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		catalog.Module,
		customer.Module,
		billing.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
