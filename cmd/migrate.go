package main

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/hojavida/internal/migration"
	"github.com/Abraxas-365/hojavida/pkg/config"
	"github.com/Abraxas-365/hojavida/pkg/logx"
	"github.com/Abraxas-365/hojavida/recruitment/catalog/cataloginfra"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var flushCatalogCache bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the applicant, catalog and render job tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := sqlx.Connect("postgres", appConfig.Database.DSN())
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		if err := migration.Apply(cmd.Context(), db); err != nil {
			return err
		}
		logx.Infof("Applied %d migration steps", len(migration.Steps))

		if flushCatalogCache {
			flushCatalogs(cmd.Context(), appConfig.Redis)
		}
		return nil
	},
}

// flushCatalogs drops cached catalog lists so reseeded values are served.
// The cache expires on its own, so an unreachable Redis is only logged.
func flushCatalogs(ctx context.Context, cfg config.RedisConfig) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	defer client.Close()

	n, err := cataloginfra.InvalidateCache(ctx, client)
	if err != nil {
		logx.Warnf("Catalog cache not flushed: %v", err)
		return
	}
	logx.Infof("Flushed %d cached catalog lists", n)
}

func init() {
	migrateCmd.Flags().BoolVar(&flushCatalogCache, "flush-catalog-cache", true, "drop cached catalog lists after migrating")
	rootCmd.AddCommand(migrateCmd)
}
