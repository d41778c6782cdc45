// Command orphans lists and resolves PayPal subscriptions whose directory
// record could not be created.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/thiloilg/page-for-artists.com/internal/config"
	"github.com/thiloilg/page-for-artists.com/internal/observability"
	"github.com/thiloilg/page-for-artists.com/internal/persistence"
	"github.com/thiloilg/page-for-artists.com/internal/repository"
)

func main() {
	limit := flag.Int("limit", 100, "maximum number of orphans to list")
	resolve := flag.String("resolve", "", "mark the orphan with this PayPal subscription id as resolved")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Postgres.DSN == "" {
		logger.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	repo := repository.NewOrphanRepository(pg.PoolHandle())

	if *resolve != "" {
		if err := repo.MarkResolved(ctx, *resolve); err != nil {
			logger.Fatal("mark resolved", zap.String("subscription_id", *resolve), zap.Error(err))
		}
		logger.Info("orphan resolved", zap.String("subscription_id", *resolve))
		return
	}

	orphans, err := repo.ListUnresolved(ctx, *limit)
	if err != nil {
		logger.Fatal("list orphans", zap.Error(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SUBSCRIPTION\tEMAIL\tARTIST\tSTATUS\tCREATED\tREASON")
	for _, o := range orphans {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			o.SubscriptionID, o.Email, o.ArtistURI, o.Status, o.CreatedAt.Format(time.RFC3339), o.Reason)
	}
	_ = w.Flush()
}
