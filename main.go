package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"roofbot/internal/catalog"
	"roofbot/internal/config"
	"roofbot/internal/dialogue"
	"roofbot/internal/logging"
	"roofbot/internal/pricing"
	"roofbot/internal/storage"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "roofbot",
		Short: "Telegram bot that estimates property prices",
		Long: `roofbot walks a Telegram user through a short form (category, city,
district, number of days and optional property details) and replies with the
estimate scraped from the price service.

Run without a subcommand to start the bot.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env", "", "path to a .env file (default ./.env when present)")

	load := func() (config.Config, error) {
		var paths []string
		if envFile != "" {
			paths = append(paths, envFile)
		}
		cfg, err := config.Load(paths...)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}

	serve := newServeCmd(load)
	root.RunE = serve.RunE
	root.AddCommand(serve, newLookupCmd(load), newCatalogCmd(load))
	return root
}

type configLoader func() (config.Config, error)

func newLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Writer: w,
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Color:  cfg.Log.Color,
	})
}

func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(cfg.CatalogPath)
}

// newGateway builds the scraping client, wrapped in the SQLite cache when
// enabled. The returned DB is nil without a cache; the caller closes it.
func newGateway(cfg config.Config, log *slog.Logger) (dialogue.Gateway, *storage.DB, error) {
	client := pricing.NewClient(pricing.Options{
		BaseURL:   cfg.Pricing.BaseURL,
		Timeout:   cfg.Pricing.LookupTimeout,
		UserAgent: cfg.Pricing.UserAgent,
	}, log)
	if !cfg.Cache.Enabled {
		return client, nil, nil
	}

	db, err := storage.New(cfg.Cache.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open lookup cache: %w", err)
	}
	return pricing.NewCachedGateway(client, db, cfg.Cache.TTL, log), db, nil
}
