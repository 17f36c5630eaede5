package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"roofbot/internal/dialogue"
	"roofbot/internal/handlers"
	"roofbot/internal/scheduler"
	"roofbot/internal/session"
)

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := cfg.RequireToken(); err != nil {
				return err
			}
			log, err := newLogger(cfg, os.Stdout)
			if err != nil {
				return err
			}

			cat, err := loadCatalog(cfg)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
			if err != nil {
				return fmt.Errorf("authorize bot: %w", err)
			}
			bot.Debug = cfg.Telegram.Debug
			log.Info("authorized", "bot", bot.Self.UserName)

			gateway, cache, err := newGateway(cfg, log)
			if err != nil {
				return err
			}
			if cache != nil {
				defer cache.Close()
			}

			store := session.NewStore(dialogue.NewFSM)
			h := handlers.New(bot, log)
			machine := dialogue.New(cat, store, h, gateway, dialogue.Options{
				LookupTimeout: cfg.Pricing.LookupTimeout,
			}, log)

			jobs := scheduler.Jobs{Sessions: store, SessionTTL: cfg.Session.IdleTTL, CacheTTL: cfg.Cache.TTL}
			if cache != nil {
				jobs.Cache = cache
			}
			sched, err := scheduler.Start(jobs, cfg.Session.SweepInterval, log)
			if err != nil {
				return fmt.Errorf("start scheduler: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				defer stop()
				return h.Run(gctx, machine, cfg.Telegram.UpdateTimeout)
			})
			g.Go(func() error {
				<-gctx.Done()
				return sched.Shutdown()
			})

			err = g.Wait()
			log.Info("bot stopped", "error", err)
			return err
		},
	}
}
