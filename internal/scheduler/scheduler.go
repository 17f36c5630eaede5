package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Sessions drops conversations nobody touched for longer than ttl.
type Sessions interface {
	EvictIdle(now time.Time, ttl time.Duration) int
}

// Cache forgets lookups stored before a cut-off.
type Cache interface {
	PurgeLookups(ctx context.Context, before time.Time) (int64, error)
}

// Jobs is the periodic housekeeping. Cache may be nil when caching is off.
type Jobs struct {
	Sessions   Sessions
	SessionTTL time.Duration
	Cache      Cache
	CacheTTL   time.Duration
}

// Sweep runs one housekeeping round as of now.
func (j Jobs) Sweep(ctx context.Context, now time.Time, log *slog.Logger) {
	if j.Sessions != nil {
		if n := j.Sessions.EvictIdle(now, j.SessionTTL); n > 0 {
			log.Info("idle sessions evicted", "count", n)
		}
	}
	if j.Cache != nil {
		n, err := j.Cache.PurgeLookups(ctx, now.Add(-j.CacheTTL))
		if err != nil {
			log.Error("purge cached lookups", "error", err)
			return
		}
		if n > 0 {
			log.Debug("cached lookups purged", "count", n)
		}
	}
}

// Start schedules Sweep every interval. The caller owns Shutdown.
func Start(jobs Jobs, interval time.Duration, logger *slog.Logger) (gocron.Scheduler, error) {
	log := logger.With("component", "scheduler")

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			jobs.Sweep(context.Background(), time.Now(), log)
		}),
		gocron.WithName("housekeeping"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	s.Start()
	log.Info("scheduler started", "interval", interval)
	return s, nil
}
