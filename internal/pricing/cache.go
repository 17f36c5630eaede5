package pricing

import (
	"context"
	"log/slog"
	"time"

	"roofbot/internal/models"
)

type Lookuper interface {
	Lookup(ctx context.Context, f models.Filter) (string, error)
}

// Cache is the subset of storage.DB the gateway needs.
type Cache interface {
	GetLookup(ctx context.Context, query string, notBefore time.Time) (string, bool, error)
	PutLookup(ctx context.Context, query, result string, at time.Time) error
}

// CachedGateway serves repeated filters from the cache for ttl. Only
// successful lookups are stored; cache errors fall through to the service.
type CachedGateway struct {
	next  Lookuper
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
	now   func() time.Time
}

func NewCachedGateway(next Lookuper, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedGateway {
	return &CachedGateway{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   logger.With("component", "pricing_cache"),
		now:   time.Now,
	}
}

func (g *CachedGateway) Lookup(ctx context.Context, f models.Filter) (string, error) {
	key := BuildQuery(f).Encode()

	res, ok, err := g.cache.GetLookup(ctx, key, g.now().Add(-g.ttl))
	switch {
	case err != nil:
		g.log.Warn("cache read failed", "error", err)
	case ok:
		g.log.Debug("cache hit", "query", key)
		return res, nil
	}

	res, err = g.next.Lookup(ctx, f)
	if err != nil {
		return "", err
	}
	if err := g.cache.PutLookup(ctx, key, res, g.now()); err != nil {
		g.log.Warn("cache write failed", "error", err)
	}
	return res, nil
}
