package catalog

import (
	"context"
	"time"

	"github.com/kirinyoku/playpass/internal/domain"
	redisrepo "github.com/kirinyoku/playpass/internal/repository/redis"
)

type CacheConfig struct {
	ListingTTL  time.Duration
	PlansTTL    time.Duration
	SessionsTTL time.Duration
}

// CachedProvider is a read-through Redis cache in front of another Provider.
// Errors are never cached.
type CachedProvider struct {
	next  Provider
	cache *redisrepo.Cache
	cfg   CacheConfig
}

func NewCachedProvider(next Provider, cache *redisrepo.Cache, cfg CacheConfig) *CachedProvider {
	if cfg.ListingTTL <= 0 {
		cfg.ListingTTL = 60 * time.Second
	}

	if cfg.PlansTTL <= 0 {
		cfg.PlansTTL = 60 * time.Second
	}

	if cfg.SessionsTTL <= 0 {
		cfg.SessionsTTL = 15 * time.Second
	}

	return &CachedProvider{next: next, cache: cache, cfg: cfg}
}

func (p *CachedProvider) Listing(ctx context.Context, id int64) (*domain.Listing, error) {
	l, err := redisrepo.GetOrSetJSON(ctx, p.cache, redisrepo.KeyListing(id), p.cfg.ListingTTL,
		func(ctx context.Context) (domain.Listing, error) {
			l, err := p.next.Listing(ctx, id)
			if err != nil {
				return domain.Listing{}, err
			}
			return *l, nil
		},
	)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

func (p *CachedProvider) Plans(ctx context.Context, listingID int64) ([]domain.Plan, error) {
	return redisrepo.GetOrSetJSON(ctx, p.cache, redisrepo.KeyListingPlans(listingID), p.cfg.PlansTTL,
		func(ctx context.Context) ([]domain.Plan, error) {
			return p.next.Plans(ctx, listingID)
		},
	)
}

func (p *CachedProvider) Sessions(ctx context.Context, listingID int64, from, to time.Time) ([]domain.Session, error) {
	key := redisrepo.KeyListingSessions(
		listingID,
		from.UTC().Format(time.RFC3339),
		to.UTC().Format(time.RFC3339),
	)

	return redisrepo.GetOrSetJSON(ctx, p.cache, key, p.cfg.SessionsTTL,
		func(ctx context.Context) ([]domain.Session, error) {
			return p.next.Sessions(ctx, listingID, from, to)
		},
	)
}
