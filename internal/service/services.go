package service

import (
	"log/slog"

	"github.com/kirinyoku/playpass/internal/catalog"
	postgresrepo "github.com/kirinyoku/playpass/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/playpass/internal/repository/redis"
	"github.com/kirinyoku/playpass/internal/service/listings"
	"github.com/kirinyoku/playpass/internal/service/partners"
	"github.com/kirinyoku/playpass/internal/service/reviews"
	"github.com/kirinyoku/playpass/internal/service/selections"
	"github.com/kirinyoku/playpass/internal/uow"
)

type Services struct {
	Selections *selections.Service
	Listings   *listings.Service
	Reviews    *reviews.Service
	Partners   *partners.Service
}

type Config struct {
	Selections selections.Config
	Listings   listings.Config
}

// Deps are the shared collaborators of all services. Provider may be
// cached; Fresh reads the same source without a cache.
type Deps struct {
	Store      *postgresrepo.Store
	Provider   catalog.Provider
	Fresh      catalog.Provider
	Selections *redisrepo.SelectionStore
	Limiter    *redisrepo.SlidingWindowLimiter
	Events     *redisrepo.ListingEvents
	Logger     *slog.Logger
}

func NewServices(d Deps, cfg Config) *Services {
	tx := uow.NewUoW(d.Store)

	return &Services{
		Selections: selections.New(d.Provider, d.Fresh, d.Selections, d.Limiter, cfg.Selections, d.Logger),
		Listings:   listings.New(d.Provider, d.Store.Listings(), cfg.Listings, d.Logger),
		Reviews:    reviews.New(reviews.PostgresRepos(d.Store), tx, d.Events, d.Logger),
		Partners:   partners.New(partners.PostgresRepos(d.Store), tx, d.Events, d.Logger),
	}
}
