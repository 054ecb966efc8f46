package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/playpass/internal/auth"
	"github.com/kirinyoku/playpass/internal/catalog"
	"github.com/kirinyoku/playpass/internal/config"
	"github.com/kirinyoku/playpass/internal/domain"
	"github.com/kirinyoku/playpass/internal/location"
	"github.com/kirinyoku/playpass/internal/postgres"
	"github.com/kirinyoku/playpass/internal/redis"
	postgresrepo "github.com/kirinyoku/playpass/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/playpass/internal/repository/redis"
	"github.com/kirinyoku/playpass/internal/service"
	"github.com/kirinyoku/playpass/internal/service/listings"
	"github.com/kirinyoku/playpass/internal/service/selections"
	httpgin "github.com/kirinyoku/playpass/internal/transport/http/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	pool       *pgxpool.Pool
	rdb        *goredis.Client
	cache      *redisrepo.Cache
	pubsub     *redisrepo.ListingsPubSub
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	pgxPool, err := postgres.New(ctx, postgres.Config{DSN: cfg.PostgresDSN(), MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	loc := cfg.BookingLocation()

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisrepo.NewListingsPubSub(rdb)
	events := redisrepo.NewListingEvents(cache, pubsub)
	selectionStore := redisrepo.NewSelectionStore(rdb, cfg.Booking.SelectionTTL)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, cfg.RateLimit.PerMinute, time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	// Catalogue source
	var source catalog.Provider = catalog.NewStoreProvider(store)
	if cfg.Catalog.BaseURL != "" {
		hp, err := catalog.NewHTTPProvider(catalog.HTTPConfig{
			BaseURL:       cfg.Catalog.BaseURL,
			Token:         cfg.Catalog.Token,
			Timeout:       cfg.Catalog.Timeout,
			MaxTries:      cfg.Catalog.MaxTries,
			RatePerSecond: cfg.Catalog.RatePerSec,
			Location:      loc,
		}, logger)
		if err != nil {
			pgxPool.Close()
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to initialize catalog client: %w", err)
		}
		source = hp
		logger.Info("reading catalogue from upstream", "base_url", cfg.Catalog.BaseURL)
	}

	cached := catalog.NewCachedProvider(source, cache, catalog.CacheConfig{
		ListingTTL:  cfg.Catalog.ListingTTL,
		PlansTTL:    cfg.Catalog.ListingTTL,
		SessionsTTL: cfg.Catalog.SessionsTTL,
	})

	// Initialize services
	services := service.NewServices(service.Deps{
		Store:      store,
		Provider:   cached,
		Fresh:      source,
		Selections: selectionStore,
		Limiter:    limiter,
		Events:     events,
		Logger:     logger,
	}, service.Config{
		Selections: selections.Config{Location: loc, WindowMonths: cfg.Booking.WindowMonths},
		Listings:   listings.Config{Location: loc, WindowMonths: cfg.Booking.WindowMonths},
	})

	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	if err != nil {
		pgxPool.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	fallback := domain.GeoPoint{Latitude: cfg.Location.DefaultLat, Longitude: cfg.Location.DefaultLng}

	// Initialize Gin router
	router := httpgin.NewRouter(httpgin.Deps{
		Services:       services,
		Idem:           idempotencyStore,
		Verifier:       verifier,
		Locator:        location.NewHeaderService(fallback),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:              cfg.ServerAddr(),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		pool:   pgxPool,
		rdb:    rdb,
		cache:  cache,
		pubsub: pubsub,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer a.pool.Close()
	defer a.rdb.Close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "addr", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Drop cached catalogue data changed on other instances
	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, listingID int64) {
			if err := a.cache.InvalidateListing(ctx, listingID); err != nil {
				a.logger.Warn("invalidate listing cache", "listing_id", listingID, "error", err)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("listing events subscription: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
