package listings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/kirinyoku/playpass/internal/availability"
	"github.com/kirinyoku/playpass/internal/catalog"
	"github.com/kirinyoku/playpass/internal/domain"
	"github.com/kirinyoku/playpass/internal/location"
)

const (
	DefaultRadiusKm = 10
	MaxRadiusKm     = 100
	DefaultLimit    = 20
	MaxLimit        = 100

	// Rows read from the bounding box before exact distance filtering.
	maxCandidates = 500
)

// Finder looks up listings by venue position.
type Finder interface {
	WithinBox(ctx context.Context, center domain.GeoPoint, box location.Box, limit int) ([]domain.Listing, error)
}

type Config struct {
	Location     *time.Location
	WindowMonths int
}

type Service struct {
	provider catalog.Provider
	finder   Finder
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

func New(provider catalog.Provider, finder Finder, cfg Config, logger *slog.Logger) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	if cfg.WindowMonths <= 0 {
		cfg.WindowMonths = availability.DefaultMonths
	}

	return &Service{
		provider: provider,
		finder:   finder,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// BookingView is everything the booking screen renders for one listing.
type BookingView struct {
	Listing  *domain.Listing       `json:"listing"`
	Plans    []domain.Plan         `json:"plans"`
	Dates    []string              `json:"dates"`
	Day      availability.DayView  `json:"day"`
	Status   catalog.LoadStatus    `json:"status"`
	Window   availability.DateSpan `json:"window"`
	Timezone string                `json:"timezone"`
}

// Window returns the current rolling booking window.
func (s *Service) Window() availability.Window {
	return availability.NewWindow(s.now(), s.cfg.Location, s.cfg.WindowMonths)
}

// BookingView loads the listing bundle and renders the calendar with the
// slots of date. An empty date means no date has been picked yet.
//
// Returns:
//   - error: listings.ErrListingNotFound if the listing does not exist.
//   - error: listings.ErrCatalogUnavailable if the listing could not be read.
//   - error: listings.ErrInvalidDate if date is not YYYY-MM-DD.
func (s *Service) BookingView(ctx context.Context, listingID int64, date string) (*BookingView, error) {
	const op = "service.listings.BookingView"

	if date != "" {
		if _, err := time.ParseInLocation(availability.DateLayout, date, s.cfg.Location); err != nil {
			return nil, fmt.Errorf("%s: %q: %w", op, date, ErrInvalidDate)
		}
	}

	w := s.Window()

	b, err := catalog.LoadBundle(ctx, s.provider, listingID, w, s.logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapCatalogErr(err))
	}

	cal := availability.Filter(b.Sessions, w, s.logger)

	dates := cal.Dates
	if dates == nil {
		dates = []string{}
	}

	return &BookingView{
		Listing:  b.Listing,
		Plans:    b.Plans,
		Dates:    dates,
		Day:      cal.Day(date),
		Status:   b.Status,
		Window:   w.Span(),
		Timezone: s.cfg.Location.String(),
	}, nil
}

func (s *Service) Listing(ctx context.Context, id int64) (*domain.Listing, error) {
	const op = "service.listings.Listing"

	l, err := s.provider.Listing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapCatalogErr(err))
	}

	return l, nil
}

func (s *Service) Plans(ctx context.Context, listingID int64) ([]domain.Plan, error) {
	const op = "service.listings.Plans"

	if _, err := s.provider.Listing(ctx, listingID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapCatalogErr(err))
	}

	plans, err := s.provider.Plans(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapCatalogErr(err))
	}

	return plans, nil
}

// Sessions lists candidate sessions starting in [from, to). Empty bounds
// default to the booking window.
func (s *Service) Sessions(ctx context.Context, listingID int64, from, to string) ([]domain.Session, error) {
	const op = "service.listings.Sessions"

	start, end, err := availability.ParseDateRange(from, to, s.cfg.Location, s.Window())
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", op, err, ErrInvalidDate)
	}

	if _, err := s.provider.Listing(ctx, listingID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapCatalogErr(err))
	}

	sessions, err := s.provider.Sessions(ctx, listingID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapCatalogErr(err))
	}

	return sessions, nil
}

// Nearby returns listings within radiusKm of center, closest first.
// Non-positive radius and limit fall back to defaults; both are capped.
func (s *Service) Nearby(
	ctx context.Context,
	center domain.GeoPoint,
	radiusKm float64,
	limit int,
) ([]domain.ListingWithDistance, error) {
	const op = "service.listings.Nearby"

	if !location.Valid(center) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidLocation)
	}

	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRadius)
	}

	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	radiusKm = min(radiusKm, MaxRadiusKm)

	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	box := location.BoundingBox(center, radiusKm)

	candidates, err := s.finder.WithinBox(ctx, center, box, maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]domain.ListingWithDistance, 0, len(candidates))
	for _, l := range candidates {
		if l.Venue == nil {
			continue
		}

		d := location.DistanceKm(center, domain.GeoPoint{Latitude: l.Venue.Latitude, Longitude: l.Venue.Longitude})
		if d > radiusKm {
			continue
		}

		out = append(out, domain.ListingWithDistance{Listing: l, DistanceKm: d})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceKm == out[j].DistanceKm {
			return out[i].ID < out[j].ID
		}
		return out[i].DistanceKm < out[j].DistanceKm
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func mapCatalogErr(err error) error {
	if errors.Is(err, catalog.ErrListingNotFound) {
		return ErrListingNotFound
	}
	return fmt.Errorf("%v: %w", err, ErrCatalogUnavailable)
}
