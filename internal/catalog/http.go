package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/kirinyoku/playpass/internal/availability"
	"github.com/kirinyoku/playpass/internal/domain"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 4 << 20

type HTTPConfig struct {
	BaseURL         string
	Token           string
	Timeout         time.Duration
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	RatePerSecond   float64
	Burst           int
	Location        *time.Location
}

// HTTPProvider reads the catalogue from a remote REST API exposing
// /listings/{id}, /listings/{id}/plans and /listings/{id}/sessions.
type HTTPProvider struct {
	base    *url.URL
	token   string
	client  *http.Client
	limiter *rate.Limiter
	cfg     HTTPConfig
	logger  *slog.Logger
}

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog upstream %s returned %d", e.Path, e.Code)
}

func (e *StatusError) Unwrap() error {
	return ErrUpstream
}

func NewHTTPProvider(cfg HTTPConfig, logger *slog.Logger) (*HTTPProvider, error) {
	const op = "catalog.NewHTTPProvider"

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%s: invalid base url %q", op, cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	if cfg.MaxTries == 0 {
		cfg.MaxTries = 3
	}

	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}

	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 2 * time.Second
	}

	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 50
	}

	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}

	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	return &HTTPProvider{
		base:    base,
		token:   cfg.Token,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		cfg:     cfg,
		logger:  logger,
	}, nil
}

type listingDTO struct {
	ID              int64     `json:"id"`
	PartnerID       int64     `json:"partner_id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description"`
	Category        *string   `json:"category"`
	BasePriceINR    *int      `json:"base_price_inr"`
	AgeMin          *int      `json:"age_min"`
	AgeMax          *int      `json:"age_max"`
	DurationMinutes *int      `json:"duration_minutes"`
	Venue           *venueDTO `json:"venue"`
	Badges          []string  `json:"badges"`
	RatingAvg       *float64  `json:"rating_avg"`
	RatingCount     *int      `json:"rating_count"`
}

type venueDTO struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// toDomain resolves every optional field once so downstream code can rely
// on presence: a venue without coordinates is treated as absent, an age
// range needs both bounds.
func (d listingDTO) toDomain() (*domain.Listing, error) {
	if d.ID <= 0 || strings.TrimSpace(d.Title) == "" {
		return nil, fmt.Errorf("listing %d: missing id or title: %w", d.ID, ErrInvalidPayload)
	}

	l := &domain.Listing{
		ID:              d.ID,
		PartnerID:       d.PartnerID,
		Title:           d.Title,
		Description:     valueOr(d.Description, ""),
		Category:        valueOr(d.Category, ""),
		BasePriceINR:    valueOr(d.BasePriceINR, 0),
		DurationMinutes: valueOr(d.DurationMinutes, 0),
		Badges:          d.Badges,
		RatingAvg:       valueOr(d.RatingAvg, 0),
		RatingCount:     valueOr(d.RatingCount, 0),
	}

	if d.AgeMin != nil && d.AgeMax != nil && *d.AgeMin <= *d.AgeMax {
		l.Ages = &domain.AgeRange{Min: *d.AgeMin, Max: *d.AgeMax}
	}

	if d.Venue != nil && d.Venue.Latitude != nil && d.Venue.Longitude != nil {
		l.Venue = &domain.Venue{
			Name:      d.Venue.Name,
			Address:   d.Venue.Address,
			City:      d.Venue.City,
			Latitude:  *d.Venue.Latitude,
			Longitude: *d.Venue.Longitude,
		}
	}

	if l.Badges == nil {
		l.Badges = []string{}
	}

	return l, nil
}

type planDTO struct {
	ID              int64  `json:"id"`
	ListingID       int64  `json:"listing_id"`
	Name            string `json:"name"`
	SessionsCount   int    `json:"sessions_count"`
	PriceINR        int    `json:"price_inr"`
	DiscountPercent *int   `json:"discount_percent"`
}

func (p *HTTPProvider) Listing(ctx context.Context, id int64) (*domain.Listing, error) {
	const op = "catalog.HTTPProvider.Listing"

	var dto listingDTO
	if err := p.getJSON(ctx, "/listings/"+strconv.FormatInt(id, 10), nil, &dto); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	l, err := dto.toDomain()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return l, nil
}

// Plans drops plans that cannot be booked because they ask for no sessions.
func (p *HTTPProvider) Plans(ctx context.Context, listingID int64) ([]domain.Plan, error) {
	const op = "catalog.HTTPProvider.Plans"

	var dtos []planDTO
	if err := p.getJSON(ctx, "/listings/"+strconv.FormatInt(listingID, 10)+"/plans", nil, &dtos); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]domain.Plan, 0, len(dtos))
	for _, d := range dtos {
		if d.ID <= 0 || d.SessionsCount < 1 {
			p.logger.Warn("dropping invalid plan", "listing_id", listingID, "plan_id", d.ID, "sessions_count", d.SessionsCount)
			continue
		}

		out = append(out, domain.Plan{
			ID:              d.ID,
			ListingID:       listingID,
			Name:            d.Name,
			SessionsCount:   d.SessionsCount,
			PriceINR:        d.PriceINR,
			DiscountPercent: valueOr(d.DiscountPercent, 0),
		})
	}

	return out, nil
}

func (p *HTTPProvider) Sessions(ctx context.Context, listingID int64, from, to time.Time) ([]domain.Session, error) {
	const op = "catalog.HTTPProvider.Sessions"

	q := url.Values{}
	q.Set("from_date", from.In(p.cfg.Location).Format(availability.DateLayout))
	q.Set("to_date", to.In(p.cfg.Location).Format(availability.DateLayout))

	var raw []availability.RawSession
	if err := p.getJSON(ctx, "/listings/"+strconv.FormatInt(listingID, 10)+"/sessions", q, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range raw {
		if raw[i].ListingID == 0 {
			raw[i].ListingID = listingID
		}
	}

	return availability.ParseSessions(raw, p.cfg.Location, p.logger), nil
}

func (p *HTTPProvider) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := *p.base
	u.Path = p.base.Path + path
	if q != nil {
		u.RawQuery = q.Encode()
	}
	target := u.String()

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.cfg.InitialInterval
	eb.MaxInterval = p.cfg.MaxInterval

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		return p.fetch(ctx, target, path)
	},
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(p.cfg.MaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			p.logger.Warn("catalog request failed, retrying", "path", path, "retry_in", next, "error", err)
		}),
	)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %v: %w", path, err, ErrInvalidPayload)
	}

	return nil
}

// fetch performs one attempt. Transport errors, 429 and 5xx are retryable;
// everything else is permanent.
func (p *HTTPProvider) fetch(ctx context.Context, target, path string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	req.Header.Set("Accept", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, backoff.Permanent(err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(ErrListingNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &StatusError{Code: resp.StatusCode, Path: path}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, backoff.Permanent(&StatusError{Code: resp.StatusCode, Path: path})
	}

	return body, nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
