// Package catalog supplies listing, plan and session data to the booking
// flow, either from the local store or from a remote catalogue API.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/playpass/internal/domain"
	"github.com/kirinyoku/playpass/internal/repository"
	postgresrepo "github.com/kirinyoku/playpass/internal/repository/postgres"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrInvalidPayload  = errors.New("invalid catalog payload")
	ErrUpstream        = errors.New("catalog upstream failure")
)

type Provider interface {
	Listing(ctx context.Context, id int64) (*domain.Listing, error)
	Plans(ctx context.Context, listingID int64) ([]domain.Plan, error)
	Sessions(ctx context.Context, listingID int64, from, to time.Time) ([]domain.Session, error)
}

// StoreProvider reads the catalogue from Postgres.
type StoreProvider struct {
	store *postgresrepo.Store
}

func NewStoreProvider(store *postgresrepo.Store) *StoreProvider {
	return &StoreProvider{store: store}
}

func (p *StoreProvider) Listing(ctx context.Context, id int64) (*domain.Listing, error) {
	const op = "catalog.StoreProvider.Listing"

	l, err := p.store.Listings().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrListingNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return l, nil
}

func (p *StoreProvider) Plans(ctx context.Context, listingID int64) ([]domain.Plan, error) {
	const op = "catalog.StoreProvider.Plans"

	plans, err := p.store.Listings().Plans(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return plans, nil
}

func (p *StoreProvider) Sessions(ctx context.Context, listingID int64, from, to time.Time) ([]domain.Session, error) {
	const op = "catalog.StoreProvider.Sessions"

	sessions, err := p.store.Listings().Sessions(ctx, listingID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sessions, nil
}
