package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirinyoku/playpass/internal/availability"
	"github.com/kirinyoku/playpass/internal/domain"
	"golang.org/x/sync/errgroup"
)

type PartStatus string

const (
	PartOK     PartStatus = "ok"
	PartFailed PartStatus = "failed"
)

// LoadStatus reports which of the three reads succeeded.
type LoadStatus struct {
	Listing  PartStatus `json:"listing"`
	Plans    PartStatus `json:"plans"`
	Sessions PartStatus `json:"sessions"`
}

type Bundle struct {
	Listing  *domain.Listing
	Plans    []domain.Plan
	Sessions []domain.Session
	Status   LoadStatus
}

// LoadBundle fetches the listing, its plans and its sessions inside w
// concurrently. A listing failure is returned as the error; plan or session
// failures are logged, reported in Status and leave the part empty.
func LoadBundle(
	ctx context.Context,
	p Provider,
	listingID int64,
	w availability.Window,
	logger *slog.Logger,
) (*Bundle, error) {
	const op = "catalog.LoadBundle"

	var (
		g           errgroup.Group
		listing     *domain.Listing
		plans       []domain.Plan
		sessions    []domain.Session
		listingErr  error
		plansErr    error
		sessionsErr error
	)

	g.Go(func() error {
		listing, listingErr = p.Listing(ctx, listingID)
		return nil
	})
	g.Go(func() error {
		plans, plansErr = p.Plans(ctx, listingID)
		return nil
	})
	g.Go(func() error {
		sessions, sessionsErr = p.Sessions(ctx, listingID, w.From, w.To)
		return nil
	})

	_ = g.Wait()

	if listingErr != nil {
		return nil, fmt.Errorf("%s: %w", op, listingErr)
	}

	b := &Bundle{
		Listing:  listing,
		Plans:    plans,
		Sessions: sessions,
		Status:   LoadStatus{Listing: PartOK, Plans: PartOK, Sessions: PartOK},
	}

	if plansErr != nil {
		logger.Warn("plans fetch failed", "listing_id", listingID, "error", plansErr)
		b.Plans = []domain.Plan{}
		b.Status.Plans = PartFailed
	}

	if sessionsErr != nil {
		logger.Warn("sessions fetch failed", "listing_id", listingID, "error", sessionsErr)
		b.Sessions = []domain.Session{}
		b.Status.Sessions = PartFailed
	}

	if b.Plans == nil {
		b.Plans = []domain.Plan{}
	}

	if b.Sessions == nil {
		b.Sessions = []domain.Session{}
	}

	return b, nil
}

// FindPlan returns the plan with the given id.
func (b *Bundle) FindPlan(id int64) (domain.Plan, bool) {
	for _, p := range b.Plans {
		if p.ID == id {
			return p, true
		}
	}

	return domain.Plan{}, false
}
