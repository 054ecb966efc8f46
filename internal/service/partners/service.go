package partners

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirinyoku/playpass/internal/domain"
	"github.com/kirinyoku/playpass/internal/repository"
	postgresrepo "github.com/kirinyoku/playpass/internal/repository/postgres"
	"github.com/kirinyoku/playpass/internal/uow"
)

type PartnerRepo interface {
	Create(ctx context.Context, p domain.Partner) (*domain.Partner, error)
	Get(ctx context.Context, id int64) (*domain.Partner, error)
	UpdateProfile(ctx context.Context, id int64, patch domain.PartnerProfilePatch) (*domain.Partner, error)
}

type ListingRepo interface {
	OwnerOf(ctx context.Context, listingID int64) (int64, error)
	Create(ctx context.Context, l domain.Listing) (int64, error)
	CreatePlan(ctx context.Context, p domain.Plan) (int64, error)
	BatchCreateSessions(ctx context.Context, listingID int64, sessions []domain.Session) error
}

// Repos hands out repositories bound to db; a nil db means outside any
// transaction.
type Repos interface {
	Partners(db postgresrepo.DB) PartnerRepo
	Listings(db postgresrepo.DB) ListingRepo
}

type Transactor interface {
	Do(ctx context.Context, fn uow.Work) error
}

type Events interface {
	InvalidateListing(ctx context.Context, listingID int64) error
	PublishListingChanged(ctx context.Context, listingID int64) error
}

type Service struct {
	repos  Repos
	tx     Transactor
	events Events
	logger *slog.Logger
}

func New(repos Repos, tx Transactor, events Events, logger *slog.Logger) *Service {
	return &Service{
		repos:  repos,
		tx:     tx,
		events: events,
		logger: logger,
	}
}

// Onboard registers the user as a partner. A user owns at most one partner.
//
// Returns:
//   - error: partners.ErrAlreadyPartner if the user already onboarded.
//   - error: partners.ValidationError on bad input.
func (s *Service) Onboard(ctx context.Context, userID int64, p domain.Partner) (*domain.Partner, error) {
	const op = "service.partners.Onboard"

	p.Name = strings.TrimSpace(p.Name)
	p.OwnerUserID = userID

	if err := validatePartner(p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := s.repos.Partners(nil).Create(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyPartner)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Partner, error) {
	const op = "service.partners.Get"

	p, err := s.repos.Partners(nil).Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapNotFound(err, ErrPartnerNotFound))
	}

	return p, nil
}

// UpdateProfile applies patch to a partner owned by userID.
//
// Returns:
//   - error: partners.ErrNotOwner if userID does not own the partner.
//   - error: partners.ErrPartnerNotFound if the partner does not exist.
func (s *Service) UpdateProfile(
	ctx context.Context,
	userID, partnerID int64,
	patch domain.PartnerProfilePatch,
) (*domain.Partner, error) {
	const op = "service.partners.UpdateProfile"

	if err := validatePatch(patch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out *domain.Partner

	err := s.tx.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, _ func(uow.AfterCommit)) error {
		if err := s.ownPartner(ctx, tx, userID, partnerID); err != nil {
			return err
		}

		p, err := s.repos.Partners(tx).UpdateProfile(ctx, partnerID, patch)
		if err != nil {
			return mapNotFound(err, ErrPartnerNotFound)
		}

		out = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// CreateListing creates a listing with its initial plans in one transaction.
//
// Returns:
//   - *domain.Listing: the stored listing.
//   - []domain.Plan: the stored plans with their ids.
//   - error: partners.ErrNotOwner if userID does not own the partner.
func (s *Service) CreateListing(
	ctx context.Context,
	userID, partnerID int64,
	l domain.Listing,
	plans []domain.Plan,
) (*domain.Listing, []domain.Plan, error) {
	const op = "service.partners.CreateListing"

	l.Title = strings.TrimSpace(l.Title)
	l.PartnerID = partnerID

	if err := validateListing(l); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validatePlans(plans); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	var created []domain.Plan

	err := s.tx.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.ownPartner(ctx, tx, userID, partnerID); err != nil {
			return err
		}

		id, err := s.repos.Listings(tx).Create(ctx, l)
		if err != nil {
			return err
		}
		l.ID = id

		created, err = s.createPlans(ctx, tx, id, plans)
		if err != nil {
			return err
		}

		after(s.changed(id))

		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if l.Badges == nil {
		l.Badges = []string{}
	}

	return &l, created, nil
}

// AddPlans adds plans to a listing of a partner owned by userID.
func (s *Service) AddPlans(ctx context.Context, userID, listingID int64, plans []domain.Plan) ([]domain.Plan, error) {
	const op = "service.partners.AddPlans"

	if len(plans) == 0 {
		return nil, fmt.Errorf("%s: %w", op, invalid("plans", "must not be empty"))
	}

	if err := validatePlans(plans); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var created []domain.Plan

	err := s.tx.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.ownListing(ctx, tx, userID, listingID); err != nil {
			return err
		}

		var err error
		created, err = s.createPlans(ctx, tx, listingID, plans)
		if err != nil {
			return err
		}

		after(s.changed(listingID))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

// AddSessions schedules sessions for a listing of a partner owned by
// userID. Sessions starting at an already scheduled time are skipped.
func (s *Service) AddSessions(ctx context.Context, userID, listingID int64, sessions []domain.Session) error {
	const op = "service.partners.AddSessions"

	if err := validateSessions(sessions); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := s.tx.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.ownListing(ctx, tx, userID, listingID); err != nil {
			return err
		}

		if err := s.repos.Listings(tx).BatchCreateSessions(ctx, listingID, sessions); err != nil {
			return err
		}

		after(s.changed(listingID))

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) createPlans(ctx context.Context, tx postgresrepo.DB, listingID int64, plans []domain.Plan) ([]domain.Plan, error) {
	out := make([]domain.Plan, 0, len(plans))
	for _, p := range plans {
		p.ListingID = listingID
		p.Name = strings.TrimSpace(p.Name)

		id, err := s.repos.Listings(tx).CreatePlan(ctx, p)
		if err != nil {
			return nil, err
		}

		p.ID = id
		out = append(out, p)
	}

	return out, nil
}

func (s *Service) ownPartner(ctx context.Context, tx postgresrepo.DB, userID, partnerID int64) error {
	p, err := s.repos.Partners(tx).Get(ctx, partnerID)
	if err != nil {
		return mapNotFound(err, ErrPartnerNotFound)
	}

	if p.OwnerUserID != userID {
		return ErrNotOwner
	}

	return nil
}

func (s *Service) ownListing(ctx context.Context, tx postgresrepo.DB, userID, listingID int64) error {
	owner, err := s.repos.Listings(tx).OwnerOf(ctx, listingID)
	if err != nil {
		return mapNotFound(err, ErrListingNotFound)
	}

	if owner != userID {
		return ErrNotOwner
	}

	return nil
}

func (s *Service) changed(listingID int64) uow.AfterCommit {
	return func(ctx context.Context) {
		if err := s.events.InvalidateListing(ctx, listingID); err != nil {
			s.logger.Warn("invalidate listing cache", "listing_id", listingID, "error", err)
		}
		if err := s.events.PublishListingChanged(ctx, listingID); err != nil {
			s.logger.Warn("publish listing changed", "listing_id", listingID, "error", err)
		}
	}
}

func mapNotFound(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}
