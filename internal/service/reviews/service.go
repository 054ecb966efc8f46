package reviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/kirinyoku/playpass/internal/domain"
	"github.com/kirinyoku/playpass/internal/repository"
	postgresrepo "github.com/kirinyoku/playpass/internal/repository/postgres"
	"github.com/kirinyoku/playpass/internal/uow"
)

const (
	MaxCommentLen = 2000
	DefaultLimit  = 20
	MaxLimit      = 100
)

type ReviewRepo interface {
	List(ctx context.Context, listingID int64, limit, offset int) ([]domain.Review, error)
	Create(ctx context.Context, rv domain.Review) (*domain.Review, error)
}

type ListingRepo interface {
	Get(ctx context.Context, id int64) (*domain.Listing, error)
	AddRating(ctx context.Context, listingID int64, rating int) error
}

// Repos hands out repositories bound to db; a nil db means outside any
// transaction.
type Repos interface {
	Reviews(db postgresrepo.DB) ReviewRepo
	Listings(db postgresrepo.DB) ListingRepo
}

type Transactor interface {
	Do(ctx context.Context, fn uow.Work) error
}

// Events is notified once a listing changed.
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

// List returns the reviews of a listing, newest first.
//
// Returns:
//   - error: reviews.ErrListingNotFound if the listing does not exist.
func (s *Service) List(ctx context.Context, listingID int64, limit, offset int) ([]domain.Review, error) {
	const op = "service.reviews.List"

	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)
	offset = max(offset, 0)

	if _, err := s.repos.Listings(nil).Get(ctx, listingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrListingNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := s.repos.Reviews(nil).List(ctx, listingID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Create stores the user's review and folds its rating into the listing in
// one transaction.
//
// Returns:
//   - error: reviews.ErrInvalidRating or reviews.ErrCommentTooLong on bad input.
//   - error: reviews.ErrAlreadyReviewed if the user reviewed the listing before.
//   - error: reviews.ErrListingNotFound if the listing does not exist.
func (s *Service) Create(
	ctx context.Context,
	userID, listingID int64,
	rating int,
	comment string,
) (*domain.Review, error) {
	const op = "service.reviews.Create"

	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRating)
	}

	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > MaxCommentLen {
		return nil, fmt.Errorf("%s: %w", op, ErrCommentTooLong)
	}

	var out *domain.Review

	err := s.tx.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		rv, err := s.repos.Reviews(tx).Create(ctx, domain.Review{
			ListingID: listingID,
			UserID:    userID,
			Rating:    rating,
			Comment:   comment,
		})
		if err != nil {
			return err
		}

		if err := s.repos.Listings(tx).AddRating(ctx, listingID, rating); err != nil {
			return err
		}

		out = rv

		after(func(ctx context.Context) {
			if err := s.events.InvalidateListing(ctx, listingID); err != nil {
				s.logger.Warn("invalidate listing cache", "listing_id", listingID, "error", err)
			}
			if err := s.events.PublishListingChanged(ctx, listingID); err != nil {
				s.logger.Warn("publish listing changed", "listing_id", listingID, "error", err)
			}
		})

		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyReviewed)
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrListingNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}
