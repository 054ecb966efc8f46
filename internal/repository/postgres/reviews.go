package postgresrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/playpass/internal/domain"
)

type ReviewRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ReviewRepo) With(db DB) *ReviewRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ReviewRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// List returns reviews of a listing, newest first.
func (r *ReviewRepo) List(ctx context.Context, listingID int64, limit, offset int) ([]domain.Review, error) {
	const op = "postgresrepo.ReviewRepo.List"

	rows, err := r.handle().Query(ctx,
		`SELECT id, listing_id, user_id, rating, comment, created_at
		 FROM reviews
		 WHERE listing_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		listingID, limit, offset,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.ListingID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// Create stores a review.
//
// Returns:
//   - error: repository.ErrConflict if the user already reviewed the listing.
//   - error: repository.ErrNotFound if the listing does not exist.
func (r *ReviewRepo) Create(ctx context.Context, rv domain.Review) (*domain.Review, error) {
	const op = "postgresrepo.ReviewRepo.Create"

	out := rv
	err := r.handle().QueryRow(ctx,
		`INSERT INTO reviews(listing_id, user_id, rating, comment)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		rv.ListingID, rv.UserID, rv.Rating, rv.Comment,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &out, nil
}
