package postgresrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/playpass/internal/domain"
	"github.com/kirinyoku/playpass/internal/location"
	"github.com/kirinyoku/playpass/internal/repository"
)

type ListingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ListingRepo) With(db DB) *ListingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ListingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const listingColumns = `l.id, l.partner_id, l.title, l.description, l.category, l.base_price_inr,
	l.age_min, l.age_max, l.duration_minutes,
	l.venue_name, l.venue_address, l.venue_city, l.venue_lat, l.venue_lng,
	l.badges, l.rating_sum, l.rating_count`

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var (
		l                       domain.Listing
		ageMin, ageMax          *int
		venueName, venueAddress *string
		venueCity               *string
		venueLat, venueLng      *float64
		ratingSum               int64
	)

	if err := row.Scan(
		&l.ID, &l.PartnerID, &l.Title, &l.Description, &l.Category, &l.BasePriceINR,
		&ageMin, &ageMax, &l.DurationMinutes,
		&venueName, &venueAddress, &venueCity, &venueLat, &venueLng,
		&l.Badges, &ratingSum, &l.RatingCount,
	); err != nil {
		return nil, err
	}

	if ageMin != nil && ageMax != nil {
		l.Ages = &domain.AgeRange{Min: *ageMin, Max: *ageMax}
	}

	if venueName != nil && venueLat != nil && venueLng != nil {
		l.Venue = &domain.Venue{
			Name:      *venueName,
			Address:   deref(venueAddress),
			City:      deref(venueCity),
			Latitude:  *venueLat,
			Longitude: *venueLng,
		}
	}

	if l.Badges == nil {
		l.Badges = []string{}
	}

	if l.RatingCount > 0 {
		l.RatingAvg = float64(ratingSum) / float64(l.RatingCount)
	}

	return &l, nil
}

// Get retrieves a listing by its ID.
//
// Returns:
//   - *domain.Listing: the listing when found.
//   - error: repository.ErrNotFound if the listing does not exist.
func (r *ListingRepo) Get(ctx context.Context, id int64) (*domain.Listing, error) {
	const op = "postgresrepo.ListingRepo.Get"

	l, err := scanListing(r.handle().QueryRow(ctx,
		`SELECT `+listingColumns+`
		 FROM listings l WHERE l.id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return l, nil
}

// Plans lists the plans of a listing ordered by session count.
func (r *ListingRepo) Plans(ctx context.Context, listingID int64) ([]domain.Plan, error) {
	const op = "postgresrepo.ListingRepo.Plans"

	rows, err := r.handle().Query(ctx,
		`SELECT id, listing_id, name, sessions_count, price_inr, discount_percent
		 FROM plans
		 WHERE listing_id = $1
		 ORDER BY sessions_count, id`,
		listingID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := []domain.Plan{}
	for rows.Next() {
		var p domain.Plan
		if err := rows.Scan(&p.ID, &p.ListingID, &p.Name, &p.SessionsCount, &p.PriceINR, &p.DiscountPercent); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// Sessions lists the sessions of a listing starting in [from, to).
func (r *ListingRepo) Sessions(ctx context.Context, listingID int64, from, to time.Time) ([]domain.Session, error) {
	const op = "postgresrepo.ListingRepo.Sessions"

	rows, err := r.handle().Query(ctx,
		`SELECT id, listing_id, start_at, seats_available,
		        is_bookable AND seats_available > 0
		 FROM sessions
		 WHERE listing_id = $1 AND start_at >= $2 AND start_at < $3
		 ORDER BY start_at, id`,
		listingID, from, to,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := []domain.Session{}
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.ListingID, &s.StartAt, &s.SeatsAvailable, &s.IsBookable); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// WithinBox lists listings whose venue lies inside box, closest to center
// first by an equirectangular approximation, so that the limit keeps the
// nearest rows. Callers refine the result by exact distance.
func (r *ListingRepo) WithinBox(
	ctx context.Context,
	center domain.GeoPoint,
	box location.Box,
	limit int,
) ([]domain.Listing, error) {
	const op = "postgresrepo.ListingRepo.WithinBox"

	rows, err := r.handle().Query(ctx,
		`SELECT `+listingColumns+`
		 FROM listings l
		 WHERE l.venue_lat BETWEEN $1::float8 AND $2::float8
		   AND (
		         ($3::float8 <= $4::float8 AND l.venue_lng BETWEEN $3::float8 AND $4::float8)
		      OR ($3::float8 > $4::float8 AND (l.venue_lng >= $3::float8 OR l.venue_lng <= $4::float8))
		   )
		 ORDER BY power(l.venue_lat - $5::float8, 2)
		        + power(
		            least(abs(l.venue_lng - $6::float8), 360 - abs(l.venue_lng - $6::float8))
		            * cos(radians($5::float8)),
		            2),
		          l.id
		 LIMIT $7`,
		box.MinLat, box.MaxLat, box.MinLng, box.MaxLng, center.Latitude, center.Longitude, limit,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// OwnerOf returns the user owning the partner that offers the listing.
func (r *ListingRepo) OwnerOf(ctx context.Context, listingID int64) (int64, error) {
	const op = "postgresrepo.ListingRepo.OwnerOf"

	var owner int64
	err := r.handle().QueryRow(ctx,
		`SELECT p.owner_user_id
		 FROM listings l JOIN partners p ON p.id = l.partner_id
		 WHERE l.id = $1`,
		listingID,
	).Scan(&owner)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return owner, nil
}

func (r *ListingRepo) Create(ctx context.Context, l domain.Listing) (int64, error) {
	const op = "postgresrepo.ListingRepo.Create"

	var ageMin, ageMax *int
	if l.Ages != nil {
		ageMin, ageMax = &l.Ages.Min, &l.Ages.Max
	}

	var (
		venueName, venueAddress, venueCity *string
		venueLat, venueLng                 *float64
	)
	if l.Venue != nil {
		venueName, venueAddress, venueCity = &l.Venue.Name, &l.Venue.Address, &l.Venue.City
		venueLat, venueLng = &l.Venue.Latitude, &l.Venue.Longitude
	}

	badges := l.Badges
	if badges == nil {
		badges = []string{}
	}

	var id int64
	if err := r.handle().QueryRow(ctx,
		`INSERT INTO listings(
			partner_id, title, description, category, base_price_inr,
			age_min, age_max, duration_minutes,
			venue_name, venue_address, venue_city, venue_lat, venue_lng, badges)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id`,
		l.PartnerID, l.Title, l.Description, l.Category, l.BasePriceINR,
		ageMin, ageMax, l.DurationMinutes,
		venueName, venueAddress, venueCity, venueLat, venueLng, badges,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

func (r *ListingRepo) CreatePlan(ctx context.Context, p domain.Plan) (int64, error) {
	const op = "postgresrepo.ListingRepo.CreatePlan"

	var id int64
	if err := r.handle().QueryRow(ctx,
		`INSERT INTO plans(listing_id, name, sessions_count, price_inr, discount_percent)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		p.ListingID, p.Name, p.SessionsCount, p.PriceINR, p.DiscountPercent,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

// BatchCreateSessions inserts sessions; duplicates of (listing_id, start_at) are skipped.
func (r *ListingRepo) BatchCreateSessions(ctx context.Context, listingID int64, sessions []domain.Session) error {
	const op = "postgresrepo.ListingRepo.BatchCreateSessions"

	batch := &pgx.Batch{}
	for _, s := range sessions {
		batch.Queue(
			`INSERT INTO sessions(listing_id, start_at, seats_available, is_bookable)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (listing_id, start_at) DO NOTHING`,
			listingID, s.StartAt, s.SeatsAvailable, s.IsBookable,
		)
	}
	if err := r.handle().SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// AddRating folds a new review rating into the listing aggregate.
func (r *ListingRepo) AddRating(ctx context.Context, listingID int64, rating int) error {
	const op = "postgresrepo.ListingRepo.AddRating"

	tag, err := r.handle().Exec(ctx,
		`UPDATE listings
		 SET rating_sum = rating_sum + $2, rating_count = rating_count + 1
		 WHERE id = $1`,
		listingID, rating,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, repository.ErrNotFound)
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
