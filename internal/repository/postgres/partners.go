package postgresrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/playpass/internal/domain"
)

type PartnerRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *PartnerRepo) With(db DB) *PartnerRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *PartnerRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const partnerColumns = `id, owner_user_id, name, kind, bio, phone, email, city, verified, created_at, updated_at`

// Create inserts a partner owned by p.OwnerUserID.
//
// Returns:
//   - *domain.Partner: the stored partner including generated fields.
//   - error: repository.ErrConflict if the user already onboarded a partner.
func (r *PartnerRepo) Create(ctx context.Context, p domain.Partner) (*domain.Partner, error) {
	const op = "postgresrepo.PartnerRepo.Create"

	var out domain.Partner
	var kind string
	err := r.handle().QueryRow(ctx,
		`INSERT INTO partners(owner_user_id, name, kind, bio, phone, email, city)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+partnerColumns,
		p.OwnerUserID, p.Name, string(p.Kind), p.Bio, p.Phone, p.Email, p.City,
	).Scan(
		&out.ID, &out.OwnerUserID, &out.Name, &kind, &out.Bio, &out.Phone,
		&out.Email, &out.City, &out.Verified, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out.Kind = domain.PartnerKind(kind)

	return &out, nil
}

// Get retrieves a partner by its ID.
//
// Returns:
//   - error: repository.ErrNotFound if the partner does not exist.
func (r *PartnerRepo) Get(ctx context.Context, id int64) (*domain.Partner, error) {
	const op = "postgresrepo.PartnerRepo.Get"

	var out domain.Partner
	var kind string
	err := r.handle().QueryRow(ctx,
		`SELECT `+partnerColumns+` FROM partners WHERE id = $1`,
		id,
	).Scan(
		&out.ID, &out.OwnerUserID, &out.Name, &kind, &out.Bio, &out.Phone,
		&out.Email, &out.City, &out.Verified, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out.Kind = domain.PartnerKind(kind)

	return &out, nil
}

// UpdateProfile applies the non-nil fields of patch.
func (r *PartnerRepo) UpdateProfile(ctx context.Context, id int64, patch domain.PartnerProfilePatch) (*domain.Partner, error) {
	const op = "postgresrepo.PartnerRepo.UpdateProfile"

	var out domain.Partner
	var kind string
	err := r.handle().QueryRow(ctx,
		`UPDATE partners
		 SET name = COALESCE($2, name),
		     bio = COALESCE($3, bio),
		     phone = COALESCE($4, phone),
		     email = COALESCE($5, email),
		     city = COALESCE($6, city),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+partnerColumns,
		id, patch.Name, patch.Bio, patch.Phone, patch.Email, patch.City,
	).Scan(
		&out.ID, &out.OwnerUserID, &out.Name, &kind, &out.Bio, &out.Phone,
		&out.Email, &out.City, &out.Verified, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out.Kind = domain.PartnerKind(kind)

	return &out, nil
}
