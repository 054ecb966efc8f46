package partners

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kirinyoku/playpass/internal/domain"
	"github.com/kirinyoku/playpass/internal/repository"
	postgresrepo "github.com/kirinyoku/playpass/internal/repository/postgres"
	"github.com/kirinyoku/playpass/internal/uow"
)

type fakeDB struct {
	partners map[int64]*domain.Partner
	owners   map[int64]int64 // listing -> partner
	listings map[int64]domain.Listing
	plans    []domain.Plan
	sessions map[int64][]domain.Session
	nextID   int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		partners: map[int64]*domain.Partner{},
		owners:   map[int64]int64{},
		listings: map[int64]domain.Listing{},
		sessions: map[int64][]domain.Session{},
	}
}

func (f *fakeDB) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeDB) Partners(postgresrepo.DB) PartnerRepo { return fakePartners{f} }
func (f *fakeDB) Listings(postgresrepo.DB) ListingRepo { return fakeListings{f} }

type fakePartners struct{ db *fakeDB }

func (r fakePartners) Create(_ context.Context, p domain.Partner) (*domain.Partner, error) {
	for _, ex := range r.db.partners {
		if ex.OwnerUserID == p.OwnerUserID {
			return nil, repository.ErrConflict
		}
	}
	p.ID = r.db.id()
	r.db.partners[p.ID] = &p
	return &p, nil
}

func (r fakePartners) Get(_ context.Context, id int64) (*domain.Partner, error) {
	p, ok := r.db.partners[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r fakePartners) UpdateProfile(_ context.Context, id int64, patch domain.PartnerProfilePatch) (*domain.Partner, error) {
	p, ok := r.db.partners[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.City != nil {
		p.City = *patch.City
	}
	cp := *p
	return &cp, nil
}

type fakeListings struct{ db *fakeDB }

func (r fakeListings) OwnerOf(_ context.Context, listingID int64) (int64, error) {
	pid, ok := r.db.owners[listingID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return r.db.partners[pid].OwnerUserID, nil
}

func (r fakeListings) Create(_ context.Context, l domain.Listing) (int64, error) {
	id := r.db.id()
	r.db.listings[id] = l
	r.db.owners[id] = l.PartnerID
	return id, nil
}

func (r fakeListings) CreatePlan(_ context.Context, p domain.Plan) (int64, error) {
	p.ID = r.db.id()
	r.db.plans = append(r.db.plans, p)
	return p.ID, nil
}

func (r fakeListings) BatchCreateSessions(_ context.Context, listingID int64, sessions []domain.Session) error {
	r.db.sessions[listingID] = append(r.db.sessions[listingID], sessions...)
	return nil
}

type fakeTx struct{}

func (fakeTx) Do(ctx context.Context, fn uow.Work) error {
	var hooks []uow.AfterCommit
	if err := fn(ctx, nil, func(h uow.AfterCommit) { hooks = append(hooks, h) }); err != nil {
		return err
	}
	uow.RunHooks(ctx, hooks)
	return nil
}

type fakeEvents struct {
	published []int64
}

func (f *fakeEvents) InvalidateListing(context.Context, int64) error { return nil }

func (f *fakeEvents) PublishListingChanged(_ context.Context, id int64) error {
	f.published = append(f.published, id)
	return nil
}

func newTestService() (*Service, *fakeDB, *fakeEvents) {
	db := newFakeDB()
	ev := &fakeEvents{}
	return New(db, fakeTx{}, ev, slog.New(slog.NewTextHandler(io.Discard, nil))), db, ev
}

func TestOnboard(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Onboard(ctx, 5, domain.Partner{Name: " Asha Dance ", Kind: domain.PartnerInstructor, Email: "asha@example.com"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.OwnerUserID != 5 || p.Name != "Asha Dance" {
		t.Fatalf("unexpected partner %+v", p)
	}

	if _, err := svc.Onboard(ctx, 5, domain.Partner{Name: "Again", Kind: domain.PartnerInstructor}); !errors.Is(err, ErrAlreadyPartner) {
		t.Fatalf("expected ErrAlreadyPartner, got %v", err)
	}

	tests := []domain.Partner{
		{Name: "", Kind: domain.PartnerInstructor},
		{Name: "X", Kind: "school"},
		{Name: "X", Kind: domain.PartnerOrganization, Email: "nope"},
	}
	for _, in := range tests {
		var ve *ValidationError
		if _, err := svc.Onboard(ctx, 6, in); !errors.As(err, &ve) || !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ValidationError for %+v, got %v", in, err)
		}
	}
}

func TestUpdateProfile_OwnerOnly(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	ctx := context.Background()

	p, _ := svc.Onboard(ctx, 5, domain.Partner{Name: "Asha", Kind: domain.PartnerInstructor})
	city := "Pune"

	if _, err := svc.UpdateProfile(ctx, 6, p.ID, domain.PartnerProfilePatch{City: &city}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	got, err := svc.UpdateProfile(ctx, 5, p.ID, domain.PartnerProfilePatch{City: &city})
	if err != nil || got.City != "Pune" || got.Name != "Asha" {
		t.Fatalf("expected city update, got %+v (%v)", got, err)
	}

	if _, err := svc.UpdateProfile(ctx, 5, 999, domain.PartnerProfilePatch{City: &city}); !errors.Is(err, ErrPartnerNotFound) {
		t.Fatalf("expected ErrPartnerNotFound, got %v", err)
	}
}

func TestCreateListingAndSchedule(t *testing.T) {
	t.Parallel()

	svc, db, ev := newTestService()
	ctx := context.Background()

	p, _ := svc.Onboard(ctx, 5, domain.Partner{Name: "Asha", Kind: domain.PartnerInstructor})

	l, plans, err := svc.CreateListing(ctx, 5, p.ID,
		domain.Listing{Title: "Bharatanatyam", Ages: &domain.AgeRange{Min: 5, Max: 12}},
		[]domain.Plan{{Name: "Trial", SessionsCount: 1, PriceINR: 400}, {Name: "Month", SessionsCount: 4, PriceINR: 1400, DiscountPercent: 10}},
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if l.ID == 0 || l.PartnerID != p.ID || len(plans) != 2 || plans[1].ListingID != l.ID {
		t.Fatalf("unexpected listing %+v plans %+v", l, plans)
	}
	if len(ev.published) != 1 || ev.published[0] != l.ID {
		t.Fatalf("expected listing-changed event, got %v", ev.published)
	}

	if _, _, err := svc.CreateListing(ctx, 6, p.ID, domain.Listing{Title: "Stolen"}, nil); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	if _, _, err := svc.CreateListing(ctx, 5, p.ID, domain.Listing{Title: "Bad"}, []domain.Plan{{Name: "Zero", SessionsCount: 0}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	if err := svc.AddSessions(ctx, 5, l.ID, []domain.Session{{StartAt: start, SeatsAvailable: 8, IsBookable: true}}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(db.sessions[l.ID]) != 1 {
		t.Fatalf("expected one session stored, got %v", db.sessions[l.ID])
	}

	if err := svc.AddSessions(ctx, 6, l.ID, []domain.Session{{StartAt: start}}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	if err := svc.AddSessions(ctx, 5, 999, []domain.Session{{StartAt: start}}); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}

	added, err := svc.AddPlans(ctx, 5, l.ID, []domain.Plan{{Name: "Term", SessionsCount: 12, PriceINR: 3600}})
	if err != nil || len(added) != 1 || added[0].ID == 0 {
		t.Fatalf("expected plan added, got %+v (%v)", added, err)
	}
	if len(ev.published) != 3 {
		t.Fatalf("expected three events, got %v", ev.published)
	}
}
