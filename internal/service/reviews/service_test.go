package reviews

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/kirinyoku/playpass/internal/domain"
	"github.com/kirinyoku/playpass/internal/repository"
	postgresrepo "github.com/kirinyoku/playpass/internal/repository/postgres"
	"github.com/kirinyoku/playpass/internal/uow"
)

type fakeDB struct {
	listings map[int64]*domain.Listing
	reviews  []domain.Review
	ratings  map[int64][]int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		listings: map[int64]*domain.Listing{1: {ID: 1, Title: "Pottery"}},
		ratings:  map[int64][]int{},
	}
}

func (f *fakeDB) Reviews(postgresrepo.DB) ReviewRepo   { return fakeReviews{f} }
func (f *fakeDB) Listings(postgresrepo.DB) ListingRepo { return fakeListings{f} }

type fakeReviews struct{ db *fakeDB }

func (r fakeReviews) List(_ context.Context, listingID int64, limit, offset int) ([]domain.Review, error) {
	var out []domain.Review
	for i := len(r.db.reviews) - 1; i >= 0; i-- {
		if r.db.reviews[i].ListingID == listingID {
			out = append(out, r.db.reviews[i])
		}
	}
	if offset >= len(out) {
		return []domain.Review{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeReviews) Create(_ context.Context, rv domain.Review) (*domain.Review, error) {
	for _, ex := range r.db.reviews {
		if ex.ListingID == rv.ListingID && ex.UserID == rv.UserID {
			return nil, repository.ErrConflict
		}
	}
	if _, ok := r.db.listings[rv.ListingID]; !ok {
		return nil, repository.ErrNotFound
	}
	rv.ID = int64(len(r.db.reviews) + 1)
	r.db.reviews = append(r.db.reviews, rv)
	return &rv, nil
}

type fakeListings struct{ db *fakeDB }

func (l fakeListings) Get(_ context.Context, id int64) (*domain.Listing, error) {
	if x, ok := l.db.listings[id]; ok {
		return x, nil
	}
	return nil, repository.ErrNotFound
}

func (l fakeListings) AddRating(_ context.Context, listingID int64, rating int) error {
	l.db.ratings[listingID] = append(l.db.ratings[listingID], rating)
	return nil
}

// fakeTx runs work directly and fires hooks only when it succeeds.
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
	invalidated []int64
	published   []int64
}

func (f *fakeEvents) InvalidateListing(_ context.Context, id int64) error {
	f.invalidated = append(f.invalidated, id)
	return nil
}

func (f *fakeEvents) PublishListingChanged(_ context.Context, id int64) error {
	f.published = append(f.published, id)
	return nil
}

func newTestService() (*Service, *fakeDB, *fakeEvents) {
	db := newFakeDB()
	ev := &fakeEvents{}
	return New(db, fakeTx{}, ev, slog.New(slog.NewTextHandler(io.Discard, nil))), db, ev
}

func TestCreate(t *testing.T) {
	t.Parallel()

	svc, db, ev := newTestService()
	ctx := context.Background()

	rv, err := svc.Create(ctx, 7, 1, 5, "  Loved it  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rv.Comment != "Loved it" || rv.UserID != 7 {
		t.Fatalf("unexpected review %+v", rv)
	}
	if got := db.ratings[1]; len(got) != 1 || got[0] != 5 {
		t.Fatalf("expected rating folded into listing, got %v", got)
	}
	if len(ev.invalidated) != 1 || len(ev.published) != 1 {
		t.Fatalf("expected one invalidate and one publish, got %v %v", ev.invalidated, ev.published)
	}

	if _, err := svc.Create(ctx, 7, 1, 4, ""); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
	if len(ev.published) != 1 {
		t.Fatalf("expected no event for failed create, got %v", ev.published)
	}
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name    string
		listing int64
		rating  int
		comment string
		want    error
	}{
		{"rating too low", 1, 0, "", ErrInvalidRating},
		{"rating too high", 1, 6, "", ErrInvalidRating},
		{"comment too long", 1, 3, strings.Repeat("a", MaxCommentLen+1), ErrCommentTooLong},
		{"unknown listing", 9, 3, "", ErrListingNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, 1, tt.listing, tt.rating, tt.comment); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	ctx := context.Background()

	for user := int64(1); user <= 3; user++ {
		if _, err := svc.Create(ctx, user, 1, 4, ""); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := svc.List(ctx, 1, 2, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 || got[0].UserID != 3 {
		t.Fatalf("expected newest first page of 2, got %+v", got)
	}

	if _, err := svc.List(ctx, 42, 10, 0); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}
