package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kirinyoku/playpass/internal/booking"
	"github.com/kirinyoku/playpass/internal/domain"
	"github.com/redis/go-redis/v9"
)

const testSelectionTTL = 30 * time.Minute

func newTestSelectionStore(t *testing.T) (*SelectionStore, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	m := miniredis.RunT(t)

	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	// A second connection plays the other instance racing the update.
	other := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = other.Close() })

	return NewSelectionStore(rdb, testSelectionTTL), m, other
}

func TestSelectionStore_CreateGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _, _ := newTestSelectionStore(t)

	if _, err := s.Get(ctx, "v1"); !errors.Is(err, ErrSelectionNotFound) {
		t.Fatalf("expected ErrSelectionNotFound, got %v", err)
	}

	sel := booking.Selection{ListingID: 1, Plan: &domain.Plan{ID: 7, ListingID: 1, SessionsCount: 2}}
	if err := s.Create(ctx, "v1", sel); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, "v1", sel); !errors.Is(err, ErrSelectionConflict) {
		t.Fatalf("expected ErrSelectionConflict on second create, got %v", err)
	}

	got, err := s.Get(ctx, "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ListingID != 1 || got.Plan == nil || got.Plan.ID != 7 {
		t.Fatalf("unexpected selection %+v", got)
	}
}

func TestSelectionStore_Update(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, m, _ := newTestSelectionStore(t)

	if err := s.Create(ctx, "v1", booking.Selection{ListingID: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Half the TTL has gone by; a write must start it again.
	m.FastForward(20 * time.Minute)

	got, err := s.Update(ctx, "v1", func(sel *booking.Selection) (bool, error) {
		sel.Plan = &domain.Plan{ID: 7, ListingID: 1, SessionsCount: 1}
		return false, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Plan == nil || got.Plan.ID != 7 {
		t.Fatalf("expected plan 7 in result, got %+v", got)
	}

	if ttl := m.TTL(KeySelection("v1")); ttl != testSelectionTTL {
		t.Fatalf("expected ttl refreshed to %v, got %v", testSelectionTTL, ttl)
	}

	stored, err := s.Get(ctx, "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Plan == nil || stored.Plan.ID != 7 {
		t.Fatalf("expected plan 7 stored, got %+v", stored)
	}
}

func TestSelectionStore_UpdateMissing(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSelectionStore(t)

	called := false
	_, err := s.Update(context.Background(), "nobody", func(*booking.Selection) (bool, error) {
		called = true
		return false, nil
	})
	if !errors.Is(err, ErrSelectionNotFound) {
		t.Fatalf("expected ErrSelectionNotFound, got %v", err)
	}
	if called {
		t.Fatalf("fn must not run for a missing selection")
	}
}

func TestSelectionStore_UpdateDiscard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, m, _ := newTestSelectionStore(t)

	if err := s.Create(ctx, "v1", booking.Selection{ListingID: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.Update(ctx, "v1", func(*booking.Selection) (bool, error) {
		return true, nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if m.Exists(KeySelection("v1")) {
		t.Fatalf("expected selection key deleted")
	}
	if _, err := s.Get(ctx, "v1"); !errors.Is(err, ErrSelectionNotFound) {
		t.Fatalf("expected ErrSelectionNotFound after discard, got %v", err)
	}
}

func TestSelectionStore_UpdateFnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, m, _ := newTestSelectionStore(t)

	if err := s.Create(ctx, "v1", booking.Selection{ListingID: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}
	before, err := m.Get(KeySelection("v1"))
	if err != nil {
		t.Fatalf("miniredis get: %v", err)
	}

	errRejected := errors.New("rejected")
	_, err = s.Update(ctx, "v1", func(sel *booking.Selection) (bool, error) {
		sel.ListingID = 99
		return false, errRejected
	})
	if !errors.Is(err, errRejected) {
		t.Fatalf("expected fn error, got %v", err)
	}

	after, err := m.Get(KeySelection("v1"))
	if err != nil {
		t.Fatalf("miniredis get: %v", err)
	}
	if after != before {
		t.Fatalf("expected stored selection unchanged, got %s", after)
	}
}

func TestSelectionStore_UpdateRetriesOnConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _, other := newTestSelectionStore(t)

	if err := s.Create(ctx, "v1", booking.Selection{ListingID: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}

	calls := 0
	got, err := s.Update(ctx, "v1", func(sel *booking.Selection) (bool, error) {
		calls++
		if calls == 1 {
			// Another writer lands between our read and our EXEC.
			if err := other.Set(ctx, KeySelection("v1"), `{"listing_id":2,"plan":null,"sessions":null}`, testSelectionTTL).Err(); err != nil {
				return false, err
			}
		}
		sel.Plan = &domain.Plan{ID: 7, ListingID: sel.ListingID, SessionsCount: 1}
		return false, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected fn to run twice, ran %d times", calls)
	}
	if got.ListingID != 2 || got.Plan == nil || got.Plan.ListingID != 2 {
		t.Fatalf("expected update applied on top of the concurrent write, got %+v", got)
	}

	stored, err := s.Get(ctx, "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ListingID != 2 || stored.Plan == nil || stored.Plan.ID != 7 {
		t.Fatalf("unexpected stored selection %+v", stored)
	}
}

func TestSelectionStore_UpdateGivesUp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _, other := newTestSelectionStore(t)

	if err := s.Create(ctx, "v1", booking.Selection{ListingID: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}

	calls := 0
	_, err := s.Update(ctx, "v1", func(*booking.Selection) (bool, error) {
		calls++
		if err := other.Set(ctx, KeySelection("v1"), `{"listing_id":3,"plan":null,"sessions":null}`, testSelectionTTL).Err(); err != nil {
			return false, err
		}
		return false, nil
	})
	if !errors.Is(err, ErrSelectionConflict) {
		t.Fatalf("expected ErrSelectionConflict, got %v", err)
	}
	if calls != maxSelectionTxRetries {
		t.Fatalf("expected %d attempts, got %d", maxSelectionTxRetries, calls)
	}

	stored, err := s.Get(ctx, "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ListingID != 3 {
		t.Fatalf("expected the other writer's value to stand, got %+v", stored)
	}
}
