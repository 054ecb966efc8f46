package selections

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/kirinyoku/playpass/internal/booking"
	"github.com/kirinyoku/playpass/internal/catalog"
	"github.com/kirinyoku/playpass/internal/domain"
	redisrepo "github.com/kirinyoku/playpass/internal/repository/redis"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeProvider struct {
	listing  *domain.Listing
	plans    []domain.Plan
	sessions []domain.Session
	err      error
	calls    int
}

func (f *fakeProvider) Listing(_ context.Context, id int64) (*domain.Listing, error) {
	if f.listing == nil || f.listing.ID != id {
		return nil, catalog.ErrListingNotFound
	}
	return f.listing, nil
}

func (f *fakeProvider) Plans(_ context.Context, _ int64) ([]domain.Plan, error) {
	return f.plans, f.err
}

func (f *fakeProvider) Sessions(_ context.Context, _ int64, _, _ time.Time) ([]domain.Session, error) {
	f.calls++
	return f.sessions, f.err
}

type fakeStore struct {
	m map[string]booking.Selection
}

func newFakeStore() *fakeStore {
	return &fakeStore{m: map[string]booking.Selection{}}
}

func (f *fakeStore) Create(_ context.Context, id string, sel booking.Selection) error {
	f.m[id] = sel
	return nil
}

func (f *fakeStore) Get(_ context.Context, id string) (booking.Selection, error) {
	sel, ok := f.m[id]
	if !ok {
		return booking.Selection{}, redisrepo.ErrSelectionNotFound
	}
	return sel, nil
}

func (f *fakeStore) Update(
	_ context.Context,
	id string,
	fn func(sel *booking.Selection) (bool, error),
) (booking.Selection, error) {
	sel, ok := f.m[id]
	if !ok {
		return booking.Selection{}, redisrepo.ErrSelectionNotFound
	}

	discard, err := fn(&sel)
	if err != nil {
		return booking.Selection{}, err
	}

	if discard {
		delete(f.m, id)
	} else {
		f.m[id] = sel
	}

	return sel, nil
}

type fakeLimiter struct {
	allow bool
}

func (f *fakeLimiter) Allow(_ context.Context, _, _ string) (redisrepo.Decision, error) {
	return redisrepo.Decision{Allowed: f.allow, RetryAfter: 5 * time.Second}, nil
}

type fakeActor struct {
	loggedIn bool
	prompted int
	errs     []string
	path     string
}

func (f *fakeActor) LoggedIn() bool         { return f.loggedIn }
func (f *fakeActor) PromptLogin()           { f.prompted++ }
func (f *fakeActor) NotifyError(msg string) { f.errs = append(f.errs, msg) }
func (f *fakeActor) NotifyInfo(string)      {}
func (f *fakeActor) GoToCheckout(listingID, planID int64, sessionIDs []int64) {
	f.path = booking.CheckoutPath(listingID, planID, sessionIDs)
}

func (f *fakeActor) actor() Actor {
	return Actor{ClientID: "client", Auth: f, Navigator: f, Notifier: f}
}

func fixture() *fakeProvider {
	at := func(day, hour int) time.Time {
		return time.Date(2026, 3, day, hour, 0, 0, 0, time.UTC)
	}

	return &fakeProvider{
		listing: &domain.Listing{ID: 1, Title: "Swimming"},
		plans: []domain.Plan{
			{ID: 10, ListingID: 1, Name: "Single", SessionsCount: 1, PriceINR: 500},
			{ID: 20, ListingID: 1, Name: "Pair", SessionsCount: 2, PriceINR: 900},
		},
		sessions: []domain.Session{
			{ID: 100, ListingID: 1, StartAt: at(11, 10), IsBookable: true},
			{ID: 101, ListingID: 1, StartAt: at(12, 10), IsBookable: true},
			{ID: 102, ListingID: 1, StartAt: at(13, 10), IsBookable: true},
			{ID: 103, ListingID: 1, StartAt: at(14, 10), IsBookable: false},
		},
	}
}

func newTestService(p *fakeProvider, fresh *fakeProvider, l Limiter) (*Service, *fakeStore) {
	store := newFakeStore()

	var freshProvider catalog.Provider
	if fresh != nil {
		freshProvider = fresh
	}

	svc := New(p, freshProvider, store, l, Config{Location: time.UTC}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return now }

	return svc, store
}

func TestStart(t *testing.T) {
	svc, store := newTestService(fixture(), nil, nil)

	id, sel, err := svc.Start(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id == "" || sel.ListingID != 1 || sel.State() != booking.StateNoPlanSelected {
		t.Fatalf("unexpected selection %q %+v", id, sel)
	}
	if _, ok := store.m[id]; !ok {
		t.Fatalf("expected selection to be stored")
	}

	if _, _, err := svc.Start(context.Background(), 99); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestSelectPlan(t *testing.T) {
	svc, _ := newTestService(fixture(), nil, nil)
	ctx := context.Background()
	a := &fakeActor{}

	id, _, _ := svc.Start(ctx, 1)

	if _, err := svc.SelectPlan(ctx, id, 999, a.actor()); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}

	sel, err := svc.SelectPlan(ctx, id, 20, a.actor())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sel.Plan == nil || sel.Plan.ID != 20 || len(sel.Sessions) != 0 {
		t.Fatalf("unexpected selection %+v", sel)
	}

	if _, err := svc.SelectPlan(ctx, "missing", 20, a.actor()); !errors.Is(err, ErrSelectionNotFound) {
		t.Fatalf("expected ErrSelectionNotFound, got %v", err)
	}
}

func TestToggleSession(t *testing.T) {
	svc, _ := newTestService(fixture(), nil, nil)
	ctx := context.Background()
	a := &fakeActor{}

	id, _, _ := svc.Start(ctx, 1)
	_, _ = svc.SelectPlan(ctx, id, 10, a.actor())

	sel, err := svc.ToggleSession(ctx, id, 101, a.actor())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sel.Position(101) != 1 {
		t.Fatalf("expected session 101 at position 1, got %d", sel.Position(101))
	}

	// Plan allows one session: the second add is rejected with a notice.
	sel, err = svc.ToggleSession(ctx, id, 102, a.actor())
	if err != nil {
		t.Fatalf("expected no error for over-selection, got %v", err)
	}
	if sel.Contains(102) || len(sel.Sessions) != 1 {
		t.Fatalf("expected selection unchanged, got %+v", sel.SessionIDs())
	}
	if len(a.errs) != 1 || a.errs[0] != booking.LimitMessage(1) {
		t.Fatalf("expected limit notice, got %v", a.errs)
	}

	if _, err := svc.ToggleSession(ctx, id, 103, a.actor()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for non-bookable session, got %v", err)
	}

	sel, err = svc.ToggleSession(ctx, id, 101, a.actor())
	if err != nil || len(sel.Sessions) != 0 {
		t.Fatalf("expected deselect, got %+v (%v)", sel.SessionIDs(), err)
	}
}

func TestToggleSession_RateLimited(t *testing.T) {
	svc, _ := newTestService(fixture(), nil, &fakeLimiter{allow: false})
	ctx := context.Background()
	a := &fakeActor{}

	id, _, _ := svc.Start(ctx, 1)

	_, err := svc.ToggleSession(ctx, id, 100, a.actor())

	var rl *RateLimitedError
	if !errors.As(err, &rl) || rl.RetryAfter != 5*time.Second {
		t.Fatalf("expected RateLimitedError, got %v", err)
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("logged out prompts login and keeps selection", func(t *testing.T) {
		svc, store := newTestService(fixture(), nil, nil)
		a := &fakeActor{}

		id, _, _ := svc.Start(ctx, 1)
		_, _ = svc.SelectPlan(ctx, id, 10, a.actor())
		_, _ = svc.ToggleSession(ctx, id, 100, a.actor())

		_, err := svc.Confirm(ctx, id, a.actor())
		if !errors.Is(err, booking.ErrLoginRequired) {
			t.Fatalf("expected ErrLoginRequired, got %v", err)
		}
		if a.prompted != 1 {
			t.Fatalf("expected one login prompt, got %d", a.prompted)
		}
		if sel := store.m[id]; len(sel.Sessions) != 1 {
			t.Fatalf("expected selection kept, got %+v", sel)
		}
	})

	t.Run("incomplete selection", func(t *testing.T) {
		svc, _ := newTestService(fixture(), nil, nil)
		a := &fakeActor{loggedIn: true}

		id, _, _ := svc.Start(ctx, 1)
		_, _ = svc.SelectPlan(ctx, id, 20, a.actor())
		_, _ = svc.ToggleSession(ctx, id, 100, a.actor())

		_, err := svc.Confirm(ctx, id, a.actor())
		if !errors.Is(err, booking.ErrSelectionIncomplete) {
			t.Fatalf("expected ErrSelectionIncomplete, got %v", err)
		}
		if a.path != "" {
			t.Fatalf("expected no navigation, got %s", a.path)
		}
		if len(a.errs) != 1 || a.errs[0] != "Please select exactly 2 sessions." {
			t.Fatalf("unexpected notices %v", a.errs)
		}
	})

	t.Run("complete selection navigates and discards", func(t *testing.T) {
		p := fixture()
		fresh := fixture()
		svc, store := newTestService(p, fresh, nil)
		a := &fakeActor{loggedIn: true}

		id, _, _ := svc.Start(ctx, 1)
		_, _ = svc.SelectPlan(ctx, id, 20, a.actor())
		_, _ = svc.ToggleSession(ctx, id, 102, a.actor())
		_, _ = svc.ToggleSession(ctx, id, 100, a.actor())

		if _, err := svc.Confirm(ctx, id, a.actor()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if a.path != "/checkout/plan/1/20?sessions=102,100" {
			t.Fatalf("unexpected checkout path %s", a.path)
		}
		if _, ok := store.m[id]; ok {
			t.Fatalf("expected selection to be discarded")
		}
		if fresh.calls != 1 {
			t.Fatalf("expected one fresh sessions read, got %d", fresh.calls)
		}
	})

	t.Run("sessions gone upstream are removed", func(t *testing.T) {
		p := fixture()
		fresh := fixture()
		fresh.sessions[0].IsBookable = false
		svc, store := newTestService(p, fresh, nil)
		a := &fakeActor{loggedIn: true}

		id, _, _ := svc.Start(ctx, 1)
		_, _ = svc.SelectPlan(ctx, id, 20, a.actor())
		_, _ = svc.ToggleSession(ctx, id, 100, a.actor())
		_, _ = svc.ToggleSession(ctx, id, 101, a.actor())

		sel, err := svc.Confirm(ctx, id, a.actor())

		var ue *UnavailableError
		if !errors.As(err, &ue) || len(ue.SessionIDs) != 1 || ue.SessionIDs[0] != 100 {
			t.Fatalf("expected UnavailableError for 100, got %v", err)
		}
		if a.path != "" {
			t.Fatalf("expected no navigation, got %s", a.path)
		}
		if len(sel.Sessions) != 1 || sel.Sessions[0].ID != 101 {
			t.Fatalf("expected only 101 left, got %v", sel.SessionIDs())
		}
		if stored := store.m[id]; len(stored.Sessions) != 1 {
			t.Fatalf("expected pruned selection stored, got %v", stored.SessionIDs())
		}
		if len(a.errs) != 1 || !strings.Contains(a.errs[0], "no longer available") {
			t.Fatalf("unexpected notices %v", a.errs)
		}
	})
}
