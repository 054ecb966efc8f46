package selections

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/playpass/internal/availability"
	"github.com/kirinyoku/playpass/internal/booking"
	"github.com/kirinyoku/playpass/internal/catalog"
	"github.com/kirinyoku/playpass/internal/domain"
	redisrepo "github.com/kirinyoku/playpass/internal/repository/redis"
)

const (
	scopeToggle  = "toggle"
	scopeConfirm = "confirm"
)

type Store interface {
	Create(ctx context.Context, id string, sel booking.Selection) error
	Get(ctx context.Context, id string) (booking.Selection, error)
	Update(ctx context.Context, id string, fn func(sel *booking.Selection) (bool, error)) (booking.Selection, error)
}

type Limiter interface {
	Allow(ctx context.Context, scope, id string) (redisrepo.Decision, error)
}

// Actor carries the per-request collaborators of the selection machine.
// ClientID identifies the caller for rate limiting.
type Actor struct {
	ClientID  string
	Auth      booking.Auth
	Navigator booking.Navigator
	Notifier  booking.Notifier
}

func (a Actor) loggedIn() bool {
	return a.Auth != nil && a.Auth.LoggedIn()
}

type Config struct {
	Location     *time.Location
	WindowMonths int
}

type Service struct {
	provider catalog.Provider
	fresh    catalog.Provider
	store    Store
	limiter  Limiter
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// New builds the service. provider may serve cached data; fresh must not,
// it is consulted right before hand-off to checkout.
func New(
	provider catalog.Provider,
	fresh catalog.Provider,
	store Store,
	limiter Limiter,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	if cfg.WindowMonths <= 0 {
		cfg.WindowMonths = availability.DefaultMonths
	}

	if fresh == nil {
		fresh = provider
	}

	return &Service{
		provider: provider,
		fresh:    fresh,
		store:    store,
		limiter:  limiter,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Start opens an empty selection for the listing.
//
// Returns:
//   - string: the selection id.
//   - error: selections.ErrListingNotFound if the listing does not exist.
func (s *Service) Start(ctx context.Context, listingID int64) (string, booking.Selection, error) {
	const op = "service.selections.Start"

	if _, err := s.provider.Listing(ctx, listingID); err != nil {
		return "", booking.Selection{}, fmt.Errorf("%s: %w", op, mapCatalogErr(err))
	}

	id := uuid.NewString()
	sel := booking.Selection{ListingID: listingID}

	if err := s.store.Create(ctx, id, sel); err != nil {
		return "", booking.Selection{}, fmt.Errorf("%s: %w", op, mapStoreErr(err))
	}

	return id, sel, nil
}

func (s *Service) Get(ctx context.Context, id string) (booking.Selection, error) {
	const op = "service.selections.Get"

	sel, err := s.store.Get(ctx, id)
	if err != nil {
		return booking.Selection{}, fmt.Errorf("%s: %w", op, mapStoreErr(err))
	}

	return sel, nil
}

// SelectPlan switches the selection to planID and clears picked sessions.
//
// Returns:
//   - error: selections.ErrPlanNotFound if the plan is not offered by the listing.
//   - error: selections.ErrSelectionNotFound if the selection expired.
func (s *Service) SelectPlan(ctx context.Context, id string, planID int64, a Actor) (booking.Selection, error) {
	const op = "service.selections.SelectPlan"

	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return booking.Selection{}, fmt.Errorf("%s: %w", op, mapStoreErr(err))
	}

	plans, err := s.provider.Plans(ctx, cur.ListingID)
	if err != nil {
		return booking.Selection{}, fmt.Errorf("%s: %v: %w", op, err, ErrCatalogUnavailable)
	}

	var plan *domain.Plan
	for i := range plans {
		if plans[i].ID == planID {
			plan = &plans[i]
			break
		}
	}
	if plan == nil {
		return booking.Selection{}, fmt.Errorf("%s: plan %d: %w", op, planID, ErrPlanNotFound)
	}

	var rec *recorder
	out, err := s.store.Update(ctx, id, func(sel *booking.Selection) (bool, error) {
		rec = newRecorder(a.loggedIn())
		m := booking.NewMachine(*sel, rec, rec, rec)
		m.SelectPlan(*plan)
		*sel = m.Selection()
		return false, nil
	})
	if err != nil {
		return booking.Selection{}, fmt.Errorf("%s: %w", op, mapStoreErr(err))
	}

	rec.flush(a)

	return out, nil
}

// ToggleSession deselects sessionID when it is picked and otherwise tries
// to add it. A rejected add is reported to the actor's notifier and leaves
// the selection unchanged without failing the call.
//
// Returns:
//   - error: selections.ErrSessionNotFound if the session is not bookable.
//   - error: selections.RateLimitedError when the caller toggles too often.
func (s *Service) ToggleSession(ctx context.Context, id string, sessionID int64, a Actor) (booking.Selection, error) {
	const op = "service.selections.ToggleSession"

	if err := s.allow(ctx, scopeToggle, a.ClientID); err != nil {
		return booking.Selection{}, fmt.Errorf("%s: %w", op, err)
	}

	var (
		rec *recorder
		cal *availability.Calendar
	)

	out, err := s.store.Update(ctx, id, func(sel *booking.Selection) (bool, error) {
		rec = newRecorder(a.loggedIn())

		// Deselecting is always allowed, even once the session has left
		// the calendar.
		session := domain.Session{ID: sessionID}
		if !sel.Contains(sessionID) {
			if cal == nil {
				c, err := s.calendar(ctx, s.provider, sel.ListingID)
				if err != nil {
					return false, err
				}
				cal = &c
			}

			found, ok := cal.Find(sessionID)
			if !ok {
				return false, ErrSessionNotFound
			}
			session = found
		}

		m := booking.NewMachine(*sel, rec, rec, rec)
		_ = m.ToggleSession(session)
		*sel = m.Selection()

		return false, nil
	})
	if err != nil {
		return booking.Selection{}, fmt.Errorf("%s: %w", op, mapStoreErr(err))
	}

	rec.flush(a)

	return out, nil
}

// Confirm hands a complete selection off to checkout through the actor's
// navigator and discards it. Before navigating, the picked sessions are
// checked against a fresh read of the catalogue; any that stopped being
// bookable are removed and reported instead.
//
// Returns:
//   - booking.Selection: the selection as it stands after the call.
//   - error: booking.ErrLoginRequired, booking.ErrSelectionIncomplete or
//     booking.ErrNoPlanSelected when the gate is closed.
//   - error: selections.UnavailableError when sessions had to be removed.
func (s *Service) Confirm(ctx context.Context, id string, a Actor) (booking.Selection, error) {
	const op = "service.selections.Confirm"

	if err := s.allow(ctx, scopeConfirm, a.ClientID); err != nil {
		return booking.Selection{}, fmt.Errorf("%s: %w", op, err)
	}

	var (
		rec        *recorder
		fresh      *availability.Calendar
		confirmErr error
	)

	out, err := s.store.Update(ctx, id, func(sel *booking.Selection) (bool, error) {
		rec = newRecorder(a.loggedIn())
		confirmErr = nil

		m := booking.NewMachine(*sel, rec, rec, rec)

		if m.CanBook() {
			if fresh == nil {
				cal, err := s.calendar(ctx, s.fresh, sel.ListingID)
				if err != nil {
					return false, err
				}
				fresh = &cal
			}

			gone := unavailable(sel.Sessions, *fresh)
			if len(gone) > 0 {
				m.Remove(ids(gone)...)
				rec.NotifyError(unavailableMessage(gone, s.cfg.Location))
				*sel = m.Selection()
				confirmErr = &UnavailableError{SessionIDs: ids(gone)}
				return false, nil
			}
		}

		if err := m.Confirm(); err != nil {
			confirmErr = err
			return false, nil
		}

		*sel = m.Selection()

		return true, nil
	})
	if err != nil {
		return booking.Selection{}, fmt.Errorf("%s: %w", op, mapStoreErr(err))
	}

	rec.flush(a)

	if confirmErr != nil {
		return out, fmt.Errorf("%s: %w", op, confirmErr)
	}

	return out, nil
}

func (s *Service) calendar(ctx context.Context, p catalog.Provider, listingID int64) (availability.Calendar, error) {
	w := availability.NewWindow(s.now(), s.cfg.Location, s.cfg.WindowMonths)

	sessions, err := p.Sessions(ctx, listingID, w.From, w.To)
	if err != nil {
		return availability.Calendar{}, fmt.Errorf("%v: %w", err, ErrCatalogUnavailable)
	}

	return availability.Filter(sessions, w, s.logger), nil
}

func (s *Service) allow(ctx context.Context, scope, clientID string) error {
	if s.limiter == nil || clientID == "" {
		return nil
	}

	d, err := s.limiter.Allow(ctx, scope, clientID)
	if err != nil {
		return err
	}

	if !d.Allowed {
		return &RateLimitedError{RetryAfter: d.RetryAfter}
	}

	return nil
}

func unavailable(picked []domain.Session, cal availability.Calendar) []domain.Session {
	var gone []domain.Session
	for _, s := range picked {
		if _, ok := cal.Find(s.ID); !ok {
			gone = append(gone, s)
		}
	}
	return gone
}

func unavailableMessage(gone []domain.Session, loc *time.Location) string {
	when := make([]string, len(gone))
	for i, s := range gone {
		when[i] = s.StartAt.In(loc).Format("Mon, Jan 2 3:04 PM")
	}

	return "These sessions are no longer available: " + strings.Join(when, ", ") + ". Please pick another time."
}

func ids(sessions []domain.Session) []int64 {
	out := make([]int64, len(sessions))
	for i, s := range sessions {
		out[i] = s.ID
	}
	return out
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, redisrepo.ErrSelectionNotFound):
		return ErrSelectionNotFound
	case errors.Is(err, redisrepo.ErrSelectionConflict):
		return ErrSelectionConflict
	default:
		return err
	}
}

func mapCatalogErr(err error) error {
	if errors.Is(err, catalog.ErrListingNotFound) {
		return ErrListingNotFound
	}
	return fmt.Errorf("%v: %w", err, ErrCatalogUnavailable)
}
