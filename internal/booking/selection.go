package booking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kirinyoku/playpass/internal/domain"
)

var (
	ErrNoPlanSelected      = errors.New("no plan selected")
	ErrSessionLimitReached = errors.New("session limit reached for plan")
	ErrLoginRequired       = errors.New("login required")
	ErrSelectionIncomplete = errors.New("selection does not match plan")
)

type State string

const (
	StateNoPlanSelected State = "no_plan_selected"
	StatePartial        State = "plan_selected_partial"
	StateComplete       State = "plan_selected_complete"
)

// Auth exposes the viewer's login state.
type Auth interface {
	LoggedIn() bool
	PromptLogin()
}

// Navigator hands a confirmed selection off to checkout.
type Navigator interface {
	GoToCheckout(listingID, planID int64, sessionIDs []int64)
}

// Notifier surfaces user-facing messages.
type Notifier interface {
	NotifyError(msg string)
	NotifyInfo(msg string)
}

// Selection is the plan and ordered set of sessions a viewer has picked
// for one listing.
type Selection struct {
	ListingID int64            `json:"listing_id"`
	Plan      *domain.Plan     `json:"plan"`
	Sessions  []domain.Session `json:"sessions"`
}

func (s Selection) State() State {
	switch {
	case s.Plan == nil:
		return StateNoPlanSelected
	case len(s.Sessions) == s.Plan.SessionsCount:
		return StateComplete
	default:
		return StatePartial
	}
}

// Contains reports whether the session is selected.
func (s Selection) Contains(sessionID int64) bool {
	return s.indexOf(sessionID) >= 0
}

// Position returns the 1-based order in which the session was picked, or 0.
func (s Selection) Position(sessionID int64) int {
	return s.indexOf(sessionID) + 1
}

func (s Selection) SessionIDs() []int64 {
	ids := make([]int64, len(s.Sessions))
	for i, ss := range s.Sessions {
		ids[i] = ss.ID
	}
	return ids
}

func (s Selection) indexOf(sessionID int64) int {
	for i, ss := range s.Sessions {
		if ss.ID == sessionID {
			return i
		}
	}
	return -1
}

// Machine applies viewer actions to a Selection. It owns the selection for
// the duration of one request and is not safe for concurrent use.
type Machine struct {
	sel      Selection
	auth     Auth
	nav      Navigator
	notifier Notifier
}

func NewMachine(sel Selection, auth Auth, nav Navigator, notifier Notifier) *Machine {
	return &Machine{
		sel:      sel,
		auth:     auth,
		nav:      nav,
		notifier: notifier,
	}
}

func (m *Machine) Selection() Selection {
	return m.sel
}

// SelectPlan switches to plan and clears any picked sessions, including
// when plan is already selected.
func (m *Machine) SelectPlan(plan domain.Plan) {
	p := plan
	m.sel.Plan = &p
	m.sel.Sessions = nil
}

// ToggleSession removes session if it is selected, otherwise appends it
// while the plan has room. Rejections leave the selection unchanged.
func (m *Machine) ToggleSession(session domain.Session) error {
	const op = "booking.Machine.ToggleSession"

	if i := m.sel.indexOf(session.ID); i >= 0 {
		m.sel.Sessions = append(m.sel.Sessions[:i:i], m.sel.Sessions[i+1:]...)
		return nil
	}

	if m.sel.Plan == nil {
		m.notifyError("Please select a plan first.")
		return fmt.Errorf("%s: %w", op, ErrNoPlanSelected)
	}

	if len(m.sel.Sessions) >= m.sel.Plan.SessionsCount {
		m.notifyError(LimitMessage(m.sel.Plan.SessionsCount))
		return fmt.Errorf("%s: %w", op, ErrSessionLimitReached)
	}

	m.sel.Sessions = append(m.sel.Sessions, session)

	return nil
}

// Remove drops the given sessions without touching the rest of the order.
func (m *Machine) Remove(sessionIDs ...int64) {
	drop := make(map[int64]struct{}, len(sessionIDs))
	for _, id := range sessionIDs {
		drop[id] = struct{}{}
	}

	kept := m.sel.Sessions[:0:0]
	for _, s := range m.sel.Sessions {
		if _, ok := drop[s.ID]; !ok {
			kept = append(kept, s)
		}
	}
	m.sel.Sessions = kept
}

func (m *Machine) CanBook() bool {
	return CanBook(m.sel, m.loggedIn())
}

func (m *Machine) Label() string {
	return Label(m.sel, m.loggedIn())
}

// Confirm navigates to checkout when the gate is open. A logged-out viewer
// is prompted to log in and keeps the selection.
func (m *Machine) Confirm() error {
	const op = "booking.Machine.Confirm"

	if m.sel.Plan == nil {
		m.notifyError("Please select a plan first.")
		return fmt.Errorf("%s: %w", op, ErrNoPlanSelected)
	}

	if !m.loggedIn() {
		if m.auth != nil {
			m.auth.PromptLogin()
		}
		return fmt.Errorf("%s: %w", op, ErrLoginRequired)
	}

	if len(m.sel.Sessions) != m.sel.Plan.SessionsCount {
		m.notifyError(fmt.Sprintf("Please select exactly %d %s.",
			m.sel.Plan.SessionsCount, plural(m.sel.Plan.SessionsCount, "session")))
		return fmt.Errorf("%s: %w", op, ErrSelectionIncomplete)
	}

	if m.nav != nil {
		m.nav.GoToCheckout(m.sel.ListingID, m.sel.Plan.ID, m.sel.SessionIDs())
	}

	return nil
}

func (m *Machine) loggedIn() bool {
	return m.auth != nil && m.auth.LoggedIn()
}

func (m *Machine) notifyError(msg string) {
	if m.notifier != nil {
		m.notifier.NotifyError(msg)
	}
}

// CanBook is the booking gate.
func CanBook(sel Selection, loggedIn bool) bool {
	return sel.Plan != nil && len(sel.Sessions) == sel.Plan.SessionsCount && loggedIn
}

// Label describes the next action the viewer has to take.
func Label(sel Selection, loggedIn bool) string {
	if sel.Plan == nil {
		return "Select a Plan"
	}

	if missing := sel.Plan.SessionsCount - len(sel.Sessions); missing > 0 {
		return fmt.Sprintf("Select %d More %s", missing, plural(missing, "Session"))
	}

	if !loggedIn {
		return "Login to Book"
	}

	return fmt.Sprintf("Book %d %s", sel.Plan.SessionsCount, plural(sel.Plan.SessionsCount, "Session"))
}

func LimitMessage(n int) string {
	return fmt.Sprintf("You can only select %d session(s) for this plan.", n)
}

// CheckoutPath renders the checkout route for a confirmed selection.
func CheckoutPath(listingID, planID int64, sessionIDs []int64) string {
	ids := make([]string, len(sessionIDs))
	for i, id := range sessionIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	return fmt.Sprintf("/checkout/plan/%d/%d?sessions=%s", listingID, planID, strings.Join(ids, ","))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
