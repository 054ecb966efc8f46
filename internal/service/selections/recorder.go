package selections

import (
	"github.com/kirinyoku/playpass/internal/booking"
)

// recorder stands in for the caller's collaborators while a selection
// update may still be retried, so only the attempt that commits reaches the
// viewer.
type recorder struct {
	loggedIn bool
	prompted bool
	errs     []string
	infos    []string
	checkout *checkoutCall
}

type checkoutCall struct {
	listingID  int64
	planID     int64
	sessionIDs []int64
}

func newRecorder(loggedIn bool) *recorder {
	return &recorder{loggedIn: loggedIn}
}

func (r *recorder) LoggedIn() bool         { return r.loggedIn }
func (r *recorder) PromptLogin()           { r.prompted = true }
func (r *recorder) NotifyError(msg string) { r.errs = append(r.errs, msg) }
func (r *recorder) NotifyInfo(msg string)  { r.infos = append(r.infos, msg) }

func (r *recorder) GoToCheckout(listingID, planID int64, sessionIDs []int64) {
	r.checkout = &checkoutCall{listingID: listingID, planID: planID, sessionIDs: sessionIDs}
}

func (r *recorder) flush(a Actor) {
	if r == nil {
		return
	}

	if r.prompted && a.Auth != nil {
		a.Auth.PromptLogin()
	}

	if a.Notifier != nil {
		for _, m := range r.errs {
			a.Notifier.NotifyError(m)
		}
		for _, m := range r.infos {
			a.Notifier.NotifyInfo(m)
		}
	}

	if r.checkout != nil && a.Navigator != nil {
		a.Navigator.GoToCheckout(r.checkout.listingID, r.checkout.planID, r.checkout.sessionIDs)
	}
}

var (
	_ booking.Auth      = (*recorder)(nil)
	_ booking.Notifier  = (*recorder)(nil)
	_ booking.Navigator = (*recorder)(nil)
)
