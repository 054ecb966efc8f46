package httpgin

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/playpass/internal/auth"
	"github.com/kirinyoku/playpass/internal/booking"
	"github.com/kirinyoku/playpass/internal/service/selections"
)

// requestActor backs the selection machine's collaborators for one HTTP
// request: login state comes from the bearer token, notices and the
// checkout hand-off are collected into the response.
type requestActor struct {
	viewer        *auth.Viewer
	clientID      string
	loginPrompted bool
	checkoutURL   string
	notices       []Notice
}

func newRequestActor(c *gin.Context) *requestActor {
	a := &requestActor{clientID: "ip:" + c.ClientIP()}

	if v, ok := auth.FromContext(c.Request.Context()); ok {
		a.viewer = &v
		a.clientID = "user:" + strconv.FormatInt(v.UserID, 10)
	}

	return a
}

func (a *requestActor) LoggedIn() bool { return a.viewer != nil }

func (a *requestActor) PromptLogin() { a.loginPrompted = true }

func (a *requestActor) NotifyError(msg string) {
	a.notices = append(a.notices, Notice{Level: "error", Message: msg})
}

func (a *requestActor) NotifyInfo(msg string) {
	a.notices = append(a.notices, Notice{Level: "info", Message: msg})
}

func (a *requestActor) GoToCheckout(listingID, planID int64, sessionIDs []int64) {
	a.checkoutURL = booking.CheckoutPath(listingID, planID, sessionIDs)
}

func (a *requestActor) actor() selections.Actor {
	return selections.Actor{
		ClientID:  a.clientID,
		Auth:      a,
		Navigator: a,
		Notifier:  a,
	}
}
