package httpgin

import (
	"time"

	"github.com/kirinyoku/playpass/internal/booking"
	"github.com/kirinyoku/playpass/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type SelectedSession struct {
	domain.Session
	Position int `json:"position"`
}

// SelectionResponse is the rendered selection plus the outcome of the
// action that produced it.
type SelectionResponse struct {
	SelectionID   string            `json:"selection_id"`
	ListingID     int64             `json:"listing_id"`
	State         booking.State     `json:"state"`
	Plan          *domain.Plan      `json:"plan"`
	Sessions      []SelectedSession `json:"sessions"`
	CanBook       bool              `json:"can_book"`
	Label         string            `json:"label"`
	LoginRequired bool              `json:"login_required,omitempty"`
	CheckoutURL   string            `json:"checkout_url,omitempty"`
	Notices       []Notice          `json:"notices"`
}

type SelectPlanRequest struct {
	PlanID int64 `json:"plan_id" binding:"required,gt=0"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type OnboardPartnerRequest struct {
	Name  string             `json:"name" binding:"required"`
	Kind  domain.PartnerKind `json:"kind" binding:"required"`
	Bio   string             `json:"bio"`
	Phone string             `json:"phone"`
	Email string             `json:"email"`
	City  string             `json:"city"`
}

type UpdatePartnerRequest struct {
	Name  *string `json:"name"`
	Bio   *string `json:"bio"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
	City  *string `json:"city"`
}

type PlanInput struct {
	Name            string `json:"name" binding:"required"`
	SessionsCount   int    `json:"sessions_count" binding:"required,min=1"`
	PriceINR        int    `json:"price_inr" binding:"min=0"`
	DiscountPercent int    `json:"discount_percent" binding:"min=0,max=99"`
}

type VenueInput struct {
	Name      string  `json:"name" binding:"required"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

type CreateListingRequest struct {
	Title           string      `json:"title" binding:"required"`
	Description     string      `json:"description"`
	Category        string      `json:"category"`
	BasePriceINR    int         `json:"base_price_inr" binding:"min=0"`
	AgeMin          *int        `json:"age_min"`
	AgeMax          *int        `json:"age_max"`
	DurationMinutes int         `json:"duration_minutes" binding:"min=0"`
	Venue           *VenueInput `json:"venue"`
	Badges          []string    `json:"badges"`
	Plans           []PlanInput `json:"plans" binding:"dive"`
}

type CreateListingResponse struct {
	Listing *domain.Listing `json:"listing"`
	Plans   []domain.Plan   `json:"plans"`
}

type AddPlansRequest struct {
	Plans []PlanInput `json:"plans" binding:"required,min=1,dive"`
}

type SessionInput struct {
	StartAt        string `json:"start_at" binding:"required"`
	SeatsAvailable int    `json:"seats_available" binding:"min=0"`
	IsBookable     *bool  `json:"is_bookable"`
}

type AddSessionsRequest struct {
	Sessions []SessionInput `json:"sessions" binding:"required,min=1,dive"`
}

func (r CreateListingRequest) toDomain(partnerID int64) (domain.Listing, []domain.Plan) {
	l := domain.Listing{
		PartnerID:       partnerID,
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category,
		BasePriceINR:    r.BasePriceINR,
		DurationMinutes: r.DurationMinutes,
		Badges:          r.Badges,
	}

	if r.AgeMin != nil && r.AgeMax != nil {
		l.Ages = &domain.AgeRange{Min: *r.AgeMin, Max: *r.AgeMax}
	}

	if r.Venue != nil {
		l.Venue = &domain.Venue{
			Name:      r.Venue.Name,
			Address:   r.Venue.Address,
			City:      r.Venue.City,
			Latitude:  r.Venue.Latitude,
			Longitude: r.Venue.Longitude,
		}
	}

	return l, plansFromInput(r.Plans)
}

func plansFromInput(in []PlanInput) []domain.Plan {
	out := make([]domain.Plan, len(in))
	for i, p := range in {
		out[i] = domain.Plan{
			Name:            p.Name,
			SessionsCount:   p.SessionsCount,
			PriceINR:        p.PriceINR,
			DiscountPercent: p.DiscountPercent,
		}
	}
	return out
}

func sessionsFromInput(in []SessionInput) ([]domain.Session, error) {
	out := make([]domain.Session, len(in))
	for i, s := range in {
		start, err := parseRFC3339(s.StartAt)
		if err != nil {
			return nil, err
		}

		bookable := true
		if s.IsBookable != nil {
			bookable = *s.IsBookable
		}

		out[i] = domain.Session{
			StartAt:        start,
			SeatsAvailable: s.SeatsAvailable,
			IsBookable:     bookable,
		}
	}
	return out, nil
}

func renderSelection(id string, sel booking.Selection, a *requestActor) SelectionResponse {
	sessions := make([]SelectedSession, len(sel.Sessions))
	for i, s := range sel.Sessions {
		sessions[i] = SelectedSession{Session: s, Position: i + 1}
	}

	resp := SelectionResponse{
		SelectionID: id,
		ListingID:   sel.ListingID,
		State:       sel.State(),
		Plan:        sel.Plan,
		Sessions:    sessions,
		CanBook:     booking.CanBook(sel, a.LoggedIn()),
		Label:       booking.Label(sel, a.LoggedIn()),
		Notices:     a.notices,
	}

	if resp.Notices == nil {
		resp.Notices = []Notice{}
	}

	resp.LoginRequired = a.loginPrompted
	resp.CheckoutURL = a.checkoutURL

	return resp
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
