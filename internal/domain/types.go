package domain

import (
	"encoding/json"
	"time"
)

type PartnerKind string

const (
	PartnerInstructor   PartnerKind = "instructor"
	PartnerOrganization PartnerKind = "organization"
)

type Venue struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type Listing struct {
	ID              int64     `json:"id"`
	PartnerID       int64     `json:"partner_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	BasePriceINR    int       `json:"base_price_inr"`
	Ages            *AgeRange `json:"ages,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	Venue           *Venue    `json:"venue,omitempty"`
	Badges          []string  `json:"badges"`
	RatingAvg       float64   `json:"rating_avg"`
	RatingCount     int       `json:"rating_count"`
}

type Plan struct {
	ID              int64  `json:"id"`
	ListingID       int64  `json:"listing_id"`
	Name            string `json:"name"`
	SessionsCount   int    `json:"sessions_count"`
	PriceINR        int    `json:"price_inr"`
	DiscountPercent int    `json:"discount_percent"`
}

// OriginalPriceINR returns the pre-discount price, or PriceINR when no discount applies.
func (p Plan) OriginalPriceINR() int {
	if p.DiscountPercent <= 0 || p.DiscountPercent >= 100 {
		return p.PriceINR
	}

	return p.PriceINR * 100 / (100 - p.DiscountPercent)
}

// MarshalJSON adds original_price_inr for discounted plans.
func (p Plan) MarshalJSON() ([]byte, error) {
	type plain Plan

	out := struct {
		plain
		OriginalPriceINR int `json:"original_price_inr,omitempty"`
	}{plain: plain(p)}

	if orig := p.OriginalPriceINR(); orig != p.PriceINR {
		out.OriginalPriceINR = orig
	}

	return json.Marshal(out)
}

type Session struct {
	ID             int64     `json:"id"`
	ListingID      int64     `json:"listing_id"`
	StartAt        time.Time `json:"start_at"`
	SeatsAvailable int       `json:"seats_available"`
	IsBookable     bool      `json:"is_bookable"`
}

type ListingWithDistance struct {
	Listing
	DistanceKm float64 `json:"distance_km"`
}

type Review struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listing_id"`
	UserID    int64     `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Partner struct {
	ID          int64       `json:"id"`
	OwnerUserID int64       `json:"owner_user_id"`
	Name        string      `json:"name"`
	Kind        PartnerKind `json:"kind"`
	Bio         string      `json:"bio"`
	Phone       string      `json:"phone"`
	Email       string      `json:"email"`
	City        string      `json:"city"`
	Verified    bool        `json:"verified"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// PartnerProfilePatch carries the fields of a partial profile update; nil means unchanged.
type PartnerProfilePatch struct {
	Name  *string
	Bio   *string
	Phone *string
	Email *string
	City  *string
}

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
