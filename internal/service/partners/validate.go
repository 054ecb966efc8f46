package partners

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/kirinyoku/playpass/internal/domain"
	"github.com/kirinyoku/playpass/internal/location"
)

func validatePartner(p domain.Partner) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", "is required")
	}

	switch p.Kind {
	case domain.PartnerInstructor, domain.PartnerOrganization:
	default:
		return invalid("kind", fmt.Sprintf("must be %q or %q", domain.PartnerInstructor, domain.PartnerOrganization))
	}

	return validateContact(&p.Email)
}

func validatePatch(p domain.PartnerProfilePatch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return invalid("name", "must not be empty")
	}

	return validateContact(p.Email)
}

func validateContact(email *string) error {
	if email == nil || *email == "" {
		return nil
	}

	if _, err := mail.ParseAddress(*email); err != nil {
		return invalid("email", "is not a valid address")
	}

	return nil
}

func validateListing(l domain.Listing) error {
	if strings.TrimSpace(l.Title) == "" {
		return invalid("title", "is required")
	}

	if l.BasePriceINR < 0 {
		return invalid("base_price_inr", "must not be negative")
	}

	if l.DurationMinutes < 0 {
		return invalid("duration_minutes", "must not be negative")
	}

	if l.Ages != nil && (l.Ages.Min < 0 || l.Ages.Min > l.Ages.Max) {
		return invalid("ages", "min must be between 0 and max")
	}

	if l.Venue != nil {
		if strings.TrimSpace(l.Venue.Name) == "" {
			return invalid("venue.name", "is required")
		}
		if !location.Valid(domain.GeoPoint{Latitude: l.Venue.Latitude, Longitude: l.Venue.Longitude}) {
			return invalid("venue", "coordinates out of range")
		}
	}

	return nil
}

func validatePlans(plans []domain.Plan) error {
	for i, p := range plans {
		field := fmt.Sprintf("plans[%d]", i)

		if strings.TrimSpace(p.Name) == "" {
			return invalid(field+".name", "is required")
		}
		if p.SessionsCount < 1 {
			return invalid(field+".sessions_count", "must be at least 1")
		}
		if p.PriceINR < 0 {
			return invalid(field+".price_inr", "must not be negative")
		}
		if p.DiscountPercent < 0 || p.DiscountPercent > 99 {
			return invalid(field+".discount_percent", "must be between 0 and 99")
		}
	}

	return nil
}

func validateSessions(sessions []domain.Session) error {
	if len(sessions) == 0 {
		return invalid("sessions", "must not be empty")
	}

	for i, s := range sessions {
		field := fmt.Sprintf("sessions[%d]", i)

		if s.StartAt.IsZero() {
			return invalid(field+".start_at", "is required")
		}
		if s.SeatsAvailable < 0 {
			return invalid(field+".seats_available", "must not be negative")
		}
	}

	return nil
}
