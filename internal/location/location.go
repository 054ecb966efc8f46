// Package location resolves the viewer's position and measures distances
// between points on the map.
package location

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/kirinyoku/playpass/internal/domain"
)

// HeaderUserLocation carries "lat,lng" as reported by the client device.
const HeaderUserLocation = "X-User-Location"

const earthRadiusKm = 6371

var ErrInvalidPoint = errors.New("invalid coordinates")

// Service resolves where a request comes from.
type Service interface {
	Resolve(r *http.Request) domain.GeoPoint
}

// HeaderService prefers the client-reported location header and falls back
// to a fixed point, usually the city centre the marketplace launched in.
type HeaderService struct {
	fallback domain.GeoPoint
}

func NewHeaderService(fallback domain.GeoPoint) *HeaderService {
	return &HeaderService{fallback: fallback}
}

func (s *HeaderService) Resolve(r *http.Request) domain.GeoPoint {
	if r != nil {
		if p, err := ParsePoint(r.Header.Get(HeaderUserLocation)); err == nil {
			return p
		}
	}

	return s.fallback
}

// ParsePoint parses "lat,lng".
func ParsePoint(v string) (domain.GeoPoint, error) {
	latStr, lngStr, ok := strings.Cut(v, ",")
	if !ok {
		return domain.GeoPoint{}, ErrInvalidPoint
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return domain.GeoPoint{}, ErrInvalidPoint
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return domain.GeoPoint{}, ErrInvalidPoint
	}

	p := domain.GeoPoint{Latitude: lat, Longitude: lng}
	if !Valid(p) {
		return domain.GeoPoint{}, ErrInvalidPoint
	}

	return p, nil
}

func Valid(p domain.GeoPoint) bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180 &&
		!math.IsNaN(p.Latitude) && !math.IsNaN(p.Longitude)
}

// DistanceKm is the great-circle distance between a and b.
func DistanceKm(a, b domain.GeoPoint) float64 {
	dLat := (b.Latitude - a.Latitude) * (math.Pi / 180)
	dLng := (b.Longitude - a.Longitude) * (math.Pi / 180)
	lat1 := a.Latitude * (math.Pi / 180)
	lat2 := b.Latitude * (math.Pi / 180)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Box is a lat/lng rectangle enclosing a circle, used to pre-filter rows
// before the exact distance check. A box crossing the antimeridian has
// MinLng > MaxLng and covers [MinLng, 180] plus [-180, MaxLng].
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// Wraps reports whether the box crosses the antimeridian.
func (b Box) Wraps() bool {
	return b.MinLng > b.MaxLng
}

func (b Box) Contains(p domain.GeoPoint) bool {
	if p.Latitude < b.MinLat || p.Latitude > b.MaxLat {
		return false
	}

	if b.Wraps() {
		return p.Longitude >= b.MinLng || p.Longitude <= b.MaxLng
	}

	return p.Longitude >= b.MinLng && p.Longitude <= b.MaxLng
}

func BoundingBox(center domain.GeoPoint, radiusKm float64) Box {
	dLat := radiusKm / earthRadiusKm * (180 / math.Pi)

	box := Box{
		MinLat: math.Max(-90, center.Latitude-dLat),
		MaxLat: math.Min(90, center.Latitude+dLat),
		MinLng: -180,
		MaxLng: 180,
	}

	// Near a pole every longitude is within reach.
	if box.MinLat == -90 || box.MaxLat == 90 {
		return box
	}

	cos := math.Cos(center.Latitude * (math.Pi / 180))
	if cos <= 1e-9 {
		return box
	}

	dLng := dLat / cos
	if dLng >= 180 {
		return box
	}

	box.MinLng = center.Longitude - dLng
	box.MaxLng = center.Longitude + dLng

	if box.MinLng < -180 {
		box.MinLng += 360
	}
	if box.MaxLng > 180 {
		box.MaxLng -= 360
	}

	return box
}
