package location

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/kirinyoku/playpass/internal/domain"
)

func TestDistanceKm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b domain.GeoPoint
		want float64
	}{
		{"same point", domain.GeoPoint{Latitude: 19.07, Longitude: 72.87}, domain.GeoPoint{Latitude: 19.07, Longitude: 72.87}, 0},
		{"mumbai to pune", domain.GeoPoint{Latitude: 19.0760, Longitude: 72.8777}, domain.GeoPoint{Latitude: 18.5204, Longitude: 73.8567}, 120},
		{"one degree of latitude", domain.GeoPoint{Latitude: 0, Longitude: 0}, domain.GeoPoint{Latitude: 1, Longitude: 0}, 111.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1.5 {
				t.Fatalf("expected ~%.1f km, got %.2f", tt.want, got)
			}
		})
	}
}

func TestParsePoint(t *testing.T) {
	t.Parallel()

	if p, err := ParsePoint(" 12.97, 77.59 "); err != nil || p.Latitude != 12.97 || p.Longitude != 77.59 {
		t.Fatalf("expected 12.97,77.59, got %+v (%v)", p, err)
	}

	for _, in := range []string{"", "12.97", "abc,77", "91,0", "0,181"} {
		if _, err := ParsePoint(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestHeaderService_Resolve(t *testing.T) {
	t.Parallel()

	fallback := domain.GeoPoint{Latitude: 12.97, Longitude: 77.59}
	svc := NewHeaderService(fallback)

	req := httptest.NewRequest("GET", "/listings", nil)
	if got := svc.Resolve(req); got != fallback {
		t.Fatalf("expected fallback, got %+v", got)
	}

	req.Header.Set(HeaderUserLocation, "28.61,77.20")
	if got := svc.Resolve(req); got.Latitude != 28.61 || got.Longitude != 77.20 {
		t.Fatalf("expected header location, got %+v", got)
	}

	req.Header.Set(HeaderUserLocation, "garbage")
	if got := svc.Resolve(req); got != fallback {
		t.Fatalf("expected fallback on bad header, got %+v", got)
	}
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	t.Parallel()

	center := domain.GeoPoint{Latitude: 19.07, Longitude: 72.87}
	box := BoundingBox(center, 10)

	edge := domain.GeoPoint{Latitude: center.Latitude, Longitude: box.MaxLng}
	if d := DistanceKm(center, edge); d < 9.9 {
		t.Fatalf("expected box edge at least 10 km away, got %.2f", d)
	}
	if box.MinLat >= center.Latitude || box.MaxLat <= center.Latitude {
		t.Fatalf("box does not enclose centre: %+v", box)
	}
}

func TestBoundingBoxAntimeridian(t *testing.T) {
	t.Parallel()

	// Suva, Fiji sits just west of the antimeridian.
	center := domain.GeoPoint{Latitude: -18.14, Longitude: 179.95}
	across := domain.GeoPoint{Latitude: -18.14, Longitude: -179.97}

	if d := DistanceKm(center, across); d > 10 {
		t.Fatalf("expected points about 8 km apart, got %.2f", d)
	}

	box := BoundingBox(center, 20)
	if !box.Wraps() {
		t.Fatalf("expected wrapping box, got %+v", box)
	}

	tests := []struct {
		name string
		p    domain.GeoPoint
		want bool
	}{
		{"centre", center, true},
		{"across the antimeridian", across, true},
		{"far west", domain.GeoPoint{Latitude: -18.14, Longitude: 178}, false},
		{"far east", domain.GeoPoint{Latitude: -18.14, Longitude: -178}, false},
		{"too far south", domain.GeoPoint{Latitude: -19, Longitude: 179.95}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Contains(tt.p); got != tt.want {
				t.Fatalf("Contains(%+v) = %v, want %v (box %+v)", tt.p, got, tt.want, box)
			}
		})
	}
}

func TestBoundingBoxNearPole(t *testing.T) {
	t.Parallel()

	box := BoundingBox(domain.GeoPoint{Latitude: 89.99, Longitude: 10}, 50)
	if box.MaxLat != 90 || box.MinLng != -180 || box.MaxLng != 180 {
		t.Fatalf("expected full longitude range near the pole, got %+v", box)
	}
}
