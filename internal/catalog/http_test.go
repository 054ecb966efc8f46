package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, h http.Handler) *HTTPProvider {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	p, err := NewHTTPProvider(HTTPConfig{
		BaseURL:         srv.URL,
		Token:           "secret",
		MaxTries:        3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		RatePerSecond:   1000,
		Burst:           100,
	}, testLogger())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	return p
}

func TestHTTPProvider_ListingRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/listings/5" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":5,"title":"Robotics","base_price_inr":1200,"age_min":6,"venue":{"name":"Hall","city":"Pune"}}`))
	}))

	l, err := p.Listing(context.Background(), 5)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
	if l.BasePriceINR != 1200 {
		t.Fatalf("expected price 1200, got %d", l.BasePriceINR)
	}
	if l.Ages != nil {
		t.Fatalf("expected age range absent when only one bound is set")
	}
	if l.Venue != nil {
		t.Fatalf("expected venue absent without coordinates")
	}
	if l.Badges == nil {
		t.Fatalf("expected badges to be resolved to an empty list")
	}
}

func TestHTTPProvider_NotFoundIsPermanent(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := p.Listing(context.Background(), 9)
	if !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestHTTPProvider_GivesUpAfterMaxTries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := p.Plans(context.Background(), 1)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestHTTPProvider_InvalidListingPayload(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":5}`))
	}))

	_, err := p.Listing(context.Background(), 5)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestHTTPProvider_PlansDropsInvalid(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"Trial","sessions_count":1,"price_inr":300},{"id":2,"name":"Broken","sessions_count":0}]`))
	}))

	plans, err := p.Plans(context.Background(), 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(plans) != 1 || plans[0].ID != 1 || plans[0].ListingID != 3 {
		t.Fatalf("unexpected plans %+v", plans)
	}
}

func TestHTTPProvider_Sessions(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("from_date"); got != "2026-01-01" {
			t.Errorf("expected from_date 2026-01-01, got %q", got)
		}
		if got := r.URL.Query().Get("to_date"); got != "2026-04-01" {
			t.Errorf("expected to_date 2026-04-01, got %q", got)
		}
		_, _ = w.Write([]byte(`[
			{"id":1,"start_at":"2026-01-02T10:00:00Z","seats_available":4,"is_bookable":true},
			{"id":2,"start_at":"tomorrow","seats_available":4,"is_bookable":true}
		]`))
	}))

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sessions, err := p.Sessions(context.Background(), 8, from, from.AddDate(0, 3, 0))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != 1 || sessions[0].ListingID != 8 {
		t.Fatalf("unexpected sessions %+v", sessions)
	}
}
