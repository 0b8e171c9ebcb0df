package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/gnezdo/gnezdo/internal/booking"
	"github.com/gnezdo/gnezdo/internal/httpserver/deps"
	"github.com/gnezdo/gnezdo/internal/httpserver/mw"
	"github.com/gnezdo/gnezdo/internal/logger"
	"github.com/gnezdo/gnezdo/internal/policy"
	"github.com/gnezdo/gnezdo/internal/store/postgres"
	redisstore "github.com/gnezdo/gnezdo/internal/store/redis"
	"github.com/gnezdo/gnezdo/internal/webhook"
)

type fakeBookingStore struct {
	intervals []booking.Interval
	created   []booking.Interval
	deleted   []string
	createErr error
	deleteErr error
}

func (f *fakeBookingStore) ListBookings(_ context.Context, _, _ string) ([]booking.Interval, error) {
	return f.intervals, nil
}

func (f *fakeBookingStore) CreateBooking(_ context.Context, _ string, iv booking.Interval) (booking.Interval, error) {
	if f.createErr != nil {
		return booking.Interval{}, f.createErr
	}
	iv.ID = "new-booking"
	f.created = append(f.created, iv)
	return iv, nil
}

func (f *fakeBookingStore) DeleteBooking(_ context.Context, _, _, bookingID string, deletable []booking.Source) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for _, iv := range f.intervals {
		if iv.ID != bookingID {
			continue
		}
		for _, src := range deletable {
			if iv.Source == src {
				f.deleted = append(f.deleted, bookingID)
				return nil
			}
		}
	}
	return &booking.NotFoundError{ID: bookingID}
}

type fakePropertyStore struct {
	props map[string]postgres.Property
}

func (f *fakePropertyStore) ListProperties(_ context.Context, _ string) ([]postgres.Property, error) {
	var out []postgres.Property
	for _, p := range f.props {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePropertyStore) GetProperty(_ context.Context, _, propertyID string) (postgres.Property, error) {
	p, ok := f.props[propertyID]
	if !ok {
		return postgres.Property{}, postgres.ErrPropertyNotFound
	}
	return p, nil
}

func (f *fakePropertyStore) CreateProperty(_ context.Context, _ string, prop postgres.Property) (postgres.Property, error) {
	prop.ID = "new-property"
	f.props[prop.ID] = prop
	return prop, nil
}

func (f *fakePropertyStore) UpdateProperty(_ context.Context, _ string, prop postgres.Property) (postgres.Property, error) {
	if _, ok := f.props[prop.ID]; !ok {
		return postgres.Property{}, postgres.ErrPropertyNotFound
	}
	f.props[prop.ID] = prop
	return prop, nil
}

func (f *fakePropertyStore) DeleteProperty(_ context.Context, _, propertyID string) error {
	if _, ok := f.props[propertyID]; !ok {
		return postgres.ErrPropertyNotFound
	}
	delete(f.props, propertyID)
	return nil
}

type fakeCache struct {
	snap        *redisstore.Snapshot
	invalidated int
	storedSnaps []redisstore.Snapshot
}

func (f *fakeCache) Get(_ context.Context, _, _ string, _ booking.Horizon) (*redisstore.Snapshot, error) {
	return f.snap, nil
}

func (f *fakeCache) Set(_ context.Context, _, _ string, snap redisstore.Snapshot) error {
	f.storedSnaps = append(f.storedSnaps, snap)
	return nil
}

func (f *fakeCache) InvalidateProperty(_ context.Context, _, _ string) error {
	f.invalidated++
	return nil
}

type fakeNotifier struct {
	events []webhook.Event
}

func (f *fakeNotifier) Notify(ev webhook.Event) { f.events = append(f.events, ev) }
func (f *fakeNotifier) Enabled() bool           { return true }

func mustDate(t *testing.T, s string) booking.Date {
	t.Helper()
	d, err := booking.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func iv(t *testing.T, id, start, end string, src booking.Source) booking.Interval {
	t.Helper()
	return booking.Interval{
		ID:         id,
		PropertyID: "prop-1",
		Start:      mustDate(t, start),
		End:        mustDate(t, end),
		Source:     src,
	}
}

type fixtures struct {
	d        deps.Deps
	bookings *fakeBookingStore
	cache    *fakeCache
	notifier *fakeNotifier
}

func newFixtures(t *testing.T, intervals ...booking.Interval) fixtures {
	t.Helper()

	log := logger.New("error", false)

	bookings := &fakeBookingStore{intervals: intervals}
	cache := &fakeCache{}
	notifier := &fakeNotifier{}

	return fixtures{
		d: deps.Deps{
			Logger:   log,
			TimeNow:  func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
			Bookings: bookings,
			Properties: &fakePropertyStore{props: map[string]postgres.Property{
				"prop-1": {ID: "prop-1", Name: "Vila Zlatibor"},
			}},
			Cache:    cache,
			Notifier: notifier,
			Policy:   policy.NewHolder(policy.Default()),
		},
		bookings: bookings,
		cache:    cache,
		notifier: notifier,
	}
}

func newRouter(d deps.Deps) chi.Router {
	r := chi.NewRouter()
	r.Route("/properties/{propertyID}", func(r chi.Router) {
		r.Get("/availability", Availability(d))
		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", ListBookings(d))
			r.Post("/", CreateBooking(d))
			r.Delete("/{bookingID}", DeleteBooking(d))
		})
	})
	return r
}

func doRequest(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(mw.WithTenant(req.Context(), "tenant-1"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAvailabilityComputesGaps(t *testing.T) {
	fx := newFixtures(t,
		iv(t, "b1", "2024-03-01", "2024-03-05", booking.SourceManual),
		iv(t, "b2", "2024-03-10", "2024-03-15", booking.SourceAirbnb),
	)
	router := newRouter(fx.d)

	rec := doRequest(t, router, http.MethodGet,
		"/properties/prop-1/availability?from=2024-03-01&nights=30", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp availabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "prop-1", resp.PropertyID)
	require.Equal(t, 9, resp.NightsOccupied)
	require.Len(t, resp.Gaps, 2)
	require.Equal(t, 5, resp.Gaps[0].Nights)
	require.Equal(t, 16, resp.Gaps[1].Nights)

	// The computed snapshot should have been cached.
	require.Len(t, fx.cache.storedSnaps, 1)
}

func TestAvailabilityServedFromCache(t *testing.T) {
	fx := newFixtures(t)
	fx.cache.snap = &redisstore.Snapshot{
		Horizon:        booking.HorizonFrom(mustDate(t, "2024-03-01"), 30),
		Gaps:           []booking.Gap{},
		NightsOccupied: 30,
	}
	router := newRouter(fx.d)

	rec := doRequest(t, router, http.MethodGet,
		"/properties/prop-1/availability?from=2024-03-01&nights=30", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp availabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 30, resp.NightsOccupied)
	require.Empty(t, fx.cache.storedSnaps)
}

func TestAvailabilityRejectsBadParams(t *testing.T) {
	fx := newFixtures(t)
	router := newRouter(fx.d)

	rec := doRequest(t, router, http.MethodGet,
		"/properties/prop-1/availability?from=03-01-2024", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet,
		"/properties/prop-1/availability?nights=zero", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailabilityUnknownProperty(t *testing.T) {
	fx := newFixtures(t)
	router := newRouter(fx.d)

	rec := doRequest(t, router, http.MethodGet,
		"/properties/prop-9/availability", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBookingSuccess(t *testing.T) {
	fx := newFixtures(t,
		iv(t, "b1", "2024-03-01", "2024-03-05", booking.SourceManual),
	)
	router := newRouter(fx.d)

	// Back-to-back with b1's checkout day is allowed.
	rec := doRequest(t, router, http.MethodPost, "/properties/prop-1/bookings", map[string]string{
		"start_date": "2024-03-05",
		"end_date":   "2024-03-08",
		"source":     "web",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created booking.Interval
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "new-booking", created.ID)
	require.Equal(t, booking.SourceWeb, created.Source)

	require.Equal(t, 1, fx.cache.invalidated)
	require.Len(t, fx.notifier.events, 1)
	require.Equal(t, webhook.EventBookingCreated, fx.notifier.events[0].Type)
}

func TestCreateBookingConflict(t *testing.T) {
	fx := newFixtures(t,
		iv(t, "b1", "2024-03-01", "2024-03-05", booking.SourceManual),
	)
	router := newRouter(fx.d)

	rec := doRequest(t, router, http.MethodPost, "/properties/prop-1/bookings", map[string]string{
		"start_date": "2024-03-04",
		"end_date":   "2024-03-06",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "b1", resp.ConflictingID)
	require.Empty(t, fx.bookings.created)
	require.Empty(t, fx.notifier.events)
}

func TestCreateBookingInvalidRange(t *testing.T) {
	fx := newFixtures(t)
	router := newRouter(fx.d)

	rec := doRequest(t, router, http.MethodPost, "/properties/prop-1/bookings", map[string]string{
		"start_date": "2024-03-05",
		"end_date":   "2024-03-05",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateBookingStoreConflict(t *testing.T) {
	fx := newFixtures(t)
	fx.bookings.createErr = &booking.ConflictError{
		ConflictingID: "raced",
		Start:         mustDate(t, "2024-03-01"),
		End:           mustDate(t, "2024-03-05"),
	}
	router := newRouter(fx.d)

	rec := doRequest(t, router, http.MethodPost, "/properties/prop-1/bookings", map[string]string{
		"start_date": "2024-03-01",
		"end_date":   "2024-03-05",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteBookingRespectsPolicy(t *testing.T) {
	fx := newFixtures(t,
		iv(t, "b1", "2024-03-01", "2024-03-05", booking.SourceManual),
		iv(t, "b2", "2024-03-10", "2024-03-15", booking.SourceAirbnb),
	)
	router := newRouter(fx.d)

	// Manual bookings are deletable under the default policy.
	rec := doRequest(t, router, http.MethodDelete, "/properties/prop-1/bookings/b1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, []string{"b1"}, fx.bookings.deleted)
	require.Len(t, fx.notifier.events, 1)
	require.Equal(t, webhook.EventBookingDeleted, fx.notifier.events[0].Type)

	// OTA imports are not.
	rec = doRequest(t, router, http.MethodDelete, "/properties/prop-1/bookings/b2", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, []string{"b1"}, fx.bookings.deleted)
}

func TestListBookings(t *testing.T) {
	fx := newFixtures(t,
		iv(t, "b1", "2024-03-01", "2024-03-05", booking.SourceManual),
	)
	router := newRouter(fx.d)

	rec := doRequest(t, router, http.MethodGet, "/properties/prop-1/bookings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []booking.Interval
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "b1", got[0].ID)
}
