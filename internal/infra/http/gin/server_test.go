package ginserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingapp "stayhub/internal/app/handlers/booking"
	"stayhub/internal/app/middleware"
	authsvc "stayhub/internal/app/services/auth"
	"stayhub/internal/app/wiring"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/fault"
	"stayhub/internal/infra/obs"
	"stayhub/internal/infra/security"
	"stayhub/internal/infra/storage/memory"
)

type testAPI struct {
	router *gin.Engine
	store  *memory.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	factory := memory.NewUnitOfWorkFactory(store)
	buses := wiring.Build(wiring.Deps{
		Factory:     factory,
		Idempotency: memory.NewIdempotencyStore(),
		Outbox:      memory.NewOutbox(),
		Logger:      logger,
	})
	tokens, err := security.NewJWTIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	authService := &authsvc.Service{
		Users:     store.Users(),
		Passwords: security.BcryptHasher{Cost: 4},
		Tokens:    tokens,
		Logger:    logger,
	}
	authMW := AuthMiddleware{Service: authService, Logger: logger}
	router := NewRouter(obs.Middleware{Logger: logger}, obs.HealthHandlers{}, Handlers{
		Listing:        ListingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Booking:        BookingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Auth:           AuthHandler{Service: authService, Logger: logger},
		Admin:          AdminHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Authentication: authMW.Handle,
		RequireAuth:    authMW.Require,
	})
	return &testAPI{router: router, store: store}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) register(t *testing.T, first, email string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"firstname": first, "lastname": "Berg", "email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		User  map[string]any `json:"user"`
		Token string         `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotContains(t, out.User, "passwordHash")
	return out.Token
}

func listingBody() map[string]any {
	return map[string]any{
		"title":       "Lake cabin",
		"description": "Quiet cabin by the lake",
		"location":    "Mora",
		"type":        "cabin",
		"place":       "lake",
		"maxAdults":   2,
		"maxKids":     1,
		"maxAnimals":  1,
		"prices":      map[string]any{"adult": 100, "kid": 50, "animal": 30, "housing": 200},
		"availableDates": []map[string]string{
			{"start": "2025-06-01", "end": "2025-06-30"},
		},
		"nearActivities": map[string]any{
			"description": "Outdoors",
			"activities":  []map[string]string{{"name": "hiking", "location": "Mora"}},
		},
		"petFriendly": true,
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestBookingFlowOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	owner := api.register(t, "olle", "olle@example.com")
	guest := api.register(t, "anna", "anna@example.com")

	rec := api.do(t, http.MethodPost, "/api/housings", owner, listingBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	listing := decode[map[string]any](t, rec)
	id := listing["id"].(string)
	assert.Equal(t, 380.0, listing["totalPrice"])

	first := api.do(t, http.MethodGet, "/api/housings/"+id, "", nil)
	second := api.do(t, http.MethodGet, "/api/housings/"+id, "", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())

	booking := map[string]any{
		"housingId": id,
		"startDate": "2025-06-10",
		"endDate":   "2025-06-13",
		"guests":    map[string]int{"adults": 2, "kids": 1, "animals": 1},
	}
	rec = api.do(t, http.MethodPost, "/api/bookings", guest, booking, IdempotencyKeyHeader, "k-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[bookingapp.CreateBookingResult](t, rec)
	assert.Equal(t, 3, created.Nights)
	assert.Equal(t, 480.0, created.PerNightPrice)
	assert.Equal(t, 1440.0, created.Booking.TotalPrice)

	replay := api.do(t, http.MethodPost, "/api/bookings", guest, booking, IdempotencyKeyHeader, "k-1")
	require.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, created.Booking.ID, decode[bookingapp.CreateBookingResult](t, replay).Booking.ID)
	assert.Equal(t, 1, api.store.Bookings().Count())

	rec = api.do(t, http.MethodPost, "/api/bookings", guest, booking)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "dates_unavailable", decode[map[string]string](t, rec)["error"])

	rec = api.do(t, http.MethodGet, "/api/housings/"+id, "", nil)
	after := decode[map[string]any](t, rec)
	assert.Len(t, after["availableDates"], 2)

	rec = api.do(t, http.MethodGet, "/api/bookings", guest, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Lake cabin", list[0]["housing"].(map[string]any)["title"])

	rec = api.do(t, http.MethodGet, "/api/bookings/"+created.Booking.ID, owner, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(t, http.MethodGet, "/api/bookings/"+created.Booking.ID, guest, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodGet, "/api/bookings/not-a-uuid", guest, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingGatesOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	owner := api.register(t, "olle", "olle@example.com")
	rec := api.do(t, http.MethodPost, "/api/housings", owner, listingBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[map[string]any](t, rec)["id"].(string)

	base := func() map[string]any {
		return map[string]any{
			"housingId": id,
			"startDate": "2025-06-10",
			"endDate":   "2025-06-12",
			"guests":    map[string]int{"adults": 1, "kids": 0, "animals": 0},
		}
	}
	cases := []struct {
		name   string
		token  string
		mutate func(map[string]any)
		status int
		reason string
	}{
		{"anonymous", "", func(map[string]any) {}, http.StatusUnauthorized, "unauthenticated"},
		{"bad token", "garbage", func(map[string]any) {}, http.StatusUnauthorized, "invalid_token"},
		{"missing guests", owner, func(b map[string]any) { delete(b, "guests") }, http.StatusBadRequest, "invalid_input"},
		{"unknown listing", owner, func(b map[string]any) { b["housingId"] = "44444444-4444-4444-4444-444444444444" }, http.StatusNotFound, "listing_not_found"},
		{"too many adults", owner, func(b map[string]any) { b["guests"] = map[string]int{"adults": 3, "kids": 0, "animals": 0} }, http.StatusBadRequest, "capacity_exceeded"},
		{"reversed dates", owner, func(b map[string]any) { b["endDate"] = "2025-06-09" }, http.StatusBadRequest, "invalid_date_range"},
		{"bad date", owner, func(b map[string]any) { b["endDate"] = "soon" }, http.StatusBadRequest, "invalid_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := base()
			tc.mutate(body)
			rec := api.do(t, http.MethodPost, "/api/bookings", tc.token, body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.reason, decode[map[string]string](t, rec)["error"])
		})
	}
	assert.Equal(t, 0, api.store.Bookings().Count())
}

func TestListingOwnershipOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	owner := api.register(t, "olle", "olle@example.com")
	other := api.register(t, "anna", "anna@example.com")
	rec := api.do(t, http.MethodPost, "/api/housings", owner, listingBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[map[string]any](t, rec)["id"].(string)

	rec = api.do(t, http.MethodPatch, "/api/housings/"+id, other, map[string]any{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPatch, "/api/housings/"+id, owner, map[string]any{
		"title":  "Lake house",
		"prices": map[string]any{"adult": 10, "kid": 10, "animal": 10, "housing": 10},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[map[string]any](t, rec)
	assert.Equal(t, "Lake house", updated["title"])
	assert.Equal(t, 40.0, updated["totalPrice"])

	rec = api.do(t, http.MethodPatch, "/api/housings/"+id, owner, map[string]any{"prices": map[string]any{"adult": 10}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodDelete, "/api/housings/"+id, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(t, http.MethodDelete, "/api/housings/"+id, owner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "housing deleted", decode[map[string]string](t, rec)["message"])
	rec = api.do(t, http.MethodGet, "/api/housings/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	owner := api.register(t, "olle", "olle@example.com")
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/housings", owner, listingBody()).Code)

	for _, tc := range []struct {
		query string
		want  int
	}{
		{"", 1},
		{"?location=mor", 1},
		{"?location=visby", 0},
		{"?startDate=2025-06-20&endDate=2025-07-10&maxAdults=2", 1},
		{"?startDate=2025-08-01&endDate=2025-08-10", 0},
		{"?totalPrice=100-400&petFriendly=true", 1},
		{"?totalPrice=400-900", 0},
		{"?nearActivities=hiking,%20", 1},
		{"?nearActivities=hiking,swimming", 0},
	} {
		rec := api.do(t, http.MethodGet, "/api/housings"+tc.query, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, tc.query)
		assert.Len(t, decode[[]map[string]any](t, rec), tc.want, tc.query)
	}
	rec := api.do(t, http.MethodGet, "/api/housings?totalPrice=cheap", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	api := newTestAPI(t)
	member := api.register(t, "anna", "anna@example.com")

	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodGet, "/api/auth/users", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodGet, "/api/auth/users", member, nil).Code)

	rec := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ANNA@example.com", "password": "wrong1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", decode[map[string]string](t, rec)["error"])

	rec = api.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"firstname": "Anna", "lastname": "Berg", "email": "anna@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUnknownRouteIs404(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFor(t *testing.T) {
	for _, tc := range []struct {
		err    error
		status int
		reason string
	}{
		{domainbooking.ErrDatesUnavailable, http.StatusBadRequest, "dates_unavailable"},
		{&domainbooking.CapacityError{Category: "kids", Limit: 1}, http.StatusBadRequest, "capacity_exceeded"},
		{domainlistings.ErrNotOwner, http.StatusForbidden, "forbidden"},
		{domainlistings.ErrConcurrentUpdate, http.StatusConflict, "conflict"},
		{fmt.Errorf("wrapped: %w", domainlistings.ErrNotFound), http.StatusNotFound, "listing_not_found"},
		{fault.New(fault.ErrUpstream, "geocoder_unavailable", "down"), http.StatusBadGateway, "geocoder_unavailable"},
		{middleware.ErrKeyReused, http.StatusConflict, "idempotency_key_reused"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	} {
		status, reason := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.reason, reason, tc.err.Error())
	}
}

func TestInternalErrorsHideMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	respondError(c, slog.New(slog.NewTextHandler(io.Discard, nil)), errors.New("db password leaked"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal_error","message":"internal error"}`, rec.Body.String())
}

func TestSearchFilterParsing(t *testing.T) {
	values := map[string]string{
		"location":       " Mora ",
		"startDate":      "2025-06-01",
		"endDate":        "2025-06-05T12:00:00Z",
		"maxKids":        "2",
		"totalPrice":     "100 - 250.5",
		"petFriendly":    "false",
		"nearActivities": " hiking , ,fishing",
	}
	f, err := searchFilter(func(k string) string { return values[k] })
	require.NoError(t, err)
	assert.Equal(t, "Mora", f.Location)
	require.NotNil(t, f.Window)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), f.Window.Start)
	assert.Equal(t, time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC), f.Window.End)
	assert.Nil(t, f.MinAdults)
	require.NotNil(t, f.MinKids)
	assert.Equal(t, 2, *f.MinKids)
	assert.Equal(t, &domainlistings.PriceRange{Min: 100, Max: 250.5}, f.Price)
	require.NotNil(t, f.PetFriendly)
	assert.False(t, *f.PetFriendly)
	assert.Equal(t, []string{"hiking", "fishing"}, f.Activities)

	only := map[string]string{"startDate": "2025-06-01"}
	f, err = searchFilter(func(k string) string { return only[k] })
	require.NoError(t, err)
	assert.Nil(t, f.Window)

	bad := map[string]string{"maxAdults": "two"}
	_, err = searchFilter(func(k string) string { return bad[k] })
	assert.ErrorIs(t, err, fault.ErrInvalidInput)
}

func TestNominatimProxyForwardsHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var seen http.Header
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("nothing here"))
			return
		}
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(`[{"lat":"61.0","lon":"14.5"}]`))
	}))
	defer upstream.Close()

	proxy := NominatimProxy{BaseURL: upstream.URL, Client: upstream.Client()}
	router := NewRouter(obs.Middleware{}, obs.HealthHandlers{}, Handlers{Nominatim: proxy.Forward})

	req := httptest.NewRequest(http.MethodGet, "/api/nominatim/search?format=json&q=Mora", nil)
	req.Header.Set("Accept-Language", "en")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[{"lat":"61.0","lon":"14.5"}]`, rec.Body.String())
	assert.Equal(t, "en", seen.Get("Accept-Language"))
	assert.Equal(t, "MyHousingApp/1.0 (contact@example.com)", seen.Get("User-Agent"))
	assert.Equal(t, "http://localhost:5173", seen.Get("Referer"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nominatim/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "nothing here", rec.Body.String())
}

func TestNominatimProxyUpstreamDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	upstream := httptest.NewServer(http.NotFoundHandler())
	upstream.Close()
	proxy := NominatimProxy{BaseURL: upstream.URL}
	router := NewRouter(obs.Middleware{}, obs.HealthHandlers{}, Handlers{Nominatim: proxy.Forward})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nominatim/search?q=x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
