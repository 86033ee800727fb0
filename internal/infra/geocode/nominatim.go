package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/sony/gobreaker"

	"stayhub/internal/app/policies"
	domainlistings "stayhub/internal/domain/listings"
)

type Options struct {
	BaseURL     string
	CountryCode string
	UserAgent   string
	Email       string
	CacheTTL    time.Duration
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// Nominatim resolves place names through the OpenStreetMap search API.
// Results, including misses, are cached; repeated provider failures open the
// breaker and fail fast with policies.ErrGeocoderUnavailable.
type Nominatim struct {
	opts    Options
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	cache   *ccache.Cache[*cacheEntry]
}

type cacheEntry struct {
	coords *domainlistings.Coords
}

type statusError struct {
	code int
}

func (e statusError) Error() string { return fmt.Sprintf("nominatim: status %d", e.code) }

func NewNominatim(opts Options) *Nominatim {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://nominatim.openstreetmap.org"
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.UserAgent == "" {
		opts.UserAgent = "stayhub/1.0"
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	logger := opts.Logger
	return &Nominatim{
		opts: opts,
		http: client,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "nominatim",
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				if logger != nil {
					logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
				}
			},
		}),
		cache: ccache.New(ccache.Configure[*cacheEntry]().MaxSize(1000)),
	}
}

func (n *Nominatim) Geocode(ctx context.Context, query string) (*domainlistings.Coords, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	key := strings.ToLower(query)
	if item := n.cache.Get(key); item != nil && !item.Expired() {
		return copyCoords(item.Value().coords), nil
	}

	res, err := n.breaker.Execute(func() (any, error) {
		return n.search(ctx, query)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", policies.ErrGeocoderUnavailable, err)
	}
	coords, _ := res.(*domainlistings.Coords)
	n.cache.Set(key, &cacheEntry{coords: coords}, n.opts.CacheTTL)
	return copyCoords(coords), nil
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (n *Nominatim) search(ctx context.Context, query string) (*domainlistings.Coords, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	if n.opts.CountryCode != "" {
		params.Set("countrycodes", n.opts.CountryCode)
	}
	if n.opts.Email != "" {
		params.Set("email", n.opts.Email)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.opts.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", n.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, statusError{code: resp.StatusCode}
	}
	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("nominatim: decode: %w", err)
	}
	if len(places) == 0 {
		return nil, nil
	}
	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if err := errors.Join(errLat, errLon); err != nil {
		return nil, fmt.Errorf("nominatim: coordinates: %w", err)
	}
	return &domainlistings.Coords{Lat: lat, Lon: lon}, nil
}

func copyCoords(c *domainlistings.Coords) *domainlistings.Coords {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

var _ policies.Geocoder = (*Nominatim)(nil)
