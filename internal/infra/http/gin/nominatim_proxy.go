package ginserver

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
)

const maxProxyBody = 5 << 20

// NominatimProxy relays geocoding lookups from the browser, which cannot call
// the provider directly because of CORS.
type NominatimProxy struct {
	BaseURL string
	Client  *http.Client
	Logger  *slog.Logger
}

var proxyHeaderDefaults = []struct {
	name     string
	fallback string
}{
	{"User-Agent", "MyHousingApp/1.0 (contact@example.com)"},
	{"Accept-Language", "sv en;q=0.8"},
	{"Referer", "http://localhost:5173"},
}

func (p NominatimProxy) Forward(c *gin.Context) {
	target := strings.TrimRight(p.BaseURL, "/") + c.Param("path")
	if raw := c.Request.URL.RawQuery; raw != "" {
		target += "?" + raw
	}
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target, nil)
	if err != nil {
		p.fail(c, err)
		return
	}
	for _, h := range proxyHeaderDefaults {
		value := c.GetHeader(h.name)
		if value == "" {
			value = h.fallback
		}
		req.Header.Set(h.name, value)
	}

	resp, err := p.client().Do(req)
	if err != nil {
		p.fail(c, err)
		return
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyBody))
	if err != nil {
		p.fail(c, err)
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Data(resp.StatusCode, "text/plain; charset=utf-8", body)
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

func (p NominatimProxy) fail(c *gin.Context, err error) {
	if p.Logger != nil {
		p.Logger.ErrorContext(c.Request.Context(), "nominatim proxy failed", "error", err)
	}
	c.String(http.StatusInternalServerError, "Error proxying Nominatim")
}

func (p NominatimProxy) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}
