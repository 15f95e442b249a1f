// Package nominatim provides a minimal client for the OpenStreetMap Nominatim search API.
package nominatim

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"toolbox-mcp/internal/toolerr"
)

const (
	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	// DefaultUserAgent identifies the client, as the usage policy requires.
	DefaultUserAgent = "MCP-Geocode-Tool/1.0"

	service = "nominatim"
)

// Client is a minimal HTTP client for Nominatim search.
type Client struct {
	BaseURL   string
	UserAgent string
	HTTP      *http.Client
	// Limiter spaces out requests. The public instance allows one per second.
	Limiter *rate.Limiter
}

// New returns a new client. If httpClient is nil, a default with 15s timeout is used.
func New(baseURL, userAgent string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: userAgent,
		HTTP:      httpClient,
		Limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Place is the best match for a query.
type Place struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
}

// Search returns the single best match for query, or found=false when the
// provider has no result.
func (c *Client) Search(ctx context.Context, query string) (place Place, found bool, err error) {
	reqURL, err := c.buildSearchURL(query)
	if err != nil {
		return Place{}, false, err
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return Place{}, false, fmt.Errorf("nominatim rate limit: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Place{}, false, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Place{}, false, &toolerr.TransportFault{Service: service, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Place{}, false, &toolerr.TransportFault{Service: service, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Place{}, false, &toolerr.TransportFault{Service: service, Err: err}
	}
	if !gjson.ValidBytes(body) {
		return Place{}, false, &toolerr.TransportFault{Service: service, Err: fmt.Errorf("invalid json body")}
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return Place{}, false, &toolerr.TransportFault{Service: service, Err: fmt.Errorf("expected a json array")}
	}
	first := root.Get("0")
	if !first.Exists() {
		return Place{}, false, nil
	}
	// lat/lon arrive as strings; Float parses either form.
	return Place{
		Latitude:    first.Get("lat").Float(),
		Longitude:   first.Get("lon").Float(),
		DisplayName: first.Get("display_name").String(),
	}, true, nil
}

func (c *Client) buildSearchURL(query string) (string, error) {
	u, err := url.Parse(c.BaseURL + "/search")
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
