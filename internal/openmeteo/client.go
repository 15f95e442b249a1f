// Package openmeteo provides a minimal client for the Open-Meteo forecast API.
package openmeteo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"toolbox-mcp/internal/toolerr"
)

const (
	// DefaultBaseURL is the public Open-Meteo API.
	DefaultBaseURL = "https://api.open-meteo.com"

	currentFields = "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m"
	dailyFields   = "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum"
	service       = "open-meteo"
)

// Client is a minimal HTTP client for the forecast endpoint.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a new client. If httpClient is nil, a default with 15s timeout is used.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// Current holds present conditions.
type Current struct {
	Temperature float64
	Humidity    float64
	WeatherCode int
	WindSpeed   float64
}

// Day is one daily forecast entry.
type Day struct {
	Date          string
	WeatherCode   int
	TempMax       float64
	TempMin       float64
	Precipitation float64
}

// Forecast is the reshaped provider response. Daily is nil when the provider
// sent no daily block.
type Forecast struct {
	Current Current
	Daily   []Day
}

// Forecast fetches current conditions and a daily forecast of days length.
func (c *Client) Forecast(ctx context.Context, latitude, longitude float64, days int) (*Forecast, error) {
	reqURL, err := c.buildForecastURL(latitude, longitude, days)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &toolerr.TransportFault{Service: service, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &toolerr.TransportFault{Service: service, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &toolerr.TransportFault{Service: service, Err: err}
	}
	if !gjson.ValidBytes(body) {
		return nil, &toolerr.TransportFault{Service: service, Err: fmt.Errorf("invalid json body")}
	}
	return parseForecast(gjson.ParseBytes(body))
}

func parseForecast(root gjson.Result) (*Forecast, error) {
	cur := root.Get("current")
	if !cur.IsObject() {
		return nil, &toolerr.TransportFault{Service: service, Err: fmt.Errorf("weather data unavailable")}
	}
	out := &Forecast{Current: Current{
		Temperature: cur.Get("temperature_2m").Float(),
		Humidity:    cur.Get("relative_humidity_2m").Float(),
		WeatherCode: int(cur.Get("weather_code").Int()),
		WindSpeed:   cur.Get("wind_speed_10m").Float(),
	}}

	daily := root.Get("daily")
	dates := daily.Get("time")
	if !dates.IsArray() {
		return out, nil
	}
	codes := daily.Get("weather_code").Array()
	maxes := daily.Get("temperature_2m_max").Array()
	mins := daily.Get("temperature_2m_min").Array()
	precip := daily.Get("precipitation_sum").Array()
	out.Daily = make([]Day, 0, len(dates.Array()))
	for i, d := range dates.Array() {
		out.Daily = append(out.Daily, Day{
			Date:          d.String(),
			WeatherCode:   int(at(codes, i).Int()),
			TempMax:       at(maxes, i).Float(),
			TempMin:       at(mins, i).Float(),
			Precipitation: at(precip, i).Float(),
		})
	}
	return out, nil
}

// at tolerates parallel arrays of uneven length.
func at(arr []gjson.Result, i int) gjson.Result {
	if i < len(arr) {
		return arr[i]
	}
	return gjson.Result{}
}

func (c *Client) buildForecastURL(latitude, longitude float64, days int) (string, error) {
	u, err := url.Parse(c.BaseURL + "/v1/forecast")
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	q.Set("current", currentFields)
	q.Set("daily", dailyFields)
	q.Set("forecast_days", strconv.Itoa(days))
	q.Set("timezone", "auto")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
