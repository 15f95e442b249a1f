package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"toolbox-mcp/internal/envelope"
	"toolbox-mcp/internal/openmeteo"
	"toolbox-mcp/internal/registry"
	"toolbox-mcp/internal/schema"
)

// Forecaster fetches current conditions and a daily forecast.
type Forecaster interface {
	Forecast(ctx context.Context, latitude, longitude float64, days int) (*openmeteo.Forecast, error)
}

// WMO weather interpretation codes.
var weatherCodes = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snowfall",
	73: "Moderate snowfall",
	75: "Heavy snowfall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

func describeWeather(code int) string {
	if d, ok := weatherCodes[code]; ok {
		return d
	}
	return fmt.Sprintf("weather code: %d", code)
}

func (tb *Toolbox) weatherTool() registry.ToolDescriptor {
	return registry.ToolDescriptor{
		Name:        "get-weather",
		Title:       "Weather",
		Description: "Returns current weather and a daily forecast for a coordinate.",
		Input: schema.Schema{
			{Name: "latitude", Kind: schema.KindNumber, Description: "Latitude (e.g. 37.5665)"},
			{Name: "longitude", Kind: schema.KindNumber, Description: "Longitude (e.g. 126.9780)"},
			{Name: "forecastDays", Kind: schema.KindInteger, Optional: true, Default: 7,
				Min: schema.Bound(1), Max: schema.Bound(16), Description: "Forecast length in days, 1-16 (default: 7)"},
		},
		Handler: tb.weather,
	}
}

func (tb *Toolbox) weather(ctx context.Context, args schema.Args) (envelope.Result, error) {
	lat, lon, days := args.Float("latitude"), args.Float("longitude"), args.Int("forecastDays")
	fc, err := tb.forecaster.Forecast(ctx, lat, lon, days)
	if err != nil {
		return envelope.Result{}, fmt.Errorf("fetching weather failed: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📍 Location: latitude %s, longitude %s\n\n", formatNumber(lat), formatNumber(lon))
	b.WriteString("🌤️ Current weather\n")
	fmt.Fprintf(&b, "Temperature: %s°C\n", formatNumber(fc.Current.Temperature))
	fmt.Fprintf(&b, "Conditions: %s\n", describeWeather(fc.Current.WeatherCode))
	fmt.Fprintf(&b, "Humidity: %s%%\n", formatNumber(fc.Current.Humidity))
	fmt.Fprintf(&b, "Wind speed: %s km/h\n\n", formatNumber(fc.Current.WindSpeed))

	if fc.Daily != nil {
		fmt.Fprintf(&b, "📅 %d-day forecast\n", days)
		b.WriteString(strings.Repeat("─", 50) + "\n")
		for _, day := range fc.Daily[:min(days, len(fc.Daily))] {
			fmt.Fprintf(&b, "%s: %s\n", formatDay(day.Date), describeWeather(day.WeatherCode))
			fmt.Fprintf(&b, "  High: %s°C | Low: %s°C", formatNumber(day.TempMax), formatNumber(day.TempMin))
			if day.Precipitation > 0 {
				fmt.Fprintf(&b, " | Precipitation: %smm", formatNumber(day.Precipitation))
			}
			b.WriteString("\n")
		}
	}
	return envelope.Text(b.String()), nil
}

func formatDay(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return t.Format("01/02 (Mon)")
}
