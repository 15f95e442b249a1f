package tools

import (
	"context"
	"fmt"

	"toolbox-mcp/internal/envelope"
	"toolbox-mcp/internal/nominatim"
	"toolbox-mcp/internal/registry"
	"toolbox-mcp/internal/schema"
	"toolbox-mcp/internal/toolerr"
)

// Geocoder resolves a free-form address to coordinates.
type Geocoder interface {
	Search(ctx context.Context, query string) (nominatim.Place, bool, error)
}

func (tb *Toolbox) geocodeTool() registry.ToolDescriptor {
	return registry.ToolDescriptor{
		Name:        "geocode",
		Title:       "Geocode",
		Description: "Returns the latitude and longitude of a city name or address.",
		Input: schema.Schema{
			{Name: "address", Kind: schema.KindString,
				Description: "City name or address (e.g. Seoul, New York, Paris, France)"},
		},
		Handler: tb.geocode,
	}
}

func (tb *Toolbox) geocode(ctx context.Context, args schema.Args) (envelope.Result, error) {
	address := args.String("address")
	place, found, err := tb.geocoder.Search(ctx, address)
	if err != nil {
		return envelope.Result{}, fmt.Errorf("geocoding failed: %w", err)
	}
	if !found {
		return envelope.Result{}, toolerr.Domainf("address not found: %q", address)
	}
	name := place.DisplayName
	if name == "" {
		name = address
	}
	lat, lon := formatNumber(place.Latitude), formatNumber(place.Longitude)
	return envelope.Text(fmt.Sprintf("Address: %s\nLatitude: %s\nLongitude: %s\nCoordinates: %s, %s",
		name, lat, lon, lat, lon)), nil
}
