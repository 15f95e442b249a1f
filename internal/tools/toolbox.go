// Package tools implements the tool handlers and registers them.
package tools

import (
	"time"

	"toolbox-mcp/internal/registry"
)

// Options wires the outbound collaborators of the handlers.
type Options struct {
	Geocoder   Geocoder
	Forecaster Forecaster
	Images     ImageGenerator
	// ImagesEnabled is false when no image credential was configured.
	ImagesEnabled bool
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
	// Local overrides the host zone used when the time tool gets no zone.
	Local     *time.Location
	LocalName string
}

// Toolbox holds the handler dependencies. Handlers share no mutable state.
type Toolbox struct {
	geocoder      Geocoder
	forecaster    Forecaster
	images        ImageGenerator
	imagesEnabled bool
	now           func() time.Time
	local         *time.Location
	localName     string
}

// New builds a Toolbox.
func New(opts Options) *Toolbox {
	tb := &Toolbox{
		geocoder:      opts.Geocoder,
		forecaster:    opts.Forecaster,
		images:        opts.Images,
		imagesEnabled: opts.ImagesEnabled && opts.Images != nil,
		now:           opts.Now,
		local:         opts.Local,
		localName:     opts.LocalName,
	}
	if tb.now == nil {
		tb.now = time.Now
	}
	if tb.local == nil {
		tb.localName, tb.local = hostZone()
	} else if tb.localName == "" {
		tb.localName = tb.local.String()
	}
	return tb
}

// Descriptors returns every tool in registration order.
func (tb *Toolbox) Descriptors() []registry.ToolDescriptor {
	return []registry.ToolDescriptor{
		greetTool(),
		calculatorTool(),
		tb.clockTool(),
		tb.geocodeTool(),
		tb.weatherTool(),
		tb.imageTool(),
	}
}

// Register adds every tool to reg.
func (tb *Toolbox) Register(reg *registry.Registry) error {
	for _, d := range tb.Descriptors() {
		if err := reg.RegisterTool(d); err != nil {
			return err
		}
	}
	return nil
}
