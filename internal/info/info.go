// Package info serves the self-describing server-info resource.
package info

import (
	"context"
	"encoding/json"
	"runtime"
	"time"

	"toolbox-mcp/internal/registry"
)

// URI is the address of the server-info resource.
const URI = "mcp://server-info"

// Identity names the running server.
type Identity struct {
	Name    string
	Version string
}

type serverSection struct {
	Name      string  `json:"name"`
	Version   string  `json:"version"`
	Uptime    float64 `json:"uptime"`
	Timestamp string  `json:"timestamp"`
	GoVersion string  `json:"goVersion"`
	Platform  string  `json:"platform"`
}

type entry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type resourceEntry struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Snapshot is the JSON document returned by the resource.
type Snapshot struct {
	Server    serverSection   `json:"server"`
	Tools     []entry         `json:"tools"`
	Resources []resourceEntry `json:"resources"`
	Prompts   []entry         `json:"prompts"`
}

// Resource returns the server-info descriptor. It reflects over reg at read
// time, so it may be registered before the tools are.
func Resource(id Identity, reg *registry.Registry, started time.Time, now func() time.Time) registry.ResourceDescriptor {
	if now == nil {
		now = time.Now
	}
	return registry.ResourceDescriptor{
		URI:         URI,
		Name:        "server-info",
		Title:       "Server info",
		Description: "Current server information and the list of available tools",
		MIMEType:    "application/json",
		Read: func(context.Context) (string, error) {
			raw, err := json.MarshalIndent(Build(id, reg, started, now()), "", "  ")
			if err != nil {
				return "", err
			}
			return string(raw), nil
		},
	}
}

// Build assembles a snapshot of reg.
func Build(id Identity, reg *registry.Registry, started, at time.Time) Snapshot {
	s := Snapshot{
		Server: serverSection{
			Name:      id.Name,
			Version:   id.Version,
			Uptime:    at.Sub(started).Seconds(),
			Timestamp: at.UTC().Format(time.RFC3339Nano),
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		Tools:     []entry{},
		Resources: []resourceEntry{},
		Prompts:   []entry{},
	}
	for t := range reg.Tools() {
		s.Tools = append(s.Tools, entry{Name: t.Name, Description: t.Description})
	}
	for r := range reg.Resources() {
		s.Resources = append(s.Resources, resourceEntry{URI: r.URI, Name: r.Name, Description: r.Description})
	}
	for p := range reg.Prompts() {
		s.Prompts = append(s.Prompts, entry{Name: p.Name, Description: p.Description})
	}
	return s
}
