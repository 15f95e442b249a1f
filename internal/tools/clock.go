package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"toolbox-mcp/internal/envelope"
	"toolbox-mcp/internal/registry"
	"toolbox-mcp/internal/schema"
	"toolbox-mcp/internal/toolerr"
)

const clockLayout = "2006-01-02 15:04:05"

func (tb *Toolbox) clockTool() registry.ToolDescriptor {
	return registry.ToolDescriptor{
		Name:        "time",
		Title:       "Time",
		Description: "Returns the current time or shows it in two time zones side by side.",
		Input: schema.Schema{
			{Name: "timezone", Kind: schema.KindString, Optional: true,
				Description: "IANA time zone (e.g. Asia/Seoul, America/New_York, UTC). Defaults to the host zone"},
			{Name: "action", Kind: schema.KindEnum, Optional: true, Default: "current",
				Choices: []string{"current", "convert"}, Description: "current: now in one zone, convert: now in two zones"},
			{Name: "sourceTimezone", Kind: schema.KindString, Optional: true,
				Description: "Source zone, required when action is convert"},
			{Name: "targetTimezone", Kind: schema.KindString, Optional: true,
				Description: "Target zone, required when action is convert"},
		},
		Handler: tb.clock,
	}
}

func (tb *Toolbox) clock(_ context.Context, args schema.Args) (envelope.Result, error) {
	now := tb.now()
	if args.String("action") == "convert" {
		src, dst := args.String("sourceTimezone"), args.String("targetTimezone")
		if src == "" || dst == "" {
			return envelope.Result{}, toolerr.Domainf("sourceTimezone and targetTimezone are both required to convert")
		}
		srcLoc, err := loadZone(src)
		if err != nil {
			return envelope.Result{}, err
		}
		dstLoc, err := loadZone(dst)
		if err != nil {
			return envelope.Result{}, err
		}
		return envelope.Text(fmt.Sprintf("%s: %s\n%s: %s",
			src, now.In(srcLoc).Format(clockLayout),
			dst, now.In(dstLoc).Format(clockLayout))), nil
	}

	name, loc := args.String("timezone"), tb.local
	if name == "" {
		name = tb.localName
	} else {
		var err error
		if loc, err = loadZone(name); err != nil {
			return envelope.Result{}, err
		}
	}
	return envelope.Text(fmt.Sprintf("Current time (%s): %s", name, now.In(loc).Format(clockLayout))), nil
}

func loadZone(name string) (*time.Location, error) {
	// LoadLocation treats "" and "Local" specially; callers pass explicit zones.
	if name == "Local" {
		return nil, toolerr.Domainf("invalid timezone %q", name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, toolerr.Domainf("invalid timezone %q: %v", name, err)
	}
	return loc, nil
}

// hostZone resolves the host zone to an IANA name when possible.
func hostZone() (string, *time.Location) {
	if tz := strings.TrimPrefix(os.Getenv("TZ"), ":"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return tz, loc
		}
	}
	if target, err := filepath.EvalSymlinks("/etc/localtime"); err == nil {
		if _, name, ok := strings.Cut(target, "zoneinfo/"); ok {
			if loc, err := time.LoadLocation(name); err == nil {
				return name, loc
			}
		}
	}
	return time.Local.String(), time.Local
}
