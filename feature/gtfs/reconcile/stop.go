package reconcile

import (
	"fmt"
	"strings"

	"transit-catalog/core/reconcile"
	"transit-catalog/feature/gtfs/source"
)

// StopAdapter reconciles stops.txt, keyed by stop_code.
type StopAdapter struct {
	profile reconcile.EntityProfile
}

// NewStopAdapter creates a stop adapter. A non-empty identity overrides the default.
func NewStopAdapter(identity []string) (*StopAdapter, error) {
	profile, err := StopProfile().WithIdentity(identity)
	if err != nil {
		return nil, err
	}
	return &StopAdapter{profile: profile}, nil
}

func (a *StopAdapter) Name() string { return EntityStop }
func (a *StopAdapter) Profile() reconcile.EntityProfile { return a.profile }
func (a *StopAdapter) FileName() string { return "stops.txt" }

func (a *StopAdapter) Required() []string {
	return []string{"stop_code", "stop_name", "stop_lat", "stop_lon"}
}

// Parse reads a stop. Coordinates must be numeric and are kept as written.
// location_type is stored as an integer, so it is kept in its canonical form.
func (a *StopAdapter) Parse(row source.Row) (reconcile.Record, error) {
	code, err := row.Int("stop_code")
	if err != nil {
		return reconcile.Record{}, err
	}
	if _, err := row.Float("stop_lat"); err != nil {
		return reconcile.Record{}, err
	}
	if _, err := row.Float("stop_lon"); err != nil {
		return reconcile.Record{}, err
	}
	locationType := row.Get("location_type")
	if locationType != "" {
		n, err := row.Int("location_type")
		if err != nil {
			return reconcile.Record{}, err
		}
		locationType = canonicalInt(n)
	}

	desc := row.Get("stop_desc")
	address, town := SplitDescription(desc)

	return reconcile.Record{
		NaturalKey: canonicalInt(code),
		Attributes: map[string]string{
			"name":           row.Get("stop_name"),
			"s_desc":         desc,
			"location_type":  locationType,
			"parent_station": row.Get("parent_station"),
			"zone_id":        row.Get("zone_id"),
			"address":        address,
			"town":           town,
			"point":          fmt.Sprintf("SRID=4326;POINT(%s %s)", row.Get("stop_lon"), row.Get("stop_lat")),
		},
	}, nil
}

func (a *StopAdapter) Row(rec reconcile.Record) map[string]any {
	attrs := rec.Attributes
	return map[string]any{
		"code":           mustInt(rec.NaturalKey),
		"name":           attrs["name"],
		"s_desc":         attrs["s_desc"],
		"location_type":  nullableInt(attrs["location_type"]),
		"parent_station": nullable(attrs["parent_station"]),
		"zone_id":        nullable(attrs["zone_id"]),
		"address":        attrs["address"],
		"town":           attrs["town"],
		"point":          attrs["point"],
	}
}

// SplitDescription extracts the street address and town from a stop description
// of the form "<label>: <address> <label>: <town> <label>: ...".
// Missing parts yield empty strings.
func SplitDescription(desc string) (address, town string) {
	parts := strings.Split(desc, ":")
	if len(parts) > 1 {
		address = dropLastWord(parts[1])
	}
	if len(parts) > 2 {
		town = dropLastWord(parts[2])
	}
	return address, town
}

// dropLastWord removes the label that precedes the next colon.
func dropLastWord(s string) string {
	s = strings.TrimSpace(s)
	i := strings.LastIndexAny(s, " \t")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(s[:i])
}
