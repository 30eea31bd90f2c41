package reconcile

import (
	"fmt"

	"transit-catalog/core/reconcile"
	"transit-catalog/feature/gtfs/source"
)

// RouteAdapter reconciles routes.txt. Agency references are resolved through
// the natural key map returned by the agency run.
type RouteAdapter struct {
	profile  reconcile.EntityProfile
	agencies map[string]int64
}

// NewRouteAdapter creates a route adapter resolving agencies through the given map.
func NewRouteAdapter(identity []string, agencies map[string]int64) (*RouteAdapter, error) {
	profile, err := RouteProfile().WithIdentity(identity)
	if err != nil {
		return nil, err
	}
	return &RouteAdapter{profile: profile, agencies: agencies}, nil
}

func (a *RouteAdapter) Name() string { return EntityRoute }
func (a *RouteAdapter) Profile() reconcile.EntityProfile { return a.profile }
func (a *RouteAdapter) FileName() string { return "routes.txt" }

func (a *RouteAdapter) Required() []string {
	return []string{"route_id", "agency_id", "route_short_name", "route_long_name", "route_type"}
}

// Parse reads a route and replaces its agency_id with the agency's surrogate id.
func (a *RouteAdapter) Parse(row source.Row) (reconcile.Record, error) {
	routeID, err := row.Require("route_id")
	if err != nil {
		return reconcile.Record{}, err
	}
	agencyKey, err := row.Int("agency_id")
	if err != nil {
		return reconcile.Record{}, err
	}
	agencyID, ok := a.agencies[canonicalInt(agencyKey)]
	if !ok {
		return reconcile.Record{}, fmt.Errorf("%w: line %d: route %s references agency %d",
			reconcile.ErrUnresolvedReference, row.Line, routeID, agencyKey)
	}
	routeType, err := row.Int("route_type")
	if err != nil {
		return reconcile.Record{}, err
	}

	return reconcile.Record{
		NaturalKey: routeID,
		Attributes: map[string]string{
			"agency_id":  canonicalInt(agencyID),
			"short_name": row.Get("route_short_name"),
			"long_name":  row.Get("route_long_name"),
			"route_desc": row.Get("route_desc"),
			"route_type": canonicalInt(routeType),
		},
	}, nil
}

func (a *RouteAdapter) Row(rec reconcile.Record) map[string]any {
	return map[string]any{
		"agency_id":  mustInt(rec.Attributes["agency_id"]),
		"short_name": rec.Attributes["short_name"],
		"long_name":  rec.Attributes["long_name"],
		"route_desc": rec.Attributes["route_desc"],
		"route_type": mustInt(rec.Attributes["route_type"]),
	}
}
