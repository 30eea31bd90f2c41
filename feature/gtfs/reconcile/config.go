package reconcile

import (
	"errors"
	"fmt"

	"transit-catalog/core/reconcile"
)

// Entity type names, in processing order.
const (
	EntityAgency = "agency"
	EntityRoute  = "route"
	EntityStop   = "stop"
)

// ErrUnknownEntity is returned for entity type names outside Entities.
var ErrUnknownEntity = errors.New("unknown entity type")

// Entities lists the entity types in dependency order.
var Entities = []string{EntityAgency, EntityRoute, EntityStop}

// AgencyProfile returns the catalog layout of agencies.
func AgencyProfile() reconcile.EntityProfile {
	return reconcile.EntityProfile{
		Name:      EntityAgency,
		Table:     "igtfs_agencies",
		IDColumn:  "a_id",
		KeyColumn: "orig_id",
		Columns:   []string{"agency_name"},
		Identity:  []string{"agency_name"},
	}
}

// RouteProfile returns the catalog layout of routes.
func RouteProfile() reconcile.EntityProfile {
	return reconcile.EntityProfile{
		Name:      EntityRoute,
		Table:     "igtfs_routes",
		IDColumn:  "r_id",
		KeyColumn: "orig_id",
		Columns:   []string{"agency_id", "short_name", "long_name", "route_desc", "route_type"},
		Identity:  []string{"agency_id", "short_name", "route_desc"},
	}
}

// StopProfile returns the catalog layout of stops. Position is not part of
// the default identity, so coordinate drift keeps the surrogate id.
func StopProfile() reconcile.EntityProfile {
	return reconcile.EntityProfile{
		Name:      EntityStop,
		Table:     "igtfs_stops",
		IDColumn:  "s_id",
		KeyColumn: "code",
		Columns:   []string{"name", "s_desc", "location_type", "parent_station", "zone_id", "address", "town", "point"},
		Identity:  []string{"name"},
	}
}

// GetProfileByName returns the default profile of an entity type.
func GetProfileByName(name string) (reconcile.EntityProfile, error) {
	switch name {
	case EntityAgency:
		return AgencyProfile(), nil
	case EntityRoute:
		return RouteProfile(), nil
	case EntityStop:
		return StopProfile(), nil
	default:
		return reconcile.EntityProfile{}, fmt.Errorf("%w %q", ErrUnknownEntity, name)
	}
}
