package models

import (
	"time"
)

// Agency is one version of a transit agency.
type Agency struct {
	AID         int64      `gorm:"primaryKey;autoIncrement:false;column:a_id"`
	OrigID      int64      `gorm:"column:orig_id;index"`
	AgencyName  string     `gorm:"column:agency_name;type:varchar(255)"`
	ActiveFrom  time.Time  `gorm:"column:active_from;type:date"`
	ActiveUntil *time.Time `gorm:"column:active_until;type:date;index"`
}

func (Agency) TableName() string {
	return "igtfs_agencies"
}

// Route is one version of a route. AgencyID holds the agency's surrogate id.
type Route struct {
	RID         int64      `gorm:"primaryKey;autoIncrement:false;column:r_id"`
	OrigID      string     `gorm:"column:orig_id;type:varchar(64);index"`
	AgencyID    int64      `gorm:"column:agency_id"`
	ShortName   string     `gorm:"column:short_name;type:varchar(64)"`
	LongName    string     `gorm:"column:long_name;type:varchar(512)"`
	RouteDesc   string     `gorm:"column:route_desc;type:varchar(255)"`
	RouteType   int        `gorm:"column:route_type"`
	ActiveFrom  time.Time  `gorm:"column:active_from;type:date"`
	ActiveUntil *time.Time `gorm:"column:active_until;type:date;index"`
}

func (Route) TableName() string {
	return "igtfs_routes"
}

// Stop is one version of a stop or station.
type Stop struct {
	SID           int64      `gorm:"primaryKey;autoIncrement:false;column:s_id"`
	Code          int64      `gorm:"column:code;index"`
	Name          string     `gorm:"column:name;type:varchar(255)"`
	SDesc         string     `gorm:"column:s_desc;type:varchar(512)"`
	LocationType  *int       `gorm:"column:location_type"`
	ParentStation *string    `gorm:"column:parent_station;type:varchar(64)"`
	ZoneID        *string    `gorm:"column:zone_id;type:varchar(64)"`
	Address       string     `gorm:"column:address;type:varchar(255)"`
	Town          string     `gorm:"column:town;type:varchar(255)"`
	Point         string     `gorm:"column:point;type:text"`
	ActiveFrom    time.Time  `gorm:"column:active_from;type:date"`
	ActiveUntil   *time.Time `gorm:"column:active_until;type:date;index"`
}

func (Stop) TableName() string {
	return "igtfs_stops"
}

// All returns the catalog models in dependency order.
func All() []any {
	return []any{&Agency{}, &Route{}, &Stop{}, &ImportFile{}}
}
