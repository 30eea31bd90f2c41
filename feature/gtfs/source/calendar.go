package source

import (
	"fmt"
	"time"

	"transit-catalog/core/reconcile"
)

// CalendarFile lists the service periods of a feed.
const CalendarFile = "calendar.txt"

const gtfsDateLayout = "20060102"

// SnapshotDate returns the effective date of an extracted feed: the earliest
// start_date in calendar.txt.
func SnapshotDate(dir string) (time.Time, error) {
	var earliest string
	for row, err := range Rows(dir, CalendarFile, []string{"start_date"}) {
		if err != nil {
			return time.Time{}, err
		}
		start, err := row.Require("start_date")
		if err != nil {
			return time.Time{}, err
		}
		if _, err := time.Parse(gtfsDateLayout, start); err != nil {
			return time.Time{}, reconcile.Malformed(row.Line, "%s: start_date %q is not YYYYMMDD", CalendarFile, start)
		}
		if earliest == "" || start < earliest {
			earliest = start
		}
	}
	if earliest == "" {
		return time.Time{}, fmt.Errorf("%s has no service periods", CalendarFile)
	}
	return time.Parse(gtfsDateLayout, earliest)
}
