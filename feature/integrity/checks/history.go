package checks

import (
	"context"
	"fmt"

	"transit-catalog/core/reconcile"

	"gorm.io/gorm"
)

// HistoryReport lists SCD violations per entity type.
type HistoryReport struct {
	Matched  bool                     `json:"matched"`
	Entities map[string]EntityHistory `json:"entities"`
}

// EntityHistory describes the versioning state of one catalog table.
type EntityHistory struct {
	Active  int64 `json:"active"`
	Retired int64 `json:"retired"`

	// DuplicateKeys are natural keys with more than one open row.
	DuplicateKeys []string `json:"duplicate_keys"`

	// InvertedIntervals counts rows retired before they became active.
	InvertedIntervals int64 `json:"inverted_intervals"`

	Status string `json:"status"`
}

// CheckHistory verifies that every table holds at most one active row per
// natural key and that no interval ends before it starts.
func CheckHistory(ctx context.Context, db *gorm.DB, profiles []reconcile.EntityProfile) (*HistoryReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &HistoryReport{Matched: true, Entities: make(map[string]EntityHistory)}
	for _, p := range profiles {
		h, err := checkEntity(db.WithContext(ctx), p)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s history: %w", p.Name, err)
		}
		if h.Status != "ok" {
			report.Matched = false
		}
		report.Entities[p.Name] = h
	}
	return report, nil
}

func checkEntity(db *gorm.DB, p reconcile.EntityProfile) (EntityHistory, error) {
	h := EntityHistory{DuplicateKeys: []string{}, Status: "ok"}

	if err := db.Table(p.Table).Where("active_until IS NULL").Count(&h.Active).Error; err != nil {
		return h, err
	}
	if err := db.Table(p.Table).Where("active_until IS NOT NULL").Count(&h.Retired).Error; err != nil {
		return h, err
	}

	var dups []struct{ NaturalKey string }
	err := db.Table(p.Table).
		Select(p.KeyColumn + " AS natural_key").
		Where("active_until IS NULL").
		Group(p.KeyColumn).
		Having("COUNT(*) > 1").
		Order(p.KeyColumn).
		Scan(&dups).Error
	if err != nil {
		return h, err
	}
	for _, d := range dups {
		h.DuplicateKeys = append(h.DuplicateKeys, d.NaturalKey)
	}

	if err := db.Table(p.Table).Where("active_until < active_from").Count(&h.InvertedIntervals).Error; err != nil {
		return h, err
	}

	if len(h.DuplicateKeys) > 0 || h.InvertedIntervals > 0 {
		h.Status = "error"
	}
	return h, nil
}
