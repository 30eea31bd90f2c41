package reconcile

import (
	"context"
	"fmt"
	"strings"

	"transit-catalog/core/utils"

	"gorm.io/gorm"
)

// InUseTable is the working set table written and cleared inside every commit.
const InUseTable = "reconcile_in_use"

// DefaultBatchSize bounds the rows sent in a single INSERT statement.
const DefaultBatchSize = 500

// Catalog is the versioned store an engine reconciles against.
type Catalog interface {
	// LoadActive returns the active rows of an entity keyed by natural key.
	LoadActive(ctx context.Context, profile EntityProfile) (ActiveIndex, error)

	// MaxID returns the highest surrogate id ever stored for an entity, 0 when empty.
	MaxID(ctx context.Context, profile EntityProfile) (int64, error)

	// Commit applies a plan atomically and returns the number of retired rows.
	Commit(ctx context.Context, profile EntityProfile, plan *Plan) (int64, error)
}

// InUseRow is one surrogate id of the working set.
type InUseRow struct {
	EntityType  string `gorm:"column:entity_type;type:varchar(32);index:idx_reconcile_in_use,priority:1"`
	SurrogateID int64  `gorm:"column:surrogate_id;index:idx_reconcile_in_use,priority:2"`
}

// TableName overrides the table name used by InUseRow.
func (InUseRow) TableName() string {
	return InUseTable
}

// GormCatalog implements Catalog on top of a gorm connection.
type GormCatalog struct {
	db        *gorm.DB
	batchSize int
}

// NewGormCatalog creates a catalog using the given connection and insert batch size.
func NewGormCatalog(db *gorm.DB, batchSize int) *GormCatalog {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &GormCatalog{db: db, batchSize: batchSize}
}

// EnsureWorkingSet creates the working set table when it does not exist yet.
func (c *GormCatalog) EnsureWorkingSet(ctx context.Context) error {
	m := c.db.WithContext(ctx).Migrator()
	if m.HasTable(InUseTable) {
		return nil
	}
	if err := m.CreateTable(&InUseRow{}); err != nil {
		return fmt.Errorf("failed to create %s: %w", InUseTable, err)
	}
	return nil
}

// LoadActive loads the key, identity columns and active_from of every active row.
func (c *GormCatalog) LoadActive(ctx context.Context, profile EntityProfile) (ActiveIndex, error) {
	columns := append([]string{profile.IDColumn, profile.KeyColumn}, profile.Identity...)
	columns = append(columns, "active_from")

	var rows []map[string]any
	err := c.db.WithContext(ctx).
		Table(profile.Table).
		Select(strings.Join(columns, ", ")).
		Where("active_until IS NULL").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load active %s rows: %w", profile.Name, err)
	}

	index := make(ActiveIndex, len(rows))
	for _, row := range rows {
		id, ok := utils.ToInt64(row[profile.IDColumn])
		if !ok {
			return nil, fmt.Errorf("%s: invalid surrogate id %v", profile.Table, row[profile.IDColumn])
		}
		key := utils.ToString(row[profile.KeyColumn])
		attrs := make(map[string]string, len(profile.Identity))
		for _, field := range profile.Identity {
			attrs[field] = utils.ToString(row[field])
		}
		from, ok := utils.ToTime(row["active_from"])
		if !ok && row["active_from"] != nil {
			return nil, fmt.Errorf("%s: invalid active_from %v for id %d", profile.Table, row["active_from"], id)
		}
		index[key] = ActiveEntry{ID: id, Attributes: attrs, ActiveFrom: dateOnly(from)}
	}
	return index, nil
}

// MaxID returns the maximum surrogate id over every version, retired ones included.
func (c *GormCatalog) MaxID(ctx context.Context, profile EntityProfile) (int64, error) {
	var maxID int64
	err := c.db.WithContext(ctx).
		Table(profile.Table).
		Select(fmt.Sprintf("COALESCE(MAX(%s), 0)", profile.IDColumn)).
		Scan(&maxID).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read max id of %s: %w", profile.Table, err)
	}
	return maxID, nil
}

// Commit writes the working set, retires active rows outside it and appends
// the new rows in one transaction. Any failure rolls everything back.
func (c *GormCatalog) Commit(ctx context.Context, profile EntityProfile, plan *Plan) (int64, error) {
	var retired int64

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM "+InUseTable+" WHERE entity_type = ?", profile.Name).Error; err != nil {
			return fmt.Errorf("failed to clear working set: %w", err)
		}

		if len(plan.InUse) > 0 {
			inUse := make([]map[string]any, len(plan.InUse))
			for i, id := range plan.InUse {
				inUse[i] = map[string]any{"entity_type": profile.Name, "surrogate_id": id}
			}
			if err := tx.Table(InUseTable).CreateInBatches(inUse, c.batchSize).Error; err != nil {
				return fmt.Errorf("failed to write working set: %w", err)
			}
		}

		retire := fmt.Sprintf(
			"UPDATE %s SET active_until = ? WHERE active_until IS NULL AND %s NOT IN (SELECT surrogate_id FROM %s WHERE entity_type = ?)",
			profile.Table, profile.IDColumn, InUseTable,
		)
		result := tx.Exec(retire, plan.EffectiveDate, profile.Name)
		if result.Error != nil {
			return fmt.Errorf("failed to retire %s rows: %w", profile.Name, result.Error)
		}
		retired = result.RowsAffected

		if len(plan.NewRows) > 0 {
			if err := tx.Table(profile.Table).CreateInBatches(plan.NewRows, c.batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert %s rows: %w", profile.Name, err)
			}
		}

		if err := tx.Exec("DELETE FROM "+InUseTable+" WHERE entity_type = ?", profile.Name).Error; err != nil {
			return fmt.Errorf("failed to clear working set: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}
	return retired, nil
}
