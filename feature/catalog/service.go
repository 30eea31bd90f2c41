package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"transit-catalog/core/reconcile"
	"transit-catalog/feature/gtfs/models"
	gtfsreconcile "transit-catalog/feature/gtfs/reconcile"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a surrogate id does not exist.
var ErrNotFound = errors.New("catalog row not found")

// Row is one catalog version as returned by the API.
type Row map[string]any

// History lists every version sharing the natural key of a surrogate id.
type History struct {
	Entity     string `json:"entity"`
	NaturalKey string `json:"natural_key"`
	Versions   []Row  `json:"versions"`
}

// Service reads the versioned catalog.
type Service struct {
	db     *gorm.DB
	cache  *reconcile.Cache
	logger *zap.Logger
}

// NewService creates a catalog reader. Active listings are cached for ttl.
func NewService(db *gorm.DB, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		cache:  reconcile.NewCache(ttl),
		logger: logger,
	}
}

// Active returns the active rows of an entity type ordered by surrogate id.
func (s *Service) Active(ctx context.Context, entity string) ([]Row, error) {
	profile, err := gtfsreconcile.GetProfileByName(entity)
	if err != nil {
		return nil, err
	}

	v, err := s.cache.GetOrBuild("active:"+entity, func() (any, error) {
		var rows []map[string]any
		err := s.db.WithContext(ctx).
			Table(profile.Table).
			Where("active_until IS NULL").
			Order(profile.IDColumn).
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list active %s rows: %w", entity, err)
		}
		return toRows(rows), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Row), nil
}

// AsOf returns the rows of an entity type that were active on date.
func (s *Service) AsOf(ctx context.Context, entity string, date time.Time) ([]Row, error) {
	profile, err := gtfsreconcile.GetProfileByName(entity)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	err = s.db.WithContext(ctx).
		Table(profile.Table).
		Where("active_from <= ?", date).
		Where("active_until IS NULL OR active_until > ?", date).
		Order(profile.IDColumn).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s rows as of %s: %w", entity, date.Format("2006-01-02"), err)
	}
	return toRows(rows), nil
}

// History returns every version of the entity behind a surrogate id.
func (s *Service) History(ctx context.Context, entity string, id int64) (*History, error) {
	profile, err := gtfsreconcile.GetProfileByName(entity)
	if err != nil {
		return nil, err
	}

	var current []map[string]any
	err = s.db.WithContext(ctx).
		Table(profile.Table).
		Select(profile.KeyColumn).
		Where(profile.IDColumn+" = ?", id).
		Limit(1).
		Find(&current).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %d: %w", entity, id, err)
	}
	if len(current) == 0 {
		return nil, ErrNotFound
	}
	key := current[0][profile.KeyColumn]

	var versions []map[string]any
	err = s.db.WithContext(ctx).
		Table(profile.Table).
		Where(profile.KeyColumn+" = ?", key).
		Order("active_from, " + profile.IDColumn).
		Find(&versions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s history: %w", entity, err)
	}

	return &History{
		Entity:     entity,
		NaturalKey: fmt.Sprint(key),
		Versions:   toRows(versions),
	}, nil
}

// Imports returns the most recent import records, newest first.
func (s *Service) Imports(ctx context.Context, limit int) ([]models.ImportFile, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var files []models.ImportFile
	err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	return files, nil
}

func toRows(rows []map[string]any) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Row(r)
	}
	return out
}
