package integrity

import (
	"context"
	"errors"

	"transit-catalog/core/reconcile"
	"transit-catalog/core/storage"
	gtfsreconcile "transit-catalog/feature/gtfs/reconcile"
	"transit-catalog/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNoStorage is returned by bucket checks when no storage client is configured.
	ErrNoStorage = errors.New("snapshot storage is not configured")
	// ErrNoDatabase is returned by catalog checks when no database is connected.
	ErrNoDatabase = errors.New("catalog database is not connected")
)

// Service handles integrity checks.
type Service struct {
	client  storage.Client
	storage storage.Config
	db      *gorm.DB
	logger  *zap.Logger
}

// NewService creates a new integrity service. Either client or db may be nil;
// the checks depending on them then fail with ErrNoStorage or ErrNoDatabase.
func NewService(client storage.Client, cfg storage.Config, db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:  client,
		storage: cfg,
		db:      db,
		logger:  logger,
	}
}

// CheckStructure returns a list of missing bucket folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, ErrNoStorage
	}
	return checks.CheckStructure(ctx, s.client, s.storage)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	if s.client == nil {
		return ErrNoStorage
	}
	return checks.FixStructure(ctx, s.client, s.storage.Bucket, s.logger, missing)
}

// CheckPending returns incoming archives that were never imported.
func (s *Service) CheckPending(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, ErrNoStorage
	}
	return checks.CheckPending(ctx, s.client, s.storage)
}

// CheckSchema compares the catalog tables with the models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	return checks.CheckSchema(s.db)
}

// CheckHistory verifies the SCD invariants of every entity table.
func (s *Service) CheckHistory(ctx context.Context) (*checks.HistoryReport, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	profiles := make([]reconcile.EntityProfile, 0, len(gtfsreconcile.Entities))
	for _, name := range gtfsreconcile.Entities {
		p, err := gtfsreconcile.GetProfileByName(name)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return checks.CheckHistory(ctx, s.db, profiles)
}

// Report runs every check and collects the outcome per check name.
// A failing check is reported in place and does not stop the others.
func (s *Service) Report(ctx context.Context) map[string]any {
	report := make(map[string]any)

	if missing, err := s.CheckStructure(ctx); err != nil {
		report["structure"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["structure"] = map[string]any{"status": "ok", "missing": missing}
	}

	if pending, err := s.CheckPending(ctx); err != nil {
		report["snapshots"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["snapshots"] = map[string]any{"status": "ok", "pending": pending}
	}

	if schema, err := s.CheckSchema(); err != nil {
		report["schema"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["schema"] = schema
	}

	if history, err := s.CheckHistory(ctx); err != nil {
		report["history"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["history"] = history
	}

	return report
}
