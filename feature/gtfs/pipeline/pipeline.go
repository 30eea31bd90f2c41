package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"transit-catalog/core/logger"
	"transit-catalog/core/reconcile"
	"transit-catalog/core/storage"
	"transit-catalog/feature/gtfs/models"
	gtfsreconcile "transit-catalog/feature/gtfs/reconcile"
	"transit-catalog/feature/gtfs/source"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConfirmFunc asks whether a plan may be committed.
type ConfirmFunc func(plan *reconcile.Plan) bool

// Options controls one import run.
type Options struct {
	// DryRun plans every entity type and writes nothing.
	DryRun bool

	// Confirmed commits without asking.
	Confirmed bool

	// AllowEmpty lets empty entity files retire the whole active set.
	AllowEmpty bool

	// FromStorage reads the archive from the snapshot bucket instead of the local disk.
	FromStorage bool

	// Confirm is consulted for every plan when Confirmed is false.
	Confirm ConfirmFunc
}

// Report summarises an import run.
type Report struct {
	RunID    string             `json:"run_id"`
	FileName string             `json:"file_name"`
	FileDate time.Time          `json:"file_date"`
	FileSize int64              `json:"file_size"`
	DryRun   bool               `json:"dry_run"`
	Results  []reconcile.Result `json:"results"`
}

// Summaries returns the per-entity counts keyed by entity type.
func (r *Report) Summaries() map[string]reconcile.Summary {
	out := make(map[string]reconcile.Summary, len(r.Results))
	for _, res := range r.Results {
		out[res.Entity] = res.Summary
	}
	return out
}

// Importer runs GTFS snapshots through the reconcile engine, one entity type
// at a time in dependency order.
type Importer struct {
	db      *gorm.DB
	catalog *reconcile.GormCatalog
	store   storage.Client
	storage storage.Config
	cfg     reconcile.Config
	logger  *zap.Logger
	now     func() time.Time
}

// NewImporter creates an importer. store may be nil when archives are only read from disk.
func NewImporter(db *gorm.DB, store storage.Client, storageCfg storage.Config, cfg reconcile.Config, logger *zap.Logger) *Importer {
	return &Importer{
		db:      db,
		catalog: reconcile.NewGormCatalog(db, cfg.BatchSize),
		store:   store,
		storage: storageCfg,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Import reconciles one snapshot archive into the catalog.
//
// Agencies are processed first and their natural key map resolves the agency
// references of routes. The run stops at the first failing entity type; the
// types committed before it stay committed.
func (i *Importer) Import(ctx context.Context, archive string, opts Options) (*Report, error) {
	runID := uuid.NewString()
	l := i.logger.With(zap.String("run_id", runID), zap.String("archive", archive))
	l.Info("Starting import", zap.Bool("dry_run", opts.DryRun), zap.Bool("from_storage", opts.FromStorage))

	workDir, err := source.WorkDir(i.cfg.TmpDir, i.now())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			l.Warn("Failed to remove work dir", zap.String("dir", workDir), zap.Error(err))
		}
	}()

	local := archive
	if opts.FromStorage {
		local, err = i.fetch(ctx, archive, workDir)
		if err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(local)
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	rawDir := filepath.Join(workDir, "raw")
	files, err := source.Extract(ctx, local, rawDir)
	if err != nil {
		return nil, err
	}
	l.Debug("Extracted archive", zap.Strings("files", files))

	fileDate, err := source.SnapshotDate(rawDir)
	if err != nil {
		return nil, err
	}
	l.Info("Snapshot date", zap.String("file_date", fileDate.Format("2006-01-02")))

	report := &Report{
		RunID:    runID,
		FileName: filepath.Base(archive),
		FileDate: fileDate,
		FileSize: info.Size(),
		DryRun:   opts.DryRun,
	}

	var audit *models.ImportFile
	if !opts.DryRun {
		if err := i.catalog.EnsureWorkingSet(ctx); err != nil {
			return nil, err
		}
		audit, err = i.startAudit(ctx, report)
		if err != nil {
			return nil, err
		}
	}

	if err := i.run(ctx, rawDir, fileDate, opts, report, runID); err != nil {
		if audit != nil {
			i.finishAudit(ctx, audit, report, err)
		}
		return report, err
	}

	if audit != nil {
		i.finishAudit(ctx, audit, report, nil)
	}
	if opts.FromStorage && !opts.DryRun {
		i.archive(ctx, local, archive, l)
	}

	l.Info("Import finished", zap.Any("summary", report.Summaries()))
	return report, nil
}

func (i *Importer) run(ctx context.Context, dir string, effective time.Time, opts Options, report *Report, runID string) error {
	var agencies map[string]int64

	for _, entity := range gtfsreconcile.Entities {
		adapter, err := i.adapter(entity, agencies)
		if err != nil {
			return err
		}

		engine := reconcile.NewEngine(i.catalog, adapter, logger.ForEntity(i.logger, runID, entity))
		plan, err := engine.Plan(ctx, effective, gtfsreconcile.Records(adapter, dir))
		if err != nil {
			return err
		}

		applyOpts := i.cfg.Options()
		applyOpts.DryRun = opts.DryRun
		applyOpts.AllowEmpty = applyOpts.AllowEmpty || opts.AllowEmpty
		applyOpts.Confirmed = opts.Confirmed
		if !opts.DryRun && !opts.Confirmed && opts.Confirm != nil {
			if err := engine.Check(plan, applyOpts); err == nil {
				applyOpts.Confirmed = opts.Confirm(plan)
			}
		}

		result, err := engine.Apply(ctx, plan, applyOpts)
		if result != nil {
			report.Results = append(report.Results, *result)
		}
		if err != nil {
			return err
		}

		if entity == gtfsreconcile.EntityAgency {
			agencies = result.Mapping
		}
	}
	return nil
}

func (i *Importer) adapter(entity string, agencies map[string]int64) (gtfsreconcile.EntityAdapter, error) {
	identity := i.cfg.IdentityFor(entity)
	switch entity {
	case gtfsreconcile.EntityAgency:
		return gtfsreconcile.NewAgencyAdapter(identity)
	case gtfsreconcile.EntityRoute:
		return gtfsreconcile.NewRouteAdapter(identity, agencies)
	case gtfsreconcile.EntityStop:
		return gtfsreconcile.NewStopAdapter(identity)
	default:
		return nil, fmt.Errorf("%w %q", gtfsreconcile.ErrUnknownEntity, entity)
	}
}

func (i *Importer) startAudit(ctx context.Context, report *Report) (*models.ImportFile, error) {
	audit := &models.ImportFile{
		RunID:      report.RunID,
		FileName:   report.FileName,
		FileDate:   report.FileDate,
		FileSize:   report.FileSize,
		ImportedOn: i.now().UTC(),
		Status:     models.ImportRunning,
	}
	if err := i.db.WithContext(ctx).Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to record import: %w", err)
	}
	return audit, nil
}

// finishAudit stores the outcome of a run. Failures here are logged only so
// they never mask the import result.
func (i *Importer) finishAudit(ctx context.Context, audit *models.ImportFile, report *Report, runErr error) {
	summary, err := json.Marshal(report.Summaries())
	if err != nil {
		i.logger.Warn("Failed to encode import summary", zap.Error(err))
	}

	updates := map[string]any{
		"status":  models.ImportCompleted,
		"summary": datatypes.JSON(summary),
	}
	if runErr != nil {
		updates["status"] = models.ImportFailed
		updates["error"] = runErr.Error()
	}

	// The run context may already be canceled.
	err = i.db.WithContext(context.WithoutCancel(ctx)).Model(audit).Updates(updates).Error
	if err != nil {
		i.logger.Warn("Failed to update import record", zap.String("run_id", audit.RunID), zap.Error(err))
	}
}

// objectName maps an archive argument to its key in the snapshot bucket.
func (i *Importer) objectName(archive string) string {
	if strings.HasPrefix(archive, i.storage.IncomingPrefix) {
		return archive
	}
	return path.Join(i.storage.IncomingPrefix, archive)
}

func (i *Importer) fetch(ctx context.Context, archive, workDir string) (string, error) {
	if i.store == nil {
		return "", errors.New("object storage is not configured")
	}

	local := filepath.Join(workDir, path.Base(archive))
	f, err := os.Create(local)
	if err != nil {
		return "", err
	}
	defer f.Close()

	n, err := storage.Download(ctx, i.store, i.storage.Bucket, i.objectName(archive), f)
	if err != nil {
		return "", err
	}
	i.logger.Info("Downloaded snapshot", zap.String("object", i.objectName(archive)), zap.Int64("bytes", n))
	return local, nil
}

// archive copies a processed snapshot under the archive prefix.
func (i *Importer) archive(ctx context.Context, local, archive string, l *zap.Logger) {
	f, err := os.Open(local)
	if err != nil {
		l.Warn("Failed to open snapshot for archiving", zap.Error(err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		l.Warn("Failed to stat snapshot for archiving", zap.Error(err))
		return
	}

	target := path.Join(i.storage.ArchivePrefix, path.Base(archive))
	_, err = i.store.PutObject(ctx, i.storage.Bucket, target, f, info.Size(), minio.PutObjectOptions{ContentType: "application/zip"})
	if err != nil {
		l.Warn("Failed to archive snapshot", zap.String("object", target), zap.Error(err))
		return
	}
	l.Info("Archived snapshot", zap.String("object", target))
}
