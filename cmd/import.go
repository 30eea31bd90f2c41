package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"transit-catalog/core/config"
	"transit-catalog/core/database"
	"transit-catalog/core/logger"
	"transit-catalog/core/reconcile"
	"transit-catalog/core/storage"
	"transit-catalog/feature/gtfs/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunImport bool
	yesConfirm   bool
	allowEmpty   bool
	fromStorage  bool
)

// importCmd reconciles one GTFS snapshot into the catalog.
var importCmd = &cobra.Command{
	Use:   "import <archive>",
	Short: "Import a GTFS snapshot into the versioned catalog",
	Long: `Import a GTFS zip archive and reconcile agencies, routes and stops
against the catalog. Unchanged entities keep their ids, changed or new ones get
a new version, and entities missing from the snapshot are retired.

Examples:
  # Report only
  import gtfs.zip --dry-run

  # Import with interactive confirmation of retirements
  import gtfs.zip

  # Non-interactive import of an archive from the snapshot bucket
  import gtfs_20240101.zip --from-storage --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&dryRunImport, "dry-run", false, "Plan every entity type without writing to the catalog")
	importCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm retirements (non-interactive)")
	importCmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "Allow an empty entity file to retire every active row")
	importCmd.Flags().BoolVar(&fromStorage, "from-storage", false, "Read the archive from the snapshot bucket")

	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			l.Warn("Failed to close database", zap.Error(err))
		}
	}()

	var store storage.Client
	if fromStorage {
		store, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
	}

	importer := pipeline.NewImporter(db, store, cfg.Storage, cfg.Reconcile, l)
	report, err := importer.Import(ctx, args[0], pipeline.Options{
		DryRun:      dryRunImport,
		Confirmed:   yesConfirm,
		AllowEmpty:  allowEmpty,
		FromStorage: fromStorage,
		Confirm:     confirmPlan(l),
	})
	if report != nil {
		printImportReport(l, report)
	}
	if errors.Is(err, reconcile.ErrNotConfirmed) {
		l.Warn("Operation cancelled by user. Entity types before it stay imported.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if dryRunImport {
		l.Info("Dry-run mode: No changes were made.")
	}
	return nil
}

// confirmPlan shows a plan and asks before committing retirements.
// Plans that retire nothing are committed without asking.
func confirmPlan(l *zap.Logger) pipeline.ConfirmFunc {
	return func(plan *reconcile.Plan) bool {
		printPlan(l, plan)
		if len(plan.Retire) == 0 {
			return true
		}
		return confirmDestructiveAction(plan.Entity, len(plan.Retire))
	}
}

// printPlan logs the planned counts of one entity type.
func printPlan(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary
	l.Info("Planned changes",
		zap.String("entity", plan.Entity),
		zap.String("effective_date", plan.EffectiveDate.Format("2006-01-02")),
		zap.Int("incoming", s.Incoming),
		zap.Int("matched", s.Matched),
		zap.Int("created", s.Created),
		zap.Int("retired", s.Retired),
	)

	maxShow := min(len(plan.Retire), 5)
	if maxShow > 0 {
		l.Info("Sample retirements", zap.Int64s("ids", plan.Retire[:maxShow]))
	}
	if len(plan.Retire) > maxShow {
		l.Info("Additional retirements not shown", zap.Int("count", len(plan.Retire)-maxShow))
	}
}

// printImportReport prints a formatted import report using logger.
func printImportReport(l *zap.Logger, report *pipeline.Report) {
	l.Info("Import report",
		zap.String("run_id", report.RunID),
		zap.String("file", report.FileName),
		zap.String("file_date", report.FileDate.Format("2006-01-02")),
		zap.Int64("file_size", report.FileSize),
		zap.Bool("dry_run", report.DryRun),
	)
	for _, r := range report.Results {
		l.Info("Entity result",
			zap.String("entity", r.Entity),
			zap.String("state", string(r.State)),
			zap.Bool("committed", r.Committed),
			zap.Int("incoming", r.Summary.Incoming),
			zap.Int("matched", r.Summary.Matched),
			zap.Int("created", r.Summary.Created),
			zap.Int("retired", r.Summary.Retired),
		)
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(entity string, retired int) bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  %d active %s rows will be retired. Type 'yes' to confirm: ", retired, entity)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
