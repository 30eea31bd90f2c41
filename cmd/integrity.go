package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"transit-catalog/core/config"
	"transit-catalog/core/database"
	"transit-catalog/core/logger"
	"transit-catalog/core/storage"
	"transit-catalog/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the snapshot bucket and the catalog",
	Long:  `Checks the bucket layout, pending snapshots, the catalog schema and the SCD history invariants.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, checkAll)
	},
}

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix the bucket folder structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, checkStructure)
	},
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List snapshots waiting in the incoming folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, checkSnapshots)
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the catalog tables against the models",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, checkSchema)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Check active rows and intervals of every entity type",
	Long:  `Reports natural keys with several active rows and intervals ending before they start. Use --json to save the full report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, checkHistory)
	},
}

type integrityCheck int

const (
	checkAll integrityCheck = iota
	checkStructure
	checkSnapshots
	checkSchema
	checkHistory
)

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, snapshotsCmd, schemaCmd, historyCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing folders")
	historyCmd.Flags().Bool("json", false, "Save the report as JSON")
}

func runIntegrityChecks(cmd *cobra.Command, only integrityCheck) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logg.Sync()

	var store storage.Client
	if only == checkAll || only == checkStructure || only == checkSnapshots {
		store, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
	}

	var db *gorm.DB
	if only == checkAll || only == checkSchema || only == checkHistory {
		db, err = database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("database connection required: %w", err)
		}
		defer database.Close(db)
	}

	svc := integrity.NewService(store, cfg.Storage, db, logg)

	if only == checkAll || only == checkStructure {
		logg.Info("Checking folder structure...", zap.String("bucket", cfg.Storage.Bucket))
		missing, err := svc.CheckStructure(ctx)
		if err != nil {
			return fmt.Errorf("structure check failed: %w", err)
		}

		switch {
		case len(missing) == 0:
			logg.Info("Structure is intact.")
		case only == checkStructure && fixFlag:
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))
			if err := svc.FixStructure(ctx, missing); err != nil {
				return fmt.Errorf("failed to fix structure: %w", err)
			}
			logg.Info("Structure fixed successfully.")
		default:
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))
			logg.Info("Run 'integrity structure --fix' to create missing folders.")
		}
	}

	if only == checkAll || only == checkSnapshots {
		pending, err := svc.CheckPending(ctx)
		if err != nil {
			return fmt.Errorf("snapshot check failed: %w", err)
		}
		if len(pending) == 0 {
			logg.Info("No pending snapshots.")
		} else {
			logg.Warn("Snapshots waiting for import", zap.Strings("pending", pending))
		}
	}

	if only == checkAll || only == checkSchema {
		logg.Info("Checking catalog schema...", zap.String("driver", cfg.Database.Driver))
		report, err := svc.CheckSchema()
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}
		if report.Matched {
			logg.Info("Catalog schema matches the models.")
		} else {
			logg.Warn("Catalog schema mismatches found")
			for table, tbl := range report.Tables {
				if tbl.Status == "ok" {
					continue
				}
				if len(tbl.MissingColumns) > 0 {
					logg.Warn("Missing Columns", zap.String("table", table), zap.String("status", tbl.Status), zap.Strings("columns", tbl.MissingColumns))
				}
				if len(tbl.TypeMismatches) > 0 {
					logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tbl.TypeMismatches))
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}
	}

	if only == checkAll || only == checkHistory {
		logg.Info("Checking catalog history...")
		report, err := svc.CheckHistory(ctx)
		if err != nil {
			return fmt.Errorf("history check failed: %w", err)
		}
		for entity, h := range report.Entities {
			fields := []zap.Field{
				zap.String("entity", entity),
				zap.Int64("active", h.Active),
				zap.Int64("retired", h.Retired),
			}
			if h.Status == "ok" {
				logg.Info("History is consistent", fields...)
				continue
			}
			logg.Warn("History violations found", append(fields,
				zap.Strings("duplicate_keys", h.DuplicateKeys),
				zap.Int64("inverted_intervals", h.InvertedIntervals))...)
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			filename := fmt.Sprintf("integrity_history_%d.json", time.Now().Unix())
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			if err := os.WriteFile(filename, data, 0644); err != nil {
				return fmt.Errorf("failed to save JSON file: %w", err)
			}
			logg.Info("Detailed JSON report saved", zap.String("file", filename))
		}
	}

	return nil
}
