package cmd

import (
	"context"
	"fmt"

	"colabdraw/core/database"
	"colabdraw/core/storage"
	"colabdraw/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the asset bucket and the scene table",
	Long:  `Checks that the storage bucket exists and that the scene table matches the expected schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return cmd.Help()
		}
		return runIntegrityChecks(cmd.Context(), true, true)
	},
}

// storageCheckCmd represents the integrity storage command
var storageCheckCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and create the asset bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false)
	},
}

// schemaCheckCmd represents the integrity schema command
var schemaCheckCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check and migrate the scene table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(storageCheckCmd, schemaCheckCmd)
	integrityCmd.PersistentFlags().BoolVar(&fixFlag, "fix", false, "Create the bucket or migrate the table when checks fail")
}

func runIntegrityChecks(ctx context.Context, runStorage, runSchema bool) error {
	cfg, logg, err := bootstrap()
	if err != nil {
		return err
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	// Connect to Database (Optional)
	var db *gorm.DB
	if conn, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Optional database connection failed", zap.Error(err))
	} else {
		db = conn
	}

	svc := integrity.NewService(client, cfg.Storage, db, cfg.Scene.Table, logg)
	failed := false

	if runStorage {
		logg.Info("Checking storage bucket...", zap.String("bucket", cfg.Storage.Bucket))
		report, err := svc.CheckStorage(ctx)
		switch {
		case err != nil:
			logg.Error("Storage check failed", zap.Error(err))
			failed = true
		case report.Exists:
			logg.Info("Bucket is present.")
		case fixFlag:
			if err := svc.FixStorage(ctx); err != nil {
				failed = true
			}
		default:
			logg.Warn("Bucket is missing. Run with --fix to create it.")
			failed = true
		}
	}

	if runSchema {
		logg.Info("Checking scene table...", zap.String("table", cfg.Scene.Table))
		report, err := svc.CheckSchema()
		switch {
		case err != nil:
			logg.Error("Schema check failed", zap.Error(err))
			failed = true
		case report.Matched:
			logg.Info("Scene table matches expected definition.")
		case fixFlag:
			if err := svc.FixSchema(ctx); err != nil {
				failed = true
			}
		default:
			if len(report.MissingColumns) > 0 {
				logg.Warn("Missing Columns", zap.String("table", report.Table), zap.Strings("columns", report.MissingColumns))
			}
			if len(report.TypeMismatches) > 0 {
				logg.Warn("Type Mismatches", zap.String("table", report.Table), zap.Strings("mismatches", report.TypeMismatches))
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
			logg.Warn("Run with --fix to migrate the table.")
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("integrity checks failed")
	}
	return nil
}
