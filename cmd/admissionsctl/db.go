package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"admissions-engine/internal/config"
	"admissions-engine/internal/services/database"
	"admissions-engine/internal/utils"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the database if needed and apply the schema",
	RunE:  runInitDB,
}

var checkDBCmd = &cobra.Command{
	Use:   "check-db",
	Short: "Verify database connectivity and report table counts",
	RunE:  runCheckDB,
}

var importCmd = &cobra.Command{
	Use:   "import-catalog",
	Short: "Import a university catalog CSV into the database",
	Long:  "Parses a university catalog CSV and upserts every valid row. With --dry-run the file is only validated.",
	RunE:  runImport,
}

var (
	initDBCreate  bool
	importFile    string
	importDryRun  bool
	importTimeout time.Duration
)

func init() {
	initDBCmd.Flags().BoolVar(&initDBCreate, "create", false, "Create the database first when it does not exist")

	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Path to catalog CSV file (required)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate the file without writing to the database")
	importCmd.Flags().DurationVar(&importTimeout, "timeout", 2*time.Minute, "Import timeout")
	markRequired(importCmd, "file")

	rootCmd.AddCommand(initDBCmd, checkDBCmd, importCmd)
}

func connect() (*config.Config, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func runInitDB(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	if initDBCreate {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := createDatabase(ctx, cfg); err != nil {
			return err
		}
	}

	_, db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	fmt.Println("Schema applied")
	return nil
}

// createDatabase connects to the server's maintenance database and creates
// the configured database when it is missing.
func createDatabase(ctx context.Context, cfg *config.Config) error {
	admin := *cfg
	admin.DBName = "postgres"

	connCfg, err := pgx.ParseConfig(admin.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		connCfg.Database = "postgres"
	}

	conn, err := pgx.ConnectConfig(ctx, connCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	if err := conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{cfg.DBName}.Sanitize()); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	fmt.Printf("Database %q created\n", cfg.DBName)
	return nil
}

func runCheckDB(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	_, db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	fmt.Println("Database connection OK")

	for _, table := range []string{"users", "student_profiles", "universities", "fit_scores", "checklists", "checklist_items"} {
		var count int64
		err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+pgx.Identifier{table}.Sanitize()).Scan(&count)
		if err != nil {
			fmt.Printf("  %-18s unavailable (%v)\n", table, err)
			continue
		}
		fmt.Printf("  %-18s %d rows\n", table, count)
	}
	return nil
}

func runImport(cmd *cobra.Command, _ []string) error {
	content, err := os.ReadFile(importFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", importFile, err)
	}

	if importDryRun {
		result := utils.ValidateCSVStructure(string(content))
		if err := writeJSON("", result); err != nil {
			return err
		}
		if !result.Valid {
			return fmt.Errorf("catalog is invalid")
		}
		return nil
	}

	universities, parseErrors := utils.NewCSVParser().ParseUniversities(string(content))
	for _, e := range parseErrors {
		fmt.Fprintf(os.Stderr, "skipped: %v\n", e)
	}
	if len(universities) == 0 {
		return fmt.Errorf("no valid universities in %s", importFile)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), importTimeout)
	defer cancel()

	_, db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := database.NewUniversityRepository(db).BulkUpsert(ctx, universities)
	if err != nil {
		return err
	}
	return writeJSON("", result)
}
