package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/riskwatch/riskwatch/internal/config"
	"github.com/riskwatch/riskwatch/internal/database"
	"github.com/riskwatch/riskwatch/internal/ingest"
	"github.com/riskwatch/riskwatch/internal/metrics"
	"github.com/riskwatch/riskwatch/internal/pipeline"
	"github.com/riskwatch/riskwatch/internal/risk"
	"github.com/riskwatch/riskwatch/internal/server"
	"github.com/riskwatch/riskwatch/internal/suppliers"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "riskwatch",
	Short:   "Supplier disruption monitoring",
	Long:    "Riskwatch ingests disruption news, scores supplier exposure, and serves a risk dashboard.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(suppliersCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("riskwatch", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/riskwatch/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds and API keys, then import suppliers with 'riskwatch suppliers import'.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		supplierCount, err := db.CountSuppliers()
		if err != nil {
			return fmt.Errorf("counting suppliers: %w", err)
		}
		eventCount, err := db.CountEvents()
		if err != nil {
			return fmt.Errorf("counting events: %w", err)
		}

		fmt.Printf("Suppliers: %d\n", supplierCount)
		fmt.Printf("Events in window: %d\n\n", eventCount)

		runs, err := db.GetRecentIngestRuns(5)
		if err != nil {
			return fmt.Errorf("loading ingest runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No ingest runs yet. Start with 'riskwatch run'.")
		} else {
			fmt.Println("Recent ingest runs:")
			for _, r := range runs {
				fmt.Printf("  %s  found %d, admitted %d, duplicates %d, purged %d\n",
					r.StartedAt, r.Found, r.Admitted, r.Duplicates, r.Purged)
			}
		}

		digest, err := db.GetLatestDigest()
		if err != nil {
			return fmt.Errorf("loading digest: %w", err)
		}
		if digest != nil {
			fmt.Printf("\nLatest digest (%s): %s\n", digest.DigestDate, digest.TLDR)
		}
		return nil
	},
}

// --- suppliers commands ---

var suppliersCmd = &cobra.Command{
	Use:   "suppliers",
	Short: "Manage the monitored supplier list",
}

var suppliersImportCmd = &cobra.Command{
	Use:   "import [file.csv]",
	Short: "Import suppliers from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening CSV: %w", err)
		}
		defer f.Close()

		result, err := suppliers.NewImporter(db).ImportCSV(context.Background(), f)
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d new, updated %d existing", result.Imported, result.Updated)
		if result.Geocoded > 0 {
			fmt.Printf(", geocoded %d", result.Geocoded)
		}
		fmt.Println()
		for _, s := range result.Skipped {
			fmt.Printf("  skipped %s\n", s)
		}
		return nil
	},
}

var suppliersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List suppliers with their current risk",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		all, err := db.GetSuppliers()
		if err != nil {
			return err
		}
		if len(all) == 0 {
			fmt.Println("No suppliers. Import some with: riskwatch suppliers import <file.csv>")
			return nil
		}

		for _, s := range all {
			location := s.Country
			if s.City != nil {
				location = *s.City + ", " + s.Country
			}
			fmt.Printf("  [%d] %-28s %-24s tier %d  %5.1f %s\n",
				s.ID, s.Name, location, s.Tier, s.RiskScore, s.RiskLevel)
			if s.EventSummary != nil && *s.EventSummary != "" {
				fmt.Printf("        %s\n", *s.EventSummary)
			}
		}
		return nil
	},
}

var suppliersSampleCmd = &cobra.Command{
	Use:   "sample [file.csv]",
	Short: "Write an example supplier CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "suppliers.csv"
		if len(args) == 1 {
			target = args[0]
		}
		if _, err := os.Stat(target); err == nil {
			return fmt.Errorf("%s already exists", target)
		}
		if err := os.WriteFile(target, []byte(suppliers.SampleCSV), 0o644); err != nil {
			return fmt.Errorf("writing sample CSV: %w", err)
		}
		fmt.Printf("Wrote %s. Edit it, then run: riskwatch suppliers import %s\n", target, target)
		return nil
	},
}

func init() {
	suppliersCmd.AddCommand(suppliersImportCmd)
	suppliersCmd.AddCommand(suppliersListCmd)
	suppliersCmd.AddCommand(suppliersSampleCmd)
}

// --- ingest command ---

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch sources and admit events without scoring",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		all, err := db.GetSuppliers()
		if err != nil {
			return err
		}

		fmt.Println("Fetching sources...")
		collector := ingest.NewCollector(
			db, ingest.BuildSources(cfg, all),
			cfg.Ingest.WindowDays, cfg.Ingest.Workers, cfg.SourceTimeout(), nil,
		)
		result, err := collector.Run(context.Background(), time.Now().UTC())
		if err != nil {
			return err
		}

		fmt.Println("\nIngest complete:")
		fmt.Printf("  Found: %d\n", result.Found)
		fmt.Printf("  Admitted: %d\n", result.Admitted)
		fmt.Printf("  Duplicates: %d\n", result.Duplicates)
		fmt.Printf("  Filtered out: %d\n", result.Filtered+result.Expired+result.Future+result.ParseDrops)
		fmt.Printf("  Purged (expired): %d\n", result.Purged)
		if result.SourceErrors > 0 {
			fmt.Printf("  Source errors: %d\n", result.SourceErrors)
		}

		if len(result.Sources) > 0 {
			fmt.Println("\nAdmitted by source:")
			type kv struct {
				key string
				val int
			}
			var sorted []kv
			for k, v := range result.Sources {
				sorted = append(sorted, kv{k, v})
			}
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })
			for _, s := range sorted {
				fmt.Printf("  %s: %d\n", s.key, s.val)
			}
		}
		return nil
	},
}

// --- score command ---

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Recompute supplier risk from stored events",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		all, err := db.GetSuppliers()
		if err != nil {
			return err
		}
		if len(all) == 0 {
			fmt.Println("No suppliers. Import some with: riskwatch suppliers import <file.csv>")
			return nil
		}

		now := time.Now().UTC()
		cutoff := now.AddDate(0, 0, -cfg.Ingest.WindowDays).Format(time.RFC3339)
		events, err := db.GetEventsSince(cutoff)
		if err != nil {
			return err
		}

		engine := risk.NewEngine(cfg.Scoring, cfg.Ingest.WindowDays)
		for i := range all {
			result := engine.ScoreSupplier(&all[i], events, now)
			if err := db.UpdateSupplierRisk(result.SupplierID, result.Score, result.Level, result.Summary()); err != nil {
				return fmt.Errorf("saving risk for %q: %w", result.Supplier, err)
			}
			fmt.Printf("  %-28s %5.1f %s\n", result.Supplier, result.Score, result.Level)
		}
		return nil
	},
}

// --- run command ---

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: ingest -> fetch -> score -> alert -> digest",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe := pipeline.New(cfg, db, prometheus.NewRegistry())

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun()
		} else {
			result = pipe.Run(context.Background())
		}

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/%d: %s\n", i+1, len(result.Steps), step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if !dryRun {
			fmt.Println("\nPipeline complete! Run 'riskwatch serve' to view the dashboard.")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local dashboard server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if !cmd.Flags().Changed("port") && cfg.Server.Port != 0 {
			port = cfg.Server.Port
		}

		reg := prometheus.NewRegistry()
		metrics.New(reg)

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(cfg, db, reg, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "riskwatch.db")
	return database.Open(dbPath)
}
