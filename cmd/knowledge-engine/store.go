// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/knowledge-engine/internal/runstore"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the cross-run registry (ingest, dedup, runs)",
	Long: `Store maintains a SQLite registry of completed run reports. Use
subcommands to ingest report files, list registered runs, or check for
triples duplicated across independent runs.`,
}

var storeIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Register run reports from a directory",
	Long: `Ingest reads run report YAML files from --reports and registers them in
the SQLite registry. Reports unchanged since the last ingest are skipped.`,
	RunE: runStoreIngest,
}

var storeDedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "List triples duplicated across registered runs",
	RunE:  runStoreDedup,
}

var storeRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List registered runs",
	RunE:  runStoreRuns,
}

func init() {
	storeCmd.PersistentFlags().String("store-dir", "", "registry base directory (default: knowledge)")
	storeIngestCmd.Flags().String("reports", "reports", "directory of run report files")

	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeDedupCmd)
	storeCmd.AddCommand(storeRunsCmd)
	rootCmd.AddCommand(storeCmd)
}

func openStore(cmd *cobra.Command) (*runstore.Store, error) {
	cfg := engineConfig().Store
	if v, _ := cmd.Flags().GetString("store-dir"); v != "" {
		cfg.StoreDir = v
	}
	if cfg.StoreDir == "" {
		cfg.StoreDir = "knowledge"
	}
	return runstore.New(cfg)
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	reportsDir, _ := cmd.Flags().GetString("reports")

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), reportsDir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d report(s) failed ingestion", summary.Failed)
	}
	return nil
}

func runStoreDedup(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	dups, err := store.Duplicates(cmd.Context())
	if err != nil {
		return err
	}
	if len(dups) == 0 {
		fmt.Println("No cross-run duplicates.")
		return nil
	}

	for _, d := range dups {
		fmt.Printf("%s  runs=%d  (%s %s %s)\n", d.ID, d.RunCount, d.Subject, d.Predicate, d.Object)
	}
	fmt.Printf("\n%d duplicated triple ID(s)\n", len(dups))
	return nil
}

func runStoreRuns(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No registered runs.")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  generations=%d  triples=%d\n", r.ID, r.ReportFile, r.Generations, r.TripleCount)
	}
	return nil
}
