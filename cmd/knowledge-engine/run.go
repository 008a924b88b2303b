// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/knowledge-engine/internal/extract"
	"github.com/pdiddy/knowledge-engine/internal/pipeline"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the extraction and evolution pipeline over a document directory",
	Long: `Run discovers documents under --input, normalizes and extracts triples
from each, evolves the corpus for the configured number of generations,
and writes a single YAML run report to --output.

Document kinds are declared from file extensions: .json/.yaml/.yml are
structured, common source extensions are code, .txt/.md are text, and
everything else is unknown.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("input", "documents", "directory of input documents")
	runCmd.Flags().String("output", "", "report file path (default: reports/run-<id>.yaml)")
	runCmd.Flags().String("catalogue", "", "YAML rule catalogue (default: built-in)")
	runCmd.Flags().Int("generations", 0, "evolutionary generations (default 1)")
	runCmd.Flags().Int("workers", 0, "parallel extraction workers (default 4)")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	inputDir, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")

	cfg := engineConfig()
	if v, _ := cmd.Flags().GetInt("generations"); v > 0 {
		cfg.Evolution.Generations = v
	}
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		cfg.Extraction.Workers = v
	}
	if v, _ := cmd.Flags().GetString("catalogue"); v != "" {
		cfg.Extraction.CataloguePath = v
	}

	cat, err := loadCatalogue(cfg.Extraction.CataloguePath)
	if err != nil {
		return err
	}

	handles, err := discoverDocuments(inputDir)
	if err != nil {
		return err
	}

	report, err := pipeline.Run(cmd.Context(), handles, pipeline.Options{
		Config:    cfg,
		Catalogue: cat,
	}, os.Stdout)
	if err != nil {
		return err
	}

	if output == "" {
		output = filepath.Join("reports", "run-"+report.Metadata.RunID+".yaml")
	}
	if err := pipeline.WriteReport(output, report); err != nil {
		return err
	}

	fmt.Printf("report written to %s (%d triples, %d relationships, %d diagnostics)\n",
		output, len(report.Triples), len(report.Relationships), len(report.Diagnostics))
	return nil
}

func loadCatalogue(path string) (*extract.Catalogue, error) {
	if path == "" {
		return extract.DefaultCatalogue(), nil
	}
	return extract.Load(path)
}

// kindByExtension maps file extensions to declared document kinds.
var kindByExtension = map[string]types.DocumentKind{
	".json": types.KindStructured,
	".yaml": types.KindStructured,
	".yml":  types.KindStructured,
	".txt":  types.KindText,
	".md":   types.KindText,
	".go":   types.KindCode,
	".py":   types.KindCode,
	".js":   types.KindCode,
	".ts":   types.KindCode,
	".rs":   types.KindCode,
	".c":    types.KindCode,
	".sh":   types.KindCode,
}

// discoverDocuments walks the input directory and builds document
// handles. The engine packages never walk directories themselves; file
// discovery belongs to this CLI surface.
func discoverDocuments(dir string) ([]types.DocumentHandle, error) {
	var handles []types.DocumentHandle

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		body, err := os.ReadFile(path)
		if err != nil {
			// Unreadable documents are recorded downstream; hand the
			// pipeline an empty body so the skip is diagnosed, not lost.
			body = nil
		}

		kind, ok := kindByExtension[strings.ToLower(filepath.Ext(path))]
		if !ok {
			kind = types.KindUnknown
		}

		handles = append(handles, types.DocumentHandle{
			OriginID:   path,
			Kind:       kind,
			Body:       body,
			ModifiedAt: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering documents in %s: %w", dir, err)
	}
	return handles, nil
}
