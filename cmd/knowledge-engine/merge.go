package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdiddy/knowledge-engine/internal/mergeset"
	"github.com/pdiddy/knowledge-engine/internal/pipeline"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [reports...]",
	Short: "Merge triple sets from two or more run reports",
	Long: `Merge combines the triples of multiple run reports into one set with a
single representative per triple ID, keeping the maximum observed
survival fitness. Duplicate IDs and duplicate normalized contents are
reported with per-source occurrence counts; a disagreement between the
two accountings indicates an ID collision or normalization drift.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().String("output", "merged.yaml", "merged report path")

	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	sets := make([][]types.Triple, 0, len(args))
	var diags []types.Diagnostic
	for _, path := range args {
		report, err := pipeline.ReadReport(path)
		if err != nil {
			return err
		}
		sets = append(sets, report.Triples)
		diags = append(diags, report.Diagnostics...)
	}

	res := mergeset.Merge(sets...)

	ids := make([]string, 0, len(res.DuplicateIDs))
	for id := range res.DuplicateIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		occ := res.DuplicateIDs[id]
		fmt.Printf("duplicate %s seen %d times across %d source(s)\n", id, occ.Total, len(occ.PerSource))
	}
	if !res.Consistent() {
		fmt.Println("warning: ID and content duplicate accounting disagree")
	}

	merged := &types.Report{
		Metadata: types.RunMetadata{
			RunID:            uuid.NewString(),
			StartedAt:        time.Now().UTC(),
			FinishedAt:       time.Now().UTC(),
			TriplesExtracted: totalTriples(sets),
			TriplesSurviving: len(res.Merged),
		},
		Triples:     res.Merged,
		Diagnostics: diags,
	}
	if err := pipeline.WriteReport(output, merged); err != nil {
		return err
	}

	fmt.Printf("merged %d reports: %d triples in, %d out, %d duplicate IDs\n",
		len(args), totalTriples(sets), len(res.Merged), len(res.DuplicateIDs))
	fmt.Printf("merged report written to %s\n", output)
	return nil
}

func totalTriples(sets [][]types.Triple) int {
	n := 0
	for _, s := range sets {
		n += len(s)
	}
	return n
}
