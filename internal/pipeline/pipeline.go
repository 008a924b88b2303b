// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires the engine stages into one batch execution:
// normalize → extract → graph → evolve → aggregate. Each stage consumes
// the previous stage's output value and produces a new one; the corpus is
// never shared mutable state between stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/knowledge-engine/internal/evolve"
	"github.com/pdiddy/knowledge-engine/internal/extract"
	"github.com/pdiddy/knowledge-engine/internal/graph"
	"github.com/pdiddy/knowledge-engine/internal/harmonic"
	"github.com/pdiddy/knowledge-engine/internal/mergeset"
	"github.com/pdiddy/knowledge-engine/internal/normalize"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// ErrNoDocuments is returned when a run is started with no document
// handles at all. This is the only fatal input condition.
var ErrNoDocuments = errors.New("no documents supplied")

// DefaultWorkers bounds the parallel per-document workers when the
// configuration leaves it unset.
const DefaultWorkers = 4

// Options configures one pipeline run.
type Options struct {
	// Config carries the per-stage settings.
	Config types.EngineConfig

	// Catalogue is the rule table. Nil selects the built-in catalogue.
	Catalogue *extract.Catalogue

	// Validator is the optional external knowledge validator. Nil means
	// no augmentation; every other behavior is unchanged.
	Validator extract.Validator
}

// Run executes the full pipeline over the supplied document handles and
// returns the run report. Per-document normalization and extraction run
// in parallel under a bounded worker group; each worker appends only to
// its own slot, and the corpus is assembled after the join barrier. All
// later stages run single-threaded over the assembled corpus.
func Run(ctx context.Context, handles []types.DocumentHandle, opts Options, w io.Writer) (*types.Report, error) {
	if len(handles) == 0 {
		return nil, ErrNoDocuments
	}

	started := time.Now().UTC()

	cat := opts.Catalogue
	if cat == nil {
		cat = extract.DefaultCatalogue()
	}

	var diags []types.Diagnostic

	validated, err := validatedConcepts(ctx, opts.Validator)
	if err != nil {
		return nil, fmt.Errorf("knowledge validator: %w", err)
	}

	workers := opts.Config.Extraction.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	// Per-handle output slots: workers never share a slice.
	perDoc := make([][]types.Triple, len(handles))
	perDocDiags := make([][]types.Diagnostic, len(handles))
	processed := make([]bool, len(handles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, h := range handles {
		i, h := i, h
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := normalize.Normalize(h, opts.Config.Normalize.MinSizeBytes)
			if res.Diagnostic != nil {
				perDocDiags[i] = append(perDocDiags[i], *res.Diagnostic)
			}
			if res.Skipped {
				return nil
			}
			processed[i] = true
			triples, tdiags := extract.Apply(res.Document, cat, validated)
			perDoc[i] = triples
			perDocDiags[i] = append(perDocDiags[i], tdiags...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Join barrier passed: assemble in handle order so the corpus is
	// deterministic regardless of worker scheduling. In-run duplicates
	// collapse to one representative keeping the strongest signal.
	docCount := 0
	extracted := 0
	for i := range handles {
		diags = append(diags, perDocDiags[i]...)
		if processed[i] {
			docCount++
		}
		extracted += len(perDoc[i])
	}
	assembled := mergeset.Merge(perDoc...)
	corpus := types.NewCorpus(assembled.Merged)

	fmt.Fprintf(w, "normalized %d/%d documents, extracted %d triples (%d distinct)\n",
		docCount, len(handles), extracted, len(corpus))

	generations := opts.Config.Evolution.Generations
	if generations < 1 {
		generations = 1
	}
	profile := evolve.FromConfig(opts.Config.Evolution)

	evolved := evolve.Run(corpus, cat, profile, generations)
	diags = append(diags, evolved.Diagnostics...)
	corpus = evolved.Corpus

	fmt.Fprintf(w, "evolved %d generation(s): %d surviving, %d removed\n",
		generations, len(corpus), evolved.Removed)

	final := graph.Build(corpus)
	relationships := graph.CrossDocumentRelationships(corpus)
	signatures := harmonic.Signatures(corpus, final)

	report := &types.Report{
		Metadata: types.RunMetadata{
			RunID:              uuid.NewString(),
			StartedAt:          started,
			FinishedAt:         time.Now().UTC(),
			DocumentsIn:        len(handles),
			DocumentsProcessed: docCount,
			TriplesExtracted:   extracted,
			TriplesSurviving:   len(corpus),
			Generations:        generations,
		},
		Triples:       corpus.Triples(),
		Relationships: relationships,
		Signatures:    signatures,
		Diagnostics:   diags,
	}
	return report, nil
}

// validatedConcepts fetches and indexes the validator's concept list, or
// returns nil when no validator is configured.
func validatedConcepts(ctx context.Context, v extract.Validator) (extract.ConceptIndex, error) {
	if v == nil {
		return nil, nil
	}
	concepts, err := v.Validate(ctx)
	if err != nil {
		return nil, err
	}
	return extract.BuildConceptIndex(concepts), nil
}

// Evolve applies additional generations to a previously produced report,
// rebuilding the relationship and signature sections from the surviving
// corpus.
func Evolve(report *types.Report, cat *extract.Catalogue, cfg types.EvolutionConfig, w io.Writer) *types.Report {
	if cat == nil {
		cat = extract.DefaultCatalogue()
	}
	generations := cfg.Generations
	if generations < 1 {
		generations = 1
	}

	corpus := types.NewCorpus(report.Triples)
	res := evolve.Run(corpus, cat, evolve.FromConfig(cfg), generations)

	fmt.Fprintf(w, "evolved %d generation(s): %d surviving, %d removed\n",
		generations, len(res.Corpus), res.Removed)

	final := graph.Build(res.Corpus)
	out := &types.Report{
		Metadata:      report.Metadata,
		Triples:       res.Corpus.Triples(),
		Relationships: graph.CrossDocumentRelationships(res.Corpus),
		Signatures:    harmonic.Signatures(res.Corpus, final),
		Diagnostics:   append(append([]types.Diagnostic(nil), report.Diagnostics...), res.Diagnostics...),
	}
	out.Metadata.Generations += generations
	out.Metadata.TriplesSurviving = len(res.Corpus)
	out.Metadata.FinishedAt = time.Now().UTC()
	return out
}
