package runstore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/knowledge-engine/internal/extract"
	"github.com/pdiddy/knowledge-engine/internal/pipeline"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(types.StoreConfig{StoreDir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func testReport(runID string, triples ...types.Triple) *types.Report {
	return &types.Report{
		Metadata: types.RunMetadata{
			RunID:            runID,
			StartedAt:        time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			FinishedAt:       time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC),
			Generations:      1,
			TriplesSurviving: len(triples),
		},
		Triples: triples,
	}
}

func testTriple(subject, predicate, object, origin string, fitness float64) types.Triple {
	return types.Triple{
		ID:              extract.TripleID(subject, predicate, object),
		Subject:         subject,
		Predicate:       predicate,
		Object:          object,
		Confidence:      fitness,
		SurvivalFitness: fitness,
		Category:        "sacred_geometry",
		OriginID:        origin,
		Generation:      1,
	}
}

func writeReport(t *testing.T, dir, name string, report *types.Report) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, pipeline.WriteReport(path, report))
	return path
}

func TestIngestAndSkip(t *testing.T) {
	s, _ := newStore(t)
	reports := t.TempDir()

	writeReport(t, reports, "run1.yaml", testReport("run-1",
		testTriple("Sacred Geometry System", "calculates", "golden ratio", "doc-a", 0.9)))

	var buf bytes.Buffer
	summary, err := s.Ingest(context.Background(), reports, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Ingested)
	assert.Equal(t, 0, summary.Skipped)

	// Second pass over unchanged files skips.
	summary, err = s.Ingest(context.Background(), reports, &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Ingested)
	assert.Equal(t, 1, summary.Skipped)

	runs, err := s.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, 1, runs[0].TripleCount)
}

func TestIngestUpdatesChangedReport(t *testing.T) {
	s, _ := newStore(t)
	reports := t.TempDir()

	path := writeReport(t, reports, "run1.yaml", testReport("run-1",
		testTriple("Sacred Geometry System", "calculates", "golden ratio", "doc-a", 0.9)))

	var buf bytes.Buffer
	_, err := s.Ingest(context.Background(), reports, &buf)
	require.NoError(t, err)

	// Rewrite with more triples and a newer mod time.
	report := testReport("run-1",
		testTriple("Sacred Geometry System", "calculates", "golden ratio", "doc-a", 0.9),
		testTriple("Harmonic Field", "amplifies", "resonance", "doc-a", 0.8))
	require.NoError(t, pipeline.WriteReport(path, report))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	summary, err := s.Ingest(context.Background(), reports, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	triples, err := s.LoadTriples(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Len(t, triples, 2)
}

func TestIngestBadReportDoesNotAbort(t *testing.T) {
	s, _ := newStore(t)
	reports := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(reports, "broken.yaml"), []byte("{not a report: ["), 0o644))
	writeReport(t, reports, "run1.yaml", testReport("run-1",
		testTriple("Sacred Geometry System", "calculates", "golden ratio", "doc-a", 0.9)))

	var buf bytes.Buffer
	summary, err := s.Ingest(context.Background(), reports, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Ingested)
	assert.Equal(t, 1, summary.Failed)
}

func TestDuplicatesAcrossRuns(t *testing.T) {
	s, _ := newStore(t)
	reports := t.TempDir()

	shared := testTriple("Sacred Geometry System", "calculates", "golden ratio", "doc-a", 0.72)
	writeReport(t, reports, "run1.yaml", testReport("run-1", shared,
		testTriple("Harmonic Field", "amplifies", "resonance", "doc-a", 0.8)))

	sharedAgain := shared
	sharedAgain.OriginID = "doc-b"
	sharedAgain.SurvivalFitness = 0.91
	writeReport(t, reports, "run2.yaml", testReport("run-2", sharedAgain,
		testTriple("Consciousness Model", "emerges_from", "quantum fields", "doc-b", 0.7)))

	var buf bytes.Buffer
	summary, err := s.Ingest(context.Background(), reports, &buf)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Ingested)

	dups, err := s.Duplicates(context.Background())
	require.NoError(t, err)
	require.Len(t, dups, 1)
	assert.Equal(t, shared.ID, dups[0].ID)
	assert.Equal(t, 2, dups[0].RunCount)
	assert.Equal(t, "golden ratio", dups[0].Object)
}

func TestLoadTriplesRoundTrip(t *testing.T) {
	s, _ := newStore(t)
	reports := t.TempDir()

	orig := testTriple("Sacred Geometry System", "calculates", "golden ratio", "doc-a", 0.9)
	orig.WebValidated = true
	writeReport(t, reports, "run1.yaml", testReport("run-1", orig))

	var buf bytes.Buffer
	_, err := s.Ingest(context.Background(), reports, &buf)
	require.NoError(t, err)

	triples, err := s.LoadTriples(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, triples, 1)

	got := triples[0]
	assert.Equal(t, orig.ID, got.ID)
	assert.Equal(t, orig.Subject, got.Subject)
	assert.Equal(t, orig.SurvivalFitness, got.SurvivalFitness)
	assert.Equal(t, orig.Generation, got.Generation)
	assert.True(t, got.WebValidated)
}
