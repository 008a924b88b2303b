package mergeset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/knowledge-engine/internal/extract"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// newTriple mirrors extraction output: the ID is derived from content, so
// duplicated content across sets collides on ID exactly as in production.
func newTriple(subject, predicate, object, origin string, fitness float64) types.Triple {
	return types.Triple{
		ID:              extract.TripleID(subject, predicate, object),
		Subject:         subject,
		Predicate:       predicate,
		Object:          object,
		Confidence:      fitness,
		SurvivalFitness: fitness,
		OriginID:        origin,
		Category:        "sacred_geometry",
	}
}

// TestMergeDuplicateAcrossRuns covers the reference scenario: two
// documents producing the same triple content in independent runs.
func TestMergeDuplicateAcrossRuns(t *testing.T) {
	run1 := []types.Triple{
		newTriple("Sacred Geometry System", "calculates", "golden ratio", "doc-a", 0.72),
	}
	run2 := []types.Triple{
		newTriple("Sacred Geometry System", "calculates", "golden ratio", "doc-b", 0.91),
	}

	res := Merge(run1, run2)

	require.Len(t, res.Merged, 1, "one representative per ID")
	rep := res.Merged[0]
	assert.Equal(t, 0.91, rep.SurvivalFitness, "representative keeps the maximum fitness")

	id := run1[0].ID
	require.Contains(t, res.DuplicateIDs, id)
	assert.Equal(t, 2, res.DuplicateIDs[id].Total)
	assert.Equal(t, map[int]int{0: 1, 1: 1}, res.DuplicateIDs[id].PerSource)

	require.Len(t, res.DuplicateContents, 1)
	assert.True(t, res.Consistent(), "content and ID accounting must agree")
}

// Merge non-duplication: merging overlapping sets yields strictly fewer
// triples than the sum of inputs, with no duplicate IDs.
func TestMergeNonDuplication(t *testing.T) {
	run1 := []types.Triple{
		newTriple("Sacred Geometry System", "calculates", "golden ratio", "doc-a", 0.8),
		newTriple("Consciousness Model", "emerges_from", "quantum fields", "doc-a", 0.7),
	}
	run2 := []types.Triple{
		newTriple("Sacred Geometry System", "calculates", "golden ratio", "doc-b", 0.6),
		newTriple("Harmonic Field", "amplifies", "resonance", "doc-b", 0.75),
	}

	res := Merge(run1, run2)

	assert.Less(t, len(res.Merged), len(run1)+len(run2))

	seen := map[string]bool{}
	for _, tr := range res.Merged {
		assert.False(t, seen[tr.ID], "duplicate ID %s in merged output", tr.ID)
		seen[tr.ID] = true
	}
}

func TestMergeDisjointSets(t *testing.T) {
	run1 := []types.Triple{
		newTriple("Sacred Geometry System", "calculates", "golden ratio", "doc-a", 0.8),
	}
	run2 := []types.Triple{
		newTriple("Harmonic Field", "amplifies", "resonance", "doc-b", 0.75),
	}

	res := Merge(run1, run2)

	assert.Len(t, res.Merged, 2)
	assert.Empty(t, res.DuplicateIDs)
	assert.Empty(t, res.DuplicateContents)
	assert.True(t, res.Consistent())
}

func TestMergeWithinSingleSet(t *testing.T) {
	// Extraction intentionally keeps duplicates; merging a single run
	// still dedups them.
	run := []types.Triple{
		newTriple("Sacred Geometry System", "calculates", "golden ratio", "doc-a", 0.8),
		newTriple("Sacred Geometry System", "calculates", "golden ratio", "doc-a", 0.85),
	}

	res := Merge(run)

	require.Len(t, res.Merged, 1)
	assert.Equal(t, 0.85, res.Merged[0].SurvivalFitness)
	assert.Equal(t, map[int]int{0: 2}, res.DuplicateIDs[res.Merged[0].ID].PerSource)
}

func TestMergeKeepsStrongestMetadata(t *testing.T) {
	a := newTriple("Sacred Geometry System", "calculates", "golden ratio", "doc-a", 0.6)
	a.Generation = 2
	b := newTriple("Sacred Geometry System", "calculates", "golden ratio", "doc-b", 0.9)
	b.WebValidated = true

	res := Merge([]types.Triple{a}, []types.Triple{b})

	require.Len(t, res.Merged, 1)
	rep := res.Merged[0]
	assert.Equal(t, 0.9, rep.SurvivalFitness)
	assert.Equal(t, 2, rep.Generation)
	assert.True(t, rep.WebValidated)
}

func TestConsistentDetectsDrift(t *testing.T) {
	// Same ID, different content: a manufactured collision the guard
	// must flag.
	a := newTriple("Sacred Geometry System", "calculates", "golden ratio", "doc-a", 0.8)
	b := a
	b.Object = "something else entirely"

	res := Merge([]types.Triple{a}, []types.Triple{b})

	assert.False(t, res.Consistent())
}

func TestMergeEmptyInput(t *testing.T) {
	res := Merge()
	assert.Empty(t, res.Merged)
	assert.True(t, res.Consistent())
}
