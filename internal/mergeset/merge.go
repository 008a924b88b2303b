// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mergeset combines triple sets from multiple runs: duplicate
// accounting by ID, duplicate accounting by normalized content as an
// independent consistency guard, and a merged set with one representative
// per ID keeping the strongest observed signal.
package mergeset

import (
	"sort"

	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// Occurrence records how often a duplicate key appeared, by source set
// index.
type Occurrence struct {
	// Total is the number of appearances across all sets.
	Total int `json:"total" yaml:"total"`

	// PerSource maps source set index → count within that set.
	PerSource map[int]int `json:"per_source" yaml:"per_source"`
}

// Result is the outcome of merging two or more triple sets.
type Result struct {
	// Merged holds one representative triple per ID, sorted by ID. The
	// representative carries the maximum survival fitness and confidence
	// observed across its duplicates.
	Merged []types.Triple `json:"merged" yaml:"merged"`

	// DuplicateIDs maps each triple ID seen more than once to its
	// occurrence counts.
	DuplicateIDs map[string]Occurrence `json:"duplicate_ids" yaml:"duplicate_ids"`

	// DuplicateContents maps each normalized (subject, predicate,
	// object) content key seen more than once to its occurrence counts.
	// By ID determinism this should mirror DuplicateIDs; it is computed
	// independently as a consistency guard.
	DuplicateContents map[string]Occurrence `json:"duplicate_contents" yaml:"duplicate_contents"`
}

// Consistent reports whether the two duplicate accountings agree: every
// duplicate ID corresponds to exactly one duplicate content key with the
// same total, and vice versa. A false result indicates an ID collision or
// a content-normalization drift between runs.
func (r Result) Consistent() bool {
	if len(r.DuplicateIDs) != len(r.DuplicateContents) {
		return false
	}
	totals := func(m map[string]Occurrence) []int {
		out := make([]int, 0, len(m))
		for _, o := range m {
			out = append(out, o.Total)
		}
		sort.Ints(out)
		return out
	}
	a, b := totals(r.DuplicateIDs), totals(r.DuplicateContents)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Merge combines the given triple sets. Within one set, repeated IDs are
// legitimate input (extraction intentionally does not suppress
// duplicates) and count as duplicates here too.
func Merge(sets ...[]types.Triple) Result {
	idCounts := make(map[string]Occurrence)
	contentCounts := make(map[string]Occurrence)
	merged := make(map[string]types.Triple)

	for src, set := range sets {
		for _, t := range set {
			count(idCounts, t.ID, src)
			count(contentCounts, t.ContentKey(), src)

			best, seen := merged[t.ID]
			if !seen {
				merged[t.ID] = t
				continue
			}
			// Keep the strongest observed signal; never discard a
			// higher fitness or confidence during merge.
			if t.SurvivalFitness > best.SurvivalFitness {
				best.SurvivalFitness = t.SurvivalFitness
			}
			if t.Confidence > best.Confidence {
				best.Confidence = t.Confidence
			}
			if t.Generation > best.Generation {
				best.Generation = t.Generation
			}
			best.WebValidated = best.WebValidated || t.WebValidated
			merged[t.ID] = best
		}
	}

	res := Result{
		DuplicateIDs:      keepDuplicates(idCounts),
		DuplicateContents: keepDuplicates(contentCounts),
	}
	res.Merged = make([]types.Triple, 0, len(merged))
	for _, t := range merged {
		res.Merged = append(res.Merged, t)
	}
	sort.Slice(res.Merged, func(i, j int) bool { return res.Merged[i].ID < res.Merged[j].ID })
	return res
}

func count(m map[string]Occurrence, key string, src int) {
	occ, ok := m[key]
	if !ok {
		occ = Occurrence{PerSource: make(map[int]int)}
	}
	occ.Total++
	occ.PerSource[src]++
	m[key] = occ
}

func keepDuplicates(m map[string]Occurrence) map[string]Occurrence {
	out := make(map[string]Occurrence)
	for k, occ := range m {
		if occ.Total > 1 {
			out[k] = occ
		}
	}
	return out
}
