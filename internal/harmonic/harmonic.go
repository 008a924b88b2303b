// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harmonic computes per-cluster and corpus-wide summary
// statistics over a triple corpus. It is read-only: aggregation never
// mutates triples.
package harmonic

import (
	"github.com/pdiddy/knowledge-engine/internal/graph"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// CorpusConcept labels the whole-corpus signature.
const CorpusConcept = "*"

// coherenceScale is the fixed constant scaling mean fitness into the
// coherence score. The golden ratio, naturally.
const coherenceScale = 1.618

// Coherence maps a mean fitness into the bounded coherence score:
// monotonic in meanFitness, clamped to [0,1].
func Coherence(meanFitness float64) float64 {
	return types.Clamp01(meanFitness * coherenceScale)
}

// Signatures computes one HarmonicSignature per concept cluster plus a
// corpus-wide signature under CorpusConcept, ordered corpus-wide first
// and then by concept. An empty corpus yields a single zero-valued
// corpus signature so reports stay structurally valid.
func Signatures(corpus types.Corpus, g *graph.Graph) []types.HarmonicSignature {
	clusters := graph.Clusters(corpus)

	// Clusters arrive sorted by concept, so signature order is the
	// corpus-wide entry followed by concepts in order.
	out := make([]types.HarmonicSignature, 0, len(clusters)+1)
	out = append(out, aggregate(CorpusConcept, corpus.Triples(), g))
	for _, cl := range clusters {
		members := make([]types.Triple, 0, len(cl.TripleIDs))
		for _, id := range cl.TripleIDs {
			members = append(members, corpus[id])
		}
		out = append(out, aggregate(cl.Concept, members, g))
	}
	return out
}

func aggregate(concept string, members []types.Triple, g *graph.Graph) types.HarmonicSignature {
	sig := types.HarmonicSignature{Concept: concept, Members: len(members)}
	if len(members) == 0 {
		return sig
	}

	var fitnessSum, connSum float64
	for _, t := range members {
		fitnessSum += t.SurvivalFitness
		connSum += float64(g.ConnectionCount(t.ID))
	}
	n := float64(len(members))
	sig.MeanFitness = fitnessSum / n
	sig.MeanConnections = connSum / n
	sig.Coherence = Coherence(sig.MeanFitness)
	return sig
}
