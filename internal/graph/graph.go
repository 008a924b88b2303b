// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph derives the relationship structure over a triple corpus:
// by-subject and by-object indices, pairwise connection edges, and
// cross-document concept clusters. Everything here is computed fresh from
// a corpus snapshot and never mutates it.
package graph

import (
	"sort"

	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// Graph holds the derived connection structure for one corpus snapshot.
type Graph struct {
	bySubject map[string][]string
	byObject  map[string][]string

	// neighbors maps triple ID → connected triple ID → basis. A pair
	// connected under more than one basis keeps the first per the
	// shared_subject > shared_object > subject_equals_object precedence.
	neighbors map[string]map[string]types.ConnectionBasis
}

// Build constructs the graph for a corpus snapshot. Connections are
// computed through the index buckets, never by all-pairs comparison over
// the whole corpus: cost is proportional to total bucket pair volume
// (O(n·k) for average bucket size k), which is what keeps multi-thousand
// triple corpora tractable.
func Build(corpus types.Corpus) *Graph {
	g := &Graph{
		bySubject: make(map[string][]string),
		byObject:  make(map[string][]string),
		neighbors: make(map[string]map[string]types.ConnectionBasis, len(corpus)),
	}

	for id, t := range corpus {
		g.bySubject[t.Subject] = append(g.bySubject[t.Subject], id)
		g.byObject[t.Object] = append(g.byObject[t.Object], id)
	}
	// Sorted buckets make edge traversal order deterministic.
	for _, ids := range g.bySubject {
		sort.Strings(ids)
	}
	for _, ids := range g.byObject {
		sort.Strings(ids)
	}

	// Shared subject: every pair within a subject bucket.
	for _, ids := range g.bySubject {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				g.connect(ids[i], ids[j], types.BasisSharedSubject)
			}
		}
	}

	// Shared object: every pair within an object bucket.
	for _, ids := range g.byObject {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				g.connect(ids[i], ids[j], types.BasisSharedObject)
			}
		}
	}

	// Subject equals object: one triple's subject value is another's
	// object value, in either direction.
	for value, subjIDs := range g.bySubject {
		objIDs, ok := g.byObject[value]
		if !ok {
			continue
		}
		for _, a := range subjIDs {
			for _, b := range objIDs {
				if a == b {
					continue
				}
				g.connect(a, b, types.BasisSubjectEqualsObject)
			}
		}
	}

	return g
}

func (g *Graph) connect(a, b string, basis types.ConnectionBasis) {
	if g.neighbors[a] == nil {
		g.neighbors[a] = make(map[string]types.ConnectionBasis)
	}
	if g.neighbors[b] == nil {
		g.neighbors[b] = make(map[string]types.ConnectionBasis)
	}
	if _, seen := g.neighbors[a][b]; !seen {
		g.neighbors[a][b] = basis
		g.neighbors[b][a] = basis
	}
}

// ConnectionCount returns the number of distinct triples connected to id.
func (g *Graph) ConnectionCount(id string) int {
	return len(g.neighbors[id])
}

// Connections returns the sorted IDs of triples connected to id.
func (g *Graph) Connections(id string) []string {
	ns := g.neighbors[id]
	out := make([]string, 0, len(ns))
	for n := range ns {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Edges returns every connection edge exactly once, ordered by
// (TripleA, TripleB) with TripleA < TripleB.
func (g *Graph) Edges() []types.ConnectionEdge {
	var edges []types.ConnectionEdge
	for a, ns := range g.neighbors {
		for b, basis := range ns {
			if a < b {
				edges = append(edges, types.ConnectionEdge{TripleA: a, TripleB: b, Basis: basis})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].TripleA != edges[j].TripleA {
			return edges[i].TripleA < edges[j].TripleA
		}
		return edges[i].TripleB < edges[j].TripleB
	})
	return edges
}

// Clusters groups the corpus by subject, one cluster per concept,
// regardless of how many documents support it. Output is sorted by
// concept.
func Clusters(corpus types.Corpus) []types.ConceptCluster {
	byConcept := make(map[string]*types.ConceptCluster)
	origins := make(map[string]map[string]bool)

	for id, t := range corpus {
		cl, ok := byConcept[t.Subject]
		if !ok {
			cl = &types.ConceptCluster{Concept: t.Subject}
			byConcept[t.Subject] = cl
			origins[t.Subject] = make(map[string]bool)
		}
		cl.TripleIDs = append(cl.TripleIDs, id)
		origins[t.Subject][t.OriginID] = true
	}

	out := make([]types.ConceptCluster, 0, len(byConcept))
	for concept, cl := range byConcept {
		sort.Strings(cl.TripleIDs)
		for o := range origins[concept] {
			cl.Origins = append(cl.Origins, o)
		}
		sort.Strings(cl.Origins)
		out = append(out, *cl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Concept < out[j].Concept })
	return out
}

// CrossDocumentRelationships returns the concepts whose supporting
// triples originate from two or more distinct documents. Concepts backed
// by a single document are excluded regardless of their internal
// connectivity.
func CrossDocumentRelationships(corpus types.Corpus) []types.Relationship {
	var out []types.Relationship
	for _, cl := range Clusters(corpus) {
		if len(cl.Origins) < 2 {
			continue
		}
		out = append(out, types.Relationship{
			Concept:   cl.Concept,
			TripleIDs: cl.TripleIDs,
			Origins:   cl.Origins,
		})
	}
	return out
}
