// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the knowledge engine:
// documents, triples, derived graph entities, and the run report.
package types

import (
	"sort"
	"time"
)

// DocumentKind declares how a document's bytes should be interpreted.
type DocumentKind string

const (
	KindText       DocumentKind = "text"
	KindStructured DocumentKind = "structured"
	KindCode       DocumentKind = "code"
	KindUnknown    DocumentKind = "unknown"
)

// DocumentHandle is the input unit supplied by an external file-discovery
// collaborator. The engine never walks directories itself.
type DocumentHandle struct {
	// OriginID is an opaque identifier for the document source
	// (typically a file path).
	OriginID string `json:"origin_id" yaml:"origin_id"`

	// Kind is the declared content kind. The normalizer may downgrade
	// structured to text if a strict decode fails.
	Kind DocumentKind `json:"kind" yaml:"kind"`

	// Body is the raw byte content.
	Body []byte `json:"body" yaml:"body"`

	// ModifiedAt is the source's last modification time.
	ModifiedAt time.Time `json:"modified_at" yaml:"modified_at"`
}

// Document is a normalized document ready for pattern extraction.
// Immutable once produced; owned by the normalizer and discarded after
// extraction.
type Document struct {
	// OriginID is carried through to every triple extracted from this
	// document for provenance.
	OriginID string `json:"origin_id" yaml:"origin_id"`

	// Kind is the effective content kind after normalization. A
	// structured document that failed strict decoding carries KindText.
	Kind DocumentKind `json:"kind" yaml:"kind"`

	// Body is the plain-text content rules are matched against.
	Body string `json:"body" yaml:"body"`

	// SizeBytes is the raw input size before normalization.
	SizeBytes int64 `json:"size_bytes" yaml:"size_bytes"`

	// ModifiedAt is the source's last modification time.
	ModifiedAt time.Time `json:"modified_at" yaml:"modified_at"`
}

// Triple is a subject-predicate-object assertion with confidence and
// survival metadata.
type Triple struct {
	// ID is a deterministic function of the normalized
	// (subject, predicate, object) content: identical content anywhere
	// in the corpus always produces the same ID.
	ID string `json:"id" yaml:"id"`

	// Subject is the fixed label of the rule category that produced
	// the triple.
	Subject string `json:"subject" yaml:"subject"`

	// Predicate is the relation named by the matching rule.
	Predicate string `json:"predicate" yaml:"predicate"`

	// Object is the normalized matched text.
	Object string `json:"object" yaml:"object"`

	// Confidence is the extraction certainty in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Category is the semantic category of the matching rule.
	Category string `json:"category" yaml:"category"`

	// OriginID identifies the source document.
	OriginID string `json:"origin_id" yaml:"origin_id"`

	// ExtractedAt records when the triple was produced.
	ExtractedAt time.Time `json:"extracted_at" yaml:"extracted_at"`

	// SurvivalFitness is the evolutionary fitness in [0,1]. Initialized
	// to Confidence; rescaled each generation.
	SurvivalFitness float64 `json:"survival_fitness" yaml:"survival_fitness"`

	// Generation counts the evolutionary passes applied; increments by
	// exactly one per pass.
	Generation int `json:"generation" yaml:"generation"`

	// WebValidated marks triples whose object matched a concept supplied
	// by the optional knowledge validator collaborator.
	WebValidated bool `json:"web_validated,omitempty" yaml:"web_validated,omitempty"`
}

// ContentKey returns the normalized content identity of the triple,
// independent of provenance and fitness. Two triples with equal content
// keys have equal IDs.
func (t Triple) ContentKey() string {
	return t.Subject + "\x00" + t.Predicate + "\x00" + t.Object
}

// ConnectionBasis names the rule under which two triples are connected.
type ConnectionBasis string

const (
	BasisSharedSubject       ConnectionBasis = "shared_subject"
	BasisSharedObject        ConnectionBasis = "shared_object"
	BasisSubjectEqualsObject ConnectionBasis = "subject_equals_object"

	// BasisCategoryMatch is accepted on the wire for compatibility with
	// older reports; the graph builder's connection rule never produces
	// it.
	BasisCategoryMatch ConnectionBasis = "category_match"
)

// ConnectionEdge is a derived adjacency between two triples. Edges are
// computed fresh per evolutionary pass from the current surviving triple
// set and never stored or mutated.
type ConnectionEdge struct {
	// TripleA and TripleB are the connected triple IDs, ordered so that
	// TripleA < TripleB.
	TripleA string `json:"triple_a" yaml:"triple_a"`
	TripleB string `json:"triple_b" yaml:"triple_b"`

	// Basis names the connection rule that applied.
	Basis ConnectionBasis `json:"basis" yaml:"basis"`
}

// ConceptCluster groups the triples supporting one concept. Clusters are
// derived per aggregation pass and discarded after reporting.
type ConceptCluster struct {
	// Concept is the grouping key (a subject value).
	Concept string `json:"concept" yaml:"concept"`

	// TripleIDs lists the member triples.
	TripleIDs []string `json:"triple_ids" yaml:"triple_ids"`

	// Origins is the set of distinct origin IDs supporting the concept.
	Origins []string `json:"origins" yaml:"origins"`
}

// Corpus is the in-process working set mapping triple ID to Triple. It is
// replaced wholesale by each evolutionary pass and unioned by the merge
// service; no other component mutates it.
type Corpus map[string]Triple

// NewCorpus builds a corpus from a triple list. Later duplicates of an ID
// overwrite earlier ones.
func NewCorpus(triples []Triple) Corpus {
	c := make(Corpus, len(triples))
	for _, t := range triples {
		c[t.ID] = t
	}
	return c
}

// Triples returns the corpus contents sorted by ID for deterministic
// iteration and serialization.
func (c Corpus) Triples() []Triple {
	out := make([]Triple, 0, len(c))
	for _, t := range c {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Clamp01 bounds v to the unit interval. Confidence and survival fitness
// are always stored clamped.
func Clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
