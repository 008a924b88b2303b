// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DiagnosticKind classifies a recoverable condition recorded during a run.
type DiagnosticKind string

const (
	// DiagDecodeFallback: a structured document failed strict decoding
	// and was processed as text instead.
	DiagDecodeFallback DiagnosticKind = "decode_fallback"

	// DiagSkippedDocument: a document was too small or unreadable and was
	// excluded from the run.
	DiagSkippedDocument DiagnosticKind = "skipped_document"

	// DiagMalformedRule: a pattern rule failed against one document; the
	// rule's contribution for that document was skipped.
	DiagMalformedRule DiagnosticKind = "malformed_rule"

	// DiagCorpusEmpty: an evolutionary pass left zero survivors.
	DiagCorpusEmpty DiagnosticKind = "corpus_empty"
)

// Diagnostic records a recoverable condition. Diagnostics accumulate on
// the report rather than aborting the batch.
type Diagnostic struct {
	// Kind classifies the condition.
	Kind DiagnosticKind `json:"kind" yaml:"kind"`

	// OriginID identifies the affected document, when applicable.
	OriginID string `json:"origin_id,omitempty" yaml:"origin_id,omitempty"`

	// Detail is a human-readable description.
	Detail string `json:"detail" yaml:"detail"`
}

// Relationship is a cross-document concept: a subject whose supporting
// triples originate from two or more distinct documents.
type Relationship struct {
	// Concept is the shared subject.
	Concept string `json:"concept" yaml:"concept"`

	// TripleIDs lists the supporting triples, sorted.
	TripleIDs []string `json:"triple_ids" yaml:"triple_ids"`

	// Origins lists the distinct source documents, sorted. Always has
	// at least two entries.
	Origins []string `json:"origins" yaml:"origins"`
}

// HarmonicSignature holds aggregate statistics for one concept cluster or
// for the whole corpus (Concept "*").
type HarmonicSignature struct {
	// Concept is the cluster's grouping key, or "*" for the corpus-wide
	// signature.
	Concept string `json:"concept" yaml:"concept"`

	// Members is the number of triples in the cluster.
	Members int `json:"members" yaml:"members"`

	// MeanFitness is the average survival fitness across members.
	MeanFitness float64 `json:"mean_fitness" yaml:"mean_fitness"`

	// MeanConnections is the average connection count across members.
	MeanConnections float64 `json:"mean_connections" yaml:"mean_connections"`

	// Coherence is a bounded score in [0,1], monotonic in MeanFitness.
	Coherence float64 `json:"coherence" yaml:"coherence"`
}

// RunMetadata summarizes one pipeline execution.
type RunMetadata struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id" yaml:"run_id"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	// DocumentsIn is the number of document handles supplied.
	DocumentsIn int `json:"documents_in" yaml:"documents_in"`

	// DocumentsProcessed is the number that survived normalization.
	DocumentsProcessed int `json:"documents_processed" yaml:"documents_processed"`

	// TriplesExtracted counts candidates before evolution.
	TriplesExtracted int `json:"triples_extracted" yaml:"triples_extracted"`

	// TriplesSurviving counts the corpus after all generations.
	TriplesSurviving int `json:"triples_surviving" yaml:"triples_surviving"`

	// Generations is the number of evolutionary passes applied.
	Generations int `json:"generations" yaml:"generations"`
}

// Report is the single structured output artifact of a run. Field names
// are stable for interoperability with the merge/dedup stage across
// independent runs.
type Report struct {
	Metadata      RunMetadata         `json:"metadata" yaml:"metadata"`
	Triples       []Triple            `json:"triples" yaml:"triples"`
	Relationships []Relationship      `json:"relationships" yaml:"relationships"`
	Signatures    []HarmonicSignature `json:"signatures" yaml:"signatures"`
	Diagnostics   []Diagnostic        `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}
