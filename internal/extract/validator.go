// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "context"

// ValidatedConcept is one entry supplied by the external knowledge
// validator collaborator.
type ValidatedConcept struct {
	// Concept is the validated concept phrase.
	Concept string `json:"concept" yaml:"concept"`

	// Related lists concepts the validator associates with Concept.
	Related []string `json:"related" yaml:"related"`

	// Relevance is the validator's confidence in the concept, in [0,1].
	Relevance float64 `json:"relevance" yaml:"relevance"`
}

// Validator abstracts the optional external knowledge validator so tests
// can supply a mock. When no validator is configured the pipeline passes
// a nil ConceptIndex and every other behavior is unchanged.
type Validator interface {
	Validate(ctx context.Context) ([]ValidatedConcept, error)
}

// ConceptIndex maps a normalized concept phrase to its validation entry.
type ConceptIndex map[string]ValidatedConcept

// BuildConceptIndex normalizes validator output with the same object
// transform used during extraction, so lookup by triple object is exact.
func BuildConceptIndex(concepts []ValidatedConcept) ConceptIndex {
	if len(concepts) == 0 {
		return nil
	}
	idx := make(ConceptIndex, len(concepts))
	for _, vc := range concepts {
		key := NormalizeObject(vc.Concept)
		if key == "" {
			continue
		}
		idx[key] = vc
	}
	return idx
}
