// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract applies a declarative catalogue of lexical trigger
// rules to normalized documents, producing candidate triples with an
// initial confidence and survival fitness.
package extract

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Rule binds one lexical trigger to a semantic category. Every match
// produces a triple whose subject is the rule's fixed label and whose
// object is the normalized capture.
type Rule struct {
	// Category is the semantic category tag carried onto produced triples.
	Category string `json:"category" yaml:"category"`

	// Subject is the fixed subject label for every match of this rule
	// (e.g. "Sacred Geometry System").
	Subject string `json:"subject" yaml:"subject"`

	// Predicate is the relation asserted by a match.
	Predicate string `json:"predicate" yaml:"predicate"`

	// Trigger is a regular expression with exactly one capture group
	// yielding the raw object text.
	Trigger string `json:"trigger" yaml:"trigger"`

	// BaseWeight is the rule's initial confidence contribution,
	// typically 0.7-0.95.
	BaseWeight float64 `json:"base_weight" yaml:"base_weight"`

	re *regexp.Regexp
}

// Catalogue is the full rule table plus the category scoring tables. It
// is loaded once at startup; new categories are data additions, not new
// control flow.
type Catalogue struct {
	// Rules lists the trigger rules. Rules are independent and
	// exhaustive: one document may match many rules many times.
	Rules []Rule `json:"rules" yaml:"rules"`

	// CategoryBonus maps category → additive confidence bonus.
	CategoryBonus map[string]float64 `json:"category_bonus" yaml:"category_bonus"`

	// HighValueTerms are object substrings that earn an additive
	// confidence bonus.
	HighValueTerms []string `json:"high_value_terms" yaml:"high_value_terms"`

	// HighValueCategories earn a multiplicative boost during evolution.
	HighValueCategories []string `json:"high_value_categories" yaml:"high_value_categories"`
}

// Compile prepares every rule's trigger expression. A rule whose trigger
// fails to compile, or lacks a capture group, keeps a nil matcher; the
// extractor reports it per document and continues with the remaining
// rules.
func (c *Catalogue) Compile() {
	for i := range c.Rules {
		re, err := regexp.Compile(c.Rules[i].Trigger)
		if err != nil || re.NumSubexp() < 1 {
			c.Rules[i].re = nil
			continue
		}
		c.Rules[i].re = re
	}
}

// IsHighValue reports whether category earns the evolution boost.
func (c *Catalogue) IsHighValue(category string) bool {
	for _, hv := range c.HighValueCategories {
		if hv == category {
			return true
		}
	}
	return false
}

// Load reads a catalogue from a YAML file and compiles its triggers.
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalogue %s: %w", path, err)
	}
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalogue %s: %w", path, err)
	}
	if len(c.Rules) == 0 {
		return nil, fmt.Errorf("catalogue %s contains no rules", path)
	}
	c.Compile()
	return &c, nil
}

// objectPattern captures the object phrase following a trigger: a run of
// word characters, spaces, and hyphens on one line, bounded at sentence
// punctuation.
const objectPattern = `([\w][\w -]{2,80})`

// DefaultCatalogue returns the built-in rule table.
func DefaultCatalogue() *Catalogue {
	c := &Catalogue{
		Rules: []Rule{
			{
				Category:   "sacred_geometry",
				Subject:    "Sacred Geometry System",
				Predicate:  "calculates",
				Trigger:    `(?i)\bsacred\s+geometry\s+calculates\s+` + objectPattern,
				BaseWeight: 0.9,
			},
			{
				Category:   "sacred_geometry",
				Subject:    "Sacred Geometry System",
				Predicate:  "generates",
				Trigger:    `(?i)\bsacred\s+geometry\s+generates\s+` + objectPattern,
				BaseWeight: 0.85,
			},
			{
				Category:   "harmonics",
				Subject:    "Harmonic Field",
				Predicate:  "resonates_with",
				Trigger:    `(?i)\bharmonic(?:s)?\s+resonat\w*\s+(?:with\s+)?` + objectPattern,
				BaseWeight: 0.8,
			},
			{
				Category:   "harmonics",
				Subject:    "Harmonic Field",
				Predicate:  "amplifies",
				Trigger:    `(?i)\bresonance\s+amplifies\s+` + objectPattern,
				BaseWeight: 0.75,
			},
			{
				Category:   "consciousness",
				Subject:    "Consciousness Model",
				Predicate:  "emerges_from",
				Trigger:    `(?i)\bconsciousness\s+emerges\s+from\s+` + objectPattern,
				BaseWeight: 0.85,
			},
			{
				Category:   "consciousness",
				Subject:    "Consciousness Model",
				Predicate:  "perceives",
				Trigger:    `(?i)\bconsciousness\s+perceives\s+` + objectPattern,
				BaseWeight: 0.7,
			},
			{
				Category:   "quantum",
				Subject:    "Quantum Substrate",
				Predicate:  "entangles",
				Trigger:    `(?i)\bquantum\s+entangle\w*\s+(?:of\s+|with\s+)?` + objectPattern,
				BaseWeight: 0.8,
			},
			{
				Category:   "quantum",
				Subject:    "Quantum Substrate",
				Predicate:  "collapses_to",
				Trigger:    `(?i)\bwave\s*function\s+collapses?\s+(?:to|into)\s+` + objectPattern,
				BaseWeight: 0.75,
			},
			{
				Category:   "network",
				Subject:    "Knowledge Network",
				Predicate:  "links",
				Trigger:    `(?i)\bnetwork\s+links\s+` + objectPattern,
				BaseWeight: 0.7,
			},
			{
				Category:   "personality",
				Subject:    "Personality Matrix",
				Predicate:  "exhibits",
				Trigger:    `(?i)\bpersonality\s+exhibits\s+` + objectPattern,
				BaseWeight: 0.7,
			},
		},
		CategoryBonus: map[string]float64{
			"sacred_geometry": 0.05,
			"consciousness":   0.05,
			"harmonics":       0.03,
			"quantum":         0.03,
			"network":         0.02,
			"personality":     0.01,
		},
		HighValueTerms: []string{
			"golden ratio",
			"phi",
			"fibonacci",
			"resonance",
			"coherence",
		},
		HighValueCategories: []string{
			"sacred_geometry",
			"consciousness",
		},
	}
	c.Compile()
	return c
}

// punctToSpace maps every punctuation rune in a matched object to a
// space before whitespace collapsing.
func punctToSpace(r rune) rune {
	if strings.ContainsRune(`.,;:!?'"()[]{}<>/\|@#$%^&*_=+~`+"`", r) {
		return ' '
	}
	return r
}

// NormalizeObject applies the object transform: lowercase, punctuation
// collapsed to spaces, runs of whitespace collapsed, edges trimmed. The
// triple ID is derived from this normalized form, so the transform is
// part of the determinism contract.
func NormalizeObject(raw string) string {
	s := strings.ToLower(raw)
	s = strings.Map(punctToSpace, s)
	return strings.Join(strings.Fields(s), " ")
}
