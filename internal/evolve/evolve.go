// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evolve applies the generational survival rule to a triple
// corpus: connection-count based fitness scaling followed by removal of
// triples under the survival threshold.
package evolve

import (
	"fmt"

	"github.com/pdiddy/knowledge-engine/internal/extract"
	"github.com/pdiddy/knowledge-engine/internal/graph"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// Profile fixes the survival rule parameters. The source material drifted
// between several band/multiplier variants; this is the one canonical set
// used here, with the others treated as historical.
type Profile struct {
	// OptimalMin and OptimalMax bound the optimal connection band,
	// inclusive. Below OptimalMin is isolation; above OptimalMax is
	// overcrowding.
	OptimalMin int `json:"optimal_min" yaml:"optimal_min"`
	OptimalMax int `json:"optimal_max" yaml:"optimal_max"`

	// IsolationPenalty, OptimalBonus, and OvercrowdPenalty are the base
	// fitness multipliers for the three regimes.
	IsolationPenalty float64 `json:"isolation_penalty" yaml:"isolation_penalty"`
	OptimalBonus     float64 `json:"optimal_bonus" yaml:"optimal_bonus"`
	OvercrowdPenalty float64 `json:"overcrowd_penalty" yaml:"overcrowd_penalty"`

	// HighValueBoost is composed multiplicatively for triples whose
	// category the catalogue flags as high value.
	HighValueBoost float64 `json:"high_value_boost" yaml:"high_value_boost"`

	// SurvivalThreshold is the minimum fitness to remain in the corpus
	// after a pass.
	SurvivalThreshold float64 `json:"survival_threshold" yaml:"survival_threshold"`
}

// DefaultProfile is the canonical parameter set: isolation below 2
// connections, optimal band 2..4, overcrowding above 4.
func DefaultProfile() Profile {
	return Profile{
		OptimalMin:        2,
		OptimalMax:        4,
		IsolationPenalty:  0.6,
		OptimalBonus:      1.3,
		OvercrowdPenalty:  0.75,
		HighValueBoost:    1.1,
		SurvivalThreshold: 0.3,
	}
}

// FromConfig builds a profile from configuration, falling back to the
// default for any unset field.
func FromConfig(cfg types.EvolutionConfig) Profile {
	p := DefaultProfile()
	if cfg.OptimalMin > 0 {
		p.OptimalMin = cfg.OptimalMin
	}
	if cfg.OptimalMax > 0 {
		p.OptimalMax = cfg.OptimalMax
	}
	if cfg.IsolationPenalty > 0 {
		p.IsolationPenalty = cfg.IsolationPenalty
	}
	if cfg.OptimalBonus > 0 {
		p.OptimalBonus = cfg.OptimalBonus
	}
	if cfg.OvercrowdPenalty > 0 {
		p.OvercrowdPenalty = cfg.OvercrowdPenalty
	}
	if cfg.SurvivalThreshold > 0 {
		p.SurvivalThreshold = cfg.SurvivalThreshold
	}
	return p
}

// Multiplier returns the base fitness multiplier for a connection count.
func (p Profile) Multiplier(connections int) float64 {
	switch {
	case connections < p.OptimalMin:
		return p.IsolationPenalty
	case connections <= p.OptimalMax:
		return p.OptimalBonus
	default:
		return p.OvercrowdPenalty
	}
}

// Result is the outcome of one or more generations.
type Result struct {
	// Corpus is the surviving triple set.
	Corpus types.Corpus

	// Removed counts triples dropped across all passes.
	Removed int

	// Diagnostics carries corpus_empty warnings, if any.
	Diagnostics []types.Diagnostic
}

// Generation applies exactly one evolutionary pass. Connection counts for
// every triple are computed against a single graph snapshot of the
// pre-pass corpus before any fitness is rescaled, so one triple's removal
// never affects another's count within the same pass. The input corpus is
// not mutated; survivors land in a fresh corpus with generation
// incremented by one.
func Generation(corpus types.Corpus, cat *extract.Catalogue, p Profile) Result {
	snapshot := graph.Build(corpus)

	next := make(types.Corpus, len(corpus))
	removed := 0
	for id, t := range corpus {
		m := p.Multiplier(snapshot.ConnectionCount(id))
		if cat != nil && cat.IsHighValue(t.Category) {
			m *= p.HighValueBoost
		}

		t.SurvivalFitness = types.Clamp01(t.SurvivalFitness * m)
		if t.SurvivalFitness < p.SurvivalThreshold {
			removed++
			continue
		}
		t.Generation++
		next[id] = t
	}

	res := Result{Corpus: next, Removed: removed}
	if len(corpus) > 0 && len(next) == 0 {
		res.Diagnostics = append(res.Diagnostics, types.Diagnostic{
			Kind:   types.DiagCorpusEmpty,
			Detail: fmt.Sprintf("no survivors above threshold %.2f (removed %d)", p.SurvivalThreshold, removed),
		})
	}
	return res
}

// Run applies n generations, threading each pass's survivors into the
// next. n below 1 is treated as 1.
func Run(corpus types.Corpus, cat *extract.Catalogue, p Profile, n int) Result {
	if n < 1 {
		n = 1
	}

	out := Result{Corpus: corpus}
	for i := 0; i < n; i++ {
		step := Generation(out.Corpus, cat, p)
		out.Corpus = step.Corpus
		out.Removed += step.Removed
		out.Diagnostics = append(out.Diagnostics, step.Diagnostics...)
		if len(out.Corpus) == 0 {
			break
		}
	}
	return out
}
