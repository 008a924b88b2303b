// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// Candidate is one rule match before fitness annotation.
type Candidate struct {
	Rule   Rule
	Object string
}

// Match applies every compiled rule in the catalogue to the document
// body. Rules are independent: overlapping matches from different
// categories over the same literal span are all kept (dedup happens at
// merge time, not here). Output carries no ordering guarantee.
func Match(doc types.Document, cat *Catalogue) ([]Candidate, []types.Diagnostic) {
	var candidates []Candidate
	var diags []types.Diagnostic

	for _, rule := range cat.Rules {
		if rule.re == nil {
			diags = append(diags, types.Diagnostic{
				Kind:     types.DiagMalformedRule,
				OriginID: doc.OriginID,
				Detail:   fmt.Sprintf("rule %s/%s has an unusable trigger, skipped", rule.Category, rule.Predicate),
			})
			continue
		}

		for _, m := range rule.re.FindAllStringSubmatch(doc.Body, -1) {
			obj := NormalizeObject(m[1])
			if obj == "" {
				diags = append(diags, types.Diagnostic{
					Kind:     types.DiagMalformedRule,
					OriginID: doc.OriginID,
					Detail:   fmt.Sprintf("rule %s/%s matched an empty object, skipped", rule.Category, rule.Predicate),
				})
				continue
			}
			candidates = append(candidates, Candidate{Rule: rule, Object: obj})
		}
	}

	return candidates, diags
}

// structuredKindBonus rewards structured documents for their higher
// signal reliability.
const structuredKindBonus = 0.05

// highValueTermBonus rewards designated substrings in the object.
const highValueTermBonus = 0.05

// validatedBonusScale scales the validator's relevance into the additive
// confidence bonus for validated objects.
const validatedBonusScale = 0.1

// Annotate computes the initial confidence and survival fitness for one
// candidate. The computation is a pure function of the candidate, the
// source document kind, and the (possibly nil) validated-concept index;
// no cross-triple state is consulted.
func Annotate(c Candidate, kind types.DocumentKind, originID string, cat *Catalogue, validated ConceptIndex) types.Triple {
	confidence := c.Rule.BaseWeight
	confidence += cat.CategoryBonus[c.Rule.Category]

	for _, term := range cat.HighValueTerms {
		if term != "" && strings.Contains(c.Object, term) {
			confidence += highValueTermBonus
			break
		}
	}

	if kind == types.KindStructured {
		confidence += structuredKindBonus
	}

	webValidated := false
	if validated != nil {
		if vc, ok := validated[c.Object]; ok {
			webValidated = true
			confidence += validatedBonusScale * types.Clamp01(vc.Relevance)
		}
	}

	confidence = types.Clamp01(confidence)

	return types.Triple{
		ID:              TripleID(c.Rule.Subject, c.Rule.Predicate, c.Object),
		Subject:         c.Rule.Subject,
		Predicate:       c.Rule.Predicate,
		Object:          c.Object,
		Confidence:      confidence,
		Category:        c.Rule.Category,
		OriginID:        originID,
		ExtractedAt:     time.Now().UTC(),
		SurvivalFitness: confidence,
		Generation:      0,
		WebValidated:    webValidated,
	}
}

// Apply runs matching and annotation over one document, returning the
// document's triple candidates and any per-rule diagnostics.
func Apply(doc types.Document, cat *Catalogue, validated ConceptIndex) ([]types.Triple, []types.Diagnostic) {
	candidates, diags := Match(doc, cat)
	triples := make([]types.Triple, 0, len(candidates))
	for _, c := range candidates {
		triples = append(triples, Annotate(c, doc.Kind, doc.OriginID, cat, validated))
	}
	return triples, diags
}

// TripleID derives the deterministic triple identifier: the first 12 hex
// characters of SHA-256 over the NUL-separated normalized
// (subject, predicate, object). Identical normalized content anywhere in
// the corpus yields the same ID, which is what makes duplication
// detectable at merge time.
func TripleID(subject, predicate, object string) string {
	h := sha256.New()
	h.Write([]byte(subject))
	h.Write([]byte{0})
	h.Write([]byte(predicate))
	h.Write([]byte{0})
	h.Write([]byte(object))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}
