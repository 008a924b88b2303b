package harmonic

import (
	"testing"

	"github.com/pdiddy/knowledge-engine/internal/graph"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

func triple(id, subject, object string, fitness float64) types.Triple {
	return types.Triple{
		ID:              id,
		Subject:         subject,
		Predicate:       "relates_to",
		Object:          object,
		SurvivalFitness: fitness,
		OriginID:        "doc-a",
	}
}

func TestCoherence(t *testing.T) {
	tests := []struct {
		meanFitness float64
		want        float64
	}{
		{0, 0},
		{0.5, 0.809},
		{0.7, 1.0}, // 1.1326 clamped
		{1.0, 1.0},
	}
	for _, tt := range tests {
		got := Coherence(tt.meanFitness)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Coherence(%v) = %v, want %v", tt.meanFitness, got, tt.want)
		}
	}
}

func TestCoherenceMonotonic(t *testing.T) {
	prev := -1.0
	for f := 0.0; f <= 1.0; f += 0.05 {
		c := Coherence(f)
		if c < prev {
			t.Fatalf("Coherence(%v) = %v decreased from %v", f, c, prev)
		}
		if c < 0 || c > 1 {
			t.Fatalf("Coherence(%v) = %v out of [0,1]", f, c)
		}
		prev = c
	}
}

func TestSignatures(t *testing.T) {
	corpus := types.NewCorpus([]types.Triple{
		triple("t1", "Geometry", "circle", 0.8),
		triple("t2", "Geometry", "square", 0.6),
		triple("t3", "Harmonics", "octave", 0.4),
	})
	g := graph.Build(corpus)

	sigs := Signatures(corpus, g)

	if len(sigs) != 3 {
		t.Fatalf("got %d signatures, want 3 (corpus + 2 clusters)", len(sigs))
	}

	all := sigs[0]
	if all.Concept != CorpusConcept {
		t.Fatalf("first signature concept = %q, want %q", all.Concept, CorpusConcept)
	}
	if all.Members != 3 {
		t.Errorf("corpus members = %d, want 3", all.Members)
	}
	if got, want := all.MeanFitness, (0.8+0.6+0.4)/3; !almost(got, want) {
		t.Errorf("corpus mean fitness = %v, want %v", got, want)
	}
	// t1 and t2 connect to each other; t3 is isolated.
	if got, want := all.MeanConnections, 2.0/3.0; !almost(got, want) {
		t.Errorf("corpus mean connections = %v, want %v", got, want)
	}

	geo := sigs[1]
	if geo.Concept != "Geometry" {
		t.Fatalf("signature order: got %q, want Geometry", geo.Concept)
	}
	if got, want := geo.MeanFitness, 0.7; !almost(got, want) {
		t.Errorf("Geometry mean fitness = %v, want %v", got, want)
	}
	if got, want := geo.MeanConnections, 1.0; !almost(got, want) {
		t.Errorf("Geometry mean connections = %v, want %v", got, want)
	}
	if got, want := geo.Coherence, Coherence(0.7); got != want {
		t.Errorf("Geometry coherence = %v, want %v", got, want)
	}
}

func TestSignaturesEmptyCorpus(t *testing.T) {
	corpus := types.Corpus{}
	sigs := Signatures(corpus, graph.Build(corpus))

	if len(sigs) != 1 {
		t.Fatalf("got %d signatures, want the corpus-wide one only", len(sigs))
	}
	if sigs[0].Members != 0 || sigs[0].MeanFitness != 0 || sigs[0].Coherence != 0 {
		t.Errorf("empty corpus signature not zero-valued: %+v", sigs[0])
	}
}

// Signatures must not mutate the corpus.
func TestSignaturesReadOnly(t *testing.T) {
	corpus := types.NewCorpus([]types.Triple{
		triple("t1", "Geometry", "circle", 0.8),
	})
	g := graph.Build(corpus)
	before := corpus["t1"]

	Signatures(corpus, g)

	if corpus["t1"] != before {
		t.Errorf("corpus mutated by aggregation: %+v → %+v", before, corpus["t1"])
	}
}

func almost(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
