package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/knowledge-engine/pkg/types"
)

func handle(origin string, kind types.DocumentKind, body string) types.DocumentHandle {
	return types.DocumentHandle{
		OriginID:   origin,
		Kind:       kind,
		Body:       []byte(body),
		ModifiedAt: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		handle     types.DocumentHandle
		minSize    int64
		wantSkip   bool
		wantKind   types.DocumentKind
		wantDiag   types.DiagnosticKind
		bodyHas    string
	}{
		{
			name:     "plain text passes through",
			handle:   handle("a.txt", types.KindText, "sacred geometry calculates golden ratio"),
			wantKind: types.KindText,
			bodyHas:  "golden ratio",
		},
		{
			name:     "valid structured JSON is flattened",
			handle:   handle("a.json", types.KindStructured, `{"note": "harmonic resonance amplifies frequency"}`),
			wantKind: types.KindStructured,
			bodyHas:  "harmonic resonance amplifies frequency",
		},
		{
			name:     "invalid structured falls back to text",
			handle:   handle("b.json", types.KindStructured, "{not valid json or yaml: [unclosed"),
			wantKind: types.KindText,
			wantDiag: types.DiagDecodeFallback,
			bodyHas:  "{not valid json",
		},
		{
			name:     "under minimum size is skipped",
			handle:   handle("tiny.txt", types.KindText, "hi"),
			wantSkip: true,
			wantDiag: types.DiagSkippedDocument,
		},
		{
			name:     "invalid UTF-8 is skipped",
			handle:   types.DocumentHandle{OriginID: "bin", Kind: types.KindText, Body: []byte{0xff, 0xfe, 0x00, 0x01, 0xff, 0xfe, 0x00, 0x01, 0xff, 0xfe, 0x00, 0x01, 0xff, 0xfe, 0x00, 0x01}},
			wantSkip: true,
			wantDiag: types.DiagSkippedDocument,
		},
		{
			name:     "empty kind becomes unknown",
			handle:   handle("x.dat", "", "some content long enough to pass"),
			wantKind: types.KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(tt.handle, tt.minSize)

			if res.Skipped != tt.wantSkip {
				t.Fatalf("Skipped = %v, want %v (diag: %+v)", res.Skipped, tt.wantSkip, res.Diagnostic)
			}
			if tt.wantDiag != "" {
				if res.Diagnostic == nil {
					t.Fatal("expected a diagnostic, got none")
				}
				if res.Diagnostic.Kind != tt.wantDiag {
					t.Errorf("diagnostic kind = %q, want %q", res.Diagnostic.Kind, tt.wantDiag)
				}
				if res.Diagnostic.OriginID != tt.handle.OriginID {
					t.Errorf("diagnostic origin = %q, want %q", res.Diagnostic.OriginID, tt.handle.OriginID)
				}
			} else if res.Diagnostic != nil {
				t.Errorf("unexpected diagnostic: %+v", res.Diagnostic)
			}
			if tt.wantSkip {
				return
			}

			if res.Document.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", res.Document.Kind, tt.wantKind)
			}
			if res.Document.OriginID != tt.handle.OriginID {
				t.Errorf("origin = %q, want %q", res.Document.OriginID, tt.handle.OriginID)
			}
			if res.Document.SizeBytes != int64(len(tt.handle.Body)) {
				t.Errorf("size = %d, want %d", res.Document.SizeBytes, len(tt.handle.Body))
			}
			if tt.bodyHas != "" && !strings.Contains(res.Document.Body, tt.bodyHas) {
				t.Errorf("body %q does not contain %q", res.Document.Body, tt.bodyHas)
			}
		})
	}
}

func TestNormalizeStructuredYAML(t *testing.T) {
	h := handle("c.yaml", types.KindStructured, "topic: consciousness emerges from quantum fields\nlevel: 3\n")
	res := Normalize(h, 0)

	if res.Skipped {
		t.Fatalf("unexpected skip: %+v", res.Diagnostic)
	}
	if res.Document.Kind != types.KindStructured {
		t.Fatalf("kind = %q, want structured", res.Document.Kind)
	}
	if !strings.Contains(res.Document.Body, "consciousness emerges from quantum fields") {
		t.Errorf("flattened body missing scalar value: %q", res.Document.Body)
	}
}

func TestAllAccumulatesDiagnostics(t *testing.T) {
	handles := []types.DocumentHandle{
		handle("good.txt", types.KindText, "sacred geometry calculates golden ratio"),
		handle("tiny.txt", types.KindText, "x"),
		handle("bad.json", types.KindStructured, "{not structured at all: [unclosed"),
	}

	docs, diags := All(handles, 0)

	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if len(diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(diags))
	}

	kinds := map[types.DiagnosticKind]int{}
	for _, d := range diags {
		kinds[d.Kind]++
	}
	if kinds[types.DiagSkippedDocument] != 1 || kinds[types.DiagDecodeFallback] != 1 {
		t.Errorf("diagnostic kinds = %v, want one skip and one fallback", kinds)
	}
}
