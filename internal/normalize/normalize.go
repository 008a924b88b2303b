// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts raw document handles into plain-text
// documents ready for pattern extraction. Structured documents are
// decoded strictly; on decode failure the raw bytes are kept and the
// document is downgraded to text kind rather than dropped.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// DefaultMinSizeBytes is the minimum raw size a document must have to be
// processed.
const DefaultMinSizeBytes = 16

// Result pairs a normalized document with any diagnostic raised while
// producing it.
type Result struct {
	// Document is the normalized output. Valid only when Skipped is false.
	Document types.Document

	// Skipped reports whether the document was excluded from the run.
	Skipped bool

	// Diagnostic is non-nil when normalization downgraded or skipped the
	// document.
	Diagnostic *types.Diagnostic
}

// Normalize converts one document handle into a Document. Documents under
// minSize bytes, or whose bytes are not valid text, are skipped with a
// recorded reason; a structured document that fails strict decoding falls
// back to text kind. Neither condition is an error: the batch continues.
func Normalize(h types.DocumentHandle, minSize int64) Result {
	if minSize <= 0 {
		minSize = DefaultMinSizeBytes
	}

	size := int64(len(h.Body))
	if size < minSize {
		return skipped(h, fmt.Sprintf("size %d below minimum %d", size, minSize))
	}
	if !utf8.Valid(h.Body) {
		return skipped(h, "content is not valid UTF-8")
	}

	doc := types.Document{
		OriginID:   h.OriginID,
		Kind:       h.Kind,
		Body:       string(h.Body),
		SizeBytes:  size,
		ModifiedAt: h.ModifiedAt,
	}
	if doc.Kind == "" {
		doc.Kind = types.KindUnknown
	}

	var diag *types.Diagnostic
	if doc.Kind == types.KindStructured {
		if flat, err := decodeStructured(h.Body); err != nil {
			doc.Kind = types.KindText
			diag = &types.Diagnostic{
				Kind:     types.DiagDecodeFallback,
				OriginID: h.OriginID,
				Detail:   fmt.Sprintf("strict decode failed, treating as text: %v", err),
			}
		} else {
			doc.Body = flat
		}
	}

	return Result{Document: doc, Diagnostic: diag}
}

// All normalizes a batch of handles, partitioning into documents and
// diagnostics. A skipped or downgraded document never aborts the batch.
func All(handles []types.DocumentHandle, minSize int64) ([]types.Document, []types.Diagnostic) {
	var docs []types.Document
	var diags []types.Diagnostic
	for _, h := range handles {
		res := Normalize(h, minSize)
		if res.Diagnostic != nil {
			diags = append(diags, *res.Diagnostic)
		}
		if !res.Skipped {
			docs = append(docs, res.Document)
		}
	}
	return docs, diags
}

func skipped(h types.DocumentHandle, reason string) Result {
	return Result{
		Skipped: true,
		Diagnostic: &types.Diagnostic{
			Kind:     types.DiagSkippedDocument,
			OriginID: h.OriginID,
			Detail:   reason,
		},
	}
}

// decodeStructured attempts a strict decode of structured content, first
// as JSON and then as YAML, and flattens the decoded value into text so
// downstream lexical rules still fire on field values.
func decodeStructured(raw []byte) (string, error) {
	var v any

	jdec := json.NewDecoder(bytes.NewReader(raw))
	jdec.DisallowUnknownFields()
	if err := jdec.Decode(&v); err == nil {
		return flatten(v), nil
	}

	ydec := yaml.NewDecoder(bytes.NewReader(raw))
	ydec.KnownFields(true)
	if err := ydec.Decode(&v); err != nil {
		return "", fmt.Errorf("neither JSON nor YAML: %w", err)
	}
	return flatten(v), nil
}

// flatten renders a decoded structure as line-oriented text. Map keys and
// scalar values each land on their own line; nesting order follows the
// decoder's iteration order, which is irrelevant to rule matching.
func flatten(v any) string {
	var buf bytes.Buffer
	writeValue(&buf, v)
	return buf.String()
}

func writeValue(buf *bytes.Buffer, v any) {
	switch val := v.(type) {
	case map[string]any:
		for k, inner := range val {
			buf.WriteString(k)
			buf.WriteByte(' ')
			writeValue(buf, inner)
		}
	case []any:
		for _, inner := range val {
			writeValue(buf, inner)
		}
	case string:
		buf.WriteString(val)
		buf.WriteByte('\n')
	case nil:
	default:
		fmt.Fprintf(buf, "%v\n", val)
	}
}
