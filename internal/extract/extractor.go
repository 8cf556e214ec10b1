package extract

import (
	"github.com/rentfolio/billscan/internal/model"
)

// ExtractField runs the full locate → navigate → normalize pipeline for one
// field pattern against the document text. ok is false when the label is
// absent, the target line is out of bounds, or the target line is blank —
// all of which are ordinary "no value" outcomes, never errors.
func ExtractField(text string, fp model.FieldPattern) (string, bool) {
	loc := Locate(text, fp.LabelText)
	if !loc.Found {
		return "", false
	}
	line, ok := TargetLine(SplitLines(text), loc.LineIndex, fp.LabelText, fp.LineOffset, fp.Size)
	if !ok {
		return "", false
	}
	return Normalize(fp.FieldName, line), true
}

// Extract runs every field pattern of p against the document text and
// returns the canonical values keyed by field name. Fields that produced
// no value are absent from the map; a document matching none of the labels
// yields an empty map, which is a valid outcome.
func Extract(text string, p model.ExtractionPattern) map[model.FieldName]string {
	values := make(map[model.FieldName]string, len(p.FieldPatterns))
	for _, fp := range p.FieldPatterns {
		if v, ok := ExtractField(text, fp); ok {
			values[fp.FieldName] = v
		}
	}
	return values
}
