package model

// MatchResult scores one stored pattern against one document's text.
// Confidence is matched fields over total fields.
type MatchResult struct {
	PatternID     string  `json:"pattern_id"`
	PatternName   string  `json:"pattern_name"`
	Confidence    float64 `json:"confidence"`
	MatchedFields int     `json:"matched_fields"`
	TotalFields   int     `json:"total_fields"`
}

// ExtractionResult holds the canonical values produced by running a pattern
// against a document, keyed by field name. Fields whose labels were not
// found are absent.
type ExtractionResult struct {
	PatternID     string               `json:"pattern_id"`
	ExtractedData map[FieldName]string `json:"extracted_data"`
}
