// Package extract implements the pattern-based bill field extractor: it
// locates user-configured label text in a document, navigates to a target
// line by a relative offset, and normalizes the raw line into a canonical
// field value. Everything here is pure string work over an in-memory
// document; callers own all I/O.
package extract

import "strings"

// Location is the position of a label's first occurrence in a document.
type Location struct {
	Found     bool
	CharIndex int
	LineIndex int
}

// Locate finds the first occurrence of label in text using a literal,
// case-sensitive substring search. LineIndex is the zero-based line the
// match starts on. An empty or absent label yields Found == false; callers
// treat that as "no extractable value", never as an error.
func Locate(text, label string) Location {
	if label == "" {
		return Location{}
	}
	idx := strings.Index(text, label)
	if idx < 0 {
		return Location{}
	}
	return Location{
		Found:     true,
		CharIndex: idx,
		LineIndex: strings.Count(text[:idx], "\n"),
	}
}

// SplitLines splits document text into lines. Order-preserving; no trimming.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}
