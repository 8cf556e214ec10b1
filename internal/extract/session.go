package extract

import (
	"github.com/rentfolio/billscan/internal/model"
)

// Session is the ephemeral authoring state while a user builds an
// extraction pattern against a sample document. Sessions are values:
// every mutation returns a new Session and never touches shared state,
// which keeps preview recomputation reentrant and trivially cancelable.
type Session struct {
	Text     string
	Selected model.FieldName

	fields map[model.FieldName]model.FieldPattern
}

// NewSession starts an authoring session over the given document text.
func NewSession(text string) Session {
	return Session{Text: text}
}

// WithSelected returns a session with the given field selected for editing.
func (s Session) WithSelected(name model.FieldName) Session {
	s.Selected = name
	return s
}

// WithFieldPattern returns a session with fp set, replacing any existing
// rule for the same field. At most one rule per field survives.
func (s Session) WithFieldPattern(fp model.FieldPattern) Session {
	s.fields = cloneFields(s.fields)
	s.fields[fp.FieldName] = fp
	return s
}

// WithOffset returns a session with the named field's line offset replaced.
// Unknown fields are left untouched.
func (s Session) WithOffset(name model.FieldName, offset int) Session {
	fp, ok := s.fields[name]
	if !ok {
		return s
	}
	fp.LineOffset = offset
	s.fields = cloneFields(s.fields)
	s.fields[name] = fp
	return s
}

// WithSize returns a session with the named field's truncation size
// replaced. A size of zero disables truncation.
func (s Session) WithSize(name model.FieldName, size int) Session {
	fp, ok := s.fields[name]
	if !ok {
		return s
	}
	fp.Size = size
	s.fields = cloneFields(s.fields)
	s.fields[name] = fp
	return s
}

// WithoutField returns a session with the named field's rule removed.
func (s Session) WithoutField(name model.FieldName) Session {
	if _, ok := s.fields[name]; !ok {
		return s
	}
	s.fields = cloneFields(s.fields)
	delete(s.fields, name)
	return s
}

// FieldPattern returns the working rule for the named field.
func (s Session) FieldPattern(name model.FieldName) (model.FieldPattern, bool) {
	fp, ok := s.fields[name]
	return fp, ok
}

// FieldPatterns lists the working rules in the canonical field order.
func (s Session) FieldPatterns() []model.FieldPattern {
	out := make([]model.FieldPattern, 0, len(s.fields))
	for _, name := range model.FieldNames {
		if fp, ok := s.fields[name]; ok {
			out = append(out, fp)
		}
	}
	return out
}

// TargetLine returns the raw (pre-normalization) line the named field's
// rule currently points at, for highlighting in the authoring UI.
func (s Session) TargetLine(name model.FieldName) (string, bool) {
	fp, ok := s.fields[name]
	if !ok {
		return "", false
	}
	loc := Locate(s.Text, fp.LabelText)
	if !loc.Found {
		return "", false
	}
	return TargetLine(SplitLines(s.Text), loc.LineIndex, fp.LabelText, fp.LineOffset, fp.Size)
}

// Preview runs the full pipeline for every working rule, exactly as the
// server will once the pattern is saved.
func (s Session) Preview() map[model.FieldName]string {
	values := make(map[model.FieldName]string, len(s.fields))
	for name, fp := range s.fields {
		if v, ok := ExtractField(s.Text, fp); ok {
			values[name] = v
		}
	}
	return values
}

// Input assembles the persistence payload from the working rules.
func (s Session) Input(name string, billType model.BillType, supplier string) model.PatternInput {
	return model.PatternInput{
		Name:          name,
		BillType:      billType,
		Supplier:      supplier,
		FieldPatterns: s.FieldPatterns(),
	}
}

func cloneFields(in map[model.FieldName]model.FieldPattern) map[model.FieldName]model.FieldPattern {
	out := make(map[model.FieldName]model.FieldPattern, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
