// Package suggest drafts extraction patterns from a sample bill using the
// Anthropic API. Suggested field patterns are verified against the sample
// text before they are returned, so the caller only sees rules that
// actually extract something.
package suggest

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rentfolio/billscan/internal/extract"
	"github.com/rentfolio/billscan/internal/model"
	"github.com/rentfolio/billscan/pkg/anthropic"
)

const systemPrompt = `You are helping configure a rule-based bill data extractor.
The extractor finds a literal label in the bill text, moves a number of lines
up or down, and reads the value from that line.

Given a bill's plain text, propose extraction rules as a JSON array. Each
element has:
  "field_name":  one of the known field names
  "label_text":  an exact, case-sensitive substring that appears in the text
                 near the value
  "line_offset": lines to move from the label's line (0 = same line,
                 positive = down, negative = up)
  "size":        optional, max characters of the value (omit if unbounded)

Prefer labels that are unique in the document. Respond with the JSON array
only, no prose.`

// Suggester proposes extraction patterns for sample bills.
type Suggester struct {
	client anthropic.Client
	model  string
}

// NewSuggester creates a Suggester using the given Anthropic client and model.
func NewSuggester(client anthropic.Client, modelID string) *Suggester {
	return &Suggester{client: client, model: modelID}
}

// SuggestPattern asks the model for field patterns covering the sample text
// and returns a validated PatternInput. Field patterns that do not extract
// a value from the sample are dropped.
func (s *Suggester) SuggestPattern(ctx context.Context, text, name string, billType model.BillType, supplier string) (*model.PatternInput, error) {
	if strings.TrimSpace(text) == "" {
		return nil, eris.New("suggest: sample text is empty")
	}

	fieldList := make([]string, len(model.FieldNames))
	for i, f := range model.FieldNames {
		fieldList[i] = string(f)
	}

	userPrompt := "Known field names: " + strings.Join(fieldList, ", ") +
		"\n\nBill text:\n" + text

	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: 2048,
		System:    systemPrompt,
		Messages:  []anthropic.Message{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "suggest: create message")
	}
	resp.Usage.LogUsage(s.model, "suggest_pattern")

	fields, err := parseFieldPatterns(resp.Text())
	if err != nil {
		return nil, err
	}

	verified := make([]model.FieldPattern, 0, len(fields))
	seen := make(map[model.FieldName]bool, len(fields))
	for _, fp := range fields {
		if seen[fp.FieldName] {
			continue
		}
		if !fp.FieldName.Valid() {
			zap.L().Debug("dropping suggestion with unknown field",
				zap.String("field_name", string(fp.FieldName)))
			continue
		}
		if _, ok := extract.ExtractField(text, fp); !ok {
			zap.L().Debug("dropping suggestion that extracts nothing",
				zap.String("field_name", string(fp.FieldName)),
				zap.String("label_text", fp.LabelText))
			continue
		}
		seen[fp.FieldName] = true
		verified = append(verified, fp)
	}
	if len(verified) == 0 {
		return nil, eris.New("suggest: no usable field patterns in model response")
	}

	in := &model.PatternInput{
		Name:          name,
		BillType:      billType,
		Supplier:      supplier,
		FieldPatterns: verified,
	}
	if err := in.Validate(); err != nil {
		return nil, eris.Wrap(err, "suggest: validate pattern")
	}
	return in, nil
}

// parseFieldPatterns decodes the model's JSON array, tolerating markdown
// code fences around it.
func parseFieldPatterns(raw string) ([]model.FieldPattern, error) {
	raw = strings.TrimSpace(raw)
	if after, ok := strings.CutPrefix(raw, "```json"); ok {
		raw = after
	} else if after, ok := strings.CutPrefix(raw, "```"); ok {
		raw = after
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	raw = strings.TrimSpace(raw)

	var fields []model.FieldPattern
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, eris.Wrap(err, "suggest: parse model response")
	}
	return fields, nil
}
