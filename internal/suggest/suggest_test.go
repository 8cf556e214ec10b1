package suggest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfolio/billscan/internal/model"
	"github.com/rentfolio/billscan/pkg/anthropic"
)

const sampleBill = "ENEL ENERGIE S.A.\n" +
	"Factura fiscala\n" +
	"Seria ENG nr. A123456\n" +
	"Total de plata: 45.670 LEI\n" +
	"Data scadenta\n" +
	"15 martie 2024\n" +
	"IBAN RO49AAAA1B31007593840000 Banca Transilvania"

// fakeClient returns a canned response and records the last request.
type fakeClient struct {
	response string
	err      error
	lastReq  anthropic.MessageRequest
}

func (f *fakeClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.response}},
	}, nil
}

func TestSuggestPattern_VerifiedFields(t *testing.T) {
	fake := &fakeClient{response: `[
		{"field_name": "amount", "label_text": "Total de plata", "line_offset": 0},
		{"field_name": "due_date", "label_text": "Data scadenta", "line_offset": 1},
		{"field_name": "iban", "label_text": "No such label", "line_offset": 0}
	]`}
	s := NewSuggester(fake, "claude-sonnet-4-5-20250929")

	in, err := s.SuggestPattern(context.Background(), sampleBill, "Enel", model.BillUtilities, "Enel Energie")
	require.NoError(t, err)
	require.Len(t, in.FieldPatterns, 2)
	assert.Equal(t, model.FieldAmount, in.FieldPatterns[0].FieldName)
	assert.Equal(t, model.FieldDueDate, in.FieldPatterns[1].FieldName)
	assert.Equal(t, "Enel", in.Name)
	assert.Equal(t, model.BillUtilities, in.BillType)

	assert.Contains(t, fake.lastReq.Messages[0].Content, "Total de plata")
	assert.Contains(t, fake.lastReq.Messages[0].Content, "amount, currency")
}

func TestSuggestPattern_CodeFencedResponse(t *testing.T) {
	fake := &fakeClient{response: "```json\n" +
		`[{"field_name": "amount", "label_text": "Total de plata", "line_offset": 0}]` +
		"\n```"}
	s := NewSuggester(fake, "claude-sonnet-4-5-20250929")

	in, err := s.SuggestPattern(context.Background(), sampleBill, "Enel", model.BillUtilities, "")
	require.NoError(t, err)
	require.Len(t, in.FieldPatterns, 1)
}

func TestSuggestPattern_DropsUnknownAndDuplicateFields(t *testing.T) {
	fake := &fakeClient{response: `[
		{"field_name": "amount", "label_text": "Total de plata", "line_offset": 0},
		{"field_name": "amount", "label_text": "Total de plata", "line_offset": 0},
		{"field_name": "vat_code", "label_text": "Total de plata", "line_offset": 0}
	]`}
	s := NewSuggester(fake, "claude-sonnet-4-5-20250929")

	in, err := s.SuggestPattern(context.Background(), sampleBill, "Enel", model.BillUtilities, "")
	require.NoError(t, err)
	assert.Len(t, in.FieldPatterns, 1)
}

func TestSuggestPattern_NothingUsable(t *testing.T) {
	fake := &fakeClient{response: `[{"field_name": "iban", "label_text": "missing", "line_offset": 0}]`}
	s := NewSuggester(fake, "claude-sonnet-4-5-20250929")

	_, err := s.SuggestPattern(context.Background(), sampleBill, "Enel", model.BillUtilities, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable field patterns")
}

func TestSuggestPattern_EmptyText(t *testing.T) {
	s := NewSuggester(&fakeClient{}, "claude-sonnet-4-5-20250929")

	_, err := s.SuggestPattern(context.Background(), "   ", "Enel", model.BillUtilities, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample text is empty")
}

func TestSuggestPattern_BadJSON(t *testing.T) {
	fake := &fakeClient{response: "Here are the rules you asked for."}
	s := NewSuggester(fake, "claude-sonnet-4-5-20250929")

	_, err := s.SuggestPattern(context.Background(), sampleBill, "Enel", model.BillUtilities, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse model response")
}
