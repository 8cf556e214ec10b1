package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rentfolio/billscan/internal/model"
)

func enelPattern() model.ExtractionPattern {
	return model.ExtractionPattern{
		ID:       "p-enel",
		Name:     "Enel electricity",
		BillType: model.BillUtilities,
		Supplier: "Enel",
		FieldPatterns: []model.FieldPattern{
			{FieldName: model.FieldAmount, LabelText: "Total de plata", LineOffset: 0},
			{FieldName: model.FieldCurrency, LabelText: "Total de plata", LineOffset: 0},
			{FieldName: model.FieldBillNumber, LabelText: "Factura fiscala", LineOffset: 1},
			{FieldName: model.FieldDueDate, LabelText: "Data scadenta", LineOffset: 1},
			{FieldName: model.FieldIBAN, LabelText: "IBAN", LineOffset: 0},
			{FieldName: model.FieldLegalName, LabelText: "ENEL", LineOffset: 0},
		},
	}
}

func TestExtractField_Amount(t *testing.T) {
	got, ok := ExtractField(sampleBill, model.FieldPattern{
		FieldName: model.FieldAmount, LabelText: "Total de plata", LineOffset: 0,
	})
	assert.True(t, ok)
	assert.Equal(t, "456.70", got)
}

func TestExtractField_DueDateOnNextLine(t *testing.T) {
	got, ok := ExtractField(sampleBill, model.FieldPattern{
		FieldName: model.FieldDueDate, LabelText: "Data scadenta", LineOffset: 1,
	})
	assert.True(t, ok)
	assert.Equal(t, "15/03/2024", got)
}

func TestExtractField_IBANDropsBankName(t *testing.T) {
	got, ok := ExtractField(sampleBill, model.FieldPattern{
		FieldName: model.FieldIBAN, LabelText: "IBAN", LineOffset: 0,
	})
	assert.True(t, ok)
	assert.Equal(t, "RO49AAAA1B31007593840000", got)
}

func TestExtractField_LabelNotFound(t *testing.T) {
	_, ok := ExtractField(sampleBill, model.FieldPattern{
		FieldName: model.FieldAmount, LabelText: "Suma datorata", LineOffset: 0,
	})
	assert.False(t, ok)
}

func TestExtractField_OffsetPastLastLine(t *testing.T) {
	// Label on the final line with offset 1 is out of bounds, not an error.
	_, ok := ExtractField(sampleBill, model.FieldPattern{
		FieldName: model.FieldIBAN, LabelText: "Banca Transilvania", LineOffset: 1,
	})
	assert.False(t, ok)
}

func TestExtractField_SizeAppliesBeforeNormalization(t *testing.T) {
	got, ok := ExtractField("Ref: 123456789", model.FieldPattern{
		FieldName: model.FieldAmount, LabelText: "Ref", LineOffset: 0, Size: 5,
	})
	assert.True(t, ok)
	assert.Equal(t, "123.45", got)
}

func TestExtract_FullPattern(t *testing.T) {
	values := Extract(sampleBill, enelPattern())

	assert.Equal(t, "456.70", values[model.FieldAmount])
	assert.Equal(t, "RON", values[model.FieldCurrency])
	assert.Equal(t, "A123456", values[model.FieldBillNumber])
	assert.Equal(t, "15/03/2024", values[model.FieldDueDate])
	assert.Equal(t, "RO49AAAA1B31007593840000", values[model.FieldIBAN])
}

func TestExtract_MissingFieldsAbsent(t *testing.T) {
	p := enelPattern()
	p.FieldPatterns = append(p.FieldPatterns, model.FieldPattern{
		FieldName: model.FieldContractID, LabelText: "Cod client", LineOffset: 0,
	})
	values := Extract(sampleBill, p)

	_, present := values[model.FieldContractID]
	assert.False(t, present)
}

func TestExtract_NoLabelsMatch(t *testing.T) {
	values := Extract("document complet diferit", enelPattern())
	assert.Empty(t, values)
}
