// Package export writes stored patterns, and optionally a sample
// extraction, to an XLSX workbook for review outside the app.
package export

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/rentfolio/billscan/internal/model"
)

// Extraction pairs a pattern with the values it pulled from a sample
// document.
type Extraction struct {
	Pattern model.ExtractionPattern
	Values  map[model.FieldName]string
}

// WritePatternsXLSX writes patterns to path. Sheet "Patterns" has one row
// per pattern, "Field Patterns" one row per extraction rule. When
// extractions is non-empty a third sheet "Sample Extraction" holds the
// values each pattern produced.
func WritePatternsXLSX(path string, patterns []model.ExtractionPattern, extractions []Extraction) error {
	f := xlsx.NewFile()

	if err := writePatternsSheet(f, patterns); err != nil {
		return err
	}
	if err := writeFieldsSheet(f, patterns); err != nil {
		return err
	}
	if len(extractions) > 0 {
		if err := writeExtractionSheet(f, extractions); err != nil {
			return err
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func writePatternsSheet(f *xlsx.File, patterns []model.ExtractionPattern) error {
	sheet, err := f.AddSheet("Patterns")
	if err != nil {
		return eris.Wrap(err, "export: add patterns sheet")
	}

	addRow(sheet, "ID", "Name", "Bill Type", "Supplier", "Fields", "Created At", "Updated At")
	for _, p := range patterns {
		addRow(sheet,
			p.ID,
			p.Name,
			string(p.BillType),
			p.Supplier,
			strconv.Itoa(len(p.FieldPatterns)),
			p.CreatedAt.Format("2006-01-02 15:04:05"),
			p.UpdatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	return nil
}

func writeFieldsSheet(f *xlsx.File, patterns []model.ExtractionPattern) error {
	sheet, err := f.AddSheet("Field Patterns")
	if err != nil {
		return eris.Wrap(err, "export: add fields sheet")
	}

	addRow(sheet, "Pattern ID", "Pattern Name", "Field", "Label", "Line Offset", "Size")
	for _, p := range patterns {
		for _, fp := range p.FieldPatterns {
			size := ""
			if fp.Size > 0 {
				size = strconv.Itoa(fp.Size)
			}
			addRow(sheet,
				p.ID,
				p.Name,
				string(fp.FieldName),
				fp.LabelText,
				strconv.Itoa(fp.LineOffset),
				size,
			)
		}
	}
	return nil
}

func writeExtractionSheet(f *xlsx.File, extractions []Extraction) error {
	sheet, err := f.AddSheet("Sample Extraction")
	if err != nil {
		return eris.Wrap(err, "export: add extraction sheet")
	}

	addRow(sheet, "Pattern Name", "Field", "Value")
	for _, ex := range extractions {
		for _, name := range model.FieldNames {
			value, ok := ex.Values[name]
			if !ok {
				continue
			}
			addRow(sheet, ex.Pattern.Name, string(name), value)
		}
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().Value = c
	}
}
