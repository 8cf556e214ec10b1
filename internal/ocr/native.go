package ocr

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
)

// NativePDF extracts text from PDFs in-process, with no external tools or
// network calls. Works for digitally generated bills; scanned bills need
// the mistral provider.
type NativePDF struct{}

// NewNativePDF creates a pure-Go PDF extractor.
func NewNativePDF() *NativePDF { return &NativePDF{} }

// ExtractText reads the PDF at pdfPath and returns its plain text,
// pages joined by blank lines.
func (e *NativePDF) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return "", eris.Wrapf(err, "ocr: read PDF %s", pdfPath)
	}
	if len(data) == 0 {
		return "", eris.Errorf("ocr: empty PDF %s", pdfPath)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", eris.Wrapf(err, "ocr: open PDF %s", pdfPath)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages; partial text still gives the
			// matcher something to work with.
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(pageText)
	}

	return sb.String(), nil
}
