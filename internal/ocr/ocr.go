// Package ocr turns uploaded bill PDFs into plain text for pattern matching.
// Three providers are available: a pure-Go reader for digitally generated
// PDFs, the pdftotext CLI for layout-sensitive documents, and the Mistral
// OCR API for scanned bills.
package ocr

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/rentfolio/billscan/internal/config"
)

// Extractor extracts text content from PDF files.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.OCRConfig) (Extractor, error) {
	switch cfg.Provider {
	case "native", "":
		return NewNativePDF(), nil
	case "local":
		return NewPdfToText(cfg.PdfToTextPath), nil
	case "mistral":
		if cfg.MistralKey == "" {
			return nil, eris.New("ocr: mistral provider requires mistral_api_key")
		}
		return NewMistralOCR(cfg.MistralKey, cfg.MistralModel), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}
