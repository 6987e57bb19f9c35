
package extraction

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"qpaper-server/models"
)

// TextExtractor pulls the text layer out of a PDF, one entry per page.
// An interface so tests can substitute canned text for real files.
type TextExtractor interface {
	ExtractPages(path string) ([]models.PageText, error)
}

// PDFTextExtractor is the production text extractor backed by ledongthuc/pdf.
type PDFTextExtractor struct{}

// ExtractPages returns the text of every page that has a usable text layer.
// Pages that fail individually are skipped; only a failure to open the
// document surfaces as an error.
func (PDFTextExtractor) ExtractPages(path string) ([]models.PageText, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	var pages []models.PageText
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, models.PageText{Page: i, Text: text})
	}
	return pages, nil
}

// ValidatePDF checks that the file exists and carries a PDF header.
// This is the single outer error boundary of the pipeline: anything past
// this point degrades to a partial result instead of failing the call.
func ValidatePDF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot read input file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 5)
	n, err := f.Read(header)
	if err != nil || n < 5 || !bytes.Equal(header, []byte("%PDF-")) {
		return fmt.Errorf("%s is not a valid PDF file", path)
	}
	return nil
}
