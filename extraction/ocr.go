
package extraction

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"

	"qpaper-server/models"
)

// OCREngine recognizes text from a PDF by rasterizing its pages.
// Triggered only when the direct text layer yields zero questions.
type OCREngine interface {
	RecognizePages(path string) ([]models.PageText, error)
}

// TesseractEngine rasterizes pages with MuPDF (go-fitz) and recognizes
// them with Tesseract. Zoom is a linear scale factor over the PDF's
// native 72 DPI; 2x improves recognition on typical exam-paper fonts.
type TesseractEngine struct {
	Language string
	Zoom     float64
}

// RecognizePages runs OCR page by page. A page that fails to rasterize
// or recognize contributes nothing; the rest of the document still runs.
func (e TesseractEngine) RecognizePages(path string) ([]models.PageText, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s for OCR: %w", path, err)
	}
	defer doc.Close()

	client := gosseract.NewClient()
	defer client.Close()
	lang := e.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("failed to set OCR language %s: %w", lang, err)
	}

	zoom := e.Zoom
	if zoom <= 0 {
		zoom = 2.0
	}
	dpi := 72.0 * zoom

	var pages []models.PageText
	for i := 0; i < doc.NumPage(); i++ {
		png, err := doc.ImagePNG(i, dpi)
		if err != nil {
			continue
		}
		if err := client.SetImageFromBytes(png); err != nil {
			continue
		}
		text, err := client.Text()
		if err != nil {
			continue
		}
		pages = append(pages, models.PageText{Page: i + 1, Text: text})
	}
	return pages, nil
}
