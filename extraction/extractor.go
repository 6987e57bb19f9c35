
package extraction

import (
	"log"

	"qpaper-server/models"
)

// Config carries the pipeline's tunables. It is passed in explicitly so
// tests and callers never depend on process-wide state.
type Config struct {
	OCRLanguage string
	OCRZoom     float64
}

// Service is the extraction pipeline: text layer first, pattern
// matching, OCR retry when nothing matched, independent image walk,
// then answer-key join and assembly. One invocation is synchronous and
// owns all of its intermediate state.
type Service struct {
	cfg    Config
	text   TextExtractor
	ocr    OCREngine
	images ImageExtractor
}

// NewService builds a Service with the production extractors.
func NewService(cfg Config) *Service {
	return &Service{
		cfg:    cfg,
		text:   PDFTextExtractor{},
		ocr:    TesseractEngine{Language: cfg.OCRLanguage, Zoom: cfg.OCRZoom},
		images: PDFImageExtractor{},
	}
}

// NewServiceWith builds a Service from explicit components. Used by
// tests to supply fakes.
func NewServiceWith(cfg Config, text TextExtractor, ocr OCREngine, images ImageExtractor) *Service {
	return &Service{cfg: cfg, text: text, ocr: ocr, images: images}
}

// Extract runs the full pipeline over a question PDF and an optional
// answer-key PDF (empty path means no key). Everything past the input
// validation degrades to a partial result: the only failure mode is an
// unreadable or non-PDF input file.
func (s *Service) Extract(questionPDF, answerKeyPDF string) models.ExtractionResult {
	if err := ValidatePDF(questionPDF); err != nil {
		return models.ExtractionResult{
			Success:   false,
			Questions: []models.MatchedQuestion{},
			Warnings:  []string{},
			Error:     err.Error(),
		}
	}

	pages, err := s.text.ExtractPages(questionPDF)
	if err != nil {
		// Degrade-not-fail: a broken text layer just means OCR decides.
		log.Printf("text extraction failed for %s: %v", questionPDF, err)
		pages = nil
	}
	questions := MatchQuestions(pages)
	sourceNotes := "extracted from PDF text layer"

	if len(questions) == 0 {
		ocrPages, err := s.ocr.RecognizePages(questionPDF)
		if err != nil {
			log.Printf("OCR fallback failed for %s: %v", questionPDF, err)
		} else if qs := MatchQuestions(ocrPages); len(qs) > 0 {
			questions = qs
			sourceNotes = "extracted via OCR fallback"
		}
	}

	images, err := s.images.Extract(questionPDF)
	if err != nil {
		log.Printf("image extraction failed for %s: %v", questionPDF, err)
		images = nil
	}

	answers := map[int]string{}
	if answerKeyPDF != "" {
		answers = s.parseAnswerKey(answerKeyPDF)
	}

	matched, warnings := Assemble(questions, answers, images, sourceNotes)
	return models.ExtractionResult{
		Success:        true,
		Questions:      matched,
		TotalQuestions: len(matched),
		TotalImages:    len(images),
		Warnings:       warnings,
		Images:         images,
	}
}

// parseAnswerKey runs the same text/OCR/pattern chain over the
// answer-key document. A key that cannot be read resolves to an empty
// mapping, never an error.
func (s *Service) parseAnswerKey(path string) map[int]string {
	pages, err := s.text.ExtractPages(path)
	if err != nil {
		log.Printf("answer key text extraction failed for %s: %v", path, err)
		pages = nil
	}
	answers := MatchAnswerKey(pages)
	if len(answers) == 0 {
		ocrPages, err := s.ocr.RecognizePages(path)
		if err != nil {
			log.Printf("answer key OCR failed for %s: %v", path, err)
			return answers
		}
		answers = MatchAnswerKey(ocrPages)
	}
	return answers
}
