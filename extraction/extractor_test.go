
package extraction

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"qpaper-server/models"
)

type fakeTextExtractor struct {
	pages map[string][]models.PageText
	err   error
	calls int
}

func (f *fakeTextExtractor) ExtractPages(path string) ([]models.PageText, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[path], nil
}

type fakeOCREngine struct {
	pages map[string][]models.PageText
	err   error
	calls int
}

func (f *fakeOCREngine) RecognizePages(path string) ([]models.PageText, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[path], nil
}

type fakeImageExtractor struct {
	images []models.ExtractedImage
	err    error
}

func (f *fakeImageExtractor) Extract(path string) ([]models.ExtractedImage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.images, nil
}

// writePDFStub writes a file that passes the header validation; the fake
// extractors never actually parse it.
func writePDFStub(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4 stub"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const questionText = "1. What is 2+2? A) 3 B) 4 C) 5 D) 6\n2. What is 3+3? A) 5 B) 6 C) 7 D) 8"

func TestExtractTextLayerPath(t *testing.T) {
	paper := writePDFStub(t, "paper.pdf")
	key := writePDFStub(t, "key.pdf")

	text := &fakeTextExtractor{pages: map[string][]models.PageText{
		paper: {{Page: 1, Text: questionText}},
		key:   {{Page: 1, Text: "1: B\n2: C"}},
	}}
	ocr := &fakeOCREngine{}
	svc := NewServiceWith(Config{}, text, ocr, &fakeImageExtractor{})

	result := svc.Extract(paper, key)
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.TotalQuestions != 2 {
		t.Fatalf("expected 2 questions, got %d", result.TotalQuestions)
	}
	if ocr.calls != 0 {
		t.Errorf("OCR must not run when the text layer yields questions, got %d calls", ocr.calls)
	}
	for _, q := range result.Questions {
		if !q.HasAnswer || q.ConfidenceScore != 1.0 {
			t.Errorf("question %d: expected resolved answer with confidence 1.0", q.QuestionNumber)
		}
		if q.SourceNotes != "extracted from PDF text layer" {
			t.Errorf("question %d: source notes %q", q.QuestionNumber, q.SourceNotes)
		}
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
}

func TestExtractOCRFallback(t *testing.T) {
	paper := writePDFStub(t, "scanned.pdf")

	// Empty text layer forces the OCR retry.
	text := &fakeTextExtractor{pages: map[string][]models.PageText{}}
	ocr := &fakeOCREngine{pages: map[string][]models.PageText{
		paper: {{Page: 1, Text: questionText}},
	}}
	svc := NewServiceWith(Config{}, text, ocr, &fakeImageExtractor{})

	result := svc.Extract(paper, "")
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.TotalQuestions != 2 {
		t.Fatalf("expected 2 questions via OCR, got %d", result.TotalQuestions)
	}
	if ocr.calls != 1 {
		t.Errorf("expected exactly one OCR pass, got %d", ocr.calls)
	}
	if result.Questions[0].SourceNotes != "extracted via OCR fallback" {
		t.Errorf("source notes: got %q", result.Questions[0].SourceNotes)
	}
	// No answer key: everything stays at the low confidence band.
	for _, q := range result.Questions {
		if q.HasAnswer || q.ConfidenceScore != 0.5 {
			t.Errorf("question %d: expected unresolved answer with confidence 0.5", q.QuestionNumber)
		}
	}
}

func TestExtractInvalidPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("plain text, no header"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewServiceWith(Config{}, &fakeTextExtractor{}, &fakeOCREngine{}, &fakeImageExtractor{})
	result := svc.Extract(path, "")
	if result.Success {
		t.Fatal("expected failure for a non-PDF input")
	}
	if result.Error == "" {
		t.Error("expected a populated error message")
	}
	if result.Questions == nil || result.Warnings == nil {
		t.Error("failure result must carry empty, non-nil question and warning slices")
	}
}

func TestExtractMissingFile(t *testing.T) {
	svc := NewServiceWith(Config{}, &fakeTextExtractor{}, &fakeOCREngine{}, &fakeImageExtractor{})
	result := svc.Extract(filepath.Join(t.TempDir(), "absent.pdf"), "")
	if result.Success {
		t.Fatal("expected failure for a missing input file")
	}
}

func TestExtractDegradesOnComponentErrors(t *testing.T) {
	paper := writePDFStub(t, "paper.pdf")

	text := &fakeTextExtractor{err: errors.New("corrupt xref table")}
	ocr := &fakeOCREngine{err: errors.New("tesseract unavailable")}
	images := &fakeImageExtractor{err: errors.New("no image objects")}
	svc := NewServiceWith(Config{}, text, ocr, images)

	result := svc.Extract(paper, "")
	if !result.Success {
		t.Fatalf("component failures must degrade, not fail: %q", result.Error)
	}
	if result.TotalQuestions != 0 || result.TotalImages != 0 {
		t.Errorf("expected empty result, got %d questions %d images", result.TotalQuestions, result.TotalImages)
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != "No questions extracted from PDF" {
		t.Errorf("warnings: got %v", result.Warnings)
	}
}

func TestExtractImagesIndependentOfQuestions(t *testing.T) {
	paper := writePDFStub(t, "figures.pdf")

	images := &fakeImageExtractor{images: []models.ExtractedImage{
		{Page: 1, Index: 0, Format: "png", Data: "aGk=", Size: 2},
		{Page: 4, Index: 0, Format: "jpg", Data: "aGk=", Size: 2},
	}}
	svc := NewServiceWith(Config{}, &fakeTextExtractor{}, &fakeOCREngine{}, images)

	result := svc.Extract(paper, "")
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.TotalImages != 2 {
		t.Errorf("expected 2 images even with zero questions, got %d", result.TotalImages)
	}
	if len(result.Images) != 2 {
		t.Errorf("expected images carried on the result, got %d", len(result.Images))
	}
}

func TestExtractAnswerKeyOCRRetry(t *testing.T) {
	paper := writePDFStub(t, "paper.pdf")
	key := writePDFStub(t, "key.pdf")

	text := &fakeTextExtractor{pages: map[string][]models.PageText{
		paper: {{Page: 1, Text: questionText}},
		// Key has no text layer entry: forces the OCR retry for the key only.
	}}
	ocr := &fakeOCREngine{pages: map[string][]models.PageText{
		key: {{Page: 1, Text: "1: D\n2: A"}},
	}}
	svc := NewServiceWith(Config{}, text, ocr, &fakeImageExtractor{})

	result := svc.Extract(paper, key)
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if ocr.calls != 1 {
		t.Errorf("expected one OCR pass for the key, got %d", ocr.calls)
	}
	if result.Questions[0].CorrectAnswer == nil || *result.Questions[0].CorrectAnswer != "D" {
		t.Errorf("question 1: answer not resolved through the key OCR retry")
	}
}

func TestExtractDeterministic(t *testing.T) {
	paper := writePDFStub(t, "paper.pdf")
	text := &fakeTextExtractor{pages: map[string][]models.PageText{
		paper: {{Page: 1, Text: questionText}},
	}}
	svc := NewServiceWith(Config{}, text, &fakeOCREngine{}, &fakeImageExtractor{})

	first := svc.Extract(paper, "")
	second := svc.Extract(paper, "")
	if first.TotalQuestions != second.TotalQuestions {
		t.Fatalf("repeated extraction differs: %d vs %d questions", first.TotalQuestions, second.TotalQuestions)
	}
	for i := range first.Questions {
		if first.Questions[i].QuestionText != second.Questions[i].QuestionText {
			t.Errorf("question %d differs between runs", i)
		}
	}
}
