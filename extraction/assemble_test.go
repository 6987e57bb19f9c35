
package extraction

import (
	"testing"

	"qpaper-server/models"
)

func parsedQuestion(num, page int) models.ParsedQuestion {
	return models.ParsedQuestion{
		QuestionNumber: num,
		QuestionText:   "text",
		Options:        []string{"a", "b", "c", "d"},
		Page:           page,
	}
}

func TestAssembleConfidenceFollowsAnswer(t *testing.T) {
	questions := []models.ParsedQuestion{parsedQuestion(1, 1), parsedQuestion(2, 1)}
	answers := map[int]string{1: "B"}

	matched, warnings := Assemble(questions, answers, nil, "extracted from PDF text layer")
	if len(matched) != 2 {
		t.Fatalf("expected 2 matched questions, got %d", len(matched))
	}

	if !matched[0].HasAnswer || matched[0].ConfidenceScore != 1.0 {
		t.Errorf("answered question: has_answer=%v confidence=%v, want true/1.0", matched[0].HasAnswer, matched[0].ConfidenceScore)
	}
	if matched[0].CorrectAnswer == nil || *matched[0].CorrectAnswer != "B" {
		t.Errorf("answered question: correct answer not carried through")
	}
	if matched[1].HasAnswer || matched[1].ConfidenceScore != 0.5 {
		t.Errorf("unanswered question: has_answer=%v confidence=%v, want false/0.5", matched[1].HasAnswer, matched[1].ConfidenceScore)
	}
	if matched[1].CorrectAnswer != nil {
		t.Errorf("unanswered question: expected nil correct answer")
	}

	wantWarnings := []string{
		"1 questions missing answer key",
		"1 questions have low confidence scores",
	}
	if len(warnings) != len(wantWarnings) {
		t.Fatalf("warnings: got %v, want %v", warnings, wantWarnings)
	}
	for i := range wantWarnings {
		if warnings[i] != wantWarnings[i] {
			t.Errorf("warning %d: got %q, want %q", i, warnings[i], wantWarnings[i])
		}
	}
}

func TestAssembleAllAnswered(t *testing.T) {
	questions := []models.ParsedQuestion{parsedQuestion(1, 1)}
	matched, warnings := Assemble(questions, map[int]string{1: "A"}, nil, "extracted from PDF text layer")
	if len(matched) != 1 {
		t.Fatalf("expected 1 matched question, got %d", len(matched))
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings when every question resolves, got %v", warnings)
	}
}

func TestAssembleNoQuestions(t *testing.T) {
	matched, warnings := Assemble(nil, nil, nil, "")
	if len(matched) != 0 {
		t.Fatalf("expected no matched questions, got %d", len(matched))
	}
	if len(warnings) != 1 || warnings[0] != "No questions extracted from PDF" {
		t.Errorf("warnings: got %v, want exactly [\"No questions extracted from PDF\"]", warnings)
	}
}

func TestAssembleImagesAttachByPage(t *testing.T) {
	questions := []models.ParsedQuestion{parsedQuestion(1, 1), parsedQuestion(2, 2)}
	answers := map[int]string{1: "A", 2: "B"}
	images := []models.ExtractedImage{
		{Page: 2, Index: 0, Format: "png"},
		{Page: 2, Index: 1, Format: "jpg"},
		{Page: 5, Index: 0, Format: "png"},
	}

	matched, _ := Assemble(questions, answers, images, "extracted from PDF text layer")
	if len(matched[0].RelatedImages) != 0 {
		t.Errorf("page-1 question: expected no related images, got %d", len(matched[0].RelatedImages))
	}
	if len(matched[1].RelatedImages) != 2 {
		t.Errorf("page-2 question: expected 2 related images, got %d", len(matched[1].RelatedImages))
	}
}

func TestAssembleSourceNotesPropagate(t *testing.T) {
	questions := []models.ParsedQuestion{parsedQuestion(1, 1)}
	matched, _ := Assemble(questions, map[int]string{1: "C"}, nil, "extracted via OCR fallback")
	if matched[0].SourceNotes != "extracted via OCR fallback" {
		t.Errorf("source notes: got %q", matched[0].SourceNotes)
	}
}
