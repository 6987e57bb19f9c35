
package review

import (
	"testing"

	"qpaper-server/models"
)

func question(id int, text string) models.StoredQuestion {
	return models.StoredQuestion{ID: id, QuestionText: text}
}

func TestFindDuplicates(t *testing.T) {
	questions := []models.StoredQuestion{
		question(1, "What is the acceleration due to gravity on Earth?"),
		question(2, "What is the acceleration due to gravity on earth?"),
		question(3, "Name the powerhouse of the cell."),
	}

	pairs := FindDuplicates(questions, 0.85)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 duplicate pair, got %d", len(pairs))
	}
	p := pairs[0]
	if p.QuestionID != 1 || p.OtherQuestionID != 2 {
		t.Errorf("pair ids: got (%d, %d), want (1, 2)", p.QuestionID, p.OtherQuestionID)
	}
	if p.Similarity < 0.85 {
		t.Errorf("similarity %v below threshold", p.Similarity)
	}
}

func TestFindDuplicatesNoneBelowThreshold(t *testing.T) {
	questions := []models.StoredQuestion{
		question(1, "Define momentum."),
		question(2, "State Ohm's law."),
	}
	if pairs := FindDuplicates(questions, 0.85); len(pairs) != 0 {
		t.Errorf("expected no pairs for unrelated questions, got %v", pairs)
	}
}

func TestFindDuplicatesThresholdBoundary(t *testing.T) {
	questions := []models.StoredQuestion{
		question(1, "identical text"),
		question(2, "identical text"),
	}
	// Exact matches score 1.0, which satisfies even the strictest threshold.
	if pairs := FindDuplicates(questions, 1.0); len(pairs) != 1 {
		t.Errorf("expected the identical pair at threshold 1.0, got %d", len(pairs))
	}
}

func TestFindDuplicatesEmptyInput(t *testing.T) {
	if pairs := FindDuplicates(nil, 0.85); len(pairs) != 0 {
		t.Errorf("expected no pairs for empty input, got %v", pairs)
	}
}
