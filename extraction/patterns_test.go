
package extraction

import (
	"testing"

	"qpaper-server/models"
)

func onePage(text string) []models.PageText {
	return []models.PageText{{Page: 1, Text: text}}
}

func TestMatchQuestionsNumberedStyle(t *testing.T) {
	text := "1. What is 2+2? A) 3 B) 4 C) 5 D) 6\n2. What is 3+3? A) 5 B) 6 C) 7 D) 8"
	questions := MatchQuestions(onePage(text))

	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].QuestionNumber != 1 || questions[1].QuestionNumber != 2 {
		t.Errorf("unexpected question numbers: %d, %d", questions[0].QuestionNumber, questions[1].QuestionNumber)
	}
	if questions[0].QuestionText != "What is 2+2?" {
		t.Errorf("unexpected question text: %q", questions[0].QuestionText)
	}
	for i, q := range questions {
		if len(q.Options) != 4 {
			t.Errorf("question %d: expected exactly 4 options, got %d", i+1, len(q.Options))
		}
	}
	wantOptions := []string{"3", "4", "5", "6"}
	for i, opt := range questions[0].Options {
		if opt != wantOptions[i] {
			t.Errorf("question 1 option %d: got %q, want %q", i, opt, wantOptions[i])
		}
	}
}

func TestMatchQuestionsTemplateStyles(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantCount  int
		wantNumber int
	}{
		{
			name:       "q prefixed",
			text:       "Q1: Pick one A) a B) b C) c D) d",
			wantCount:  1,
			wantNumber: 1,
		},
		{
			name:       "question word",
			text:       "Question 7: Pick one A) a B) b C) c D) d",
			wantCount:  1,
			wantNumber: 7,
		},
		{
			name:       "parenthesized options",
			text:       "1. Pick one (A) a (B) b (C) c (D) d",
			wantCount:  1,
			wantNumber: 1,
		},
		{
			name:      "fewer than four options disqualifies",
			text:      "1. Pick one A) a B) b C) c",
			wantCount: 0,
		},
		{
			name:      "no question pattern at all",
			text:      "This document contains prose without any numbered items.",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions := MatchQuestions(onePage(tt.text))
			if len(questions) != tt.wantCount {
				t.Fatalf("expected %d questions, got %d", tt.wantCount, len(questions))
			}
			if tt.wantCount > 0 && questions[0].QuestionNumber != tt.wantNumber {
				t.Errorf("expected question number %d, got %d", tt.wantNumber, questions[0].QuestionNumber)
			}
		})
	}
}

func TestMatchQuestionsTruncatesExcessOptions(t *testing.T) {
	text := "1. Pick one A) a B) b C) c D) d A) stray"
	questions := MatchQuestions(onePage(text))
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if len(questions[0].Options) != 4 {
		t.Fatalf("expected exactly 4 options after truncation, got %d", len(questions[0].Options))
	}
	// The fourth option ends where the fifth marker started.
	if questions[0].Options[3] != "d" {
		t.Errorf("fourth option: got %q, want %q", questions[0].Options[3], "d")
	}
}

func TestMatchQuestionsBestScoringTemplateWins(t *testing.T) {
	// The numbered template matches both lines but only finds one
	// acceptable question; the Q-prefixed template accepts both.
	text := "1. Intro heading without options\n" +
		"Q1: First A) a B) b C) c D) d\n" +
		"Q2: Second A) a B) b C) c D) d"
	questions := MatchQuestions(onePage(text))
	if len(questions) != 2 {
		t.Fatalf("expected the higher-scoring template to yield 2 questions, got %d", len(questions))
	}
}

func TestMatchQuestionsTracksPageNumbers(t *testing.T) {
	pages := []models.PageText{
		{Page: 1, Text: "1. First A) a B) b C) c D) d"},
		{Page: 3, Text: "2. Second A) a B) b C) c D) d"},
	}
	questions := MatchQuestions(pages)
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].Page != 1 {
		t.Errorf("first question page: got %d, want 1", questions[0].Page)
	}
	if questions[1].Page != 3 {
		t.Errorf("second question page: got %d, want 3", questions[1].Page)
	}
}

func TestMatchQuestionsRawTextRetained(t *testing.T) {
	text := "1. What is 2+2? A) 3 B) 4 C) 5 D) 6"
	questions := MatchQuestions(onePage(text))
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if questions[0].RawText != text {
		t.Errorf("raw text: got %q, want %q", questions[0].RawText, text)
	}
}

func TestMatchQuestionsIdempotent(t *testing.T) {
	pages := onePage("1. What is 2+2? A) 3 B) 4 C) 5 D) 6\n2. What is 3+3? A) 5 B) 6 C) 7 D) 8")
	first := MatchQuestions(pages)
	second := MatchQuestions(pages)
	if len(first) != len(second) {
		t.Fatalf("parse is not deterministic: %d vs %d questions", len(first), len(second))
	}
	for i := range first {
		if first[i].QuestionText != second[i].QuestionText {
			t.Errorf("question %d text differs between runs", i)
		}
	}
}
