
package extraction

import "testing"

func TestMatchAnswerKey(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[int]string
	}{
		{
			name: "number colon letter",
			text: "1: B\n2: C\n3: A",
			want: map[int]string{1: "B", 2: "C", 3: "A"},
		},
		{
			name: "number dot letter",
			text: "1. a\n2. d",
			want: map[int]string{1: "A", 2: "D"},
		},
		{
			name: "letter colon number reversed",
			text: "B: 1\nC: 2",
			want: map[int]string{1: "B", 2: "C"},
		},
		{
			name: "dash separator",
			text: "10 - C\n11 - D",
			want: map[int]string{10: "C", 11: "D"},
		},
		{
			name: "letters outside A-D rejected",
			text: "1: E\n2: B",
			want: map[int]string{2: "B"},
		},
		{
			name: "no answer lines",
			text: "Answer key follows on the next page.",
			want: map[int]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchAnswerKey(onePage(tt.text))
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d answers, got %d (%v)", len(tt.want), len(got), got)
			}
			for num, letter := range tt.want {
				if got[num] != letter {
					t.Errorf("question %d: got %q, want %q", num, got[num], letter)
				}
			}
		})
	}
}

func TestMatchAnswerKeyLastWriteWins(t *testing.T) {
	// The same question number appears twice in document order; the
	// later line overwrites the earlier one.
	got := MatchAnswerKey(onePage("5: A\n5: C"))
	if got[5] != "C" {
		t.Errorf("duplicate entry: got %q, want the later answer %q", got[5], "C")
	}

	// Across templates: the reversed template runs after the direct
	// one, so its match wins even though it appears earlier in the text.
	got = MatchAnswerKey(onePage("D: 7\n7: B"))
	if got[7] != "D" {
		t.Errorf("cross-template conflict: got %q, want %q", got[7], "D")
	}
}

func TestMatchAnswerKeyEmptyPages(t *testing.T) {
	got := MatchAnswerKey(nil)
	if len(got) != 0 {
		t.Errorf("expected empty map for no pages, got %v", got)
	}
}
