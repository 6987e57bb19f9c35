
package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"qpaper-server/models"
)

// Answer-key templates. One captures "N: A" style lines, the other
// "A: N". Which captured group is the question number is inferred per
// match by checking which group is purely digits, so both templates
// share one resolution path.
var answerTemplates = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^[ \t]*(\d{1,3})[ \t]*[:.)-][ \t]*([A-Da-d])\b`),
	regexp.MustCompile(`(?m)^[ \t]*([A-Da-d])[ \t]*[:.)-][ \t]*(\d{1,3})\b`),
}

// MatchAnswerKey builds the question-number to answer-letter mapping.
// Templates run in declared order and matches in document order; a
// later match for the same question number overwrites the earlier one
// (deterministic last-write-wins).
func MatchAnswerKey(pages []models.PageText) map[int]string {
	answers := make(map[int]string)
	if len(pages) == 0 {
		return answers
	}
	text, _ := flattenPages(pages)

	for _, re := range answerTemplates {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			number, letter, ok := resolveAnswerGroups(m[1], m[2])
			if !ok {
				continue
			}
			answers[number] = letter
		}
	}
	return answers
}

// resolveAnswerGroups decides which capture is the question number and
// which the answer letter.
func resolveAnswerGroups(a, b string) (int, string, bool) {
	var numStr, letter string
	switch {
	case isDigits(a):
		numStr, letter = a, b
	case isDigits(b):
		numStr, letter = b, a
	default:
		return 0, "", false
	}

	number, err := strconv.Atoi(numStr)
	if err != nil || number <= 0 {
		return 0, "", false
	}
	letter = strings.ToUpper(letter)
	if letter < "A" || letter > "D" {
		return 0, "", false
	}
	return number, letter, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
