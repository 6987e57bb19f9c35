
package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"qpaper-server/models"
)

// A pattern template pairs a regular expression with a semantic role.
// Question templates capture the question number; option templates mark
// where each option string begins inside a question span.
type questionTemplate struct {
	Name string
	Re   *regexp.Regexp
}

var questionTemplates = []questionTemplate{
	{"numbered", regexp.MustCompile(`(?m)^[ \t]*(\d{1,3})\.[ \t]+`)},
	{"q_prefixed", regexp.MustCompile(`(?mi)^[ \t]*Q\.?[ \t]*(\d{1,3})[ \t]*[:.)][ \t]*`)},
	{"question_word", regexp.MustCompile(`(?mi)^[ \t]*Question[ \t]+(\d{1,3})[ \t]*[:.][ \t]*`)},
}

var optionTemplates = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|[\s])([A-D])\)[ \t]*`), // "A)" style
	regexp.MustCompile(`\(([A-D])\)[ \t]*`),         // "(A)" style
}

const minOptions = 4

// MatchQuestions parses questions out of page-wise text. Every question
// template is run over the full document and scored by the number of
// questions it yields with at least four recognized options; the best
// scorer wins, ties resolving in template order.
func MatchQuestions(pages []models.PageText) []models.ParsedQuestion {
	if len(pages) == 0 {
		return nil
	}
	text, spans := flattenPages(pages)

	var best []models.ParsedQuestion
	bestScore := 0
	for _, tpl := range questionTemplates {
		qs := matchWithTemplate(text, spans, tpl)
		if len(qs) > bestScore {
			best = qs
			bestScore = len(qs)
		}
	}
	return best
}

// matchWithTemplate segments the text at every match of one question
// template and accepts each segment that carries at least four options.
func matchWithTemplate(text string, spans []pageSpan, tpl questionTemplate) []models.ParsedQuestion {
	locs := tpl.Re.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	var accepted []models.ParsedQuestion
	for i, loc := range locs {
		segEnd := len(text)
		if i+1 < len(locs) {
			segEnd = locs[i+1][0]
		}
		body := text[loc[1]:segEnd]

		options, questionText, ok := splitOptions(body)
		if !ok {
			continue
		}

		numStr := text[loc[2]:loc[3]]
		number, err := strconv.Atoi(numStr)
		if err != nil || number <= 0 {
			// Non-numeric capture: assign the next synthetic sequential number.
			number = len(accepted) + 1
		}

		accepted = append(accepted, models.ParsedQuestion{
			QuestionNumber: number,
			QuestionText:   questionText,
			Options:        options,
			RawText:        strings.TrimSpace(text[loc[0]:segEnd]),
			Page:           pageAt(spans, loc[0]),
		})
	}
	return accepted
}

// splitOptions applies the option templates in order to a question span.
// The span is accepted only if a template marks four or more options;
// exactly the first four are kept and the text before the first marker
// becomes the question text.
func splitOptions(body string) ([]string, string, bool) {
	for _, re := range optionTemplates {
		locs := re.FindAllStringSubmatchIndex(body, -1)
		if len(locs) < minOptions {
			continue
		}
		questionText := normalizeSpace(body[:locs[0][0]])
		options := make([]string, 0, minOptions)
		for k := 0; k < minOptions; k++ {
			from := locs[k][1]
			to := len(body)
			if k+1 < len(locs) {
				to = locs[k+1][0]
			}
			options = append(options, normalizeSpace(body[from:to]))
		}
		return options, questionText, true
	}
	return nil, "", false
}

// pageSpan records where each page's text begins in the flattened blob.
type pageSpan struct {
	start int
	page  int
}

// flattenPages joins page texts with newlines while remembering each
// page's start offset, so match positions map back to true page numbers.
func flattenPages(pages []models.PageText) (string, []pageSpan) {
	var sb strings.Builder
	spans := make([]pageSpan, 0, len(pages))
	for _, p := range pages {
		spans = append(spans, pageSpan{start: sb.Len(), page: p.Page})
		sb.WriteString(p.Text)
		sb.WriteString("\n")
	}
	return sb.String(), spans
}

func pageAt(spans []pageSpan, offset int) int {
	page := 1
	for _, s := range spans {
		if offset >= s.start {
			page = s.page
		} else {
			break
		}
	}
	return page
}

var spaceRe = regexp.MustCompile(`\s+`)

func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
