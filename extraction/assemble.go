
package extraction

import (
	"fmt"

	"qpaper-server/models"
)

const lowConfidenceThreshold = 0.7

// Assemble joins parsed questions, the answer-key mapping, and the
// extracted images into the final MatchedQuestion list plus warnings.
// An image relates to a question iff it sits on the question's page.
// Confidence is two-valued: 1.0 when an answer resolved, 0.5 otherwise.
func Assemble(questions []models.ParsedQuestion, answers map[int]string, images []models.ExtractedImage, sourceNotes string) ([]models.MatchedQuestion, []string) {
	matched := make([]models.MatchedQuestion, 0, len(questions))
	missing := 0

	for _, q := range questions {
		mq := models.MatchedQuestion{
			QuestionNumber:  q.QuestionNumber,
			QuestionText:    q.QuestionText,
			Options:         q.Options,
			ConfidenceScore: 0.5,
			RelatedImages:   imagesOnPage(images, q.Page),
			SourceNotes:     sourceNotes,
			Page:            q.Page,
		}
		if letter, ok := answers[q.QuestionNumber]; ok {
			l := letter
			mq.CorrectAnswer = &l
			mq.HasAnswer = true
			mq.ConfidenceScore = 1.0
		} else {
			missing++
		}
		matched = append(matched, mq)
	}

	var warnings []string
	if len(matched) == 0 {
		return matched, []string{"No questions extracted from PDF"}
	}
	if missing > 0 {
		warnings = append(warnings, fmt.Sprintf("%d questions missing answer key", missing))
	}
	lowConfidence := 0
	for _, mq := range matched {
		if mq.ConfidenceScore < lowConfidenceThreshold {
			lowConfidence++
		}
	}
	if lowConfidence > 0 {
		warnings = append(warnings, fmt.Sprintf("%d questions have low confidence scores", lowConfidence))
	}
	return matched, warnings
}

func imagesOnPage(images []models.ExtractedImage, page int) []models.ExtractedImage {
	var related []models.ExtractedImage
	for _, img := range images {
		if img.Page == page {
			related = append(related, img)
		}
	}
	return related
}
