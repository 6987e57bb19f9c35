
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"qpaper-server/config"
	"qpaper-server/models"
)

// ColumnCount is the fixed number of columns in the downstream row contract.
const ColumnCount = 25

// Header returns the column names in contract order.
func Header() []string {
	return []string{
		"UID", "Exam", "Year", "Subject", "Chapter", "Topic",
		"QuestionType", "QuestionText",
		"OptionA", "OptionB", "OptionC", "OptionD",
		"CorrectAnswer", "AnswerChoicesCount",
		"Marks", "NegativeMarks", "TimeLimitSeconds", "Difficulty", "Tags",
		"FormulaLaTeX", "ImageUploadThingURL", "ImageAltText",
		"Explanation", "ConfidenceScore", "SourceNotes",
	}
}

// ParsePaperMeta reads the optional YAML metadata block uploaded with a
// paper. Unknown fields are ignored; a malformed block is an error.
func ParsePaperMeta(data []byte) (models.PaperMeta, error) {
	var meta models.PaperMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("failed to parse paper metadata: %w", err)
	}
	if meta.Year != 0 && (meta.Year < 1900 || meta.Year > 2100) {
		return meta, fmt.Errorf("invalid year in paper metadata: %d", meta.Year)
	}
	return meta, nil
}

// MergeMeta fills the gaps of an uploaded metadata block from the job
// fields and server defaults.
func MergeMeta(meta models.PaperMeta, job models.ExtractionJob, defaults config.ExportConfig) models.PaperMeta {
	if meta.Exam == "" {
		meta.Exam = job.Exam
	}
	if meta.Subject == "" {
		meta.Subject = job.Subject
	}
	if meta.Year == 0 {
		meta.Year = job.Year
	}
	if meta.Marks == 0 {
		meta.Marks = defaults.Marks
	}
	if meta.NegativeMarks == 0 {
		meta.NegativeMarks = defaults.NegativeMarks
	}
	if meta.TimeLimitSeconds == 0 {
		meta.TimeLimitSeconds = defaults.TimeLimitSeconds
	}
	if meta.Difficulty == "" {
		meta.Difficulty = defaults.Difficulty
	}
	return meta
}

// Flatten turns the stored questions of a job into contract rows.
func Flatten(questions []models.StoredQuestion, meta models.PaperMeta) []models.QuestionRow {
	rows := make([]models.QuestionRow, 0, len(questions))
	for _, q := range questions {
		correct := ""
		if q.CorrectAnswer != nil {
			correct = *q.CorrectAnswer
		}
		rows = append(rows, models.QuestionRow{
			UID:                 uuid.NewString(),
			Exam:                meta.Exam,
			Year:                intField(meta.Year),
			Subject:             meta.Subject,
			Chapter:             meta.Chapter,
			Topic:               meta.Topic,
			QuestionType:        "single",
			QuestionText:        q.QuestionText,
			OptionA:             q.OptionA,
			OptionB:             q.OptionB,
			OptionC:             q.OptionC,
			OptionD:             q.OptionD,
			CorrectAnswer:       correct,
			AnswerChoicesCount:  "4",
			Marks:               floatField(meta.Marks),
			NegativeMarks:       floatField(meta.NegativeMarks),
			TimeLimitSeconds:    intField(meta.TimeLimitSeconds),
			Difficulty:          meta.Difficulty,
			Tags:                strings.Join(meta.Tags, "|"),
			FormulaLaTeX:        "",
			ImageUploadThingURL: "",
			ImageAltText:        "",
			Explanation:         "",
			ConfidenceScore:     floatField(q.ConfidenceScore),
			SourceNotes:         q.SourceNotes,
		})
	}
	return rows
}

// WriteCSV writes the header plus one record per row.
func WriteCSV(w io.Writer, rows []models.QuestionRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(record(row)); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func record(r models.QuestionRow) []string {
	return []string{
		r.UID, r.Exam, r.Year, r.Subject, r.Chapter, r.Topic,
		r.QuestionType, r.QuestionText,
		r.OptionA, r.OptionB, r.OptionC, r.OptionD,
		r.CorrectAnswer, r.AnswerChoicesCount,
		r.Marks, r.NegativeMarks, r.TimeLimitSeconds, r.Difficulty, r.Tags,
		r.FormulaLaTeX, r.ImageUploadThingURL, r.ImageAltText,
		r.Explanation, r.ConfidenceScore, r.SourceNotes,
	}
}

func intField(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func floatField(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
