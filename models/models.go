
package models

import (
	"time"
)

// PageText is the text layer of a single PDF page, 1-based.
// The pipeline keeps text page-by-page so questions can be tied back
// to the page they were parsed from.
type PageText struct {
	Page int
	Text string
}

// ParsedQuestion is a question recognized by the pattern matcher.
// A ParsedQuestion only exists if at least four option strings were
// recognized for it; exactly the first four are kept.
type ParsedQuestion struct {
	QuestionNumber int      `json:"question_number"`
	QuestionText   string   `json:"question_text"`
	Options        []string `json:"options"` // always length 4
	RawText        string   `json:"raw_text"`
	Page           int      `json:"page"`
}

// ExtractedImage is a raster image embedded in the source PDF.
// Data is base64 so the record can cross the pipeline boundary as JSON.
type ExtractedImage struct {
	Page   int    `json:"page"`
	Index  int    `json:"index"`
	Format string `json:"format"`
	Data   string `json:"data"`
	Size   int    `json:"size"`
}

// MatchedQuestion is the fully joined output unit: a parsed question,
// its resolved answer (if any), and the images sharing its page.
type MatchedQuestion struct {
	QuestionNumber  int              `json:"question_number"`
	QuestionText    string           `json:"question_text"`
	Options         []string         `json:"options"`
	CorrectAnswer   *string          `json:"correct_answer"` // "A".."D" or null
	ConfidenceScore float64          `json:"confidence_score"`
	HasAnswer       bool             `json:"has_answer"`
	RelatedImages   []ExtractedImage `json:"related_images"`
	SourceNotes     string           `json:"source_notes"`
	Page            int              `json:"page"`
}

// ExtractionResult is the record returned by one pipeline invocation.
type ExtractionResult struct {
	Success        bool              `json:"success"`
	Questions      []MatchedQuestion `json:"questions"`
	TotalQuestions int               `json:"total_questions"`
	TotalImages    int               `json:"total_images"`
	Warnings       []string          `json:"warnings"`
	Error          string            `json:"error,omitempty"`
	// Images is the flat extracted-image list, kept for persistence;
	// the transport record only carries per-question related_images.
	Images []ExtractedImage `json:"-"`
}

// ExtractionJob is a persisted extraction run.
type ExtractionJob struct {
	ID             string    `json:"job_id"`
	Exam           string    `json:"exam"`
	Subject        string    `json:"subject"`
	Year           int       `json:"year"`
	SourceFile     string    `json:"source_file"`
	AnswerKeyFile  *string   `json:"answer_key_file"`
	ContentHash    string    `json:"content_hash"`
	Success        bool      `json:"success"`
	Error          *string   `json:"error"`
	TotalQuestions int       `json:"total_questions"`
	TotalImages    int       `json:"total_images"`
	Warnings       []string  `json:"warnings"`
	Cached         bool      `json:"cached,omitempty"` // served from the content-hash cache
	MetaYAML       *string   `json:"-"`                // optional uploaded paper.yaml block
	CreatedAt      time.Time `json:"created_at"`
}

// StoredQuestion is a MatchedQuestion as persisted for a job.
type StoredQuestion struct {
	ID              int     `json:"id"`
	JobID           string  `json:"job_id"`
	QuestionNumber  int     `json:"question_number"`
	QuestionText    string  `json:"question_text"`
	OptionA         string  `json:"option_a"`
	OptionB         string  `json:"option_b"`
	OptionC         string  `json:"option_c"`
	OptionD         string  `json:"option_d"`
	CorrectAnswer   *string `json:"correct_answer"`
	ConfidenceScore float64 `json:"confidence_score"`
	HasAnswer       bool    `json:"has_answer"`
	SourceNotes     string  `json:"source_notes"`
	Page            int     `json:"page"`
	Flagged         bool    `json:"flagged"`
}

// PaperMeta is the optional YAML metadata block that can accompany an
// upload. Values fall back to the server defaults when omitted.
type PaperMeta struct {
	Exam             string   `yaml:"exam"`
	Year             int      `yaml:"year"`
	Subject          string   `yaml:"subject"`
	Chapter          string   `yaml:"chapter"`
	Topic            string   `yaml:"topic"`
	Marks            float64  `yaml:"marks"`
	NegativeMarks    float64  `yaml:"negative_marks"`
	TimeLimitSeconds int      `yaml:"time_limit_seconds"`
	Difficulty       string   `yaml:"difficulty"`
	Tags             []string `yaml:"tags"`
}

// QuestionRow is the fixed 25-field tabular contract consumed downstream.
// Field order matters; export.Header and export.Flatten preserve it.
type QuestionRow struct {
	UID                 string
	Exam                string
	Year                string
	Subject             string
	Chapter             string
	Topic               string
	QuestionType        string
	QuestionText        string
	OptionA             string
	OptionB             string
	OptionC             string
	OptionD             string
	CorrectAnswer       string
	AnswerChoicesCount  string
	Marks               string
	NegativeMarks       string
	TimeLimitSeconds    string
	Difficulty          string
	Tags                string
	FormulaLaTeX        string
	ImageUploadThingURL string
	ImageAltText        string
	Explanation         string
	ConfidenceScore     string
	SourceNotes         string
}

// DuplicatePair is a pair of stored questions whose texts meet the
// similarity threshold.
type DuplicatePair struct {
	QuestionID      int     `json:"question_id"`
	OtherQuestionID int     `json:"other_question_id"`
	Similarity      float64 `json:"similarity"`
	QuestionText    string  `json:"question_text"`
	OtherText       string  `json:"other_text"`
}

// ErrorLog represents an entry in the error_logs table
type ErrorLog struct {
	ID           int       `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Source       string    `json:"source"`
	JobID        *string   `json:"job_id"`
	FilePath     *string   `json:"file_path"`
	ErrorMessage string    `json:"error_message"`
	SuggestedFix *string   `json:"suggested_fix"`
}

// AdminEvent represents an entry in the admin_events table
type AdminEvent struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Target    string    `json:"target"`
	Notes     string    `json:"notes"`
}

// Setting represents an entry in the settings table
type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedBy   string    `json:"updated_by"`
}

// JobStats for the admin question_stats page
type JobStats struct {
	JobID         string  `json:"job_id"`
	Exam          string  `json:"exam"`
	Subject       string  `json:"subject"`
	QuestionCount int     `json:"question_count"`
	AnsweredCount int     `json:"answered_count"`
	FlaggedCount  int     `json:"flagged_count"`
	AvgConfidence float64 `json:"avg_confidence"`
	ImageCount    int     `json:"image_count"`
}
