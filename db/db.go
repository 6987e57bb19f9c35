
package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qpaper-server/models"
)

// InitDB initializes the PostgreSQL database connection pool
func InitDB(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Ping the database to verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL database!")
	return pool, nil
}

// CreateSchema sets up the necessary tables for qpaper.
// In a production environment, use a proper migration tool (e.g., golang-migrate).
func CreateSchema(pool *pgxpool.Pool) error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS extraction_jobs (
		id UUID PRIMARY KEY,
		exam VARCHAR(100) NOT NULL,
		subject VARCHAR(100) NOT NULL,
		year INT,
		source_file TEXT NOT NULL,
		answer_key_file TEXT,
		content_hash VARCHAR(64) NOT NULL UNIQUE,
		success BOOLEAN NOT NULL,
		error TEXT,
		total_questions INT NOT NULL DEFAULT 0,
		total_images INT NOT NULL DEFAULT 0,
		warnings TEXT[] NOT NULL DEFAULT '{}',
		meta_yaml TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS questions (
		id SERIAL PRIMARY KEY,
		job_id UUID NOT NULL,
		question_number INT NOT NULL,
		question_text TEXT NOT NULL,
		option_a TEXT NOT NULL,
		option_b TEXT NOT NULL,
		option_c TEXT NOT NULL,
		option_d TEXT NOT NULL,
		correct_answer CHAR(1) CHECK (correct_answer IN ('A','B','C','D')),
		confidence_score FLOAT NOT NULL,
		has_answer BOOLEAN NOT NULL DEFAULT FALSE,
		source_notes TEXT,
		page INT NOT NULL DEFAULT 1,
		flagged BOOLEAN NOT NULL DEFAULT FALSE,
		FOREIGN KEY (job_id) REFERENCES extraction_jobs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS question_images (
		id SERIAL PRIMARY KEY,
		job_id UUID NOT NULL,
		page INT NOT NULL,
		image_index INT NOT NULL,
		format VARCHAR(20),
		byte_size INT NOT NULL,
		data BYTEA NOT NULL,
		FOREIGN KEY (job_id) REFERENCES extraction_jobs(id) ON DELETE CASCADE,
		UNIQUE (job_id, page, image_index)
	);

	CREATE TABLE IF NOT EXISTS error_logs (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		source TEXT NOT NULL, -- e.g., "extraction", "export", "duplicate_scan"
		job_id UUID,
		file_path TEXT,
		error_message TEXT NOT NULL,
		suggested_fix TEXT
	);

	CREATE TABLE IF NOT EXISTS admin_events (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		action VARCHAR(255),
		actor VARCHAR(255), -- User email or 'system'
		target TEXT,        -- e.g., job id, question id
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS settings (
		key VARCHAR(255) PRIMARY KEY,
		value TEXT NOT NULL,
		description TEXT,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_by VARCHAR(255)
	);
	`
	_, err := pool.Exec(context.Background(), schemaSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	// Insert default settings if not already present
	defaultSettings := map[string]string{
		"duplicate_similarity_threshold": "0.85",
		"upload_max_bytes":               "33554432",
		"stale_upload_max_age_hours":     "24",
	}

	for key, value := range defaultSettings {
		_, err := pool.Exec(context.Background(), `
			INSERT INTO settings (key, value, description)
			VALUES ($1, $2, $3)
			ON CONFLICT (key) DO NOTHING;
		`, key, value, fmt.Sprintf("Default setting for %s", key))
		if err != nil {
			log.Printf("Warning: Failed to insert default setting %s: %v", key, err)
		}
	}

	return nil
}

// LogError adds an entry to the error_logs table
func LogError(pool *pgxpool.Pool, source, jobID, filePath, errMsg, fixSug string) {
	var jobRef *string
	if jobID != "" {
		jobRef = &jobID
	}
	var pathRef *string
	if filePath != "" {
		pathRef = &filePath
	}
	_, err := pool.Exec(context.Background(), `
		INSERT INTO error_logs (source, job_id, file_path, error_message, suggested_fix)
		VALUES ($1, $2, $3, $4, $5)
	`, source, jobRef, pathRef, errMsg, fixSug)
	if err != nil {
		log.Printf("ERROR: Failed to log error to database: %v. Original error: %s", err, errMsg)
	}
}

// LogAdminEvent adds an entry to the admin_events table
func LogAdminEvent(pool *pgxpool.Pool, actor, action, target, notes string) {
	_, err := pool.Exec(context.Background(), `
		INSERT INTO admin_events (action, actor, target, notes)
		VALUES ($1, $2, $3, $4)
	`, action, actor, target, notes)
	if err != nil {
		log.Printf("ERROR: Failed to log admin event to database: %v. Event: %s by %s on %s", err, action, actor, target)
	}
}

// GetSetting fetches a setting value from the settings table
func GetSetting(pool *pgxpool.Pool, key string) (string, error) {
	var value string
	err := pool.QueryRow(context.Background(), "SELECT value FROM settings WHERE key = $1", key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("setting %s not found: %w", key, err)
	}
	return value, nil
}

// FindJobIDByHash returns the id of a previous extraction run over the
// same uploaded bytes and exam/subject parameters, or "" when no cached
// run exists.
func FindJobIDByHash(pool *pgxpool.Pool, contentHash string) (string, error) {
	var id string
	err := pool.QueryRow(context.Background(),
		"SELECT id FROM extraction_jobs WHERE content_hash = $1", contentHash).Scan(&id)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up content hash: %w", err)
	}
	return id, nil
}

// SaveExtraction persists a job together with its questions and images
// in one transaction.
func SaveExtraction(pool *pgxpool.Pool, job models.ExtractionJob, result models.ExtractionResult, images []models.ExtractedImage) error {
	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var errMsg *string
	if result.Error != "" {
		errMsg = &result.Error
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO extraction_jobs (id, exam, subject, year, source_file, answer_key_file, content_hash, success, error, total_questions, total_images, warnings, meta_yaml)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, job.ID, job.Exam, job.Subject, job.Year, job.SourceFile, job.AnswerKeyFile, job.ContentHash,
		result.Success, errMsg, result.TotalQuestions, result.TotalImages, result.Warnings, job.MetaYAML)
	if err != nil {
		return fmt.Errorf("failed to insert extraction job %s: %w", job.ID, err)
	}

	for _, q := range result.Questions {
		if len(q.Options) != 4 {
			// Enforced at parse time; a violation here means a bug upstream.
			return fmt.Errorf("question %d of job %s has %d options", q.QuestionNumber, job.ID, len(q.Options))
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO questions (job_id, question_number, question_text, option_a, option_b, option_c, option_d, correct_answer, confidence_score, has_answer, source_notes, page)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, job.ID, q.QuestionNumber, q.QuestionText, q.Options[0], q.Options[1], q.Options[2], q.Options[3],
			q.CorrectAnswer, q.ConfidenceScore, q.HasAnswer, q.SourceNotes, q.Page)
		if err != nil {
			return fmt.Errorf("failed to insert question %d for job %s: %w", q.QuestionNumber, job.ID, err)
		}
	}

	for _, img := range images {
		data, decodeErr := decodeImageData(img.Data)
		if decodeErr != nil {
			continue
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO question_images (job_id, page, image_index, format, byte_size, data)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, job.ID, img.Page, img.Index, img.Format, img.Size, data)
		if err != nil {
			return fmt.Errorf("failed to insert image p%d/%d for job %s: %w", img.Page, img.Index, job.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit extraction for job %s: %w", job.ID, err)
	}
	return nil
}

// GetJob fetches a single extraction job by id.
func GetJob(pool *pgxpool.Pool, jobID string) (models.ExtractionJob, error) {
	var job models.ExtractionJob
	err := pool.QueryRow(context.Background(), `
		SELECT id, exam, subject, COALESCE(year, 0), source_file, answer_key_file, content_hash,
		       success, error, total_questions, total_images, warnings, meta_yaml, created_at
		FROM extraction_jobs WHERE id = $1
	`, jobID).Scan(&job.ID, &job.Exam, &job.Subject, &job.Year, &job.SourceFile, &job.AnswerKeyFile,
		&job.ContentHash, &job.Success, &job.Error, &job.TotalQuestions, &job.TotalImages,
		&job.Warnings, &job.MetaYAML, &job.CreatedAt)
	if err != nil {
		return job, fmt.Errorf("failed to fetch job %s: %w", jobID, err)
	}
	return job, nil
}

func decodeImageData(b64 string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(b64)
}

// GetQuestionsByJob fetches all stored questions of a job in document order.
func GetQuestionsByJob(pool *pgxpool.Pool, jobID string) ([]models.StoredQuestion, error) {
	rows, err := pool.Query(context.Background(), `
		SELECT id, job_id, question_number, question_text, option_a, option_b, option_c, option_d,
		       correct_answer, confidence_score, has_answer, COALESCE(source_notes, ''), page, flagged
		FROM questions WHERE job_id = $1 ORDER BY id
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions for job %s: %w", jobID, err)
	}
	defer rows.Close()

	var questions []models.StoredQuestion
	for rows.Next() {
		var q models.StoredQuestion
		if err := rows.Scan(&q.ID, &q.JobID, &q.QuestionNumber, &q.QuestionText,
			&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD,
			&q.CorrectAnswer, &q.ConfidenceScore, &q.HasAnswer, &q.SourceNotes, &q.Page, &q.Flagged); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}
