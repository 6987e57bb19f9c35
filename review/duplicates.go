
package review

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"qpaper-server/db"
	"qpaper-server/models"
	"qpaper-server/utils"
)

const defaultThreshold = 0.85

// FindDuplicates runs the pairwise similarity scan over stored
// questions. O(n^2) by design; question banks per job are small.
func FindDuplicates(questions []models.StoredQuestion, threshold float64) []models.DuplicatePair {
	var pairs []models.DuplicatePair
	for i := 0; i < len(questions); i++ {
		for j := i + 1; j < len(questions); j++ {
			sim := utils.SimilarityRatio(questions[i].QuestionText, questions[j].QuestionText)
			if sim >= threshold {
				pairs = append(pairs, models.DuplicatePair{
					QuestionID:      questions[i].ID,
					OtherQuestionID: questions[j].ID,
					Similarity:      sim,
					QuestionText:    questions[i].QuestionText,
					OtherText:       questions[j].QuestionText,
				})
			}
		}
	}
	return pairs
}

// ScanJob loads a job's questions, finds duplicates against the
// configured threshold, flags them, and records an admin event.
func ScanJob(pool *pgxpool.Pool, jobID, actor string) ([]models.DuplicatePair, error) {
	threshold := SimilarityThreshold(pool)

	questions, err := db.GetQuestionsByJob(pool, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for duplicate scan of %s: %w", jobID, err)
	}

	pairs := FindDuplicates(questions, threshold)
	if len(pairs) == 0 {
		return pairs, nil
	}

	flagged := make(map[int]bool)
	for _, p := range pairs {
		flagged[p.OtherQuestionID] = true
	}
	for id := range flagged {
		_, err := pool.Exec(context.Background(),
			"UPDATE questions SET flagged = TRUE WHERE id = $1", id)
		if err != nil {
			db.LogError(pool, "duplicate_scan", jobID, "", fmt.Sprintf("Failed to flag question %d: %v", id, err), "Check database connectivity.")
		}
	}

	db.LogAdminEvent(pool, actor, "duplicate_scan", jobID,
		fmt.Sprintf("%d duplicate pairs found at threshold %.2f, %d questions flagged", len(pairs), threshold, len(flagged)))
	return pairs, nil
}

// ScanAll runs the duplicate scan over every stored job. Called by the
// periodic background job in main.
func ScanAll(pool *pgxpool.Pool) error {
	rows, err := pool.Query(context.Background(), "SELECT id FROM extraction_jobs WHERE success = TRUE")
	if err != nil {
		return fmt.Errorf("failed to list jobs for duplicate scan: %w", err)
	}
	defer rows.Close()

	var jobIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan job id: %w", err)
		}
		jobIDs = append(jobIDs, id)
	}

	for _, id := range jobIDs {
		if _, err := ScanJob(pool, id, "system"); err != nil {
			log.Printf("Duplicate scan failed for job %s: %v", id, err)
			db.LogError(pool, "duplicate_scan", id, "", fmt.Sprintf("Scan failed: %v", err), "")
		}
	}
	return nil
}

// SimilarityThreshold reads the scan threshold from the settings table,
// falling back to the default when unset or malformed.
func SimilarityThreshold(pool *pgxpool.Pool) float64 {
	raw, err := db.GetSetting(pool, "duplicate_similarity_threshold")
	if err != nil {
		return defaultThreshold
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 || v > 1 {
		log.Printf("Invalid duplicate_similarity_threshold %q, using default", raw)
		return defaultThreshold
	}
	return v
}
