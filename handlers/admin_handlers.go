
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"qpaper-server/db"
	"qpaper-server/models"
	"qpaper-server/review"
)

// AdminDashboard renders the HTML overview page.
// GET /admin/dashboard
func AdminDashboard(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var jobCount, questionCount, flaggedCount, imageCount int
		err := pool.QueryRow(context.Background(), `
			SELECT
				(SELECT COUNT(*) FROM extraction_jobs),
				(SELECT COUNT(*) FROM questions),
				(SELECT COUNT(*) FROM questions WHERE flagged),
				(SELECT COUNT(*) FROM question_images)
		`).Scan(&jobCount, &questionCount, &flaggedCount, &imageCount)
		if err != nil {
			log.Printf("Error querying dashboard counts: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}

		rows, err := pool.Query(context.Background(), `
			SELECT timestamp, COALESCE(action, ''), COALESCE(actor, ''), COALESCE(target, ''), COALESCE(notes, '')
			FROM admin_events ORDER BY timestamp DESC LIMIT 20
		`)
		if err != nil {
			log.Printf("Error querying admin events: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}
		defer rows.Close()

		var events []models.AdminEvent
		for rows.Next() {
			var e models.AdminEvent
			if err := rows.Scan(&e.Timestamp, &e.Action, &e.Actor, &e.Target, &e.Notes); err != nil {
				log.Printf("Error scanning admin event: %v", err)
				continue
			}
			events = append(events, e)
		}

		c.HTML(http.StatusOK, "admin_dashboard", gin.H{
			"Title":         "qpaper Admin",
			"JobCount":      jobCount,
			"QuestionCount": questionCount,
			"FlaggedCount":  flaggedCount,
			"ImageCount":    imageCount,
			"RecentEvents":  events,
			"GeneratedAt":   time.Now().Format(time.RFC1123),
		})
	}
}

// AdminErrorLogs lists recent extraction/export errors.
// GET /admin/error_logs
func AdminErrorLogs(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := pool.Query(context.Background(), `
			SELECT id, timestamp, source, job_id, file_path, error_message, suggested_fix
			FROM error_logs ORDER BY timestamp DESC LIMIT 100
		`)
		if err != nil {
			log.Printf("Error querying error logs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve error logs"})
			return
		}
		defer rows.Close()

		logs := []models.ErrorLog{}
		for rows.Next() {
			var e models.ErrorLog
			if err := rows.Scan(&e.ID, &e.Timestamp, &e.Source, &e.JobID, &e.FilePath, &e.ErrorMessage, &e.SuggestedFix); err != nil {
				log.Printf("Error scanning error log row: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process error logs"})
				return
			}
			logs = append(logs, e)
		}
		c.JSON(http.StatusOK, logs)
	}
}

// AdminJobStats reports per-job question quality aggregates.
// GET /admin/question_stats
func AdminJobStats(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := pool.Query(context.Background(), `
			SELECT j.id, j.exam, j.subject,
			       COUNT(q.id),
			       COUNT(q.id) FILTER (WHERE q.has_answer),
			       COUNT(q.id) FILTER (WHERE q.flagged),
			       COALESCE(AVG(q.confidence_score), 0),
			       j.total_images
			FROM extraction_jobs j
			LEFT JOIN questions q ON q.job_id = j.id
			GROUP BY j.id
			ORDER BY j.created_at DESC
		`)
		if err != nil {
			log.Printf("Error querying job stats: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve job stats"})
			return
		}
		defer rows.Close()

		stats := []models.JobStats{}
		for rows.Next() {
			var s models.JobStats
			if err := rows.Scan(&s.JobID, &s.Exam, &s.Subject, &s.QuestionCount,
				&s.AnsweredCount, &s.FlaggedCount, &s.AvgConfidence, &s.ImageCount); err != nil {
				log.Printf("Error scanning job stats row: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process job stats"})
				return
			}
			stats = append(stats, s)
		}
		c.JSON(http.StatusOK, stats)
	}
}

// AdminRunDuplicateScan triggers a duplicate-question scan for one job.
// POST /admin/duplicates/:job_id
func AdminRunDuplicateScan(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("job_id")
		actor := c.GetString("user_email")
		if actor == "" {
			actor = "admin"
		}
		pairs, err := review.ScanJob(pool, jobID, actor)
		if err != nil {
			log.Printf("Duplicate scan failed for %s: %v", jobID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Duplicate scan failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"job_id":          jobID,
			"threshold":       review.SimilarityThreshold(pool),
			"duplicate_pairs": pairs,
		})
	}
}

// AdminSettings lists all settings.
// GET /admin/settings
func AdminSettings(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := pool.Query(context.Background(), `
			SELECT key, value, COALESCE(description, ''), updated_at, COALESCE(updated_by, '')
			FROM settings ORDER BY key
		`)
		if err != nil {
			log.Printf("Error querying settings: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve settings"})
			return
		}
		defer rows.Close()

		settings := []models.Setting{}
		for rows.Next() {
			var s models.Setting
			if err := rows.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt, &s.UpdatedBy); err != nil {
				log.Printf("Error scanning setting row: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process settings"})
				return
			}
			settings = append(settings, s)
		}
		c.JSON(http.StatusOK, settings)
	}
}

// AdminUpdateSetting upserts one setting.
// POST /admin/settings
func AdminUpdateSetting(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Key   string `json:"key" binding:"required"`
			Value string `json:"value" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		actor := c.GetString("user_email")
		_, err := pool.Exec(context.Background(), `
			INSERT INTO settings (key, value, updated_at, updated_by)
			VALUES ($1, $2, CURRENT_TIMESTAMP, $3)
			ON CONFLICT (key) DO UPDATE SET
				value = EXCLUDED.value,
				updated_at = EXCLUDED.updated_at,
				updated_by = EXCLUDED.updated_by
		`, req.Key, req.Value, actor)
		if err != nil {
			log.Printf("Error updating setting %s: %v", req.Key, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update setting"})
			return
		}
		db.LogAdminEvent(pool, actor, "setting_updated", req.Key, req.Value)
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	}
}
