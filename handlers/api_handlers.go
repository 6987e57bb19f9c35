
package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"qpaper-server/config"
	"qpaper-server/db"
	"qpaper-server/export"
	"qpaper-server/extraction"
	"qpaper-server/models"
	"qpaper-server/utils"
)

const sourceName = "extraction"

// ExtractPaper accepts a question PDF (and optionally an answer-key PDF
// and a paper.yaml metadata block), runs the extraction pipeline, and
// persists the job. Re-uploading the same bytes for the same exam and
// subject returns the cached run instead of re-extracting.
// POST /api/v1/papers/extract
func ExtractPaper(pool *pgxpool.Pool, svc *extraction.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		exam := c.PostForm("exam")
		subject := c.PostForm("subject")
		if exam == "" || subject == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "exam and subject form fields are required"})
			return
		}
		year := 0
		if y := c.PostForm("year"); y != "" {
			v, err := strconv.Atoi(y)
			if err != nil || v < 1900 || v > 2100 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a four-digit year"})
				return
			}
			year = v
		}

		questionHeader, err := c.FormFile("question_pdf")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "question_pdf file is required"})
			return
		}
		if max := uploadMaxBytes(pool); max > 0 && questionHeader.Size > max {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("question_pdf exceeds the %d byte upload limit", max)})
			return
		}
		questionBytes, err := readUpload(questionHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read question_pdf upload"})
			return
		}

		// Cache key: uploaded bytes plus the exam/subject parameters.
		hasher := sha256.New()
		hasher.Write(questionBytes)
		hasher.Write([]byte(exam))
		hasher.Write([]byte(subject))
		contentHash := hex.EncodeToString(hasher.Sum(nil))

		if cachedID, err := db.FindJobIDByHash(pool, contentHash); err != nil {
			log.Printf("Cache lookup failed: %v", err)
		} else if cachedID != "" {
			respondWithJob(c, pool, cachedID, true, http.StatusOK)
			return
		}

		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare upload directory"})
			return
		}

		jobID := uuid.NewString()
		// Unique temp names keep concurrent extractions from contending.
		questionPath := filepath.Join(cfg.UploadDir, jobID+"-paper.pdf")
		if err := os.WriteFile(questionPath, questionBytes, 0o644); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded paper"})
			return
		}

		answerKeyPath := ""
		var answerKeyFile *string
		if keyHeader, err := c.FormFile("answer_key_pdf"); err == nil {
			keyBytes, err := readUpload(keyHeader)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read answer_key_pdf upload"})
				return
			}
			answerKeyPath = filepath.Join(cfg.UploadDir, jobID+"-key.pdf")
			if err := os.WriteFile(answerKeyPath, keyBytes, 0o644); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded answer key"})
				return
			}
			answerKeyFile = utils.StringPtr(keyHeader.Filename)
		}

		var metaYAML *string
		if metaHeader, err := c.FormFile("paper_meta"); err == nil {
			metaBytes, err := readUpload(metaHeader)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read paper_meta upload"})
				return
			}
			if _, err := export.ParsePaperMeta(metaBytes); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			metaYAML = utils.StringPtr(string(metaBytes))
		}

		result := svc.Extract(questionPath, answerKeyPath)
		if !result.Success {
			db.LogError(pool, sourceName, jobID, questionHeader.Filename, result.Error, "Ensure the upload is a readable PDF document.")
		}

		job := models.ExtractionJob{
			ID:            jobID,
			Exam:          exam,
			Subject:       subject,
			Year:          year,
			SourceFile:    questionHeader.Filename,
			AnswerKeyFile: answerKeyFile,
			ContentHash:   contentHash,
			MetaYAML:      metaYAML,
		}
		if err := db.SaveExtraction(pool, job, result, result.Images); err != nil {
			log.Printf("Failed to persist extraction job %s: %v", jobID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist extraction result"})
			return
		}

		status := http.StatusCreated
		if !result.Success {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"job_id": jobID, "cached": false, "result": result})
	}
}

// ListPapers lists extraction jobs, newest first.
// GET /api/v1/papers
func ListPapers(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := pool.Query(context.Background(), `
			SELECT id, exam, subject, COALESCE(year, 0), source_file, success, total_questions, total_images, created_at
			FROM extraction_jobs ORDER BY created_at DESC LIMIT 200
		`)
		if err != nil {
			log.Printf("Error querying extraction jobs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve jobs"})
			return
		}
		defer rows.Close()

		jobs := []models.ExtractionJob{}
		for rows.Next() {
			var job models.ExtractionJob
			if err := rows.Scan(&job.ID, &job.Exam, &job.Subject, &job.Year, &job.SourceFile,
				&job.Success, &job.TotalQuestions, &job.TotalImages, &job.CreatedAt); err != nil {
				log.Printf("Error scanning job row: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process job data"})
				return
			}
			jobs = append(jobs, job)
		}
		c.JSON(http.StatusOK, jobs)
	}
}

// GetPaper returns one job with its stored questions.
// GET /api/v1/papers/:job_id
func GetPaper(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		respondWithJob(c, pool, c.Param("job_id"), false, http.StatusOK)
	}
}

// GetPaperCSV streams the job's questions as the downstream tabular
// contract.
// GET /api/v1/papers/:job_id/csv
func GetPaperCSV(pool *pgxpool.Pool, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("job_id")
		job, err := db.GetJob(pool, jobID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		questions, err := db.GetQuestionsByJob(pool, jobID)
		if err != nil {
			log.Printf("Error loading questions for CSV export of %s: %v", jobID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load questions"})
			return
		}

		meta := models.PaperMeta{}
		if job.MetaYAML != nil {
			parsed, err := export.ParsePaperMeta([]byte(*job.MetaYAML))
			if err != nil {
				db.LogError(pool, "export", jobID, "", fmt.Sprintf("Stored paper metadata is invalid: %v", err), "Re-upload the paper with a corrected paper.yaml.")
			} else {
				meta = parsed
			}
		}
		meta = export.MergeMeta(meta, job, cfg.Export)

		rows := export.Flatten(questions, meta)
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-questions.csv", jobID))
		if err := export.WriteCSV(c.Writer, rows); err != nil {
			log.Printf("Error writing CSV for job %s: %v", jobID, err)
		}
	}
}

// respondWithJob writes a job plus its questions as one JSON document.
func respondWithJob(c *gin.Context, pool *pgxpool.Pool, jobID string, cached bool, status int) {
	job, err := db.GetJob(pool, jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	job.Cached = cached
	questions, err := db.GetQuestionsByJob(pool, jobID)
	if err != nil {
		log.Printf("Error loading questions for job %s: %v", jobID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load questions"})
		return
	}
	c.JSON(status, gin.H{"job": job, "questions": questions})
}

// uploadMaxBytes reads the upload size limit from settings; 0 disables
// the check.
func uploadMaxBytes(pool *pgxpool.Pool) int64 {
	raw, err := db.GetSetting(pool, "upload_max_bytes")
	if err != nil {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
