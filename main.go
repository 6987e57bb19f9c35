
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"qpaper-server/config"
	"qpaper-server/db"
	"qpaper-server/extraction"
	"qpaper-server/handlers"
	"qpaper-server/middleware"
	"qpaper-server/review"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Initialize database connection pool
	pool, err := db.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	// Ensure database schema is set up
	if err := db.CreateSchema(pool); err != nil {
		log.Fatalf("Error creating database schema: %v", err)
	}

	// The extraction pipeline carries its own config; no process-wide state.
	extractor := extraction.NewService(extraction.Config{
		OCRLanguage: cfg.OCR.Language,
		OCRZoom:     cfg.OCR.Zoom,
	})

	// Set Gin mode
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// Load HTML templates for admin UI
	renderer := multitemplate.NewRenderer()
	renderer.AddFromFiles("admin_dashboard", "templates/layout.html", "templates/admin_dashboard.html")
	router.HTMLRender = renderer

	// Middleware
	router.Use(middleware.Logger())
	authMiddleware := middleware.AuthMiddleware(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer)

	// API Routes (version 1)
	apiV1 := router.Group("/api/v1")
	apiV1.Use(authMiddleware)
	{
		apiV1.POST("/papers/extract", handlers.ExtractPaper(pool, extractor, cfg))
		apiV1.GET("/papers", handlers.ListPapers(pool))
		apiV1.GET("/papers/:job_id", handlers.GetPaper(pool))
		apiV1.GET("/papers/:job_id/csv", handlers.GetPaperCSV(pool, cfg))
	}

	// Admin Routes
	admin := router.Group("/admin")
	admin.Use(authMiddleware)
	admin.Use(middleware.RoleCheckMiddleware([]string{"admin", "reviewer"}))
	{
		admin.GET("/dashboard", handlers.AdminDashboard(pool))
		admin.GET("/jobs", handlers.ListPapers(pool))
		admin.GET("/error_logs", handlers.AdminErrorLogs(pool))
		admin.GET("/question_stats", handlers.AdminJobStats(pool))
		admin.GET("/settings", handlers.AdminSettings(pool))
		admin.POST("/settings", handlers.AdminUpdateSetting(pool))
		admin.POST("/duplicates/:job_id", handlers.AdminRunDuplicateScan(pool))
	}

	// Background job: periodic duplicate-question scan over stored jobs.
	go func() {
		ticker := time.NewTicker(cfg.DuplicateScan)
		defer ticker.Stop()
		for range ticker.C {
			log.Println("Running scheduled duplicate-question scan...")
			if err := review.ScanAll(pool); err != nil {
				log.Printf("Error during scheduled duplicate scan: %v", err)
				db.LogAdminEvent(pool, "system", "duplicate_scan_failed", "all_jobs", fmt.Sprintf("Error: %v", err))
			} else {
				log.Println("Scheduled duplicate scan completed.")
			}
		}
	}()

	// Background job: clean up stale uploaded PDFs.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			removed, err := cleanStaleUploads(pool, cfg.UploadDir)
			if err != nil {
				log.Printf("Error cleaning stale uploads: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("Removed %d stale uploads from %s", removed, cfg.UploadDir)
			}
		}
	}()

	// Start the server
	srv := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}

	// Goroutine to gracefully shut down the server
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("qpaper server starting on %s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server startup error: %v", err)
	}
	log.Println("Server exited gracefully.")
}

// cleanStaleUploads removes uploaded PDFs older than the configured
// maximum age. Extraction results live in the database; the files are
// only needed while a job runs.
func cleanStaleUploads(pool *pgxpool.Pool, uploadDir string) (int, error) {
	maxAge := 24 * time.Hour
	if raw, err := db.GetSetting(pool, "stale_upload_max_age_hours"); err == nil {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			maxAge = time.Duration(hours) * time.Hour
		}
	}
	entries, err := os.ReadDir(uploadDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pdf" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(uploadDir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

