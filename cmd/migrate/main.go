package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/parv18050212/ai-tutor/internal/model"
	"github.com/parv18050212/ai-tutor/pkg/database"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions (Things GORM AutoMigrate doesn't do)
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.CourseMaterial{},
		&model.CourseChunk{},
		&model.ChatSession{},
		&model.ChatTurn{},
		&model.QuizResult{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Constraints GORM cannot express
	log.Println("Step 3: Creating Indexes...")

	postMigrationSQL := []string{
		// At most one active session per learner per chapter. Archived
		// sessions are exempt so history stays queryable.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_chat_sessions_active_user_chapter
		 ON chat_sessions (user_id, chapter_id)
		 WHERE status = 'active' AND deleted_at IS NULL;`,

		// ivfflat index for cosine similarity search over course chunks
		`CREATE INDEX IF NOT EXISTS idx_course_chunks_embedding
		 ON course_chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);`,

		`CREATE INDEX IF NOT EXISTS idx_chat_turns_session_created
		 ON chat_turns (session_id, created_at);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
