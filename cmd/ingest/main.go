package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/parv18050212/ai-tutor/internal/config"
	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/repository/unitofwork"
	"github.com/parv18050212/ai-tutor/pkg/chunker"
	"github.com/parv18050212/ai-tutor/pkg/database"
	"github.com/parv18050212/ai-tutor/pkg/embedding"
)

// Bulk ingestion CLI. Walks a directory of .txt/.md files and loads each one
// as a course material with its chunks embedded inline, bypassing the async
// queue. Useful for seeding a fresh database with a chapter's content.
func main() {
	var (
		dir         = flag.String("dir", "", "directory of .txt/.md files to ingest")
		userIdStr   = flag.String("user", "", "owner user id (uuid)")
		examId      = flag.String("exam-id", "", "exam id")
		subjectId   = flag.String("subject-id", "", "subject id")
		chapterId   = flag.String("chapter-id", "", "chapter id")
		examName    = flag.String("exam-name", "", "exam display name")
		subjectName = flag.String("subject-name", "", "subject display name")
		chapterName = flag.String("chapter-name", "", "chapter display name")
	)
	flag.Parse()

	if *dir == "" || *userIdStr == "" || *chapterId == "" {
		color.Red("Usage: ingest -dir <path> -user <uuid> -chapter-id <id> [scope flags]")
		os.Exit(1)
	}

	userId, err := uuid.Parse(*userIdStr)
	if err != nil {
		color.Red("Invalid user id: %v", err)
		os.Exit(1)
	}

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var provider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbeddingModel)
	} else {
		provider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini, cfg.Ai.EmbeddingModel, cfg.Ai.FallbackEmbeddingModel)
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	ctx := context.Background()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		color.Red("Failed to read directory: %v", err)
		os.Exit(1)
	}

	color.Cyan("🚀 Ingesting course materials from %s\n", *dir)

	var ingested, failed int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}

		path := filepath.Join(*dir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			color.Red("Failed to read %s: %v", e.Name(), err)
			failed++
			continue
		}

		title := strings.TrimSuffix(e.Name(), ext)
		color.Yellow("\n[INGEST] %s", title)

		material := &entity.CourseMaterial{
			UserId:      userId,
			Title:       title,
			Content:     string(raw),
			ExamId:      *examId,
			SubjectId:   *subjectId,
			ChapterId:   *chapterId,
			ExamName:    *examName,
			SubjectName: *subjectName,
			ChapterName: *chapterName,
		}

		chunks := chunker.Split(material.Content, cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap)
		color.White("  %d chunks", len(chunks))

		chunkEntities := make([]*entity.CourseChunk, 0, len(chunks))
		embedFailed := false
		for _, c := range chunks {
			res, err := provider.Generate(ctx, c.Content, embedding.TaskTypeDocument)
			if err != nil {
				color.Red("  Embedding failed on chunk %d: %v", c.Index, err)
				embedFailed = true
				break
			}
			chunkEntities = append(chunkEntities, &entity.CourseChunk{
				Content:    c.Content,
				Embedding:  res.Embedding.Values,
				ChunkIndex: c.Index,
				Metadata: map[string]interface{}{
					"source_document": material.Title,
					"position_index":  c.Index,
					"char_start":      c.StartOffset,
					"char_end":        c.EndOffset,
					"exam_id":         material.ExamId,
					"subject_id":      material.SubjectId,
					"chapter_id":      material.ChapterId,
				},
			})
		}
		if embedFailed {
			failed++
			continue
		}

		uow := uowFactory.NewUnitOfWork(ctx)
		if err := uow.Begin(ctx); err != nil {
			color.Red("  Failed to begin transaction: %v", err)
			failed++
			continue
		}

		if err := uow.CourseMaterialRepository().Create(ctx, material); err != nil {
			_ = uow.Rollback()
			color.Red("  Failed to create material: %v", err)
			failed++
			continue
		}
		for _, ce := range chunkEntities {
			ce.MaterialId = material.Id
		}
		if err := uow.CourseChunkRepository().CreateBulk(ctx, chunkEntities); err != nil {
			_ = uow.Rollback()
			color.Red("  Failed to store chunks: %v", err)
			failed++
			continue
		}
		if err := uow.Commit(); err != nil {
			color.Red("  Failed to commit: %v", err)
			failed++
			continue
		}

		color.Green("  Stored material %s with %d chunks", material.Id, len(chunkEntities))
		ingested++
	}

	color.Cyan("\n✅ Done: %d ingested, %d failed", ingested, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
