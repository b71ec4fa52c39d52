package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parv18050212/ai-tutor/internal/config"
	"github.com/parv18050212/ai-tutor/internal/dto"
	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/pkg/logger"
	"github.com/parv18050212/ai-tutor/internal/repository/specification"
	"github.com/parv18050212/ai-tutor/internal/repository/unitofwork"
	"github.com/parv18050212/ai-tutor/pkg/events"
	"github.com/parv18050212/ai-tutor/pkg/llm"
	pktNats "github.com/parv18050212/ai-tutor/pkg/nats"
	"github.com/parv18050212/ai-tutor/pkg/rag/retriever"
)

// quizTopK is deliberately larger than the chat top-k: question generation
// wants broad chapter coverage, not just the closest match.
const quizTopK = 10

type IQuizService interface {
	Generate(ctx context.Context, userId uuid.UUID, req *dto.GenerateQuizRequest) (*dto.GenerateQuizResponse, error)
	SubmitResult(ctx context.Context, userId uuid.UUID, req *dto.SubmitQuizResultRequest) (*dto.QuizResultResponse, error)
	GetResults(ctx context.Context, userId uuid.UUID) ([]*dto.QuizResultResponse, error)
}

type quizService struct {
	uowFactory     unitofwork.RepositoryFactory
	retriever      contextRetriever
	llmProvider    llm.LLMProvider
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
	ragCfg         config.RagConfig
}

func NewQuizService(
	uowFactory unitofwork.RepositoryFactory,
	ragRetriever contextRetriever,
	llmProvider llm.LLMProvider,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	ragCfg config.RagConfig,
) IQuizService {
	return &quizService{
		uowFactory:     uowFactory,
		retriever:      ragRetriever,
		llmProvider:    llmProvider,
		eventPublisher: eventPublisher,
		logger:         log,
		ragCfg:         ragCfg,
	}
}

// Generate builds a quiz from course material. Question generation reads
// loosely: a low threshold and a wide top-k pull in the whole chapter.
func (s *quizService) Generate(ctx context.Context, userId uuid.UUID, req *dto.GenerateQuizRequest) (*dto.GenerateQuizResponse, error) {
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}
	questionCount := req.QuestionCount
	if questionCount <= 0 {
		questionCount = 5
	}

	// Wider net than chat: comprehensive questions need more content.
	query := fmt.Sprintf("key concepts of %s", req.ChapterName)
	scored, err := s.retriever.Retrieve(ctx, query, req.ChapterId, retriever.Params{
		TopK:      quizTopK,
		Threshold: s.ragCfg.QuizThreshold,
	})
	if err != nil {
		return nil, err
	}

	context := retriever.BuildContext(scored)
	if context == "" {
		// An empty corpus still yields a quiz: fall back to the chapter's
		// general framing rather than failing the request.
		context = fmt.Sprintf(
			"Basic concepts and principles related to %s in %s. Focus on %s theory, formulas, and problem-solving techniques.",
			req.ChapterName, req.SubjectName, req.SubjectName,
		)
		s.logger.Warn("quiz", "no course material above threshold, using generic context", map[string]interface{}{
			"chapter_id": req.ChapterId,
		})
	}

	quizPrompt := buildQuizPrompt(req.ChapterName, difficulty, questionCount, context)

	raw, err := s.llmProvider.Generate(ctx, quizPrompt,
		llm.WithTemperature(0.1),
		llm.WithTopP(0.1),
		llm.WithTopK(40),
		llm.WithMaxTokens(2048),
	)
	if err != nil {
		return nil, err
	}

	questions, err := parseQuizQuestions(raw)
	if err != nil {
		s.logger.Error("quiz", "failed to parse generated quiz", map[string]interface{}{
			"chapter_id": req.ChapterId,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("quiz generation produced malformed output")
	}

	return &dto.GenerateQuizResponse{
		QuizId:    uuid.NewString(),
		Questions: questions,
	}, nil
}

func (s *quizService) SubmitResult(ctx context.Context, userId uuid.UUID, req *dto.SubmitQuizResultRequest) (*dto.QuizResultResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	result := entity.QuizResult{
		Id:                        uuid.New(),
		UserId:                    userId,
		QuizId:                    req.QuizId,
		ExamType:                  req.ExamType,
		SubjectName:               req.SubjectName,
		ChapterName:               req.ChapterName,
		DifficultyLevel:           req.DifficultyLevel,
		Score:                     req.Score,
		TotalQuestions:            req.TotalQuestions,
		TimeTaken:                 req.TimeTaken,
		ConceptsMastered:          req.ConceptsMastered,
		ConceptsNeedingWork:       req.ConceptsNeedingWork,
		ExamReadinessScore:        req.ExamReadinessScore,
		RecommendedNextDifficulty: req.RecommendedNextDifficulty,
		CreatedAt:                 time.Now(),
	}

	if err := uow.QuizResultRepository().Create(ctx, &result); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.New(events.TypeQuizCompleted, map[string]interface{}{
			"user_id":      userId,
			"quiz_id":      req.QuizId,
			"chapter_name": req.ChapterName,
			"score":        req.Score,
			"total":        req.TotalQuestions,
		})
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("quiz", "failed to publish quiz completed event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return quizResultToResponse(&result), nil
}

func (s *quizService) GetResults(ctx context.Context, userId uuid.UUID) ([]*dto.QuizResultResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	results, err := uow.QuizResultRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.QuizResultResponse, len(results))
	for i, r := range results {
		res[i] = quizResultToResponse(r)
	}
	return res, nil
}

func quizResultToResponse(r *entity.QuizResult) *dto.QuizResultResponse {
	return &dto.QuizResultResponse{
		Id:                        r.Id,
		QuizId:                    r.QuizId,
		SubjectName:               r.SubjectName,
		ChapterName:               r.ChapterName,
		DifficultyLevel:           r.DifficultyLevel,
		Score:                     r.Score,
		TotalQuestions:            r.TotalQuestions,
		ExamReadinessScore:        r.ExamReadinessScore,
		RecommendedNextDifficulty: r.RecommendedNextDifficulty,
		CreatedAt:                 r.CreatedAt,
	}
}

func buildQuizPrompt(chapterName, difficulty string, questionCount int, context string) string {
	var prompt strings.Builder

	fmt.Fprintf(&prompt, "You are an exam question writer. Create exactly %d multiple-choice questions about %s at %s difficulty.\n\n", questionCount, chapterName, difficulty)
	prompt.WriteString("Base every question strictly on this course material:\n\n")
	prompt.WriteString(context)
	prompt.WriteString("\n\nReturn ONLY a JSON array, no other text. Each element must have exactly these fields:\n")
	prompt.WriteString(`{"question": "...", "options": ["A", "B", "C", "D"], "correct_answer": "...", "explanation": "...", "concept": "..."}`)
	prompt.WriteString("\n\nThe correct_answer must be one of the options verbatim.")

	return prompt.String()
}

// parseQuizQuestions tolerates markdown code fences around the JSON array,
// which Gemini adds despite instructions.
func parseQuizQuestions(raw string) ([]dto.QuizQuestion, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var questions []dto.QuizQuestion
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions in response")
	}
	return questions, nil
}
