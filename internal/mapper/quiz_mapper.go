package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/model"
)

type QuizMapper struct{}

func NewQuizMapper() *QuizMapper {
	return &QuizMapper{}
}

func (m *QuizMapper) ToModel(e *entity.QuizResult) *model.QuizResult {
	if e == nil {
		return nil
	}
	return &model.QuizResult{
		Id:                        e.Id,
		UserId:                    e.UserId,
		QuizId:                    e.QuizId,
		ExamType:                  e.ExamType,
		SubjectName:               e.SubjectName,
		ChapterName:               e.ChapterName,
		DifficultyLevel:           e.DifficultyLevel,
		Score:                     e.Score,
		TotalQuestions:            e.TotalQuestions,
		TimeTaken:                 e.TimeTaken,
		ConceptsMastered:          marshalConcepts(e.ConceptsMastered),
		ConceptsNeedingWork:       marshalConcepts(e.ConceptsNeedingWork),
		ExamReadinessScore:        e.ExamReadinessScore,
		RecommendedNextDifficulty: e.RecommendedNextDifficulty,
		CreatedAt:                 e.CreatedAt,
	}
}

func (m *QuizMapper) ToEntity(mo *model.QuizResult) *entity.QuizResult {
	if mo == nil {
		return nil
	}
	return &entity.QuizResult{
		Id:                        mo.Id,
		UserId:                    mo.UserId,
		QuizId:                    mo.QuizId,
		ExamType:                  mo.ExamType,
		SubjectName:               mo.SubjectName,
		ChapterName:               mo.ChapterName,
		DifficultyLevel:           mo.DifficultyLevel,
		Score:                     mo.Score,
		TotalQuestions:            mo.TotalQuestions,
		TimeTaken:                 mo.TimeTaken,
		ConceptsMastered:          unmarshalConcepts(mo.ConceptsMastered),
		ConceptsNeedingWork:       unmarshalConcepts(mo.ConceptsNeedingWork),
		ExamReadinessScore:        mo.ExamReadinessScore,
		RecommendedNextDifficulty: mo.RecommendedNextDifficulty,
		CreatedAt:                 mo.CreatedAt,
	}
}

func marshalConcepts(concepts []string) datatypes.JSON {
	if len(concepts) == 0 {
		return datatypes.JSON("[]")
	}
	data, err := json.Marshal(concepts)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}

func unmarshalConcepts(data datatypes.JSON) []string {
	var concepts []string
	if len(data) == 0 {
		return concepts
	}
	_ = json.Unmarshal(data, &concepts)
	return concepts
}
