package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/parv18050212/ai-tutor/internal/dto"
	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/repository/specification"
	"github.com/parv18050212/ai-tutor/internal/repository/unitofwork"
)

type IMaterialService interface {
	Ingest(ctx context.Context, userId uuid.UUID, req *dto.IngestMaterialRequest) (*dto.MaterialResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.MaterialResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) (bool, error)
}

type materialService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
}

func NewMaterialService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
) IMaterialService {
	return &materialService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
	}
}

// Ingest stores the material and queues it for chunking and embedding. The
// request path never waits on the embedding provider.
func (s *materialService) Ingest(ctx context.Context, userId uuid.UUID, req *dto.IngestMaterialRequest) (*dto.MaterialResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	material := entity.CourseMaterial{
		Id:          uuid.New(),
		UserId:      userId,
		Title:       req.Title,
		Content:     req.Content,
		ExamId:      req.ExamId,
		SubjectId:   req.SubjectId,
		ChapterId:   req.ChapterId,
		ExamName:    req.ExamName,
		SubjectName: req.SubjectName,
		ChapterName: req.ChapterName,
		CreatedAt:   time.Now(),
	}

	if err := uow.CourseMaterialRepository().Create(ctx, &material); err != nil {
		return nil, err
	}

	msgPayload := dto.PublishEmbedMaterialMessage{
		MaterialId: material.Id,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}

	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	return materialToResponse(&material), nil
}

func (s *materialService) List(ctx context.Context, userId uuid.UUID) ([]*dto.MaterialResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	materials, err := uow.CourseMaterialRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.MaterialResponse, len(materials))
	for i, m := range materials {
		res[i] = materialToResponse(m)
	}
	return res, nil
}

// Delete removes the material and its chunks together so searches never hit
// orphaned vectors.
func (s *materialService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	material, err := uow.CourseMaterialRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return false, err
	}
	if material == nil {
		return false, nil
	}

	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	if err := uow.CourseChunkRepository().DeleteByMaterialId(ctx, material.Id); err != nil {
		return false, err
	}
	if err := uow.CourseMaterialRepository().Delete(ctx, material.Id); err != nil {
		return false, err
	}

	if err := uow.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func materialToResponse(m *entity.CourseMaterial) *dto.MaterialResponse {
	return &dto.MaterialResponse{
		Id:          m.Id,
		Title:       m.Title,
		ExamName:    m.ExamName,
		SubjectName: m.SubjectName,
		ChapterName: m.ChapterName,
		ChapterId:   m.ChapterId,
		CreatedAt:   m.CreatedAt,
	}
}
