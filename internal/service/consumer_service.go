package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/parv18050212/ai-tutor/internal/dto"
	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/repository/specification"
	"github.com/parv18050212/ai-tutor/internal/repository/unitofwork"
	"github.com/parv18050212/ai-tutor/pkg/chunker"
	"github.com/parv18050212/ai-tutor/pkg/embedding"
	"github.com/parv18050212/ai-tutor/pkg/events"
	pktNats "github.com/parv18050212/ai-tutor/pkg/nats"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
	chunkSize         int
	chunkOverlap      int
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
	chunkSize int,
	chunkOverlap int,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedMaterialMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing embeddings for MaterialId: %s", payload.MaterialId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	material, err := uow.CourseMaterialRepository().FindOne(ctx, specification.ByID{ID: payload.MaterialId})
	if err != nil {
		log.Printf("[ERROR] Failed to get material %s: %v", payload.MaterialId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if material == nil {
		log.Printf("[ERROR] Material not found: %s", payload.MaterialId)
		msg.Ack() // Material deleted? Ack.
		return
	}

	chunks := chunker.Split(material.Content, cs.chunkSize, cs.chunkOverlap)
	log.Printf("[INFO] Material %s split into %d chunks", payload.MaterialId, len(chunks))

	var newChunks []*entity.CourseChunk
	for _, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(ctx, chunk.Content, embedding.TaskTypeDocument)
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of material %s: %v", chunk.Index, payload.MaterialId, err)
			msg.Nack()
			return
		}

		newChunks = append(newChunks, &entity.CourseChunk{
			Id:        uuid.New(),
			Content:   chunk.Content,
			Embedding: res.Embedding.Values,
			Metadata: map[string]interface{}{
				"source_document": material.Title,
				"position_index":  chunk.Index,
				"char_start":      chunk.StartOffset,
				"char_end":        chunk.EndOffset,
				"exam_id":         material.ExamId,
				"subject_id":      material.SubjectId,
				"chapter_id":      material.ChapterId,
			},
			MaterialId: material.Id,
			ChunkIndex: chunk.Index,
			CreatedAt:  time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.CourseChunkRepository().DeleteByMaterialId(ctx, material.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old chunks: %v", err)
		msg.Nack()
		return
	}

	if len(newChunks) > 0 {
		if err := uow.CourseChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			log.Printf("[ERROR] Failed to create chunks: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.New(events.TypeMaterialIngested, map[string]interface{}{
			"material_id": material.Id,
			"title":       material.Title,
			"chapter_id":  material.ChapterId,
			"chunk_count": len(newChunks),
		})
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish %s event: %v", events.TypeMaterialIngested, err)
		}
	}

	log.Printf("[SUCCESS] Material processed: %d chunks for MaterialId: %s", len(newChunks), payload.MaterialId)
	msg.Ack()
}
