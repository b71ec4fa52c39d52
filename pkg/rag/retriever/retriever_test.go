package retriever

import (
	"context"
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/repository/contract"
	"github.com/parv18050212/ai-tutor/internal/repository/specification"
	"github.com/parv18050212/ai-tutor/pkg/embedding"
)

// fakeProvider maps known texts to fixed vectors.
type fakeProvider struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	vec, ok := f.vectors[text]
	if !ok {
		vec = []float32{0, 0, 1}
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

// fakeChunkRepo computes cosine similarity in memory the way pgvector would.
type fakeChunkRepo struct {
	chunks    []*entity.CourseChunk
	searchErr error
}

func (f *fakeChunkRepo) Create(ctx context.Context, chunk *entity.CourseChunk) error {
	f.chunks = append(f.chunks, chunk)
	return nil
}

func (f *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.CourseChunk) error {
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func (f *fakeChunkRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeChunkRepo) DeleteByMaterialId(ctx context.Context, materialId uuid.UUID) error {
	return nil
}

func (f *fakeChunkRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CourseChunk, error) {
	return nil, nil
}

func (f *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CourseChunk, error) {
	return f.chunks, nil
}

func (f *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.chunks)), nil
}

func (f *fakeChunkRepo) SearchSimilarWithScore(ctx context.Context, embed []float32, limit int, threshold float64, chapterId string) ([]*contract.ScoredCourseChunk, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}

	var scored []*contract.ScoredCourseChunk
	for _, chunk := range f.chunks {
		if chapterId != "" {
			if chunk.Metadata == nil || chunk.Metadata["chapter_id"] != chapterId {
				continue
			}
		}
		sim := cosine(embed, chunk.Embedding)
		if sim >= threshold {
			scored = append(scored, &contract.ScoredCourseChunk{Chunk: chunk, Similarity: sim})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func chunkWithVector(content, chapterId string, vec []float32) *entity.CourseChunk {
	return &entity.CourseChunk{
		Id:        uuid.New(),
		Content:   content,
		Embedding: vec,
		Metadata:  map[string]interface{}{"chapter_id": chapterId},
	}
}

func TestRetrieve_OrdersBySimilarity(t *testing.T) {
	repo := &fakeChunkRepo{
		chunks: []*entity.CourseChunk{
			chunkWithVector("orthogonal", "ch1", []float32{0, 1, 0}),
			chunkWithVector("exact match", "ch1", []float32{1, 0, 0}),
			chunkWithVector("close match", "ch1", []float32{0.9, 0.1, 0}),
		},
	}
	provider := &fakeProvider{vectors: map[string][]float32{
		"what is a matrix": {1, 0, 0},
	}}

	r := New(provider, repo)
	scored, err := r.Retrieve(context.Background(), "what is a matrix", "ch1", Params{TopK: 5, Threshold: 0.3})

	assert.NoError(t, err)
	assert.Len(t, scored, 2)
	assert.Equal(t, "exact match", scored[0].Chunk.Content)
	assert.Equal(t, "close match", scored[1].Chunk.Content)
}

func TestRetrieve_ThresholdFiltersWeakMatches(t *testing.T) {
	repo := &fakeChunkRepo{
		chunks: []*entity.CourseChunk{
			chunkWithVector("weak", "ch1", []float32{0.3, 0.95, 0}),
			chunkWithVector("strong", "ch1", []float32{1, 0, 0}),
		},
	}
	provider := &fakeProvider{vectors: map[string][]float32{
		"q": {1, 0, 0},
	}}

	r := New(provider, repo)

	strict, err := r.Retrieve(context.Background(), "q", "ch1", Params{TopK: 5, Threshold: 0.5})
	assert.NoError(t, err)
	assert.Len(t, strict, 1)
	assert.Equal(t, "strong", strict[0].Chunk.Content)

	loose, err := r.Retrieve(context.Background(), "q", "ch1", Params{TopK: 5, Threshold: 0.2})
	assert.NoError(t, err)
	assert.Len(t, loose, 2)
}

func TestRetrieve_ScopedToChapter(t *testing.T) {
	repo := &fakeChunkRepo{
		chunks: []*entity.CourseChunk{
			chunkWithVector("matrices intro", "chapter-a", []float32{1, 0, 0}),
			chunkWithVector("thermodynamics intro", "chapter-b", []float32{1, 0, 0}),
		},
	}
	provider := &fakeProvider{vectors: map[string][]float32{
		"q": {1, 0, 0},
	}}

	r := New(provider, repo)

	scoredA, err := r.Retrieve(context.Background(), "q", "chapter-a", Params{TopK: 5, Threshold: 0.3})
	assert.NoError(t, err)
	assert.Len(t, scoredA, 1)
	assert.Equal(t, "matrices intro", scoredA[0].Chunk.Content)

	scoredB, err := r.Retrieve(context.Background(), "q", "chapter-b", Params{TopK: 5, Threshold: 0.3})
	assert.NoError(t, err)
	assert.Len(t, scoredB, 1)
	assert.Equal(t, "thermodynamics intro", scoredB[0].Chunk.Content)
}

func TestRetrieve_EmptyResultIsValid(t *testing.T) {
	repo := &fakeChunkRepo{}
	provider := &fakeProvider{}

	r := New(provider, repo)
	scored, err := r.Retrieve(context.Background(), "anything", "ch1", Params{TopK: 5, Threshold: 0.3})

	assert.NoError(t, err)
	assert.Empty(t, scored)
}

func TestRetrieve_SearchFailureIsRetrievalError(t *testing.T) {
	repo := &fakeChunkRepo{searchErr: errors.New("connection refused")}
	provider := &fakeProvider{}

	r := New(provider, repo)
	_, err := r.Retrieve(context.Background(), "q", "ch1", Params{TopK: 5, Threshold: 0.3})

	var retrievalErr *RetrievalError
	assert.ErrorAs(t, err, &retrievalErr)
}

func TestRetrieve_EmbeddingFailurePassesThrough(t *testing.T) {
	repo := &fakeChunkRepo{}
	provider := &fakeProvider{err: &embedding.EmbeddingError{Model: "text-embedding-004", Err: errors.New("quota")}}

	r := New(provider, repo)
	_, err := r.Retrieve(context.Background(), "q", "ch1", Params{TopK: 5, Threshold: 0.3})

	var embedErr *embedding.EmbeddingError
	assert.ErrorAs(t, err, &embedErr)

	var retrievalErr *RetrievalError
	assert.False(t, errors.As(err, &retrievalErr))
}

func TestBuildContext(t *testing.T) {
	assert.Empty(t, BuildContext(nil))

	scored := []*contract.ScoredCourseChunk{
		{Chunk: &entity.CourseChunk{Content: "first"}, Similarity: 0.9},
		{Chunk: &entity.CourseChunk{Content: "second"}, Similarity: 0.8},
	}
	assert.Equal(t, "first\n\nsecond", BuildContext(scored))
}
