package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/parv18050212/ai-tutor/internal/repository/contract"
	"github.com/parv18050212/ai-tutor/pkg/embedding"
)

// Params are the operating knobs of a retrieval pass. Different surfaces run
// with different settings (chat 0.3, exploratory 0.2, quiz 0.5) but the
// machinery is identical.
type Params struct {
	TopK      int
	Threshold float64
}

// RetrievalError marks a vector-search failure. Callers degrade to an empty
// context instead of failing the whole request.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Retriever embeds a query and searches course chunks by cosine similarity.
type Retriever struct {
	provider embedding.EmbeddingProvider
	chunks   contract.CourseChunkRepository
}

func New(provider embedding.EmbeddingProvider, chunks contract.CourseChunkRepository) *Retriever {
	return &Retriever{
		provider: provider,
		chunks:   chunks,
	}
}

// Retrieve embeds the question with the query task type and returns the
// chunks above the similarity threshold, best match first. An empty result
// is a valid outcome, not an error.
func (r *Retriever) Retrieve(ctx context.Context, question string, chapterId string, p Params) ([]*contract.ScoredCourseChunk, error) {
	res, err := r.provider.Generate(ctx, question, embedding.TaskTypeQuery)
	if err != nil {
		// Embedding failures keep their own type so the caller can tell
		// them apart from search failures.
		return nil, err
	}

	scored, err := r.chunks.SearchSimilarWithScore(ctx, res.Embedding.Values, p.TopK, p.Threshold, chapterId)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}

	return scored, nil
}

// BuildContext joins retrieved chunks into the context block handed to the
// prompt builder.
func BuildContext(scored []*contract.ScoredCourseChunk) string {
	if len(scored) == 0 {
		return ""
	}
	parts := make([]string, len(scored))
	for i, s := range scored {
		parts[i] = s.Chunk.Content
	}
	return strings.Join(parts, "\n\n")
}
