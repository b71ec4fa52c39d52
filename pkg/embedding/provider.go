package embedding

import (
	"context"
	"fmt"
)

// Task types understood by the embedding backends. Documents and queries are
// embedded with different task hints so retrieval quality doesn't degrade.
const (
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
	TaskTypeQuery    = "RETRIEVAL_QUERY"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}

// EmbeddingError wraps a backend failure with the model that produced it,
// so callers can tell a primary-model failure from a fallback failure.
type EmbeddingError struct {
	Model string
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed on model %s: %v", e.Model, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}
