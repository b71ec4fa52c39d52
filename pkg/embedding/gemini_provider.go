package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type GeminiProvider struct {
	ApiKey        string
	Model         string
	FallbackModel string
	Client        *http.Client
}

func NewGeminiProvider(apiKey, model, fallbackModel string) EmbeddingProvider {
	if model == "" {
		model = "text-embedding-004"
	}
	return &GeminiProvider{
		ApiKey:        apiKey,
		Model:         model,
		FallbackModel: fallbackModel,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Generate embeds text with the primary model and retries once on the
// fallback model. Both models produce 768-dimensional vectors, so rows
// written by either remain searchable together.
func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	res, err := p.embed(ctx, p.Model, text, taskType)
	if err == nil {
		return res, nil
	}

	if p.FallbackModel == "" || p.FallbackModel == p.Model {
		return nil, &EmbeddingError{Model: p.Model, Err: err}
	}

	res, fallbackErr := p.embed(ctx, p.FallbackModel, text, taskType)
	if fallbackErr != nil {
		return nil, &EmbeddingError{Model: p.FallbackModel, Err: fallbackErr}
	}
	return res, nil
}

func (p *GeminiProvider) embed(ctx context.Context, modelName, text, taskType string) (*EmbeddingResponse, error) {
	geminiReq := EmbeddingRequest{
		Model: "models/" + modelName,
		Content: EmbeddingRequestContent{
			Parts: []EmbeddingRequestContentPart{
				{
					Text: text,
				},
			},
		},
		TaskType: taskType,
	}
	geminiReqJson, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1beta/models/%s:embedContent",
		modelName,
	)

	req, err := http.NewRequestWithContext(
		ctx,
		"POST",
		endpoint,
		bytes.NewBuffer(geminiReqJson),
	)
	if err != nil {
		return nil, err
	}

	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error from gemini response, code %d, body %s", res.StatusCode, string(resByte))
	}

	var resEmbedding EmbeddingResponse
	err = json.Unmarshal(resByte, &resEmbedding)
	if err != nil {
		return nil, err
	}

	if len(resEmbedding.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini returned an empty embedding")
	}

	return &resEmbedding, nil
}
