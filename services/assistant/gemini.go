// File: services/assistant/gemini.go
package assistant

import (
	"context"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// GeminiClient wraps the generative and embedding models behind a shared
// request throttle so a burst of chat turns cannot exhaust the API quota.
type GeminiClient struct {
	model   *genai.GenerativeModel
	embed   *genai.EmbeddingModel
	limiter *rate.Limiter
}

func NewGeminiClient(apiKey, modelName, embedModelName string, rpm int) *GeminiClient {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		panic(fmt.Sprintf("failed to create Gemini client: %v", err))
	}

	if rpm <= 0 {
		rpm = 60
	}
	return &GeminiClient{
		model:   client.GenerativeModel(modelName),
		embed:   client.EmbeddingModel(embedModelName),
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

func (g *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}

// Embed implements knowledge.Embedder.
func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := g.embed.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed error: %w", err)
	}
	return res.Embedding.Values, nil
}
