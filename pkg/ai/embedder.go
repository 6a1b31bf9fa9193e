// Package ai wraps the embedding provider used by the semantic scorer.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkoukk/tiktoken-go"
	openai "github.com/sashabaranov/go-openai"
)

const (
	embeddingDimensions = 1024
	batchMax            = 6
	maxInputTokens      = 8191

	defaultTimeout = 30 * time.Second
)

// Embedder turns texts into fixed-size vectors. Implementations must be
// safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, content []string) ([][]float32, error)
	Dimensions() int
}

type Config struct {
	Token          string `toml:"token"`
	Endpoint       string `toml:"endpoint"`
	EmbeddingModel string `toml:"embedding_model"`
	TimeoutSecond  int    `toml:"timeout_second"`
}

type OpenAIEmbedder struct {
	client  *openai.Client
	model   openai.EmbeddingModel
	timeout time.Duration
}

func NewOpenAIEmbedder(cfg Config) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.Token)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}

	model := cfg.EmbeddingModel
	if model == "" {
		model = string(openai.LargeEmbedding3)
	}

	timeout := defaultTimeout
	if cfg.TimeoutSecond > 0 {
		timeout = time.Duration(cfg.TimeoutSecond) * time.Second
	}

	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   openai.EmbeddingModel(model),
		timeout: timeout,
	}
}

func (s *OpenAIEmbedder) Dimensions() int {
	return embeddingDimensions
}

func (s *OpenAIEmbedder) Embed(ctx context.Context, content []string) ([][]float32, error) {
	slog.Debug("Embedding", slog.String("model", string(s.model)), slog.Int("inputs", len(content)))

	var groups [][]string
	for i, v := range content {
		if i%batchMax == 0 {
			groups = append(groups, []string{})
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], truncateToTokenLimit(v))
	}

	var result [][]float32
	for _, group := range groups {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model:      s.model,
			Input:      group,
			Dimensions: embeddingDimensions,
		})
		cancel()
		if err != nil {
			return nil, fmt.Errorf("Error creating embedding: %w", err)
		}
		for _, v := range resp.Data {
			result = append(result, v.Embedding)
		}
	}
	return result, nil
}

// truncateToTokenLimit caps input length at the embedding model's context
// window.
func truncateToTokenLimit(text string) string {
	tkm, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	if err != nil {
		return text
	}
	tokens := tkm.Encode(text, nil, nil)
	if len(tokens) <= maxInputTokens {
		return text
	}
	return tkm.Decode(tokens[:maxInputTokens])
}
