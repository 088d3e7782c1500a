package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	config *ClientConfig
	client *openai.Client
}

// NewOpenAIClient creates a client for the OpenAI embeddings API.
func NewOpenAIClient(config *ClientConfig) *OpenAIClient {
	if config.EmbedModel == "" {
		config.EmbedModel = "text-embedding-3-small"
	}
	if config.Dim == 0 {
		switch config.EmbedModel {
		case "text-embedding-3-large":
			config.Dim = 3072
		default:
			config.Dim = 1536
		}
	}

	return &OpenAIClient{
		config: config,
		client: openai.NewClient(config.APIKey),
	}
}

// Embed implements the embedding functionality
func (c *OpenAIClient) Embed(text string) ([]float32, error) {
	if c.config.APIKey == "" {
		return nil, errors.New("PROVIDER_API_KEY unset")
	}
	if text == "" {
		return nil, errors.New("cannot embed empty text")
	}

	resp, err := c.client.CreateEmbeddings(context.Background(), openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.config.EmbedModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding")
	}

	vec := resp.Data[0].Embedding
	l2normalize(vec)
	return vec, nil
}

func (c *OpenAIClient) Dim() int {
	return c.config.Dim
}
