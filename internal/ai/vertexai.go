package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type VertexAIClient struct {
	config *ClientConfig
	client *genai.Client
}

// NewVertexAIClient creates a new client for the Google Gemini API.
func NewVertexAIClient(ctx context.Context, config *ClientConfig) (*VertexAIClient, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}

	// Defaults for Gemini API
	if config.EmbedModel == "" {
		config.EmbedModel = "text-embedding-005"
	}
	if config.Dim == 0 {
		config.Dim = 768
	}
	if config.Location == "" && strings.TrimSpace(config.APIKey) == "" {
		config.Location = "us-central1"
	}

	cc := genai.ClientConfig{
		Backend: genai.BackendVertexAI,
	}
	if strings.TrimSpace(config.APIKey) != "" {
		cc.APIKey = config.APIKey
	}
	if strings.TrimSpace(config.ProjectID) != "" {
		cc.Project = config.ProjectID
	}
	if strings.TrimSpace(config.Location) != "" {
		cc.Location = config.Location
	}

	client, err := genai.NewClient(ctx, &cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &VertexAIClient{
		config: config,
		client: client,
	}, nil
}

// Embed implements the embedding functionality using the Gemini API
func (c *VertexAIClient) Embed(text string) ([]float32, error) {
	ctx := context.Background()
	cfg := genai.EmbedContentConfig{
		TaskType: "RETRIEVAL_DOCUMENT",
	}

	res, err := c.client.Models.EmbedContent(ctx, c.config.EmbedModel, genai.Text(text), &cfg)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if res == nil || len(res.Embeddings) == 0 {
		return nil, errors.New("no embedding returned")
	}

	vec := res.Embeddings[0].Values
	l2normalize(vec)
	return vec, nil
}

func (c *VertexAIClient) Dim() int {
	return c.config.Dim
}
