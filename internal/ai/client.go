package ai

import (
	"context"
	"errors"
	"math"
)

// Client produces fixed-dimension embeddings for text.
type Client interface {
	Embed(text string) ([]float32, error)
	Dim() int
}

// Provider is enumeration of supported embedding providers
type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderVertexAI Provider = "vertexai"
	ProviderStub     Provider = "stub"
)

// ClientConfig holds configuration for embedding clients
type ClientConfig struct {
	APIKey     string
	EmbedModel string
	Dim        int
	ProjectID  string
	Provider   Provider
	Location   string
}

// NewClient creates a new embedding client based on configuration
func NewClient(config *ClientConfig) (Client, error) {
	if config == nil {
		return nil, errors.New("client config is required")
	}

	ctx := context.Background()
	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config), nil
	case ProviderVertexAI:
		return NewVertexAIClient(ctx, config)
	case ProviderStub:
		return NewStubClient(config.Dim), nil
	default:
		return nil, errors.New("unsupported provider: " + string(config.Provider))
	}
}

// StubClient is a deterministic offline implementation of Client. Vectors
// are derived from character positions so distinct texts land in distinct
// directions, which keeps similarity search meaningful in tests.
type StubClient struct {
	dim int
}

// NewStubClient creates a new StubClient
func NewStubClient(dim int) *StubClient {
	if dim <= 0 {
		dim = 64
	}
	return &StubClient{dim: dim}
}

// Embed implements the embedding functionality
func (s *StubClient) Embed(text string) ([]float32, error) {
	vec := make([]float32, s.dim)
	for i, ch := range text {
		vec[i%s.dim] += float32(ch) / 1000.0
	}
	l2normalize(vec)
	return vec, nil
}

// Dim returns the embedding dimension
func (s *StubClient) Dim() int {
	return s.dim
}

// l2normalize scales a vector to unit length, which cosine search expects.
func l2normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}
