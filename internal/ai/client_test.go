package ai

import (
	"math"
	"testing"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name      string
		config    *ClientConfig
		expectErr bool
	}{
		{
			name:      "nil config",
			config:    nil,
			expectErr: true,
		},
		{
			name:      "stub provider",
			config:    &ClientConfig{Provider: ProviderStub, Dim: 16},
			expectErr: false,
		},
		{
			name:      "openai provider",
			config:    &ClientConfig{Provider: ProviderOpenAI, APIKey: "test-key"},
			expectErr: false,
		},
		{
			name:      "unsupported provider",
			config:    &ClientConfig{Provider: Provider("mystery")},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.config)
			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c == nil {
				t.Fatal("expected client, got nil")
			}
		})
	}
}

func TestOpenAIClientDefaults(t *testing.T) {
	cfg := &ClientConfig{Provider: ProviderOpenAI, APIKey: "k"}
	c := NewOpenAIClient(cfg)
	if c.Dim() != 1536 {
		t.Errorf("expected default dim 1536, got %d", c.Dim())
	}

	large := &ClientConfig{Provider: ProviderOpenAI, APIKey: "k", EmbedModel: "text-embedding-3-large"}
	if NewOpenAIClient(large).Dim() != 3072 {
		t.Errorf("expected dim 3072 for the large model")
	}
}

func TestStubClientEmbed(t *testing.T) {
	c := NewStubClient(8)

	v1, err := c.Embed("horror movie from the 80s")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(v1) != 8 {
		t.Fatalf("expected dim 8, got %d", len(v1))
	}

	// Deterministic: same text, same vector.
	v2, _ := c.Embed("horror movie from the 80s")
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatal("stub embeddings are not deterministic")
		}
	}

	// Unit length for cosine search.
	var sum float64
	for _, x := range v1 {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1.0) > 1e-5 {
		t.Errorf("expected unit-length vector, squared norm %f", sum)
	}

	// Different texts should point in different directions.
	v3, _ := c.Embed("romantic comedy")
	same := true
	for i := range v1 {
		if v1[i] != v3[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct texts produced identical embeddings")
	}
}

func TestStubClientDefaultDim(t *testing.T) {
	if NewStubClient(0).Dim() != 64 {
		t.Error("expected fallback dimension for non-positive dim")
	}
}
