package semantic

import (
	"context"
	"math"
)

// Oracle defines the interface for semantic-similarity providers.
// The oracle is strictly optional: every caller must tolerate a nil Oracle
// and recover locally from any error it returns.
type Oracle interface {
	// Name returns the provider name
	Name() string

	// Embed computes an embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float32, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Config holds oracle provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider: "", // Disabled by default
		Timeout:  30,
	}
}

// Cosine returns the cosine similarity of two embedding vectors.
// Mismatched or zero-length vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

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

// Coherence computes the average cosine similarity of (subject, full text)
// and (object, full text) embeddings.
func Coherence(fullText, subject, object []float32) float64 {
	return (Cosine(subject, fullText) + Cosine(object, fullText)) / 2
}
