package similarity

import (
	"context"
	"sync"

	"github.com/kailas-cloud/docsim/internal/domain"
)

// mockEmbedder maps known texts to fixed vectors.
type mockEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	err     error
	calls   int
	batches [][]string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vectors[text], TotalTokens: 1}, nil
}

// mockBatchEmbedder adds the native batch path.
type mockBatchEmbedder struct {
	mockEmbedder
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, append([]string(nil), texts...))
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		out.Embeddings[i] = m.vectors[t]
		out.TotalTokens += 2
	}
	return out, nil
}
