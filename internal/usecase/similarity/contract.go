package similarity

import (
	"context"

	"github.com/kailas-cloud/docsim/internal/domain"
	domsim "github.com/kailas-cloud/docsim/internal/domain/similarity"
)

// Scorer computes how similar two document bodies are. Scores use the
// shared scale from domain/similarity: higher is more similar.
type Scorer interface {
	Algorithm() domsim.Algorithm
	Score(ctx context.Context, a, b string) (float64, error)
}

// BatchScorer scores one reference against many candidates at once.
type BatchScorer interface {
	ScoreAll(ctx context.Context, reference string, candidates []string) ([]float64, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
