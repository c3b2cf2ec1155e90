// Package similarity implements the interchangeable scoring strategies.
package similarity

import (
	"context"
	"fmt"
	"strings"

	domsim "github.com/kailas-cloud/docsim/internal/domain/similarity"
)

// New builds the scorer for alg. embedder is only required for the
// embedding algorithm.
func New(alg domsim.Algorithm, embedder Embedder, opts ...EmbeddingOption) (Scorer, error) {
	switch alg {
	case domsim.EditDistance:
		return NewEditDistance(), nil
	case domsim.SequenceRatio:
		return NewSequenceRatio(), nil
	case domsim.Embedding:
		if embedder == nil {
			return nil, fmt.Errorf("embedding scorer requires an embedder")
		}
		return NewEmbedding(embedder, opts...), nil
	default:
		return nil, fmt.Errorf("unknown similarity algorithm %q", alg)
	}
}

// ScoreAll scores reference against every candidate, in candidate order.
// It uses the scorer's batch path when it has one.
func ScoreAll(ctx context.Context, s Scorer, reference string, candidates []string) ([]float64, error) {
	if bs, ok := s.(BatchScorer); ok {
		scores, err := bs.ScoreAll(ctx, reference, candidates)
		if err != nil {
			return nil, fmt.Errorf("%s batch score: %w", s.Algorithm(), err)
		}
		if len(scores) != len(candidates) {
			return nil, fmt.Errorf("%s batch score: got %d scores for %d candidates",
				s.Algorithm(), len(scores), len(candidates))
		}
		return scores, nil
	}

	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("score candidate %d: %w", i, err)
		}
		score, err := s.Score(ctx, reference, c)
		if err != nil {
			return nil, fmt.Errorf("%s score candidate %d: %w", s.Algorithm(), i, err)
		}
		scores[i] = score
	}
	return scores, nil
}

// isBlank reports input that scores as minimum similarity against anything.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
