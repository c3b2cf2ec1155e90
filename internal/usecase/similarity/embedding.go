package similarity

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docsim/internal/domain"
	domsim "github.com/kailas-cloud/docsim/internal/domain/similarity"
)

const (
	defaultBatchSize   = 64
	defaultParallelism = 4
)

// EmbeddingOption configures the embedding scorer.
type EmbeddingOption func(*EmbeddingScorer)

// WithBatchSize caps how many texts go into one provider call.
func WithBatchSize(n int) EmbeddingOption {
	return func(s *EmbeddingScorer) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithParallelism caps concurrent provider calls within one ScoreAll.
func WithParallelism(n int) EmbeddingOption {
	return func(s *EmbeddingScorer) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// EmbeddingScorer scores by cosine similarity of embedding vectors.
type EmbeddingScorer struct {
	embedder    Embedder
	batchSize   int
	parallelism int
}

// NewEmbedding creates an embedding scorer over embedder.
func NewEmbedding(embedder Embedder, opts ...EmbeddingOption) *EmbeddingScorer {
	s := &EmbeddingScorer{
		embedder:    embedder,
		batchSize:   defaultBatchSize,
		parallelism: defaultParallelism,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Algorithm implements Scorer.
func (*EmbeddingScorer) Algorithm() domsim.Algorithm { return domsim.Embedding }

// Score implements Scorer. Blank input scores 0 without calling the provider.
func (s *EmbeddingScorer) Score(ctx context.Context, a, b string) (float64, error) {
	scores, err := s.ScoreAll(ctx, a, []string{b})
	if err != nil {
		return 0, err
	}
	return scores[0], nil
}

// ScoreAll implements BatchScorer. The reference and every distinct
// non-blank candidate are embedded once, in batches.
func (s *EmbeddingScorer) ScoreAll(ctx context.Context, reference string, candidates []string) ([]float64, error) {
	scores := make([]float64, len(candidates))
	if isBlank(reference) {
		return scores, nil
	}

	texts := []string{reference}
	slot := map[string]int{reference: 0}
	idx := make([]int, len(candidates))
	pending := false
	for i, c := range candidates {
		if isBlank(c) {
			idx[i] = -1
			continue
		}
		pending = true
		j, ok := slot[c]
		if !ok {
			j = len(texts)
			slot[c] = j
			texts = append(texts, c)
		}
		idx[i] = j
	}
	if !pending {
		return scores, nil
	}

	vectors, err := s.embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	ref := vectors[0]
	for i, j := range idx {
		if j < 0 {
			continue
		}
		score, err := Cosine(ref, vectors[j])
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		scores[i] = score
	}
	return scores, nil
}

func (s *EmbeddingScorer) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	tokens := make([]int, (len(texts)+s.batchSize-1)/s.batchSize)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for b, start := 0, 0; start < len(texts); b, start = b+1, start+s.batchSize {
		end := min(start+s.batchSize, len(texts))
		g.Go(func() error {
			res, err := domain.EmbedAll(gctx, s.embedder, texts[start:end])
			if err != nil {
				return err
			}
			if len(res.Embeddings) != end-start {
				return fmt.Errorf("%w: provider returned %d vectors for %d texts",
					domain.ErrComputation, len(res.Embeddings), end-start)
			}
			copy(vectors[start:end], res.Embeddings)
			tokens[b] = res.TotalTokens
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if domain.IsComputation(err) || ctx.Err() != nil {
			return nil, fmt.Errorf("embed documents: %w", err)
		}
		return nil, fmt.Errorf("embed documents: %w: %w", domain.ErrEmbeddingProviderError, err)
	}

	usage := domain.UsageFromContext(ctx)
	for _, t := range tokens {
		usage.AddTokens(t)
	}
	return vectors, nil
}

// Cosine returns the cosine similarity of a and b, clamped to [-1,1].
// A zero vector scores 0. Vectors of different length are a computation error.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: dimension mismatch %d != %d", domain.ErrComputation, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	c := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0, fmt.Errorf("%w: non-finite cosine", domain.ErrComputation)
	}
	return max(-1, min(1, c)), nil
}
