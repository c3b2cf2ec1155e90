// Package embedding decorates the embedding provider used by the similarity scorer.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsim/internal/domain"
)

// DefaultMaxAPIBatchSize caps the number of texts sent in one provider request.
const DefaultMaxAPIBatchSize = 256

// InstrumentedEmbedder bounds provider calls in time and size and logs them.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	timeout  time.Duration
	maxBatch int
	logger   *zap.Logger
}

// Option configures an InstrumentedEmbedder.
type Option func(*InstrumentedEmbedder)

// WithTimeout bounds every provider call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *InstrumentedEmbedder) { p.timeout = d }
}

// WithMaxBatch overrides DefaultMaxAPIBatchSize.
func WithMaxBatch(n int) Option {
	return func(p *InstrumentedEmbedder) {
		if n > 0 {
			p.maxBatch = n
		}
	}
}

// NewInstrumentedEmbedder wraps inner.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string, logger *zap.Logger, opts ...Option,
) *InstrumentedEmbedder {
	p := &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		maxBatch: DefaultMaxAPIBatchSize,
		logger:   logger,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Embed delegates one text to the inner embedder.
func (p *InstrumentedEmbedder) Embed(
	ctx context.Context, text string,
) (domain.EmbeddingResult, error) {
	bounded, cancel := p.bound(ctx)
	defer cancel()

	start := time.Now()
	result, err := p.inner.Embed(bounded, text)
	duration := time.Since(start)
	err = p.timedOut(ctx, err)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// BatchEmbed splits texts into provider-sized chunks and concatenates the results.
func (p *InstrumentedEmbedder) BatchEmbed(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}

	for offset := 0; offset < len(texts); offset += p.maxBatch {
		end := min(offset+p.maxBatch, len(texts))
		chunk := texts[offset:end]

		res, err := p.embedChunk(ctx, chunk)
		if err != nil {
			p.logger.Error("Batch embedding request failed",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed (chunk %d): %w", offset, err)
		}
		if len(res.Embeddings) != len(chunk) {
			return domain.BatchEmbeddingResult{}, fmt.Errorf(
				"%w: provider returned %d vectors for %d texts",
				domain.ErrEmbeddingProviderError, len(res.Embeddings), len(chunk))
		}

		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}

	p.logger.Debug("Batch embedding completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	hc, ok := p.inner.(domain.HealthChecker)
	if !ok {
		return nil
	}
	ctx, cancel := p.bound(ctx)
	defer cancel()
	return hc.HealthCheck(ctx)
}

func (p *InstrumentedEmbedder) embedChunk(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	bounded, cancel := p.bound(ctx)
	defer cancel()
	res, err := domain.EmbedAll(bounded, p.inner, texts)
	return res, p.timedOut(ctx, err)
}

// timedOut marks a deadline hit by the per-call bound as a provider failure.
// Errors caused by the caller's own context pass through unchanged.
func (p *InstrumentedEmbedder) timedOut(parent context.Context, err error) error {
	if err == nil || parent.Err() != nil || !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, domain.ErrEmbeddingProviderError) {
		return err
	}
	return fmt.Errorf("%w: provider call exceeded %s: %w", domain.ErrEmbeddingProviderError, p.timeout, err)
}

func (p *InstrumentedEmbedder) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}
