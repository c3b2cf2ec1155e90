package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsim/internal/domain"
)

type mockEmbedder struct {
	result     domain.EmbeddingResult
	err        error
	batchErr   error
	short      bool
	batchSizes []int
	healthErr  error
	deadline   bool
}

func (m *mockEmbedder) Embed(ctx context.Context, _ string) (domain.EmbeddingResult, error) {
	_, m.deadline = ctx.Deadline()
	return m.result, m.err
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	n := len(texts)
	if m.short {
		n--
	}
	embeddings := make([][]float32, n)
	for i := range embeddings {
		embeddings[i] = m.result.Embedding
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: m.result.PromptTokens * n,
		TotalTokens:  m.result.TotalTokens * n,
	}, nil
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }

// singleOnly hides BatchEmbed so the per-text fallback is used.
type singleOnly struct{ inner *mockEmbedder }

func (s singleOnly) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return s.inner.Embed(ctx, text)
}

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "t"
	}
	return out
}

func TestEmbed_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(result.Embedding))
	}
	if inner.deadline {
		t.Error("no deadline expected without WithTimeout")
	}
}

func TestEmbed_TimeoutApplied(t *testing.T) {
	inner := &mockEmbedder{}
	p := NewInstrumentedEmbedder(inner, "test", "m", zap.NewNop(), WithTimeout(time.Second))
	if _, err := p.Embed(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	if !inner.deadline {
		t.Error("expected a deadline on the inner call")
	}
}

func TestEmbed_ErrorWrapped(t *testing.T) {
	cause := domain.ErrEmbeddingProviderError
	p := NewInstrumentedEmbedder(&mockEmbedder{err: cause}, "test", "m", zap.NewNop())
	if _, err := p.Embed(context.Background(), "x"); !errors.Is(err, cause) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestBatchEmbed_Empty(t *testing.T) {
	inner := &mockEmbedder{}
	p := NewInstrumentedEmbedder(inner, "test", "m", zap.NewNop())
	res, err := p.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Embeddings) != 0 || len(inner.batchSizes) != 0 {
		t.Error("empty batch must not reach the provider")
	}
}

func TestBatchEmbed_Chunks(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}, PromptTokens: 2, TotalTokens: 3}}
	p := NewInstrumentedEmbedder(inner, "test", "m", zap.NewNop(), WithMaxBatch(4))

	res, err := p.BatchEmbed(context.Background(), texts(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 10 {
		t.Errorf("expected 10 embeddings, got %d", len(res.Embeddings))
	}
	if res.PromptTokens != 20 || res.TotalTokens != 30 {
		t.Errorf("tokens = %d/%d, want 20/30", res.PromptTokens, res.TotalTokens)
	}
	want := []int{4, 4, 2}
	if len(inner.batchSizes) != len(want) {
		t.Fatalf("chunks = %v, want %v", inner.batchSizes, want)
	}
	for i := range want {
		if inner.batchSizes[i] != want[i] {
			t.Errorf("chunk %d size = %d, want %d", i, inner.batchSizes[i], want[i])
		}
	}
}

func TestBatchEmbed_FallbackWithoutNativeBatch(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}, TotalTokens: 1}}
	p := NewInstrumentedEmbedder(singleOnly{inner}, "test", "m", zap.NewNop())

	res, err := p.BatchEmbed(context.Background(), texts(3))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Embeddings) != 3 || res.TotalTokens != 3 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestBatchEmbed_ChunkError(t *testing.T) {
	boom := errors.New("boom")
	p := NewInstrumentedEmbedder(&mockEmbedder{batchErr: boom}, "test", "m", zap.NewNop())
	if _, err := p.BatchEmbed(context.Background(), texts(2)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestBatchEmbed_ShortResponse(t *testing.T) {
	p := NewInstrumentedEmbedder(&mockEmbedder{short: true}, "test", "m", zap.NewNop())
	_, err := p.BatchEmbed(context.Background(), texts(3))
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	down := errors.New("down")
	p := NewInstrumentedEmbedder(&mockEmbedder{healthErr: down}, "test", "m", zap.NewNop())
	if err := p.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Errorf("expected forwarded error, got %v", err)
	}
	p = NewInstrumentedEmbedder(singleOnly{&mockEmbedder{}}, "test", "m", zap.NewNop())
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected nil for embedder without health check, got %v", err)
	}
}

// blockingEmbedder waits for its context and reports the context error.
type blockingEmbedder struct{}

func (blockingEmbedder) Embed(ctx context.Context, _ string) (domain.EmbeddingResult, error) {
	<-ctx.Done()
	return domain.EmbeddingResult{}, ctx.Err()
}

func TestEmbed_OwnTimeoutIsProviderError(t *testing.T) {
	e := NewInstrumentedEmbedder(blockingEmbedder{}, "p", "m", zap.NewNop(), WithTimeout(5*time.Millisecond))

	_, err := e.Embed(context.Background(), "x")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
	_, err = e.BatchEmbed(context.Background(), []string{"x", "y"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error from batch, got %v", err)
	}
}

func TestEmbed_CallerDeadlinePassesThrough(t *testing.T) {
	e := NewInstrumentedEmbedder(blockingEmbedder{}, "p", "m", zap.NewNop(), WithTimeout(time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := e.Embed(ctx, "x")
	if !errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected bare caller deadline, got %v", err)
	}
}
