package match

import (
	"context"
	"time"

	"github.com/kailas-cloud/docsim/internal/domain"
	domdoc "github.com/kailas-cloud/docsim/internal/domain/document"
	domsim "github.com/kailas-cloud/docsim/internal/domain/similarity"
)

// memDocs is an in-memory DocumentReader keeping insertion order.
type memDocs struct {
	docs    []domdoc.Document
	listErr error
}

func (m *memDocs) add(id, owner, filename, content string) domdoc.Document {
	d := domdoc.Reconstruct(id, owner, filename, domdoc.SecureFilename(filename), content,
		time.Date(2026, 1, 1, 0, len(m.docs), 0, 0, time.UTC))
	m.docs = append(m.docs, d)
	return d
}

func (m *memDocs) Get(_ context.Context, id string) (domdoc.Document, error) {
	for _, d := range m.docs {
		if d.ID() == id {
			return d, nil
		}
	}
	return domdoc.Document{}, domain.ErrDocumentNotFound
}

func (m *memDocs) ListByOwner(_ context.Context, ownerID string) ([]domdoc.Document, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domdoc.Document
	for _, d := range m.docs {
		if d.OwnedBy(ownerID) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDocs) ListAll(_ context.Context) ([]domdoc.Document, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domdoc.Document(nil), m.docs...), nil
}

// failingEmbedder always fails like an unreachable provider.
type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, domain.ErrEmbeddingProviderError
}

// stalledEmbedder never answers and returns once its context is done.
type stalledEmbedder struct{}

func (stalledEmbedder) Embed(ctx context.Context, _ string) (domain.EmbeddingResult, error) {
	<-ctx.Done()
	return domain.EmbeddingResult{}, ctx.Err()
}

// fixedScorer returns preset scores per candidate text.
type fixedScorer struct {
	scores map[string]float64
	err    error
}

func (f fixedScorer) Algorithm() domsim.Algorithm { return domsim.SequenceRatio }

func (f fixedScorer) Score(_ context.Context, _, b string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.scores[b], nil
}

var (
	alice = domain.Principal{UserID: "alice", Role: domain.RoleUser}
	bob   = domain.Principal{UserID: "bob", Role: domain.RoleUser}
	admin = domain.Principal{UserID: "root", Role: domain.RoleAdmin}
)
