package match

import (
	"context"

	domdoc "github.com/kailas-cloud/docsim/internal/domain/document"
)

// DocumentReader is the read side of the document store.
type DocumentReader interface {
	// Get returns domain.ErrDocumentNotFound when id does not exist.
	Get(ctx context.Context, id string) (domdoc.Document, error)
	// ListByOwner returns the owner's documents oldest first.
	ListByOwner(ctx context.Context, ownerID string) ([]domdoc.Document, error)
	// ListAll returns every stored document oldest first.
	ListAll(ctx context.Context) ([]domdoc.Document, error)
}
