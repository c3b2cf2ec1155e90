package document

import (
	"context"

	"github.com/kailas-cloud/docsim/internal/domain"
	domdoc "github.com/kailas-cloud/docsim/internal/domain/document"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Insert(ctx context.Context, doc domdoc.Document) (domdoc.Document, error)
	Get(ctx context.Context, id string) (domdoc.Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domdoc.Document, error)
}

// Credits reserves one upload credit for a principal.
type Credits interface {
	Reserve(ctx context.Context, p domain.Principal) (release func(context.Context) error, err error)
}
