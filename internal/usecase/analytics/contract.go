package analytics

import (
	"context"

	domdoc "github.com/kailas-cloud/docsim/internal/domain/document"
)

// DocumentLister lists every stored document.
type DocumentLister interface {
	ListAll(ctx context.Context) ([]domdoc.Document, error)
}
