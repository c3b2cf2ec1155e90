package match

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/docsim/internal/domain"
	domdoc "github.com/kailas-cloud/docsim/internal/domain/document"
)

// retriever loads the reference document and its candidate pool.
type retriever struct {
	docs DocumentReader
}

// reference loads id and asserts that principal owns it.
func (r retriever) reference(ctx context.Context, principal domain.Principal, id string) (domdoc.Document, error) {
	doc, err := r.docs.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	if !doc.OwnedBy(principal.UserID) {
		return domdoc.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrAccessDenied)
	}
	return doc, nil
}

// candidates returns every document of principal except excludeID, in
// retrieval order.
func (r retriever) candidates(
	ctx context.Context, principal domain.Principal, excludeID string,
) ([]domdoc.Document, error) {
	all, err := r.docs.ListByOwner(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("list documents of %s: %w", principal.UserID, err)
	}
	out := make([]domdoc.Document, 0, len(all))
	for _, d := range all {
		if d.ID() == excludeID || !d.OwnedBy(principal.UserID) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
