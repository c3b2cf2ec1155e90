// Package document stores documents as Redis hashes with sorted-set
// indexes per owner and across all owners.
package document

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/docsim/internal/domain"
	domdoc "github.com/kailas-cloud/docsim/internal/domain/document"
)

var (
	seqKey      = domain.KeyPrefix + "doc:seq"
	allIndexKey = domain.KeyPrefix + "docs"
)

// store is the consumer interface for documents (ISP).
type store interface {
	Incr(ctx context.Context, key string) (int64, error)
	HSetIndexed(ctx context.Context, key string, fields map[string]string,
		score float64, member string, indexes ...string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	ZRange(ctx context.Context, key string, start, stop int64, rev bool) ([]string, error)
}

// Repo is the Redis document repository.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Insert assigns the next numeric id and stores doc with its index entries
// in one transaction. Indexes are scored by id so range order is creation order.
func (r *Repo) Insert(ctx context.Context, doc domdoc.Document) (domdoc.Document, error) {
	seq, err := r.store.Incr(ctx, seqKey)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("next document id: %w", err)
	}
	id := strconv.FormatInt(seq, 10)
	doc = doc.WithID(id)

	err = r.store.HSetIndexed(ctx, docKey(id), toHash(doc), float64(seq), id,
		ownerIndexKey(doc.OwnerID()), allIndexKey)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("store document %s: %w", id, err)
	}
	return doc, nil
}

// Get returns a document by id.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	h, err := r.store.HGetAll(ctx, docKey(id))
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("hgetall document %s: %w", id, err)
	}
	if len(h) == 0 {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return fromHash(id, h)
}

// ListByOwner returns the owner's documents oldest first.
func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]domdoc.Document, error) {
	return r.listIndex(ctx, ownerIndexKey(ownerID))
}

// ListAll returns every document oldest first.
func (r *Repo) ListAll(ctx context.Context) ([]domdoc.Document, error) {
	return r.listIndex(ctx, allIndexKey)
}

func (r *Repo) listIndex(ctx context.Context, index string) ([]domdoc.Document, error) {
	ids, err := r.store.ZRange(ctx, index, 0, -1, false)
	if err != nil {
		return nil, fmt.Errorf("zrange %s: %w", index, err)
	}
	if len(ids) == 0 {
		return []domdoc.Document{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load documents from %s: %w", index, err)
	}

	docs := make([]domdoc.Document, 0, len(ids))
	for i, h := range hashes {
		if len(h) == 0 {
			// Index entry without a hash.
			continue
		}
		doc, err := fromHash(ids[i], h)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func docKey(id string) string {
	return domain.KeyPrefix + "doc:" + id
}

func ownerIndexKey(ownerID string) string {
	return domain.KeyPrefix + "owner:" + ownerID + ":docs"
}
