package document

import (
	"fmt"
	"strconv"
	"time"

	domdoc "github.com/kailas-cloud/docsim/internal/domain/document"
)

// Hash field names.
const (
	fieldOwner      = "owner"
	fieldFilename   = "filename"
	fieldStoredName = "stored_name"
	fieldContent    = "content"
	fieldCreatedAt  = "created_at"
)

func toHash(doc domdoc.Document) map[string]string {
	return map[string]string{
		fieldOwner:      doc.OwnerID(),
		fieldFilename:   doc.Filename(),
		fieldStoredName: doc.StoredName(),
		fieldContent:    doc.Content(),
		fieldCreatedAt:  strconv.FormatInt(doc.CreatedAt().UnixMilli(), 10),
	}
}

func fromHash(id string, h map[string]string) (domdoc.Document, error) {
	ms, err := strconv.ParseInt(h[fieldCreatedAt], 10, 64)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("document %s: parse created_at %q: %w", id, h[fieldCreatedAt], err)
	}
	return domdoc.Reconstruct(
		id,
		h[fieldOwner],
		h[fieldFilename],
		h[fieldStoredName],
		h[fieldContent],
		time.UnixMilli(ms).UTC(),
	), nil
}
