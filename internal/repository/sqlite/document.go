package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kailas-cloud/docsim/internal/db"
	"github.com/kailas-cloud/docsim/internal/domain"
	domdoc "github.com/kailas-cloud/docsim/internal/domain/document"
)

type documentRow struct {
	ID         int64  `db:"id"`
	OwnerID    string `db:"owner_id"`
	Filename   string `db:"filename"`
	StoredName string `db:"stored_name"`
	Content    string `db:"content"`
	CreatedAt  int64  `db:"created_at"`
}

func (r documentRow) toDomain() domdoc.Document {
	return domdoc.Reconstruct(
		strconv.FormatInt(r.ID, 10),
		r.OwnerID, r.Filename, r.StoredName, r.Content,
		time.UnixMilli(r.CreatedAt).UTC(),
	)
}

const selectDocuments = `SELECT id, owner_id, filename, stored_name, content, created_at FROM documents`

// DocumentRepo stores documents in the documents table.
type DocumentRepo struct {
	x *sqlx.DB
}

// Insert stores doc and returns it with the assigned id.
func (r *DocumentRepo) Insert(ctx context.Context, doc domdoc.Document) (domdoc.Document, error) {
	res, err := r.x.ExecContext(ctx,
		`INSERT INTO documents (owner_id, filename, stored_name, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		doc.OwnerID(), doc.Filename(), doc.StoredName(), doc.Content(), doc.CreatedAt().UnixMilli(),
	)
	if err != nil {
		return domdoc.Document{}, &db.Error{Op: db.OpInsert, Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("document id: %w", err)
	}
	return doc.WithID(strconv.FormatInt(id, 10)), nil
}

// Get returns a document by id.
func (r *DocumentRepo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	var row documentRow
	if err := r.x.GetContext(ctx, &row, selectDocuments+` WHERE id = ?`, n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, &db.Error{Op: db.OpSelect, Err: err}
	}
	return row.toDomain(), nil
}

// ListByOwner returns the owner's documents oldest first.
func (r *DocumentRepo) ListByOwner(ctx context.Context, ownerID string) ([]domdoc.Document, error) {
	return r.list(ctx, selectDocuments+` WHERE owner_id = ? ORDER BY id`, ownerID)
}

// ListAll returns every document oldest first.
func (r *DocumentRepo) ListAll(ctx context.Context) ([]domdoc.Document, error) {
	return r.list(ctx, selectDocuments+` ORDER BY id`)
}

func (r *DocumentRepo) list(ctx context.Context, query string, args ...any) ([]domdoc.Document, error) {
	var rows []documentRow
	if err := r.x.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	docs := make([]domdoc.Document, len(rows))
	for i, row := range rows {
		docs[i] = row.toDomain()
	}
	return docs, nil
}
