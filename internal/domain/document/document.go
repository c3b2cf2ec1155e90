package document

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 1 << 20 // 1MB

// allowedExtensions lists upload types the scanner accepts.
var allowedExtensions = map[string]bool{".txt": true, ".csv": true}

// Document is an uploaded text document (immutable value object).
type Document struct {
	id         string
	ownerID    string
	filename   string
	storedName string
	content    string
	createdAt  time.Time
}

// New validates an upload and creates a Document without an ID.
// The store assigns the ID on insert (see WithID).
func New(ownerID, filename, content string, createdAt time.Time) (Document, error) {
	if ownerID == "" {
		return Document{}, fmt.Errorf("owner is required")
	}
	if strings.TrimSpace(filename) == "" {
		return Document{}, fmt.Errorf("no file selected")
	}
	if !AllowedFilename(filename) {
		return Document{}, fmt.Errorf("only TXT or CSV files are allowed")
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	return Document{
		ownerID:    ownerID,
		filename:   filename,
		storedName: SecureFilename(filename),
		content:    content,
		createdAt:  createdAt.UTC(),
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, ownerID, filename, storedName, content string, createdAt time.Time) Document {
	return Document{
		id: id, ownerID: ownerID, filename: filename, storedName: storedName,
		content: content, createdAt: createdAt,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// OwnerID returns the owning user.
func (d *Document) OwnerID() string { return d.ownerID }

// Filename returns the name the user uploaded the file under.
func (d *Document) Filename() string { return d.filename }

// StoredName returns the sanitized storage name.
func (d *Document) StoredName() string { return d.storedName }

// Content returns the raw text.
func (d *Document) Content() string { return d.content }

// CreatedAt returns the upload time.
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// DisplayName prefers the human-supplied filename over the storage name.
func (d *Document) DisplayName() string {
	if d.filename != "" {
		return d.filename
	}
	return d.storedName
}

// OwnedBy reports whether userID owns the document.
func (d *Document) OwnedBy(userID string) bool { return d.ownerID == userID }

// WithID returns a copy carrying the store-assigned identifier.
func (d *Document) WithID(id string) Document {
	c := *d
	c.id = id
	return c
}

// AllowedFilename reports whether the extension is an accepted upload type.
func AllowedFilename(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// SecureFilename reduces name to a flat ASCII filename safe to store:
// compatibility-decomposed, path separators become spaces, runs of
// whitespace become "_", and anything outside [A-Za-z0-9_.-] is dropped.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)

	var b strings.Builder
	for i, field := range strings.Fields(name) {
		if i > 0 {
			b.WriteByte('_')
		}
		for _, r := range field {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-') {
				b.WriteRune(r)
			}
		}
	}
	return strings.Trim(b.String(), "._")
}
