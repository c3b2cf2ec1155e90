// Package document handles uploads and a user's view of their documents.
package document

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/kailas-cloud/docsim/internal/domain"
	domdoc "github.com/kailas-cloud/docsim/internal/domain/document"
	"github.com/kailas-cloud/docsim/internal/logger"
	"github.com/kailas-cloud/docsim/internal/metrics"
)

// ExportFilename is the attachment name of the scan history export.
const ExportFilename = "scan_history.txt"

// Service handles document uploads and listings.
type Service struct {
	repo    Repository
	credits Credits
	now     func() time.Time
}

// New creates a document service.
func New(repo Repository, credits Credits) *Service {
	return &Service{repo: repo, credits: credits, now: time.Now}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Upload validates and stores a file for p, spending one credit unless p
// is an admin. Bytes that are not valid UTF-8 are read as Latin-1.
func (s *Service) Upload(ctx context.Context, p domain.Principal, filename string, raw []byte) (domdoc.Document, error) {
	if p.UserID == "" {
		return domdoc.Document{}, domain.ErrUnauthorized
	}

	doc, err := domdoc.New(p.UserID, filename, decode(raw), s.now().UTC())
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return domdoc.Document{}, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}

	release, err := s.credits.Reserve(ctx, p)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientCredits) {
			metrics.UploadsTotal.WithLabelValues("no_credits").Inc()
		}
		return domdoc.Document{}, err
	}

	stored, err := s.repo.Insert(ctx, doc)
	if err != nil {
		if relErr := release(ctx); relErr != nil {
			logger.FromContext(ctx).Error("Failed to release credit after failed upload",
				zap.String("user_id", p.UserID), zap.Error(relErr))
		}
		return domdoc.Document{}, fmt.Errorf("insert document: %w", err)
	}

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	return stored, nil
}

// List returns p's documents, newest first.
func (s *Service) List(ctx context.Context, p domain.Principal) ([]domdoc.Document, error) {
	if p.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	docs, err := s.repo.ListByOwner(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	slices.Reverse(docs)
	return docs, nil
}

// Get returns one document. Users only see their own; admins see any.
func (s *Service) Get(ctx context.Context, p domain.Principal, id string) (domdoc.Document, error) {
	if p.UserID == "" {
		return domdoc.Document{}, domain.ErrUnauthorized
	}
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	if !p.IsAdmin() && !doc.OwnedBy(p.UserID) {
		return domdoc.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrAccessDenied)
	}
	return doc, nil
}

// Export renders p's upload history, oldest first, as plain text.
func (s *Service) Export(ctx context.Context, p domain.Principal) (string, error) {
	if p.UserID == "" {
		return "", domain.ErrUnauthorized
	}
	docs, err := s.repo.ListByOwner(ctx, p.UserID)
	if err != nil {
		return "", fmt.Errorf("list documents: %w", err)
	}

	var b strings.Builder
	b.WriteString("Your Scan History:\n\n")
	for _, d := range docs {
		fmt.Fprintf(&b, "Filename: %s - Uploaded on: %s\n",
			d.DisplayName(), d.CreatedAt().UTC().Format(time.DateTime))
	}
	return b.String(), nil
}

// decode reads raw as UTF-8, falling back to Latin-1, which maps every byte.
func decode(raw []byte) string {
	if utf8.Valid(raw) {
		return strings.TrimPrefix(string(raw), "\ufeff")
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
