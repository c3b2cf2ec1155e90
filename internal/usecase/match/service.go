// Package match finds a user's documents similar to a reference document,
// aligns document pairs, and extracts corpus topics.
package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsim/internal/domain"
	"github.com/kailas-cloud/docsim/internal/domain/diff"
	dommatch "github.com/kailas-cloud/docsim/internal/domain/match"
	"github.com/kailas-cloud/docsim/internal/domain/topic"
	"github.com/kailas-cloud/docsim/internal/logger"
	"github.com/kailas-cloud/docsim/internal/metrics"
	"github.com/kailas-cloud/docsim/internal/usecase/similarity"
)

// DegradedWarning is shown when scoring failed and no matches are returned.
const DegradedWarning = "Similarity could not be computed right now; showing no matches."

// Service runs the matching pipeline.
type Service struct {
	docs        DocumentReader
	retriever   retriever
	scorer      similarity.Scorer
	threshold   float64
	diffContext int
	topicsK     int
}

// New creates a match service. The threshold starts at the scorer's
// canonical value.
func New(docs DocumentReader, scorer similarity.Scorer) *Service {
	return &Service{
		docs:        docs,
		retriever:   retriever{docs: docs},
		scorer:      scorer,
		threshold:   scorer.Algorithm().DefaultThreshold(),
		diffContext: diff.DefaultContext,
		topicsK:     10,
	}
}

// WithThreshold overrides the match threshold.
func (s *Service) WithThreshold(t float64) *Service {
	s.threshold = t
	return s
}

// WithDiffContext sets the unchanged lines kept around each change.
func (s *Service) WithDiffContext(n int) *Service {
	if n >= 0 {
		s.diffContext = n
	}
	return s
}

// WithTopicsK sets the default number of topics.
func (s *Service) WithTopicsK(k int) *Service {
	if k > 0 {
		s.topicsK = k
	}
	return s
}

// Matches ranks principal's other documents by similarity to referenceID.
// Scoring failures do not fail the request: the report comes back empty
// with Degraded set.
func (s *Service) Matches(ctx context.Context, principal domain.Principal, referenceID string) (dommatch.Report, error) {
	if principal.UserID == "" {
		return dommatch.Report{}, domain.ErrUnauthorized
	}

	ref, err := s.retriever.reference(ctx, principal, referenceID)
	if err != nil {
		return dommatch.Report{}, err
	}
	candidates, err := s.retriever.candidates(ctx, principal, ref.ID())
	if err != nil {
		return dommatch.Report{}, err
	}

	alg := s.scorer.Algorithm()
	report := dommatch.Report{
		Reference: ref,
		Algorithm: alg,
		Threshold: s.threshold,
		Matches:   []dommatch.Match{},
	}

	start := time.Now()
	matches, err := rank(ctx, s.scorer, ref, candidates, s.threshold)
	metrics.MatchDuration.WithLabelValues(string(alg)).Observe(time.Since(start).Seconds())

	if err != nil {
		if !domain.IsComputation(err) {
			return dommatch.Report{}, fmt.Errorf("rank candidates: %w", err)
		}
		logger.FromContext(ctx).Warn("similarity degraded",
			zap.String("algorithm", string(alg)),
			zap.String("reference_id", ref.ID()),
			zap.Int("candidates", len(candidates)),
			zap.Error(err),
		)
		metrics.MatchDegradedTotal.WithLabelValues(string(alg)).Inc()
		report.Degraded = true
		report.Warning = DegradedWarning
		return report, nil
	}

	metrics.MatchCandidatesScored.WithLabelValues(string(alg)).Add(float64(len(candidates)))
	report.Matches = matches
	return report, nil
}

// Compare aligns document a against document b line by line.
// Users may only compare their own documents; admins may compare any.
func (s *Service) Compare(ctx context.Context, principal domain.Principal, idA, idB string) (diff.Diff, error) {
	from, to, err := s.pair(ctx, principal, idA, idB)
	if err != nil {
		return diff.Diff{}, err
	}
	return diff.Compute(from, to, s.diffContext), nil
}

// CompareUnified renders the same comparison as unified diff text.
// Identical documents render as an empty string.
func (s *Service) CompareUnified(ctx context.Context, principal domain.Principal, idA, idB string) (string, error) {
	from, to, err := s.pair(ctx, principal, idA, idB)
	if err != nil {
		return "", err
	}
	out, err := diff.Unified(from, to, s.diffContext)
	if err != nil {
		return "", fmt.Errorf("render unified diff: %w", err)
	}
	return out, nil
}

func (s *Service) pair(ctx context.Context, principal domain.Principal, idA, idB string) (diff.Side, diff.Side, error) {
	if principal.UserID == "" {
		return diff.Side{}, diff.Side{}, domain.ErrUnauthorized
	}

	a, errA := s.docs.Get(ctx, idA)
	b, errB := s.docs.Get(ctx, idB)
	for _, err := range []error{errA, errB} {
		if err == nil {
			continue
		}
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return diff.Side{}, diff.Side{}, fmt.Errorf("one or both documents not found: %w", domain.ErrDocumentNotFound)
		}
		return diff.Side{}, diff.Side{}, fmt.Errorf("get document: %w", err)
	}

	if !principal.IsAdmin() && (!a.OwnedBy(principal.UserID) || !b.OwnedBy(principal.UserID)) {
		return diff.Side{}, diff.Side{}, fmt.Errorf("compare %s and %s: %w", idA, idB, domain.ErrAccessDenied)
	}

	return diff.Side{Label: a.DisplayName(), Text: a.Content()},
		diff.Side{Label: b.DisplayName(), Text: b.Content()}, nil
}

// Topics returns the k most frequent non-stopwords across every stored
// document. Admin only. k <= 0 selects the configured default.
func (s *Service) Topics(ctx context.Context, principal domain.Principal, k int) ([]topic.Count, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	if k <= 0 {
		k = s.topicsK
	}

	docs, err := s.docs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	corpus := make([]string, len(docs))
	for i, d := range docs {
		corpus[i] = d.Content()
	}
	return topic.Top(corpus, k), nil
}
