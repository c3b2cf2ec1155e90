package match

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsim/internal/domain"
	"github.com/kailas-cloud/docsim/internal/domain/diff"
	"github.com/kailas-cloud/docsim/internal/usecase/embedding"
	"github.com/kailas-cloud/docsim/internal/usecase/similarity"
)

// --- Matches ---

func TestMatches_OtherUsersDocumentsNeverMatch(t *testing.T) {
	docs := &memDocs{}
	docs.add("1", "alice", "a.txt", "hello world")
	docs.add("2", "bob", "b.txt", "hello world")

	svc := New(docs, similarity.NewSequenceRatio())
	report, err := svc.Matches(context.Background(), alice, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Matches) != 0 {
		t.Errorf("expected no matches, got %d", len(report.Matches))
	}
	if report.Degraded {
		t.Error("report should not be degraded")
	}
}

func TestMatches_DuplicateRanksFirst(t *testing.T) {
	docs := &memDocs{}
	docs.add("1", "alice", "fox.txt", "the quick brown fox")
	docs.add("2", "alice", "unrelated.txt", "lorem ipsum dolor sit amet")
	docs.add("3", "alice", "copy.txt", "the quick brown fox")
	docs.add("4", "alice", "close.txt", "the quick brown fax")

	svc := New(docs, similarity.NewSequenceRatio())
	report, err := svc.Matches(context.Background(), alice, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(report.Matches))
	}
	first := report.Matches[0]
	if first.Document().ID() != "3" || first.Score() != 1 {
		t.Errorf("first match = %s (%v), want 3 (1.0)", first.Document().ID(), first.Score())
	}
	if first.DisplayName() != "copy.txt" {
		t.Errorf("display name = %q", first.DisplayName())
	}
	if report.Matches[1].Document().ID() != "4" {
		t.Errorf("second match = %s, want 4", report.Matches[1].Document().ID())
	}
	for _, m := range report.Matches {
		if m.Document().ID() == "1" {
			t.Error("reference must not match itself")
		}
	}
	if report.Threshold != 0.7 || report.Algorithm != "sequence_ratio" {
		t.Errorf("report algorithm/threshold = %s/%v", report.Algorithm, report.Threshold)
	}
}

func TestMatches_StableOrderOnTies(t *testing.T) {
	docs := &memDocs{}
	docs.add("1", "alice", "ref.txt", "ref")
	docs.add("2", "alice", "x.txt", "x")
	docs.add("3", "alice", "y.txt", "y")
	docs.add("4", "alice", "z.txt", "z")
	docs.add("5", "alice", "w.txt", "w")

	scorer := fixedScorer{scores: map[string]float64{"x": 0.8, "y": 0.9, "z": 0.8, "w": 0.5}}
	report, err := New(docs, scorer).Matches(context.Background(), alice, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for _, m := range report.Matches {
		got = append(got, m.Document().ID())
	}
	if strings.Join(got, ",") != "3,2,4" {
		t.Errorf("order = %v, want [3 2 4]", got)
	}
}

func TestMatches_ThresholdIsInclusive(t *testing.T) {
	docs := &memDocs{}
	docs.add("1", "alice", "ref.txt", "ref")
	docs.add("2", "alice", "x.txt", "x")

	scorer := fixedScorer{scores: map[string]float64{"x": 0.7}}
	report, _ := New(docs, scorer).Matches(context.Background(), alice, "1")
	if len(report.Matches) != 1 {
		t.Errorf("score equal to threshold should match, got %d matches", len(report.Matches))
	}

	report, _ = New(docs, scorer).WithThreshold(0.71).Matches(context.Background(), alice, "1")
	if len(report.Matches) != 0 {
		t.Errorf("expected no matches above raised threshold")
	}
}

func TestMatches_EditDistanceCutoff(t *testing.T) {
	docs := &memDocs{}
	docs.add("1", "alice", "ref.txt", "abcdefghijklmnop")
	docs.add("2", "alice", "near.txt", "abcdefghijklmnXX")
	docs.add("3", "alice", "far.txt", "XXXXXXXXXXXXXXXX")

	report, err := New(docs, similarity.NewEditDistance()).Matches(context.Background(), alice, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Matches) != 1 || report.Matches[0].Document().ID() != "2" {
		t.Fatalf("expected only the near document, got %d matches", len(report.Matches))
	}
}

func TestMatches_Errors(t *testing.T) {
	docs := &memDocs{}
	docs.add("1", "alice", "a.txt", "hello")
	docs.add("2", "bob", "b.txt", "hello")
	svc := New(docs, similarity.NewSequenceRatio())

	tests := []struct {
		name      string
		principal domain.Principal
		id        string
		want      error
	}{
		{"missing reference", alice, "999", domain.ErrDocumentNotFound},
		{"other user's reference", alice, "2", domain.ErrAccessDenied},
		{"admin is not owner", admin, "1", domain.ErrAccessDenied},
		{"no principal", domain.Principal{}, "1", domain.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Matches(context.Background(), tt.principal, tt.id)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMatches_ComputationErrorDegrades(t *testing.T) {
	docs := &memDocs{}
	docs.add("1", "alice", "a.txt", "first text")
	docs.add("2", "alice", "b.txt", "second text")

	svc := New(docs, similarity.NewEmbedding(failingEmbedder{}))
	report, err := svc.Matches(context.Background(), alice, "1")
	if err != nil {
		t.Fatalf("computation errors must not fail the request: %v", err)
	}
	if !report.Degraded || report.Warning != DegradedWarning {
		t.Errorf("expected degraded report, got %+v", report)
	}
	if report.Matches == nil || len(report.Matches) != 0 {
		t.Errorf("expected empty non-nil matches, got %v", report.Matches)
	}
	if report.Reference.ID() != "1" {
		t.Errorf("reference = %q", report.Reference.ID())
	}
}

func TestMatches_ProviderTimeoutDegrades(t *testing.T) {
	docs := &memDocs{}
	docs.add("1", "alice", "a.txt", "first text")
	docs.add("2", "alice", "b.txt", "second text")

	provider := embedding.NewInstrumentedEmbedder(stalledEmbedder{}, "test", "m", zap.NewNop(),
		embedding.WithTimeout(10*time.Millisecond))
	svc := New(docs, similarity.NewEmbedding(provider))

	report, err := svc.Matches(context.Background(), alice, "1")
	if err != nil {
		t.Fatalf("provider timeout must not fail the request: %v", err)
	}
	if !report.Degraded || report.Warning != DegradedWarning {
		t.Errorf("expected degraded report, got %+v", report)
	}
}

func TestMatches_CallerCancellationSurfaces(t *testing.T) {
	docs := &memDocs{}
	docs.add("1", "alice", "a.txt", "first text")
	docs.add("2", "alice", "b.txt", "second text")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	provider := embedding.NewInstrumentedEmbedder(stalledEmbedder{}, "test", "m", zap.NewNop(),
		embedding.WithTimeout(time.Minute))

	_, err := New(docs, similarity.NewEmbedding(provider)).Matches(ctx, alice, "1")
	if !errors.Is(err, context.DeadlineExceeded) || domain.IsComputation(err) {
		t.Fatalf("expected caller deadline to surface, got %v", err)
	}
}

func TestMatches_StoreErrorSurfaces(t *testing.T) {
	docs := &memDocs{}
	docs.add("1", "alice", "a.txt", "text")
	docs.listErr = errors.New("connection reset")

	_, err := New(docs, similarity.NewSequenceRatio()).Matches(context.Background(), alice, "1")
	if err == nil || domain.IsComputation(err) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestMatches_NonComputationScorerErrorSurfaces(t *testing.T) {
	docs := &memDocs{}
	docs.add("1", "alice", "a.txt", "text")
	docs.add("2", "alice", "b.txt", "more")

	boom := errors.New("boom")
	_, err := New(docs, fixedScorer{err: boom}).Matches(context.Background(), alice, "1")
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestMatches_OnlyReference(t *testing.T) {
	docs := &memDocs{}
	docs.add("1", "alice", "a.txt", "alone")

	report, err := New(docs, similarity.NewSequenceRatio()).Matches(context.Background(), alice, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Matches) != 0 {
		t.Errorf("expected no matches")
	}
}

// --- Compare ---

func TestCompare_AlignsLines(t *testing.T) {
	docs := &memDocs{}
	docs.add("1", "alice", "a.txt", "one\ntwo\nthree")
	docs.add("2", "alice", "b.txt", "one\n2\nthree\nfour")

	d, err := New(docs, similarity.NewSequenceRatio()).Compare(context.Background(), alice, "1", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.FromLabel != "a.txt" || d.ToLabel != "b.txt" {
		t.Errorf("labels = %q, %q", d.FromLabel, d.ToLabel)
	}
	if d.Identical {
		t.Error("documents differ")
	}
	var ops []string
	for _, r := range d.Rows {
		ops = append(ops, string(r.Op))
	}
	if strings.Join(ops, ",") != "equal,replace,equal,insert" {
		t.Errorf("ops = %v", ops)
	}
}

func TestCompare_Errors(t *testing.T) {
	docs := &memDocs{}
	docs.add("1", "alice", "a.txt", "x")
	docs.add("2", "bob", "b.txt", "y")
	svc := New(docs, similarity.NewSequenceRatio())

	_, err := svc.Compare(context.Background(), alice, "1", "404")
	if !errors.Is(err, domain.ErrDocumentNotFound) || !strings.Contains(err.Error(), "one or both documents not found") {
		t.Errorf("missing document: got %v", err)
	}
	if _, err := svc.Compare(context.Background(), alice, "1", "2"); !errors.Is(err, domain.ErrAccessDenied) {
		t.Errorf("cross-user compare: got %v", err)
	}
	if _, err := svc.Compare(context.Background(), domain.Principal{}, "1", "1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("anonymous compare: got %v", err)
	}
	if _, err := svc.Compare(context.Background(), admin, "1", "2"); err != nil {
		t.Errorf("admin compare: %v", err)
	}
}

func TestCompareUnified(t *testing.T) {
	docs := &memDocs{}
	docs.add("1", "alice", "a.txt", "one\ntwo")
	docs.add("2", "alice", "b.txt", "one\nthree")
	svc := New(docs, similarity.NewSequenceRatio()).WithDiffContext(diff.DefaultContext)

	out, err := svc.CompareUnified(context.Background(), alice, "1", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"--- a.txt", "+++ b.txt", "-two", "+three"} {
		if !strings.Contains(out, want) {
			t.Errorf("unified diff missing %q:\n%s", want, out)
		}
	}
}

// --- Topics ---

func TestTopics(t *testing.T) {
	docs := &memDocs{}
	docs.add("1", "alice", "a.txt", "Go is fun. Go is fast!")
	docs.add("2", "bob", "b.txt", "fast cars are fun")
	svc := New(docs, similarity.NewSequenceRatio())

	got, err := svc.Topics(context.Background(), admin, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 topics, got %v", got)
	}
	if got[0].Word != "go" || got[0].Count != 2 {
		t.Errorf("top topic = %+v, want go:2", got[0])
	}
}

func TestTopics_Errors(t *testing.T) {
	svc := New(&memDocs{}, similarity.NewSequenceRatio())

	if _, err := svc.Topics(context.Background(), alice, 5); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("non-admin: got %v", err)
	}
	got, err := svc.Topics(context.Background(), admin, 5)
	if err != nil || len(got) != 0 {
		t.Errorf("empty corpus: got %v, %v", got, err)
	}
}
