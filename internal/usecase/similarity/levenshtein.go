package similarity

import (
	"context"

	"github.com/agnivade/levenshtein"

	domsim "github.com/kailas-cloud/docsim/internal/domain/similarity"
)

// EditDistance scores by character-level Levenshtein distance d, reported
// as 1/(1+d). Cost is O(len(a)*len(b)) per pair.
type EditDistance struct{}

// NewEditDistance creates an edit-distance scorer.
func NewEditDistance() *EditDistance { return &EditDistance{} }

// Algorithm implements Scorer.
func (*EditDistance) Algorithm() domsim.Algorithm { return domsim.EditDistance }

// Score implements Scorer. Blank input scores 0.
func (*EditDistance) Score(_ context.Context, a, b string) (float64, error) {
	if isBlank(a) || isBlank(b) {
		return 0, nil
	}
	return domsim.FromDistance(levenshtein.ComputeDistance(a, b)), nil
}

// Distance returns the raw edit distance between a and b.
func (*EditDistance) Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}
