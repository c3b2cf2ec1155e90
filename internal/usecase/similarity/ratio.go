package similarity

import (
	"context"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	domsim "github.com/kailas-cloud/docsim/internal/domain/similarity"
)

// SequenceRatio scores with the Ratcliff/Obershelp matching-blocks ratio
// over characters, 2*M/T in [0,1].
//
// The auto-junk heuristic is off: with it, frequent characters of long
// documents stop anchoring matches and identical texts score below 1.
type SequenceRatio struct{}

// NewSequenceRatio creates a sequence-ratio scorer.
func NewSequenceRatio() *SequenceRatio { return &SequenceRatio{} }

// Algorithm implements Scorer.
func (*SequenceRatio) Algorithm() domsim.Algorithm { return domsim.SequenceRatio }

// Score implements Scorer. Blank input scores 0.
func (*SequenceRatio) Score(_ context.Context, a, b string) (float64, error) {
	if isBlank(a) || isBlank(b) {
		return 0, nil
	}
	if a == b {
		return 1, nil
	}
	// Longest-match tie-breaking depends on argument order; a fixed order
	// keeps Score(a,b) == Score(b,a).
	if a > b {
		a, b = b, a
	}
	m := difflib.NewMatcherWithJunk(strings.Split(a, ""), strings.Split(b, ""), false, nil)
	return m.Ratio(), nil
}
