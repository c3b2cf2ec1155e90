package match

import (
	"context"
	"fmt"
	"sort"

	domdoc "github.com/kailas-cloud/docsim/internal/domain/document"
	dommatch "github.com/kailas-cloud/docsim/internal/domain/match"
	"github.com/kailas-cloud/docsim/internal/usecase/similarity"
)

// rank scores every candidate against reference, keeps score >= threshold
// and orders the survivors by descending score. Equal scores keep
// retrieval order.
func rank(
	ctx context.Context, scorer similarity.Scorer,
	reference domdoc.Document, candidates []domdoc.Document, threshold float64,
) ([]dommatch.Match, error) {
	if len(candidates) == 0 {
		return []dommatch.Match{}, nil
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Content()
	}
	scores, err := similarity.ScoreAll(ctx, scorer, reference.Content(), texts)
	if err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}

	matches := make([]dommatch.Match, 0, len(candidates))
	for i, c := range candidates {
		if scores[i] >= threshold {
			matches = append(matches, dommatch.New(c, scores[i]))
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score() > matches[j].Score()
	})
	return matches, nil
}
