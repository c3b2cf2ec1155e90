// Package similarity names the interchangeable scoring algorithms and their
// canonical thresholds.
//
// Every algorithm reports on one scale where higher means more similar, so
// the ranker compares scores the same way whichever algorithm is active.
// Edit distance d is reported as 1/(1+d).
package similarity

import "fmt"

// Algorithm identifies a scorer variant.
type Algorithm string

// Scorer variants.
const (
	EditDistance  Algorithm = "edit_distance"
	SequenceRatio Algorithm = "sequence_ratio"
	// Embedding compares sentence-embedding vectors by cosine similarity.
	Embedding Algorithm = "embedding"
)

// Default is the committed algorithm.
const Default = Embedding

// Canonical thresholds. A candidate matches when score >= threshold.
const (
	// EditDistanceMaxRaw is the historical "distance < 10" cut-off.
	EditDistanceMaxRaw = 10
	// EditDistanceThreshold is EditDistanceMaxRaw on the normalized scale:
	// 1/(1+d) >= 0.1 exactly when d < 10.
	EditDistanceThreshold = 1.0 / EditDistanceMaxRaw
	// SequenceRatioThreshold reconciles the 0.1 match view and the 0.7
	// analytics view to the stricter value; 0.1 matched nearly any two
	// English texts.
	SequenceRatioThreshold = 0.7
	EmbeddingThreshold     = 0.7
)

// IsValid checks if the algorithm is one of the supported values.
func (a Algorithm) IsValid() bool {
	return a == EditDistance || a == SequenceRatio || a == Embedding
}

// DefaultThreshold returns the canonical threshold for a.
func (a Algorithm) DefaultThreshold() float64 {
	switch a {
	case EditDistance:
		return EditDistanceThreshold
	case SequenceRatio:
		return SequenceRatioThreshold
	default:
		return EmbeddingThreshold
	}
}

// Parse validates a configured algorithm name. Empty selects Default.
func Parse(s string) (Algorithm, error) {
	if s == "" {
		return Default, nil
	}
	a := Algorithm(s)
	if !a.IsValid() {
		return "", fmt.Errorf("unknown similarity algorithm %q", s)
	}
	return a, nil
}

// FromDistance maps an edit distance onto the shared scale.
func FromDistance(d int) float64 {
	if d < 0 {
		d = 0
	}
	return 1.0 / (1.0 + float64(d))
}
