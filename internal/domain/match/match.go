// Package match holds the transient results of one match request.
package match

import (
	domdoc "github.com/kailas-cloud/docsim/internal/domain/document"
	"github.com/kailas-cloud/docsim/internal/domain/similarity"
)

// Match is a candidate document that passed the threshold.
type Match struct {
	document    domdoc.Document
	score       float64
	displayName string
}

// New creates a match; the display name is resolved from the document.
func New(doc domdoc.Document, score float64) Match {
	return Match{document: doc, score: score, displayName: doc.DisplayName()}
}

// Document returns the matched candidate.
func (m *Match) Document() *domdoc.Document { return &m.document }

// Score returns the similarity on the shared higher-is-closer scale.
func (m *Match) Score() float64 { return m.score }

// DisplayName returns the human-facing filename.
func (m *Match) DisplayName() string { return m.displayName }

// Report is the outcome of a match request. Degraded is set, with Warning,
// when scoring failed and Matches was emptied instead of failing the request.
type Report struct {
	Reference domdoc.Document
	Algorithm similarity.Algorithm
	Threshold float64
	Matches   []Match
	Degraded  bool
	Warning   string
}
