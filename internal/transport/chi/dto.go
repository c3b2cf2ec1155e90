package chi

import (
	"time"

	domdoc "github.com/kailas-cloud/docsim/internal/domain/document"
	dommatch "github.com/kailas-cloud/docsim/internal/domain/match"
	"github.com/kailas-cloud/docsim/internal/domain/topic"
	creditsuc "github.com/kailas-cloud/docsim/internal/usecase/credit"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	codeBadRequest        = "bad_request"
	codeUnauthorized      = "unauthorized"
	codeForbidden         = "forbidden"
	codeDocumentNotFound  = "document_not_found"
	codeInvalidDocument   = "invalid_document"
	codeNoCredits         = "insufficient_credits"
	codeEmbeddingProvider = "embedding_provider_error"
	codeComputation       = "computation_failed"
	codeInternal          = "internal_error"
)

type documentResponse struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	StoredName string    `json:"stored_name"`
	Size       int       `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
	Content    *string   `json:"content,omitempty"`
}

type documentListResponse struct {
	Items []documentResponse `json:"items"`
}

type matchResponse struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Score      float64 `json:"score"`
}

type matchReportResponse struct {
	Reference documentResponse `json:"reference"`
	Algorithm string           `json:"algorithm"`
	Threshold float64          `json:"threshold"`
	Matches   []matchResponse  `json:"matches"`
	Degraded  bool             `json:"degraded"`
	Warning   string           `json:"warning,omitempty"`
}

type creditsResponse struct {
	Allowance int64     `json:"allowance"`
	Used      int64     `json:"used"`
	Remaining int64     `json:"remaining"`
	Unlimited bool      `json:"unlimited"`
	ResetsAt  time.Time `json:"resets_at"`
}

type topicsResponse struct {
	Topics []topic.Count `json:"topics"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func documentToResponse(d *domdoc.Document, withContent bool) documentResponse {
	resp := documentResponse{
		ID:         d.ID(),
		Filename:   d.DisplayName(),
		StoredName: d.StoredName(),
		Size:       len(d.Content()),
		CreatedAt:  d.CreatedAt(),
	}
	if withContent {
		c := d.Content()
		resp.Content = &c
	}
	return resp
}

func reportToResponse(r *dommatch.Report) matchReportResponse {
	matches := make([]matchResponse, len(r.Matches))
	for i := range r.Matches {
		m := &r.Matches[i]
		doc := m.Document()
		matches[i] = matchResponse{
			DocumentID: doc.ID(),
			Filename:   m.DisplayName(),
			Score:      m.Score(),
		}
	}
	return matchReportResponse{
		Reference: documentToResponse(&r.Reference, false),
		Algorithm: string(r.Algorithm),
		Threshold: r.Threshold,
		Matches:   matches,
		Degraded:  r.Degraded,
		Warning:   r.Warning,
	}
}

func balanceToResponse(b creditsuc.Balance) creditsResponse {
	return creditsResponse{
		Allowance: b.Allowance,
		Used:      b.Used,
		Remaining: b.Remaining,
		Unlimited: b.Unlimited,
		ResetsAt:  b.ResetsAt,
	}
}
