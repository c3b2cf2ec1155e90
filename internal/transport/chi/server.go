// Package chi exposes the document and matching services over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsim/internal/domain"
	domdoc "github.com/kailas-cloud/docsim/internal/domain/document"
	"github.com/kailas-cloud/docsim/internal/logger"
	analyticsuc "github.com/kailas-cloud/docsim/internal/usecase/analytics"
	creditsuc "github.com/kailas-cloud/docsim/internal/usecase/credit"
	documentuc "github.com/kailas-cloud/docsim/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docsim/internal/usecase/health"
	matchuc "github.com/kailas-cloud/docsim/internal/usecase/match"
)

// maxUploadBytes leaves room for multipart framing around the largest document.
const maxUploadBytes = domdoc.MaxContentSize + 64<<10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	documents     *documentuc.Service
	matches       *matchuc.Service
	credits       *creditsuc.Service
	analytics     *analyticsuc.Service
	health        *healthuc.Service
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	documents *documentuc.Service,
	matches *matchuc.Service,
	credits *creditsuc.Service,
	analytics *analyticsuc.Service,
	health *healthuc.Service,
) *Server {
	s := &Server{
		documents: documents,
		matches:   matches,
		credits:   credits,
		analytics: analytics,
		health:    health,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, codeUnauthorized),
		sentinelHandler(domain.ErrAccessDenied, http.StatusForbidden, codeForbidden),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, codeInvalidDocument),
		sentinelHandler(domain.ErrInsufficientCredits, http.StatusPaymentRequired, codeNoCredits),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrComputation, http.StatusInternalServerError, codeComputation),
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r gochi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/documents", func(r gochi.Router) {
		r.Post("/", s.UploadDocument)
		r.Get("/", s.ListDocuments)
		r.Get("/{id}", s.GetDocument)
		r.Get("/{id}/matches", s.GetMatches)
	})
	r.Get("/compare/{a}/{b}", s.CompareDocuments)
	r.Get("/export", s.ExportHistory)
	r.Get("/credits", s.GetCredits)

	r.Route("/admin", func(r gochi.Router) {
		r.Use(adminOnly)
		r.Get("/analytics", s.GetAnalytics)
		r.Get("/topics", s.GetTopics)
	})
}

// UploadDocument handles POST /documents (multipart field "file").
func (s *Server) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeInvalidDocument, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "no file part")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "read upload: "+err.Error())
		return
	}

	doc, err := s.documents.Upload(r.Context(), principal(r), header.Filename, raw)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/documents/"+doc.ID())
	writeJSON(w, http.StatusCreated, documentToResponse(&doc, false))
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.List(r.Context(), principal(r))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]documentResponse, len(docs))
	for i := range docs {
		items[i] = documentToResponse(&docs[i], false)
	}
	writeJSON(w, http.StatusOK, documentListResponse{Items: items})
}

// GetDocument handles GET /documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(r.Context(), principal(r), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(&doc, true))
}

// GetMatches handles GET /documents/{id}/matches.
func (s *Server) GetMatches(w http.ResponseWriter, r *http.Request) {
	ctx, usage := domain.NewContextWithUsage(r.Context())
	report, err := s.matches.Matches(ctx, principal(r), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, reportToResponse(&report))
}

// CompareDocuments handles GET /compare/{a}/{b}. ?format=unified returns text.
func (s *Server) CompareDocuments(w http.ResponseWriter, r *http.Request) {
	a, b := gochi.URLParam(r, "a"), gochi.URLParam(r, "b")

	switch r.URL.Query().Get("format") {
	case "", "json":
		d, err := s.matches.Compare(r.Context(), principal(r), a, b)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	case "unified":
		out, err := s.matches.CompareUnified(r.Context(), principal(r), a, b)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeText(w, http.StatusOK, out)
	default:
		writeError(w, http.StatusBadRequest, codeBadRequest, "format must be json or unified")
	}
}

// ExportHistory handles GET /export.
func (s *Server) ExportHistory(w http.ResponseWriter, r *http.Request) {
	out, err := s.documents.Export(r.Context(), principal(r))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", documentuc.ExportFilename))
	writeText(w, http.StatusOK, out)
}

// GetCredits handles GET /credits.
func (s *Server) GetCredits(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if p.UserID == "" {
		s.handleDomainError(w, r, domain.ErrUnauthorized)
		return
	}
	b, err := s.credits.Balance(r.Context(), p)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceToResponse(b))
}

// GetAnalytics handles GET /admin/analytics.
func (s *Server) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	sum, err := s.analytics.Summary(r.Context(), principal(r))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// GetTopics handles GET /admin/topics?k=N.
func (s *Server) GetTopics(w http.ResponseWriter, r *http.Request) {
	k := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "k must be a positive integer")
			return
		}
		k = n
	}

	topics, err := s.matches.Topics(r.Context(), principal(r), k)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topicsResponse{Topics: topics})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// adminOnly rejects authenticated non-admins with 403 before the handler runs.
func adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := domain.PrincipalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, domain.ErrUnauthorized.Error())
			return
		}
		if !p.IsAdmin() {
			writeError(w, http.StatusForbidden, codeForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func principal(r *http.Request) domain.Principal {
	p, _ := domain.PrincipalFromContext(r.Context())
	return p
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a client-safe message. Validation errors keep
// their detail; everything else collapses to the sentinel text.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidDocument) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrUnauthorized,
		domain.ErrAccessDenied,
		domain.ErrDocumentNotFound,
		domain.ErrInsufficientCredits,
		domain.ErrEmbeddingProviderError,
		domain.ErrComputation,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
