// Package health reports whether the service can store and match documents.
package health

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsim/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means documents are served but embedding matches are not.
	Degraded Status = "degraded"
	// Unhealthy means the document store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult is one component's outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	store     StorePinger
	embedding EmbeddingChecker
}

// New creates a Service. embedding is nil when the scorer does not use a provider.
func New(store StorePinger, embedding EmbeddingChecker) *Service {
	return &Service{store: store, embedding: embedding}
}

// Check pings the store and, if configured, the embedding provider.
func (s *Service) Check(ctx context.Context) Report {
	log := logger.FromContext(ctx)
	checks := make(map[string]CheckResult, 2)
	status := Healthy

	checks["store"] = CheckOK
	if err := s.store.Ping(ctx); err != nil {
		log.Warn("Store health check failed", zap.Error(err))
		checks["store"] = CheckError
		status = Unhealthy
	}

	if s.embedding != nil {
		checks["embedding"] = CheckOK
		if err := s.embedding.HealthCheck(ctx); err != nil {
			log.Warn("Embedding health check failed", zap.Error(err))
			checks["embedding"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		}
	}

	return Report{Status: status, Checks: checks}
}
