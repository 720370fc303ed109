package health

import "context"

// Status represents the aggregated readiness status.
type Status string

const (
	// Ready indicates the service can answer chat requests.
	Ready Status = "ready"
	// NotReady indicates a required component is unavailable.
	NotReady Status = "not ready"
)

// CheckResult represents an individual component check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing check.
	CheckError CheckResult = "error"
)

// Report aggregates readiness check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates liveness and readiness. Liveness is unconditional;
// readiness requires a loaded vector snapshot and, when configured, a
// responsive embedding provider.
type Service struct {
	store     StoreChecker
	embedding ProviderChecker
}

// New creates a Service. embedding can be nil.
func New(store StoreChecker, embedding ProviderChecker) *Service {
	return &Service{store: store, embedding: embedding}
}

// Ready runs readiness checks against all components.
func (s *Service) Ready(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.store.Ready() {
		checks["vector_store"] = CheckOK
	} else {
		checks["vector_store"] = CheckError
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Ready
	for _, v := range checks {
		if v == CheckError {
			status = NotReady
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
