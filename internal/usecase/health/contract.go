package health

import "context"

// StoreChecker reports whether the vector snapshot loaded at boot.
type StoreChecker interface {
	Ready() bool
}

// ProviderChecker verifies an external provider's availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
