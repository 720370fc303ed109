package ragdex

import "github.com/kailas-cloud/ragdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrSessionIDRequired       = domain.ErrSessionIDRequired
	ErrMessageEmpty            = domain.ErrMessageEmpty
	ErrEmbeddingProviderError  = domain.ErrEmbeddingProviderError
	ErrGenerationProviderError = domain.ErrGenerationProviderError
	ErrEmptyCompletion         = domain.ErrEmptyCompletion
	ErrProviderTimeout         = domain.ErrProviderTimeout
	ErrSnapshotNotFound        = domain.ErrSnapshotNotFound
	ErrSnapshotInvalid         = domain.ErrSnapshotInvalid
	ErrStoreNotReady           = domain.ErrStoreNotReady
	ErrVectorDimMismatch       = domain.ErrVectorDimMismatch
)
