package domain

import "errors"

var (
	// ErrSessionIDRequired signals a chat request without a session id.
	ErrSessionIDRequired = errors.New("sessionId is required")
	// ErrMessageEmpty signals a chat request without a message.
	ErrMessageEmpty = errors.New("message cannot be empty")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
	// ErrEmptyCompletion signals that the generation provider returned no text.
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrProviderTimeout signals that a provider call exceeded its deadline.
	ErrProviderTimeout = errors.New("provider timeout")

	// ErrSnapshotNotFound signals a missing persisted vector snapshot.
	ErrSnapshotNotFound = errors.New("vector snapshot not found")
	// ErrSnapshotInvalid signals a structurally invalid persisted snapshot.
	ErrSnapshotInvalid = errors.New("vector snapshot invalid")
	// ErrStoreNotReady signals that no valid snapshot has been loaded yet.
	ErrStoreNotReady = errors.New("vector store not ready")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidTaskType signals an unknown embedding task type.
	ErrInvalidTaskType = errors.New("invalid embedding task type")
)
