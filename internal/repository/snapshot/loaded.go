package snapshot

import (
	"fmt"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/corpus"
)

// Loaded holds the boot-time load result. The snapshot is immutable for the
// process lifetime, so Loaded needs no synchronization. A failed load keeps
// the process alive but not ready: readiness probes and chat both observe
// the stored error.
type Loaded struct {
	snap corpus.Snapshot
	err  error
}

// NewLoaded wraps a successfully loaded snapshot.
func NewLoaded(snap corpus.Snapshot) *Loaded {
	return &Loaded{snap: snap}
}

// NewLoadFailed records a boot-time load failure.
func NewLoadFailed(err error) *Loaded {
	return &Loaded{err: err}
}

// Snapshot returns the loaded snapshot, or ErrStoreNotReady carrying the
// load failure cause.
func (l *Loaded) Snapshot() (corpus.Snapshot, error) {
	if l.err != nil {
		return corpus.Snapshot{}, fmt.Errorf("%v: %w", l.err, domain.ErrStoreNotReady)
	}
	return l.snap, nil
}

// Ready reports whether a valid snapshot has been loaded.
func (l *Loaded) Ready() bool { return l.err == nil }

// LoadErr returns the boot-time load failure, or nil.
func (l *Loaded) LoadErr() error { return l.err }
