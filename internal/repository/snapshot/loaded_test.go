package snapshot

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/corpus"
)

func TestLoaded_Success(t *testing.T) {
	snap, err := corpus.NewSnapshot(testEntries(t))
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	l := NewLoaded(snap)

	if !l.Ready() {
		t.Error("Ready() = false")
	}
	got, err := l.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got.Len() != 2 {
		t.Errorf("Len() = %d", got.Len())
	}
	if l.LoadErr() != nil {
		t.Errorf("LoadErr() = %v", l.LoadErr())
	}
}

func TestLoaded_Failure(t *testing.T) {
	cause := errors.New("disk gone")
	l := NewLoadFailed(cause)

	if l.Ready() {
		t.Error("Ready() = true")
	}
	_, err := l.Snapshot()
	if !errors.Is(err, domain.ErrStoreNotReady) {
		t.Errorf("expected ErrStoreNotReady, got %v", err)
	}
	if l.LoadErr() != cause {
		t.Errorf("LoadErr() = %v", l.LoadErr())
	}
}
