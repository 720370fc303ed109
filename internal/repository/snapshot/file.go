package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/corpus"
)

// FileRepository persists the vector snapshot as a JSON file on disk.
// The default driver; suitable for single-node deployments.
type FileRepository struct {
	path string
}

// NewFileRepository creates a file-backed snapshot repository.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Load reads and validates the snapshot file.
func (r *FileRepository) Load(_ context.Context) (corpus.Snapshot, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return corpus.Snapshot{}, fmt.Errorf("%s: %w", r.path, domain.ErrSnapshotNotFound)
		}
		return corpus.Snapshot{}, fmt.Errorf("read snapshot %s: %w", r.path, err)
	}
	return decodeSnapshot(data)
}

// Save writes entries as a full replacement of any prior contents. The write
// goes through a temp file and rename so a crash never leaves a torn file.
func (r *FileRepository) Save(_ context.Context, entries []corpus.Entry) error {
	data, err := encodeEntries(entries)
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename snapshot into place: %w", err)
	}
	return nil
}
