/*
Package filekv implements the storage collaborator over plain JSON files.

PURPOSE:
  One file per collection (<key>.json) under a data directory. This is
  the closest analogue to the on-device key-value store the app was
  designed around: small blobs, replaced whole on every write.

ATOMICITY:
  Set writes to a temp file in the same directory and renames it over
  the target. Rename is atomic on POSIX filesystems, so a reader (or a
  crash) observes either the previous payload or the new one, never a
  torn write. This is what lets balance reads run against whatever
  snapshot is current without locking against writers.

USAGE:
  kv, err := filekv.New("./data")
  store := record.Open(ctx, kv)

SEE ALSO:
  - record/kv.go: The contract this implements
  - store/sqlitekv: SQLite-backed alternative
*/
package filekv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KV stores each key as a JSON file in a directory.
type KV struct {
	dir string
}

// New creates the data directory if needed.
func New(dir string) (*KV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &KV{dir: dir}, nil
}

func (f *KV) path(key string) string {
	// Keys are fixed collection names, but keep path traversal out anyway.
	name := strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(f.dir, name+".json")
}

func (f *KV) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

func (f *KV) Set(_ context.Context, key string, value []byte) error {
	target := f.path(key)

	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", key, err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", key, err)
	}
	return nil
}
