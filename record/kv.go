/*
kv.go - Storage collaborator contract

PURPOSE:
  The record store persists each collection as one opaque blob under a
  well-known key. Anything that can get and set blobs can back it:
  a SQLite table, a directory of JSON files, or a map in tests.

CONTRACT:
  - Get returns (nil, nil) when the key has never been written.
  - Set replaces the whole value atomically: after a crash mid-Set a
    subsequent Get must return either the old value or the new one,
    never a torn write. Implementations use write-then-swap.
  - Values are UTF-8 JSON arrays of records, but the KV does not
    interpret them.

IMPLEMENTATIONS:
  - store/sqlitekv: production SQLite-backed table
  - store/filekv:   one file per collection, temp-file + rename
  - store/memorykv: in-memory, for tests

SEE ALSO:
  - collection.go: The only consumer of this interface
*/
package record

import "context"

// KV is the persistence collaborator for whole-collection blobs.
type KV interface {
	// Get returns the stored value for key, or (nil, nil) if absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set atomically replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error
}
