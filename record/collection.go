/*
collection.go - Generic persisted collection

PURPOSE:
  A Collection[T] is one named list of records kept in memory and
  mirrored to the KV as a single JSON array. All reads are served from
  the in-memory replica; every mutation rewrites the whole collection.

ID ASSIGNMENT:
  Create assigns id = max(existing ids) + 1, or 1 for an empty
  collection. Ids are monotonic within a collection only, not globally,
  and id order doubles as chronological order for the ledger.

WRITE ORDERING (write-then-commit):
  marshal new slice -> kv.Set -> swap replica. If the Set fails the
  replica is untouched, so a failed action leaves no partial state and
  can simply be retried.

SINGLE WRITER:
  Each collection serializes its mutations on one mutex, so two
  back-to-back mutations can never compute their payload from the same
  stale snapshot. Readers take the lock shared and receive copies.

LOAD DEGRADE:
  A read or parse failure at load time logs a warning and leaves the
  collection empty. The data on disk is not touched; only the in-memory
  view is impoverished. A corrupted store must not prevent startup.

SEE ALSO:
  - store.go: Wires the three concrete collections
  - kv.go: The persistence contract
*/
package record

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Collection is a persisted list of records of one type.
type Collection[T any] struct {
	name string
	kv   KV
	log  zerolog.Logger
	now  func() time.Time

	idOf  func(*T) int64
	stamp func(*T, int64, time.Time)

	mu   sync.RWMutex
	recs []T
}

func newCollection[T any](
	name string,
	kv KV,
	log zerolog.Logger,
	now func() time.Time,
	idOf func(*T) int64,
	stamp func(*T, int64, time.Time),
) *Collection[T] {
	return &Collection[T]{
		name:  name,
		kv:    kv,
		log:   log.With().Str("collection", name).Logger(),
		now:   now,
		idOf:  idOf,
		stamp: stamp,
	}
}

// load populates the replica from storage. Failures degrade to empty.
func (c *Collection[T]) load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.kv.Get(ctx, c.name)
	if err != nil {
		c.log.Warn().Err(err).Msg("load failed, starting empty")
		c.recs = nil
		return
	}
	if len(raw) == 0 {
		c.recs = nil
		return
	}

	var recs []T
	if err := json.Unmarshal(raw, &recs); err != nil {
		c.log.Warn().Err(err).Msg("parse failed, starting empty")
		c.recs = nil
		return
	}
	c.recs = recs
}

// List returns a copy of the current records.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.recs))
	copy(out, c.recs)
	return out
}

// Len returns the current record count.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.recs)
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.recs {
		if c.idOf(&c.recs[i]) == id {
			return c.recs[i], true
		}
	}
	var zero T
	return zero, false
}

// Create assigns the next id and createdAt, appends and persists.
func (c *Collection[T]) Create(ctx context.Context, rec T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stamp(&rec, c.nextIDLocked(), c.now().UTC())

	next := make([]T, 0, len(c.recs)+1)
	next = append(next, c.recs...)
	next = append(next, rec)

	if err := c.persistLocked(ctx, next); err != nil {
		var zero T
		return zero, err
	}
	c.recs = next
	return rec, nil
}

// Update applies a mutation to the record with the given id and
// persists. A missing id is a silent no-op: nothing is written and no
// error is returned.
func (c *Collection[T]) Update(ctx context.Context, id int64, apply func(*T)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i := range c.recs {
		if c.idOf(&c.recs[i]) == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	next := make([]T, len(c.recs))
	copy(next, c.recs)
	apply(&next[idx])

	if err := c.persistLocked(ctx, next); err != nil {
		return err
	}
	c.recs = next
	return nil
}

// Delete removes the record with the given id and persists. A missing
// id is a silent no-op.
func (c *Collection[T]) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i := range c.recs {
		if c.idOf(&c.recs[i]) == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	next := make([]T, 0, len(c.recs)-1)
	next = append(next, c.recs[:idx]...)
	next = append(next, c.recs[idx+1:]...)

	if err := c.persistLocked(ctx, next); err != nil {
		return err
	}
	c.recs = next
	return nil
}

// Clear replaces the collection with an empty list.
func (c *Collection[T]) Clear(ctx context.Context) error {
	return c.ImportAll(ctx, nil)
}

// ImportAll wholesale-replaces the collection. No validation and no
// id-collision repair is performed on the incoming records; callers own
// the destructive-intent confirmation.
func (c *Collection[T]) ImportAll(ctx context.Context, recs []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]T, len(recs))
	copy(next, recs)

	if err := c.persistLocked(ctx, next); err != nil {
		return err
	}
	c.recs = next
	return nil
}

func (c *Collection[T]) nextIDLocked() int64 {
	var max int64
	for i := range c.recs {
		if id := c.idOf(&c.recs[i]); id > max {
			max = id
		}
	}
	return max + 1
}

func (c *Collection[T]) persistLocked(ctx context.Context, recs []T) error {
	// Persist [] rather than null for an empty collection.
	if recs == nil {
		recs = []T{}
	}
	payload, err := json.Marshal(recs)
	if err != nil {
		return &PersistenceError{Collection: c.name, Err: err}
	}
	if err := c.kv.Set(ctx, c.name, payload); err != nil {
		return &PersistenceError{Collection: c.name, Err: err}
	}
	return nil
}
