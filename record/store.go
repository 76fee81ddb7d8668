/*
store.go - The record store facade

PURPOSE:
  Wires the three persisted collections over one KV backend and loads
  them at construction. Consumers hold an injected *Store reference;
  there is no ambient global state.

OWNERSHIP:
  The Store is the sole owner of the persisted collections. Everything
  above it (ledger, catalog, composition, API) reads whatever replica
  the store currently holds and refreshes after every mutation.

SEE ALSO:
  - collection.go: Per-collection semantics
  - ../ledger: Balance computation over Invoices + Payments
  - ../catalog: Upsert logic over Products
*/
package record

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Store owns the invoices, products and payments collections.
type Store struct {
	Invoices *Collection[Invoice]
	Products *Collection[Product]
	Payments *Collection[Payment]
}

// Option configures a Store.
type Option func(*options)

type options struct {
	now func() time.Time
	log zerolog.Logger
}

// WithClock overrides the timestamp source (tests).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger used for load-degrade warnings.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// Open builds a Store over the given KV and loads all three
// collections. Load failures degrade to empty collections and never
// return an error from Open.
func Open(ctx context.Context, kv KV, opts ...Option) *Store {
	o := options{
		now: time.Now,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log.With().Str("component", "record").Logger()

	s := &Store{
		Invoices: newCollection(CollectionInvoices, kv, log, o.now,
			func(inv *Invoice) int64 { return inv.ID },
			func(inv *Invoice, id int64, at time.Time) {
				inv.ID = id
				inv.CreatedAt = at
			}),
		Products: newCollection(CollectionProducts, kv, log, o.now,
			func(p *Product) int64 { return p.ID },
			func(p *Product, id int64, at time.Time) {
				p.ID = id
				p.CreatedAt = at
			}),
		Payments: newCollection(CollectionPayments, kv, log, o.now,
			func(p *Payment) int64 { return p.ID },
			func(p *Payment, id int64, at time.Time) {
				p.ID = id
				p.CreatedAt = at
			}),
	}

	s.Invoices.load(ctx)
	s.Products.load(ctx)
	s.Payments.load(ctx)
	return s
}
