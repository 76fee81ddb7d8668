/*
Package backup snapshots the whole store and restores it later.

PURPOSE:
  A snapshot captures every collection at a point in time. Providers
  decide where snapshots live (the in-memory provider here, a cloud
  bucket in a deployment); the Service wires a provider to the record
  store and owns the restore rules.

RESTORE RULES:
  Invoices and products are only replaced when the snapshot actually
  carries some - an empty collection in a snapshot never wipes live
  data. Payments are restored verbatim, empty included, because a
  snapshot with no payments genuinely means none existed.

SEE ALSO:
  - record/store.go: ImportAll replacement semantics
*/
package backup

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/daftar/storefront/record"
)

// Snapshot is a full copy of the store's collections.
type Snapshot struct {
	Invoices  []record.Invoice `json:"invoices"`
	Products  []record.Product `json:"products"`
	Payments  []record.Payment `json:"payments"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Info describes a stored snapshot without its payload.
type Info struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Invoices  int       `json:"invoices"`
	Products  int       `json:"products"`
	Payments  int       `json:"payments"`
}

// Provider stores snapshots per user.
type Provider interface {
	Upload(ctx context.Context, userID string, snap Snapshot) (Info, error)
	Download(ctx context.Context, userID, snapshotID string) (Snapshot, error)
	List(ctx context.Context, userID string) ([]Info, error)
	Delete(ctx context.Context, userID, snapshotID string) error
}

// Service runs backups against a record store.
type Service struct {
	store    *record.Store
	provider Provider
	log      zerolog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock overrides the snapshot timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a provider to a store.
func NewService(store *record.Store, provider Provider, opts ...Option) *Service {
	s := &Service{
		store:    store,
		provider: provider,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backup snapshots the store and uploads it for the user.
func (s *Service) Backup(ctx context.Context, userID string) (Info, error) {
	snap := Snapshot{
		Invoices:  s.store.Invoices.List(),
		Products:  s.store.Products.List(),
		Payments:  s.store.Payments.List(),
		CreatedAt: s.now().UTC(),
	}
	info, err := s.provider.Upload(ctx, userID, snap)
	if err != nil {
		return Info{}, err
	}
	s.log.Info().
		Str("user", userID).
		Str("snapshot", info.ID).
		Int("invoices", info.Invoices).
		Int("products", info.Products).
		Int("payments", info.Payments).
		Msg("backup uploaded")
	return info, nil
}

// Restore downloads a snapshot and replaces the store's collections
// with it, following the restore rules above.
func (s *Service) Restore(ctx context.Context, userID, snapshotID string) (Snapshot, error) {
	snap, err := s.provider.Download(ctx, userID, snapshotID)
	if err != nil {
		return Snapshot{}, err
	}
	if len(snap.Invoices) > 0 {
		if err := s.store.Invoices.ImportAll(ctx, snap.Invoices); err != nil {
			return Snapshot{}, err
		}
	}
	if len(snap.Products) > 0 {
		if err := s.store.Products.ImportAll(ctx, snap.Products); err != nil {
			return Snapshot{}, err
		}
	}
	if err := s.store.Payments.ImportAll(ctx, snap.Payments); err != nil {
		return Snapshot{}, err
	}
	s.log.Info().
		Str("user", userID).
		Str("snapshot", snapshotID).
		Msg("backup restored")
	return snap, nil
}

// List returns the user's stored snapshots.
func (s *Service) List(ctx context.Context, userID string) ([]Info, error) {
	return s.provider.List(ctx, userID)
}

// Delete removes a stored snapshot.
func (s *Service) Delete(ctx context.Context, userID, snapshotID string) error {
	return s.provider.Delete(ctx, userID, snapshotID)
}
