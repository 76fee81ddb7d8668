package backup

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryProvider keeps snapshots in process memory. Useful for tests
// and as the fallback when no cloud provider is configured.
type MemoryProvider struct {
	mu    sync.Mutex
	seq   int64
	snaps map[string]map[string]stored
}

type stored struct {
	info Info
	snap Snapshot
}

// NewMemoryProvider returns an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{snaps: make(map[string]map[string]stored)}
}

// ErrSnapshotNotFound reports a missing snapshot id for the user.
var ErrSnapshotNotFound = fmt.Errorf("backup: snapshot not found")

func (m *MemoryProvider) Upload(_ context.Context, userID string, snap Snapshot) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	info := Info{
		ID:        fmt.Sprintf("snap-%d", m.seq),
		CreatedAt: snap.CreatedAt,
		Invoices:  len(snap.Invoices),
		Products:  len(snap.Products),
		Payments:  len(snap.Payments),
	}
	if m.snaps[userID] == nil {
		m.snaps[userID] = make(map[string]stored)
	}
	m.snaps[userID][info.ID] = stored{info: info, snap: snap}
	return info, nil
}

func (m *MemoryProvider) Download(_ context.Context, userID, snapshotID string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snaps[userID][snapshotID]
	if !ok {
		return Snapshot{}, ErrSnapshotNotFound
	}
	return s.snap, nil
}

func (m *MemoryProvider) List(_ context.Context, userID string) ([]Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]Info, 0, len(m.snaps[userID]))
	for _, s := range m.snaps[userID] {
		infos = append(infos, s.info)
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

func (m *MemoryProvider) Delete(_ context.Context, userID, snapshotID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snaps[userID][snapshotID]; !ok {
		return ErrSnapshotNotFound
	}
	delete(m.snaps[userID], snapshotID)
	return nil
}

var _ Provider = (*MemoryProvider)(nil)
