package storage

import (
	"sort"
	"sync"

	"finlens/internal/models"
)

// MemoryStore is an in-memory Store used by tests and by the server when no
// database path is configured. Reads return copies so callers can't reach
// into shared state.
type MemoryStore struct {
	mu            sync.RWMutex
	records       []models.Record
	subscriptions map[string]models.Subscription
	assets        map[string]models.Asset
	liabilities   map[string]models.Liability
	snapshots     map[string]models.NetWorthSnapshot // keyed by date string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subscriptions: make(map[string]models.Subscription),
		assets:        make(map[string]models.Asset),
		liabilities:   make(map[string]models.Liability),
		snapshots:     make(map[string]models.NetWorthSnapshot),
	}
}

func (m *MemoryStore) Records() ([]models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Record, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *MemoryStore) AddRecords(records []models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, records...)
	return nil
}

func (m *MemoryStore) RemoveRecords(ids []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := m.records[:0]
	removed := 0
	for _, r := range m.records {
		if drop[r.ID] {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return removed, nil
}

func (m *MemoryStore) Subscriptions() ([]models.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Subscription, 0, len(m.subscriptions))
	for _, s := range m.subscriptions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) SaveSubscription(sub models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.subscriptions[sub.ID] = sub
	return nil
}

func (m *MemoryStore) Assets() ([]models.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Asset, 0, len(m.assets))
	for _, a := range m.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) SaveAsset(asset models.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.assets[asset.ID] = asset
	return nil
}

func (m *MemoryStore) Liabilities() ([]models.Liability, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Liability, 0, len(m.liabilities))
	for _, l := range m.liabilities {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) SaveLiability(liability models.Liability) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.liabilities[liability.ID] = liability
	return nil
}

func (m *MemoryStore) Snapshots() ([]models.NetWorthSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.NetWorthSnapshot, 0, len(m.snapshots))
	for _, s := range m.snapshots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *MemoryStore) SaveSnapshot(snap models.NetWorthSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots[snap.Date.String()] = snap
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
