package attune

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// mockStore is an in-memory Store for testing.
type mockStore struct {
	mu         sync.Mutex
	entries    map[string]*Entry
	insights   map[string]*Insight
	totals     map[string]int
	lastActive map[string]time.Time

	failCreateEntry   error
	failGetEntry      error
	failRecent        error
	failCreateInsight error
	failBump          error
}

func newMockStore() *mockStore {
	return &mockStore{
		entries:    make(map[string]*Entry),
		insights:   make(map[string]*Insight),
		totals:     make(map[string]int),
		lastActive: make(map[string]time.Time),
	}
}

func (m *mockStore) CreateEntry(_ context.Context, entry *Entry) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCreateEntry != nil {
		return nil, m.failCreateEntry
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	m.entries[entry.ID] = entry
	return entry, nil
}

func (m *mockStore) GetEntry(_ context.Context, id string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failGetEntry != nil {
		return nil, m.failGetEntry
	}
	entry, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (m *mockStore) RecentEntries(_ context.Context, userID string, since time.Time) ([]*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failRecent != nil {
		return nil, m.failRecent
	}
	var result []*Entry
	for _, e := range m.entries {
		if e.UserID == userID && !e.CreatedAt.Before(since) {
			result = append(result, e)
		}
	}
	// Newest first, matching the real store's ordering.
	for i := 0; i < len(result)-1; i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].CreatedAt.After(result[i].CreatedAt) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

func (m *mockStore) CreateInsight(_ context.Context, insight *Insight) (*Insight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCreateInsight != nil {
		return nil, m.failCreateInsight
	}
	if insight.ID == "" {
		insight.ID = uuid.New().String()
	}
	m.insights[insight.ID] = insight
	return insight, nil
}

func (m *mockStore) BumpEngagement(_ context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failBump != nil {
		return m.failBump
	}
	m.totals[userID]++
	m.lastActive[userID] = at
	return nil
}

func (m *mockStore) total(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals[userID]
}

var _ Store = (*mockStore)(nil)

// mockHealthStore is an in-memory HealthStore for testing.
type mockHealthStore struct {
	mu      sync.Mutex
	records []*HealthRecord

	failLatest error
	failRange  error
}

func (m *mockHealthStore) Latest(_ context.Context, userID string) (*HealthRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failLatest != nil {
		return nil, m.failLatest
	}
	var latest *HealthRecord
	for _, r := range m.records {
		if r.UserID != userID {
			continue
		}
		if latest == nil || r.Date.After(latest.Date) {
			latest = r
		}
	}
	return latest, nil
}

func (m *mockHealthStore) Range(_ context.Context, userID string, from, to time.Time) ([]*HealthRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failRange != nil {
		return nil, m.failRange
	}
	var result []*HealthRecord
	for _, r := range m.records {
		if r.UserID == userID && !r.Date.Before(from) && !r.Date.After(to) {
			result = append(result, r)
		}
	}
	return result, nil
}

var _ HealthStore = (*mockHealthStore)(nil)

// errBoom is a generic failure for store fault injection.
var errBoom = errors.New("boom")
