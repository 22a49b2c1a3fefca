package avatars

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository keeps snapshots in process memory.
// Useful for testing and for running the bot without Redis.
type InMemoryRepository struct {
	mu           sync.RWMutex
	timeProvider TimeProvider
	records      map[string]*Record
	byOwner      map[string]map[string]struct{}
	latest       map[string]string
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository(timeProvider TimeProvider) *InMemoryRepository {
	if timeProvider == nil {
		timeProvider = RealTimeProvider{}
	}

	return &InMemoryRepository{
		timeProvider: timeProvider,
		records:      make(map[string]*Record),
		byOwner:      make(map[string]map[string]struct{}),
		latest:       make(map[string]string),
	}
}

// Save implements Repository
func (r *InMemoryRepository) Save(ctx context.Context, record *Record) error {
	if err := validateRecord(record); err != nil {
		return err
	}

	now := r.timeProvider.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()

	// Moving a record between owners drops it from the previous owner's index
	if existing, ok := r.records[record.ID]; ok && existing.OwnerID != record.OwnerID {
		r.unindex(existing)
	}

	r.records[record.ID] = record.clone()
	if r.byOwner[record.OwnerID] == nil {
		r.byOwner[record.OwnerID] = make(map[string]struct{})
	}
	r.byOwner[record.OwnerID][record.ID] = struct{}{}
	r.latest[record.OwnerID] = record.ID

	return nil
}

// Get implements Repository
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, notFound(id)
	}
	return record.clone(), nil
}

// GetLatestByOwner implements Repository
func (r *InMemoryRepository) GetLatestByOwner(ctx context.Context, ownerID string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.latest[ownerID]
	if !ok {
		return nil, noneForOwner(ownerID)
	}
	record, ok := r.records[id]
	if !ok {
		return nil, noneForOwner(ownerID)
	}
	return record.clone(), nil
}

// ListByOwner implements Repository
func (r *InMemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*Record, 0, len(r.byOwner[ownerID]))
	for id := range r.byOwner[ownerID] {
		records = append(records, r.records[id].clone())
	}
	sortByRecency(records)
	return records, nil
}

// Delete implements Repository
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return notFound(id)
	}
	r.unindex(record)
	delete(r.records, id)
	return nil
}

func (r *InMemoryRepository) unindex(record *Record) {
	delete(r.byOwner[record.OwnerID], record.ID)
	if len(r.byOwner[record.OwnerID]) == 0 {
		delete(r.byOwner, record.OwnerID)
	}
	if r.latest[record.OwnerID] == record.ID {
		delete(r.latest, record.OwnerID)
	}
}

func sortByRecency(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
}
