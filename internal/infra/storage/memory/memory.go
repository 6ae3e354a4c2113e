package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"firegate/internal/core/domain"
	"firegate/internal/infra/storage"
)

// MemoryStorage backs all repositories with in-process maps. Used when no
// database is configured and in tests.
type MemoryStorage struct {
	quarantine map[string][]*storage.QuarantineRow
	errors     map[string]*domain.ErrorRecord
	errOrder   []string
	metrics    map[string][]*storage.QualityMetric
	mu         sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		quarantine: make(map[string][]*storage.QuarantineRow),
		errors:     make(map[string]*domain.ErrorRecord),
		metrics:    make(map[string][]*storage.QualityMetric),
	}
}

// -----------------------------------------------------------------------------
// Quarantine Repository
// -----------------------------------------------------------------------------

type QuarantineRepo struct {
	store *MemoryStorage
}

func NewQuarantineRepo(store *MemoryStorage) *QuarantineRepo {
	return &QuarantineRepo{store: store}
}

func (r *QuarantineRepo) Add(ctx context.Context, source string, records domain.Batch, rec domain.ErrorRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, record := range records {
		r.store.quarantine[source] = append(r.store.quarantine[source], &storage.QuarantineRow{
			ID:        uuid.New().String(),
			Source:    source,
			ErrorID:   rec.ErrorID,
			ErrorType: rec.ErrorType,
			Reason:    rec.Message,
			Payload:   record,
			CreatedAt: rec.Timestamp,
		})
	}
	return nil
}

func (r *QuarantineRepo) GetPending(ctx context.Context, source string) ([]*storage.QuarantineRow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*storage.QuarantineRow
	for _, row := range r.store.quarantine[source] {
		if !row.Released {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *QuarantineRepo) Release(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, rows := range r.store.quarantine {
		for _, row := range rows {
			if row.ID == id {
				row.Released = true
				return nil
			}
		}
	}
	return storage.ErrNotFound
}

func (r *QuarantineRepo) Count(ctx context.Context, source string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	n := 0
	for _, row := range r.store.quarantine[source] {
		if !row.Released {
			n++
		}
	}
	return n, nil
}

// -----------------------------------------------------------------------------
// Error Repository
// -----------------------------------------------------------------------------

type ErrorRepo struct {
	store *MemoryStorage
}

func NewErrorRepo(store *MemoryStorage) *ErrorRepo {
	return &ErrorRepo{store: store}
}

func (r *ErrorRepo) Save(ctx context.Context, rec *domain.ErrorRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *rec
	r.store.errors[rec.ErrorID] = &cp
	r.store.errOrder = append(r.store.errOrder, rec.ErrorID)
	return nil
}

func (r *ErrorRepo) Get(ctx context.Context, errorID string) (*domain.ErrorRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rec, ok := r.store.errors[errorID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *ErrorRepo) Resolve(ctx context.Context, errorID, notes string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.store.errors[errorID]
	if !ok {
		return storage.ErrNotFound
	}
	rec.Resolved = true
	rec.ResolutionNotes = notes
	return nil
}

func (r *ErrorRepo) GetUnresolved(ctx context.Context, source string) ([]*domain.ErrorRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.ErrorRecord
	for _, id := range r.store.errOrder {
		rec := r.store.errors[id]
		if rec.Resolved {
			continue
		}
		if source != "" && rec.Source != source {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (r *ErrorRepo) CountUnresolved(ctx context.Context, source string) (int, error) {
	recs, err := r.GetUnresolved(ctx, source)
	return len(recs), err
}

// -----------------------------------------------------------------------------
// Metrics Repository
// -----------------------------------------------------------------------------

type MetricsRepo struct {
	store *MemoryStorage
}

func NewMetricsRepo(store *MemoryStorage) *MetricsRepo {
	return &MetricsRepo{store: store}
}

func (r *MetricsRepo) Save(ctx context.Context, m *storage.QualityMetric) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *m
	r.store.metrics[m.Source] = append(r.store.metrics[m.Source], &cp)
	return nil
}

func (r *MetricsRepo) GetRecent(ctx context.Context, source string, since time.Time) ([]*storage.QualityMetric, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*storage.QualityMetric
	for _, m := range r.store.metrics[source] {
		if m.Timestamp.Before(since) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}
