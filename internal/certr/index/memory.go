package index

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store used by tests, demos and DB-less runs.
// All operations are guarded by a single mutex, giving the same per-call
// isolation the SQL backend provides per row.
type Memory struct {
	mu   sync.Mutex
	recs []Record
	seq  int64
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Insert(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	rec.RecipientAddress = strings.ToLower(rec.RecipientAddress)
	m.seq++
	// Nanosecond-resolution clocks can still tie within one batch; nudge
	// CreatedAt by insertion sequence so "newest first" stays deterministic.
	rec.CreatedAt = rec.CreatedAt.Add(time.Duration(m.seq) * time.Nanosecond)
	m.recs = append(m.recs, rec)
	return nil
}

func (m *Memory) GetByTokenID(ctx context.Context, tokenID int64) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.recs {
		if m.recs[i].TokenID == tokenID {
			rec := m.recs[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetByCertificateID(ctx context.Context, certID string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.recs {
		if m.recs[i].CertificateID == certID {
			rec := m.recs[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) LatestByAddress(ctx context.Context, address string) (*Record, error) {
	recs, err := m.ListByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return &recs[0], nil
}

func (m *Memory) ListByAddress(ctx context.Context, address string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	address = strings.ToLower(address)
	var out []Record
	for i := range m.recs {
		if m.recs[i].RecipientAddress == address {
			out = append(out, m.recs[i])
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *Memory) List(ctx context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.recs))
	copy(out, m.recs)
	sortNewestFirst(out)
	return out, nil
}

func (m *Memory) SetRevoked(ctx context.Context, tokenID int64, revoked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.recs {
		if m.recs[i].TokenID == tokenID {
			m.recs[i].Revoked = revoked
			m.recs[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrNotFound
}

func sortNewestFirst(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
}
