package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryReservationRepo keeps reservations in process memory.  It backs
// local runs with STORE_DRIVER=memory and the service tests.  Transactions
// are serialized by txMu and roll back by restoring a snapshot.
type MemoryReservationRepo struct {
	txMu   sync.Mutex
	mu     sync.RWMutex
	rows   map[uint64]ReservationRecord
	nextID uint64
	now    func() time.Time
}

// NewMemoryReservationRepo returns an empty in-memory store.
func NewMemoryReservationRepo() *MemoryReservationRepo {
	return &MemoryReservationRepo{
		rows:   make(map[uint64]ReservationRecord),
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// InTx runs fn while holding the transaction lock.  On error the state
// seen before fn started is restored.
func (m *MemoryReservationRepo) InTx(ctx context.Context, fn func(ctx context.Context, tx ReservationStore) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	snapshot := make(map[uint64]ReservationRecord, len(m.rows))
	for id, rec := range m.rows {
		snapshot[id] = rec
	}
	nextID := m.nextID
	m.mu.RUnlock()

	if err := fn(ctx, m); err != nil {
		m.mu.Lock()
		m.rows = snapshot
		m.nextID = nextID
		m.mu.Unlock()
		return err
	}
	return nil
}

// Ping always succeeds.
func (m *MemoryReservationRepo) Ping(context.Context) error { return nil }

func (m *MemoryReservationRepo) FindByID(_ context.Context, id uint64) (ReservationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.rows[id]
	if !ok {
		return ReservationRecord{}, ErrReservationNotFound
	}
	return rec, nil
}

func (m *MemoryReservationRepo) ExistsByID(_ context.Context, id uint64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rows[id]
	return ok, nil
}

// sorted returns the rows matching keep ordered by ascending id.
func (m *MemoryReservationRepo) sorted(keep func(ReservationRecord) bool) []ReservationRecord {
	out := make([]ReservationRecord, 0, len(m.rows))
	for _, rec := range m.rows {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemoryReservationRepo) Search(_ context.Context, p SearchParams) ([]ReservationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.sorted(func(rec ReservationRecord) bool {
		if p.RoomID != nil && rec.RoomID != *p.RoomID {
			return false
		}
		if p.UserID != nil && rec.UserID != *p.UserID {
			return false
		}
		return true
	})
	offset := max(p.Offset, 0)
	if offset >= len(all) {
		return []ReservationRecord{}, nil
	}
	end := len(all)
	if p.Limit > 0 && p.Limit < end-offset {
		end = offset + p.Limit
	}
	return all[offset:end], nil
}

func (m *MemoryReservationRepo) FindAllByStatus(_ context.Context, status string) ([]ReservationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(func(rec ReservationRecord) bool { return rec.Status == status }), nil
}

func (m *MemoryReservationRepo) Insert(_ context.Context, rec ReservationRecord) (ReservationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	rec.ID = m.nextID
	rec.CreatedAt = now
	rec.UpdatedAt = now
	m.rows[rec.ID] = rec
	m.nextID++
	return rec, nil
}

func (m *MemoryReservationRepo) Replace(_ context.Context, id uint64, rec ReservationRecord) (ReservationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[id]
	if !ok {
		return ReservationRecord{}, ErrReservationNotFound
	}
	cur.UserID = rec.UserID
	cur.RoomID = rec.RoomID
	cur.StartDate = rec.StartDate
	cur.EndDate = rec.EndDate
	cur.Status = rec.Status
	cur.UpdatedAt = m.now()
	m.rows[id] = cur
	return cur, nil
}

func (m *MemoryReservationRepo) SetStatus(_ context.Context, id uint64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[id]
	if !ok {
		return ErrReservationNotFound
	}
	cur.Status = status
	cur.UpdatedAt = m.now()
	m.rows[id] = cur
	return nil
}

// FindConflictingIDs applies the same half-open overlap predicate as the
// MySQL query.
func (m *MemoryReservationRepo) FindConflictingIDs(_ context.Context, q ConflictQuery) ([]uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []uint64
	for _, rec := range m.sorted(func(rec ReservationRecord) bool {
		return rec.RoomID == q.RoomID && rec.Status == q.Status && rec.ID != q.ExcludeID &&
			rec.StartDate.Before(q.End) && q.Start.Before(rec.EndDate)
	}) {
		ids = append(ids, rec.ID)
	}
	return ids, nil
}

// LockRoom is a no-op: InTx already serializes every transaction.
func (m *MemoryReservationRepo) LockRoom(context.Context, uint64) error { return nil }
