package notice

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps notices in process, used when no database is configured
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	notices map[int64]*Notice
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notices: make(map[int64]*Notice), now: time.Now}
}

func (m *MemoryStore) Create(_ context.Context, in NewNotice) (*Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	n := &Notice{
		ID:         m.nextID,
		DriverID:   in.DriverID,
		Kind:       in.Kind,
		Message:    in.Message,
		Details:    append([]string(nil), in.Details...),
		PaymentFor: in.PaymentFor,
		CreatedAt:  m.now().UTC(),
	}
	m.notices[n.ID] = n
	cp := *n
	return &cp, nil
}

func (m *MemoryStore) GetByID(_ context.Context, id int64) (*Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notices[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (m *MemoryStore) ListByDriverID(_ context.Context, driverID string, limit, offset int, unreadOnly bool) ([]*Notice, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*Notice
	for _, n := range m.notices {
		if n.DriverID != driverID || (unreadOnly && n.IsRead) {
			continue
		}
		cp := *n
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	if offset >= total {
		return []*Notice{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *MemoryStore) MarkAsRead(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notices[id]; ok {
		n.IsRead = true
	}
	return nil
}

func (m *MemoryStore) MarkAllAsRead(_ context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notices {
		if n.DriverID == driverID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *MemoryStore) GetUnreadCount(_ context.Context, driverID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notices {
		if n.DriverID == driverID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*Repository)(nil)
)
