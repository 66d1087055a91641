package selection

import (
	"sync"

	"github.com/fkhayef/driverpay/internal/debt"
)

// set is an insertion-ordered set of debt identifiers
type set struct {
	order []string
	index map[string]struct{}
}

func newSet() *set {
	return &set{index: make(map[string]struct{})}
}

func (s *set) add(id string) {
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *set) remove(id string) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *set) ids() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Store keeps an independent selection per category plus the active category.
// It is the only record of what the driver is about to pay.
type Store struct {
	mu sync.RWMutex

	active    debt.Category
	shipments *set
	buy4me    *set
}

// NewStore creates an empty store with SHIPMENT active
func NewStore() *Store {
	return &Store{
		active:    debt.CategoryShipment,
		shipments: newSet(),
		buy4me:    newSet(),
	}
}

func (s *Store) setFor(category debt.Category) *set {
	if category == debt.CategoryBuy4Me {
		return s.buy4me
	}
	return s.shipments
}

// Toggle removes id if selected, adds it otherwise. Returns whether id is now selected.
func (s *Store) Toggle(category debt.Category, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.setFor(category)
	if sel.remove(id) {
		return false
	}
	sel.add(id)
	return true
}

// SelectAll replaces the category selection with ids
func (s *Store) SelectAll(category debt.Category, ids []string) {
	next := newSet()
	for _, id := range ids {
		next.add(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(category, next)
}

// Clear empties the category selection
func (s *Store) Clear(category debt.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(category, newSet())
}

func (s *Store) replace(category debt.Category, next *set) {
	if category == debt.CategoryBuy4Me {
		s.buy4me = next
		return
	}
	s.shipments = next
}

// Remove deselects the given ids, ignoring ids that are not selected
func (s *Store) Remove(category debt.Category, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.setFor(category)
	for _, id := range ids {
		sel.remove(id)
	}
}

// Prune drops selected ids missing from validIDs and returns what was dropped
func (s *Store) Prune(category debt.Category, validIDs []string) []string {
	valid := make(map[string]struct{}, len(validIDs))
	for _, id := range validIDs {
		valid[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.setFor(category)
	var dropped []string
	for _, id := range sel.ids() {
		if _, ok := valid[id]; !ok {
			sel.remove(id)
			dropped = append(dropped, id)
		}
	}
	return dropped
}

// SetActive switches the active category without touching either selection
func (s *Store) SetActive(category debt.Category) {
	s.mu.Lock()
	s.active = category
	s.mu.Unlock()
}

// Active returns the active category
func (s *Store) Active() debt.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Selected returns the category selection in selection order
func (s *Store) Selected(category debt.Category) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.setFor(category).ids()
}

// Contains reports whether id is selected in category
func (s *Store) Contains(category debt.Category, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.setFor(category).index[id]
	return ok
}

// Len returns the number of selected ids in category
func (s *Store) Len(category debt.Category) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.setFor(category).order)
}
