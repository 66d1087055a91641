package debt

import (
	"context"
	"sync"
)

// Catalog holds the last fetched collectible debts per category.
// Each category is fetched and replaced independently.
type Catalog struct {
	source Source

	mu        sync.RWMutex
	snapshots map[Category][]Debt
}

// NewCatalog creates an empty catalog backed by source
func NewCatalog(source Source) *Catalog {
	return &Catalog{
		source:    source,
		snapshots: make(map[Category][]Debt, len(Categories)),
	}
}

// Refresh fetches the category and replaces its snapshot with the collectible
// debts. On error the previous snapshot is kept.
func (c *Catalog) Refresh(ctx context.Context, category Category) ([]Debt, error) {
	if _, err := categoryPath(category); err != nil {
		return nil, err
	}

	debts, err := c.source.List(ctx, category, Filter{})
	if err != nil {
		return nil, err
	}
	collectible := FilterCollectible(debts)
	for i := range collectible {
		collectible[i].Category = category
	}

	c.mu.Lock()
	c.snapshots[category] = collectible
	c.mu.Unlock()

	return cloneDebts(collectible), nil
}

// Debts returns a copy of the category snapshot
func (c *Catalog) Debts(category Category) []Debt {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneDebts(c.snapshots[category])
}

// IDs returns the identifiers in the category snapshot, in listing order
func (c *Catalog) IDs(category Category) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, len(c.snapshots[category]))
	for i, d := range c.snapshots[category] {
		ids[i] = d.ID
	}
	return ids
}

// Count is the badge count for the category
func (c *Catalog) Count(category Category) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshots[category])
}

// Get looks up a single debt in the category snapshot
func (c *Catalog) Get(category Category, id string) (Debt, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.snapshots[category] {
		if d.ID == id {
			return d, true
		}
	}
	return Debt{}, false
}

// View builds the client listing for a category
func (c *Catalog) View(category Category) *CategoryView {
	debts := c.Debts(category)
	return &CategoryView{Category: category, Count: len(debts), Debts: debts}
}

func cloneDebts(in []Debt) []Debt {
	out := make([]Debt, len(in))
	copy(out, in)
	return out
}
