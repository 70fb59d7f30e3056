package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/docregistry/docregistry/internal/document"
)

// MemoryRepo is an in-memory repository with the same semantics as SQLRepo,
// including the parent reference check and the listing order. It backs
// tests and serve when the database file cannot be opened.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	store  map[int64]*document.Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[int64]*document.Document)}
}

func clone(d *document.Document) *document.Document {
	c := *d
	c.Addendums = []document.Addendum{}
	return &c
}

func (m *MemoryRepo) ListJoined(ctx context.Context) ([]document.JoinedRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var parents []*document.Document
	children := map[int64][]*document.Document{}
	for _, d := range m.store {
		if d.ParentID == nil {
			parents = append(parents, d)
		} else {
			children[*d.ParentID] = append(children[*d.ParentID], d)
		}
	}
	sort.Slice(parents, func(i, j int) bool {
		if parents[i].Name != parents[j].Name {
			return parents[i].Name < parents[j].Name
		}
		return parents[i].ID < parents[j].ID
	})

	out := []document.JoinedRow{}
	for _, p := range parents {
		base := document.JoinedRow{
			ID: p.ID, Name: p.Name, Category: p.Category, PublicationDate: p.PublicationDate,
			Status: p.Status, Content: p.Content,
		}
		kids := children[p.ID]
		if len(kids) == 0 {
			out = append(out, base)
			continue
		}
		sort.Slice(kids, func(i, j int) bool { return addendumLess(kids[i], kids[j]) })
		for _, k := range kids {
			row := base
			id, name, status := k.ID, k.Name, k.Status
			row.AddendumID, row.AddendumName, row.AddendumStatus = &id, &name, &status
			row.AddendumPublicationDate = k.PublicationDate
			out = append(out, row)
		}
	}
	return out, nil
}

// addendumLess orders like SQLite's ORDER BY publication_date, id: NULL dates first.
func addendumLess(a, b *document.Document) bool {
	switch {
	case a.PublicationDate == nil && b.PublicationDate != nil:
		return true
	case a.PublicationDate != nil && b.PublicationDate == nil:
		return false
	case a.PublicationDate != nil && *a.PublicationDate != *b.PublicationDate:
		return *a.PublicationDate < *b.PublicationDate
	}
	return a.ID < b.ID
}

func (m *MemoryRepo) ListUncategorized(ctx context.Context) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*document.Document{}
	for _, d := range m.store {
		if d.ParentID == nil && d.Category == "" {
			out = append(out, clone(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id int64) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.store[id]; ok {
		return clone(d), nil
	}
	return nil, document.ErrNotFound
}

func (m *MemoryRepo) Insert(ctx context.Context, in document.CreateInput) (int64, error) {
	if strings.TrimSpace(in.Name) == "" {
		return 0, document.Invalid("name", "document name cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.store[m.nextID] = &document.Document{
		ID:       m.nextID,
		Name:     in.Name,
		Category: in.Category,
		Status:   document.StatusDraft,
		Content:  in.Content,
	}
	return m.nextID, nil
}

func (m *MemoryRepo) Update(ctx context.Context, id int64, p document.Patch) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok {
		return 0, nil
	}
	if p.Name.Set && strings.TrimSpace(p.Name.Value) == "" {
		return 0, document.Invalid("name", "document name cannot be empty")
	}
	if p.ParentID.Set && !p.ParentID.Null {
		if _, ok := m.store[p.ParentID.Value]; !ok {
			return 0, document.Invalid("parent_id", "parent document does not exist")
		}
	}
	if p.Name.Set {
		d.Name = p.Name.Value
	}
	if p.Category.Set {
		d.Category = p.Category.Value
	}
	if p.Status.Set {
		d.Status = p.Status.Value
	}
	if p.ParentID.Set {
		if p.ParentID.Null {
			d.ParentID = nil
		} else {
			pid := p.ParentID.Value
			d.ParentID = &pid
		}
	}
	return 1, nil
}

func (m *MemoryRepo) Publish(ctx context.Context, id int64, date string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok {
		return 0, nil
	}
	d.Status = document.StatusPublished
	d.PublicationDate = &date
	return 1, nil
}

func (m *MemoryRepo) CountAddendums(ctx context.Context, id int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, d := range m.store {
		if d.ParentID != nil && *d.ParentID == id {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepo) Upsert(ctx context.Context, d *document.Document) error {
	if strings.TrimSpace(d.Name) == "" {
		return document.Invalid("name", "document name cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ParentID != nil {
		if _, ok := m.store[*d.ParentID]; !ok {
			return document.Invalid("parent_id", "parent document does not exist")
		}
	}
	c := clone(d)
	if c.Status == "" {
		c.Status = document.StatusDraft
	}
	m.store[c.ID] = c
	if c.ID > m.nextID {
		m.nextID = c.ID
	}
	return nil
}
