package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/insights-explorer/internal/table"
)

// Dataset is one uploaded table as loaded. Cleaning is applied per request.
type Dataset struct {
	ID       string
	Name     string
	Table    *table.Table
	Uploaded time.Time
}

// Store keeps datasets in memory, evicting the oldest once max is reached.
type Store struct {
	mu    sync.RWMutex
	max   int
	order []string
	items map[string]*Dataset
}

// NewStore returns a store holding at most max datasets (minimum 1).
func NewStore(max int) *Store {
	if max < 1 {
		max = 1
	}
	return &Store{max: max, items: make(map[string]*Dataset)}
}

// Put stores t under a fresh id and returns the dataset and the ids it evicted.
func (s *Store) Put(name string, t *table.Table) (*Dataset, []string) {
	ds := &Dataset{ID: uuid.NewString(), Name: name, Table: t, Uploaded: time.Now()}
	s.mu.Lock()
	defer s.mu.Unlock()
	var evicted []string
	for len(s.order) >= s.max {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.items, oldest)
		evicted = append(evicted, oldest)
	}
	s.items[ds.ID] = ds
	s.order = append(s.order, ds.ID)
	return ds, evicted
}

// Get looks up a dataset by id.
func (s *Store) Get(id string) (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.items[id]
	return ds, ok
}

// Delete removes a dataset; it reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns datasets newest first.
func (s *Store) List() []*Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Dataset, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.items[s.order[i]])
	}
	return out
}

// Len returns the number of stored datasets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
