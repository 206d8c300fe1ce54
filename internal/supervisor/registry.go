package supervisor

import (
	"sort"
	"sync"
)

// Registry indexes handles by ID for callers that address them remotely.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*Handle
}

func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]*Handle)}
}

func (r *Registry) Add(h *Handle) {
	if h == nil {
		return
	}
	r.mu.Lock()
	r.handles[h.ID()] = h
	r.mu.Unlock()
}

func (r *Registry) Get(id string) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[id]
	return h, ok
}

// Remove drops id and returns the handle it held.
func (r *Registry) Remove(id string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[id]
	delete(r.handles, id)
	return h, ok
}

// FindByName returns the first handle with the given config name.
func (r *Registry) FindByName(name string) (*Handle, bool) {
	for _, h := range r.List() {
		if h.name == name {
			return h, true
		}
	}
	return nil, false
}

// List returns all handles ordered by name, then ID.
func (r *Registry) List() []*Handle {
	r.mu.RLock()
	out := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		out = append(out, h)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].name != out[j].name {
			return out[i].name < out[j].name
		}
		return out[i].id < out[j].id
	})
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
