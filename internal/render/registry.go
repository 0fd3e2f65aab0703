package render

import (
	"context"
	"sync"

	"habitmap/internal/logs"
)

// Container is one mounted heatmap: a code block shown somewhere.
type Container struct {
	ID     string
	Source string // code block body
	Note   string // note the block came from, empty for ad-hoc blocks
	Line   int
}

type slot struct {
	container Container
	gen       uint64
}

// Registry tracks mounted containers and a render generation per container.
// A render that finishes after a newer one has started for the same
// container is stale and must be dropped.
type Registry struct {
	mu    sync.Mutex
	order []string
	slots map[string]*slot
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{slots: make(map[string]*slot)}
}

// Mount adds a container, or replaces the source of one already mounted.
func (r *Registry) Mount(c Container) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.slots[c.ID]; ok {
		s.container = c
		s.gen++
		return
	}
	r.slots[c.ID] = &slot{container: c}
	r.order = append(r.order, c.ID)
}

// Unmount removes a container. Renders still in flight for it become stale.
func (r *Registry) Unmount(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[id]; !ok {
		return false
	}
	delete(r.slots, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns a mounted container.
func (r *Registry) Get(id string) (Container, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return Container{}, false
	}
	return s.container, true
}

// Containers returns the mounted containers in mount order.
func (r *Registry) Containers() []Container {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Container, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.slots[id].container)
	}
	return out
}

// Len returns the number of mounted containers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Begin starts a new render generation for a container.
func (r *Registry) Begin(id string) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return 0, false
	}
	s.gen++
	return s.gen, true
}

// IsCurrent reports whether gen is still the latest render of a mounted
// container.
func (r *Registry) IsCurrent(id string, gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	return ok && s.gen == gen
}

// Update is a finished render for one container
type Update struct {
	ID     string
	Gen    uint64
	Result Result
}

// Render runs the pipeline for one container. The second result is false
// when the container is gone or a newer render started meanwhile.
func (r *Registry) Render(ctx context.Context, p *Pipeline, id string) (Update, bool) {
	c, ok := r.Get(id)
	if !ok {
		return Update{}, false
	}
	gen, ok := r.Begin(id)
	if !ok {
		return Update{}, false
	}

	res := p.Run(ctx, c.Source)
	if !r.IsCurrent(id, gen) {
		logs.Logger.Debugw("dropping stale render", "container", id, "gen", gen)
		return Update{}, false
	}
	return Update{ID: id, Gen: gen, Result: res}, true
}

// Refresh re-renders every mounted container, one after another, and
// returns the updates that are still current.
func (r *Registry) Refresh(ctx context.Context, p *Pipeline) []Update {
	var updates []Update
	for _, c := range r.Containers() {
		if ctx.Err() != nil {
			break
		}
		if u, ok := r.Render(ctx, p, c.ID); ok {
			updates = append(updates, u)
		}
	}
	return updates
}
