package ola

import "sync"

// DmxFrame is one frame of channel levels for a universe.
type DmxFrame struct {
	Universe int
	Levels   []int
}

// DmxHandler receives pushed frames for a universe. It runs on the
// connection's read loop and must return quickly.
type DmxHandler func(frame DmxFrame)

// registry maps universes to the handler registered for pushed updates. Only
// the client writes to it; the push path only reads.
type registry struct {
	mu       sync.RWMutex
	handlers map[int]DmxHandler
}

func newRegistry() *registry {
	return &registry{handlers: make(map[int]DmxHandler)}
}

func (r *registry) set(universe int, h DmxHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[universe] = h
}

func (r *registry) remove(universe int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.handlers, universe)
}

func (r *registry) lookup(universe int) (DmxHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[universe]
	return h, ok
}

// deliver hands frame to the universe's handler, if there is one. Frames for
// universes without a handler are dropped.
func (r *registry) deliver(frame DmxFrame) bool {
	h, ok := r.lookup(frame.Universe)
	if !ok {
		return false
	}

	h(frame)
	return true
}
