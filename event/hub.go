// SPDX-License-Identifier: EPL-2.0

// Package event implements a small typed publish/subscribe hub that engine
// objects hold by composition.
package event

// Hub dispatches events of type E keyed by K. A Hub is not goroutine-safe;
// it is meant to be used from the event loop only.
type Hub[K comparable, E any] struct {
	handlers map[K][]*handler[E]
}

type handler[E any] struct {
	fn      func(E)
	once    bool
	removed bool
}

// On subscribes fn to k and returns a function that removes it.
func (h *Hub[K, E]) On(k K, fn func(E)) (off func()) {
	return h.add(k, fn, false)
}

// Once subscribes fn for the next emission of k only.
func (h *Hub[K, E]) Once(k K, fn func(E)) (off func()) {
	return h.add(k, fn, true)
}

func (h *Hub[K, E]) add(k K, fn func(E), once bool) func() {
	if h.handlers == nil {
		h.handlers = make(map[K][]*handler[E])
	}

	hd := &handler[E]{fn: fn, once: once}
	h.handlers[k] = append(h.handlers[k], hd)

	return func() { h.remove(k, hd) }
}

func (h *Hub[K, E]) remove(k K, hd *handler[E]) {
	if hd.removed {
		return
	}
	hd.removed = true

	list := h.handlers[k]
	for i, o := range list {
		if o == hd {
			h.handlers[k] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(h.handlers[k]) == 0 {
		delete(h.handlers, k)
	}
}

// Emit calls every handler subscribed to k. Handlers are snapshotted first,
// so a handler may subscribe or unsubscribe freely; a handler removed during
// the emission is not called.
func (h *Hub[K, E]) Emit(k K, e E) {
	list := h.handlers[k]
	if len(list) == 0 {
		return
	}

	snapshot := make([]*handler[E], len(list))
	copy(snapshot, list)

	for _, hd := range snapshot {
		if hd.removed {
			continue
		}
		if hd.once {
			h.remove(k, hd)
		}
		hd.fn(e)
	}
}

// Len is the number of handlers subscribed to k.
func (h *Hub[K, E]) Len(k K) int {
	return len(h.handlers[k])
}

// Clear removes every handler.
func (h *Hub[K, E]) Clear() {
	for _, list := range h.handlers {
		for _, hd := range list {
			hd.removed = true
		}
	}
	h.handlers = nil
}
