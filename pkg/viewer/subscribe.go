package viewer

import "github.com/matzehuels/pageviz/pkg/view"

// Subscribe returns a channel that receives the visible graph after every
// change, starting with the current one. Slow readers only ever see the most
// recent projection; intermediate ones are dropped. Call cancel to stop
// receiving; the channel is closed.
func (h *Handle) Subscribe() (updates <-chan view.Projection, cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan view.Projection, 1)
	ch <- h.project()

	if h.subscribers == nil {
		h.subscribers = make(map[int]chan view.Projection)
	}
	id := h.nextSub
	h.nextSub++
	h.subscribers[id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subscribers[id]; ok {
			delete(h.subscribers, id)
			close(c)
		}
	}
}

// changed bumps the version and publishes the new projection. h.mu must be
// held.
func (h *Handle) changed() {
	h.version++
	if len(h.subscribers) == 0 {
		return
	}
	p := h.project()
	for _, ch := range h.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- p
	}
}
