package lib

import (
	"sync"

	"github.com/gammazero/deque"
)

// History is a bounded, concurrency-safe log. When it reaches its capacity the oldest item is dropped.
// The implementation uses Ring buffer (deque) to avoid unnecessary allocations
type History[T any] struct {
	data  *deque.Deque[T]
	cap   int
	mutex sync.RWMutex
}

func NewHistory[T any](cap int) *History[T] {
	if cap < 1 {
		cap = 1
	}
	return &History[T]{
		data: deque.New[T](cap, cap),
		cap:  cap,
	}
}

func (h *History[T]) Add(item T) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.data.Len() >= h.cap {
		h.data.PopFront()
	}
	h.data.PushBack(item)
}

func (h *History[T]) Len() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return h.data.Len()
}

// Items returns a copy of the items, oldest first
func (h *History[T]) Items() []T {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	items := make([]T, h.data.Len())
	for i := 0; i < h.data.Len(); i++ {
		items[i] = h.data.At(i)
	}
	return items
}

func (h *History[T]) Range(f func(item T) bool) {
	for _, item := range h.Items() {
		if !f(item) {
			return
		}
	}
}
