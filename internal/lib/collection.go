package lib

import "sync"

type IDGetter interface {
	GetID() string
}

// Collection is a concurrency-safe map of items keyed by their ID
type Collection[T IDGetter] struct {
	items map[string]T
	mutex sync.RWMutex
}

func NewCollection[T IDGetter]() *Collection[T] {
	return &Collection[T]{
		items: make(map[string]T),
	}
}

func (c *Collection[T]) Load(id string) (T, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, ok := c.items[id]
	return item, ok
}

func (c *Collection[T]) Store(item T) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[item.GetID()] = item
}

// LoadOrStore returns the existing item if present, otherwise stores the given one. The loaded result is true if the item was already present
func (c *Collection[T]) LoadOrStore(item T) (actual T, loaded bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if existing, ok := c.items[item.GetID()]; ok {
		return existing, true
	}
	c.items[item.GetID()] = item
	return item, false
}

func (c *Collection[T]) Delete(id string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, id)
}

// Range calls f for each item until f returns false. The collection must not be modified from within f
func (c *Collection[T]) Range(f func(item T) bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	for _, item := range c.items {
		if !f(item) {
			return
		}
	}
}

func (c *Collection[T]) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}
