package settings

import "sync"

// Cell is a value guarded by its own RWMutex. Cells never share a lock, so
// readers and writers of different cells never contend.
type Cell[T any] struct {
	mu    sync.RWMutex
	value T
}

// NewCell creates a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set replaces the value.
func (c *Cell[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
}

// Swap replaces the value and returns the previous one.
func (c *Cell[T]) Swap(value T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.value
	c.value = value
	return old
}
