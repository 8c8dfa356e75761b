package filter

import (
	"container/list"
	"sync"
)

// lruCache holds compiled filters keyed by their trimmed expression.
type lruCache struct {
	capacity int
	order    *list.List
	items    map[string]*list.Element
	mu       sync.Mutex
}

type cached struct {
	expression string
	filter     *Filter
}

func newLRUCache(capacity int) *lruCache {
	return &lruCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// get returns the cached filter and marks it most recently used.
func (c *lruCache) get(expression string) (*Filter, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[expression]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cached).filter, true
}

// put stores f, evicting the least recently used filter when full.
func (c *lruCache) put(expression string, f *Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[expression]; ok {
		el.Value.(*cached).filter = f
		c.order.MoveToFront(el)
		return
	}

	c.items[expression] = c.order.PushFront(&cached{expression: expression, filter: f})

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cached).expression)
	}
}

func (c *lruCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.items)
	c.order.Init()
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}
