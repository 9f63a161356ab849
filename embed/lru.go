package embed

import (
	"container/list"
	"sync"
)

// lru is a count-bounded least-recently-used map keyed by text.
type lru[V any] struct {
	mu        sync.Mutex
	capacity  int
	items     map[string]*list.Element
	evictList *list.List
}

type lruEntry[V any] struct {
	key   string
	value V
}

func newLRU[V any](capacity int) *lru[V] {
	return &lru[V]{
		capacity:  max(capacity, 1),
		items:     make(map[string]*list.Element),
		evictList: list.New(),
	}
}

func (c *lru[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		return ent.Value.(*lruEntry[V]).value, true
	}
	var zero V
	return zero, false
}

func (c *lru[V]) set(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		ent.Value.(*lruEntry[V]).value = v
		return
	}

	for c.evictList.Len() >= c.capacity {
		c.removeElement(c.evictList.Back())
	}
	c.items[key] = c.evictList.PushFront(&lruEntry[V]{key: key, value: v})
}

// each visits entries from most to least recently used without touching
// their recency. It stops when fn returns false.
func (c *lru[V]) each(fn func(key string, v V) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for e := c.evictList.Front(); e != nil; e = e.Next() {
		kv := e.Value.(*lruEntry[V])
		if !fn(kv.key, kv.value) {
			return
		}
	}
}

func (c *lru[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

func (c *lru[V]) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	delete(c.items, e.Value.(*lruEntry[V]).key)
}
