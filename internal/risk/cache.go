package risk

import (
	"sync"
	"time"

	"github.com/divergentwx/outage-risk-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Key identifies one cached result set. Mode and State are stored in
// normalized form so equivalent requests share an entry.
type Key struct {
	Mode   string
	Region string
	State  string
	Hours  int
	Sample int
}

// Cache memoizes sorted result lists per query signature. Entries are
// fresh for the TTL window and replaced atomically on recomputation. The
// entry count is bounded: distinct query signatures accumulate forever
// otherwise, and least-recently-used entries are evicted past the bound.
type Cache struct {
	ttl        time.Duration
	maxEntries int
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[Key]*cacheEntry
	head    *cacheEntry // most recently used
	tail    *cacheEntry // least recently used
}

type cacheEntry struct {
	key       Key
	rows      []domain.RiskRow
	createdAt time.Time
	prev      *cacheEntry
	next      *cacheEntry
}

// NewCache creates a result cache. Pass nil for clock to use real time.
func NewCache(ttl time.Duration, maxEntries int, clock clockwork.Clock) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clock,
		entries:    make(map[Key]*cacheEntry),
	}
}

// Get returns the rows for key if a fresh entry exists. A stale entry is a
// miss; it stays in place until overwritten or evicted.
func (c *Cache) Get(key Key) ([]domain.RiskRow, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock.Since(e.createdAt) >= c.ttl {
		return nil, false
	}
	c.moveToFront(e)
	return e.rows, true
}

// Put stores rows for key, replacing any previous entry whole.
func (c *Cache) Put(key Key, rows []domain.RiskRow) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.rows = rows
		e.createdAt = c.clock.Now()
		c.moveToFront(e)
		return
	}

	e := &cacheEntry{key: key, rows: rows, createdAt: c.clock.Now()}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

// Len reports the current entry count, fresh or stale.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) moveToFront(e *cacheEntry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *Cache) addToFront(e *cacheEntry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *Cache) remove(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *Cache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
