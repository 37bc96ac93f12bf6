package cache

import (
	"container/list"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/zeebo/xxh3"

	"github.com/hszk-dev/ytproxy/internal/domain/model"
)

type entry struct {
	key        Key
	payload    model.Transcript
	createdAt  time.Time
	accessedAt time.Time
	// recency increases on every insert and hit; the highest value is the most recently used.
	recency uint64

	lruElem *list.Element
	ageElem *list.Element
}

// lruCache is a bounded TTL cache with LRU eviction.
//
// Entries live in two lists: lru is ordered by last use (front = most recent)
// and age is ordered by creation (front = oldest). All entries share one TTL,
// so if the front of age is not expired no entry is, which keeps both expiry
// preference on eviction and Sweep proportional to the work they do.
type lruCache struct {
	mu      sync.Mutex
	items   map[xxh3.Uint128]*entry
	lru     *list.List
	age     *list.List
	seq     uint64
	ttl     time.Duration
	maxSize int

	hits              uint64
	misses            uint64
	evictionsExpired  uint64
	evictionsCapacity uint64

	clock  clock.Clock
	logger *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func newLRUCache(cfg Config, clk clock.Clock, logger *slog.Logger) *lruCache {
	return &lruCache{
		items:   make(map[xxh3.Uint128]*entry, cfg.MaxSize),
		lru:     list.New(),
		age:     list.New(),
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
		clock:   clk,
		logger:  logger,
		stop:    make(chan struct{}),
	}
}

func (c *lruCache) Get(key Key) (model.Transcript, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key.hash]
	if !ok {
		c.misses++
		return nil, false
	}

	now := c.clock.Now()
	if c.expiredUnlocked(e, now) {
		c.removeUnlocked(e)
		c.evictionsExpired++
		c.misses++
		return nil, false
	}

	c.touchUnlocked(e, now)
	c.hits++
	return e.payload.Clone(), true
}

func (c *lruCache) Put(key Key, transcript model.Transcript) {
	payload := transcript.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()

	if e, ok := c.items[key.hash]; ok {
		e.key = key
		e.payload = payload
		e.createdAt = now
		c.age.MoveToBack(e.ageElem)
		c.touchUnlocked(e, now)
		return
	}

	if len(c.items) >= c.maxSize {
		c.evictOneUnlocked(now)
	}

	c.seq++
	e := &entry{
		key:        key,
		payload:    payload,
		createdAt:  now,
		accessedAt: now,
		recency:    c.seq,
	}
	e.lruElem = c.lru.PushFront(e)
	e.ageElem = c.age.PushBack(e)
	c.items[key.hash] = e
}

func (c *lruCache) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key.hash]; ok {
		c.removeUnlocked(e)
	}
}

func (c *lruCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.items)
	c.items = make(map[xxh3.Uint128]*entry, c.maxSize)
	c.lru.Init()
	c.age.Init()
	return n
}

func (c *lruCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for el := c.age.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*entry)
		if !c.expiredUnlocked(e, now) {
			break
		}
		c.removeUnlocked(e)
		c.evictionsExpired++
		removed++
		el = next
	}
	return removed
}

func (c *lruCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Enabled:           true,
		Hits:              c.hits,
		Misses:            c.misses,
		EvictionsExpired:  c.evictionsExpired,
		EvictionsCapacity: c.evictionsCapacity,
		Size:              len(c.items),
		Capacity:          c.maxSize,
		TTL:               c.ttl,
	}
}

func (c *lruCache) Close() error {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	if c.done != nil {
		<-c.done
	}
	return nil
}

// evictOneUnlocked frees one slot, preferring an expired entry over the LRU tail.
func (c *lruCache) evictOneUnlocked(now time.Time) {
	if el := c.age.Front(); el != nil {
		if e := el.Value.(*entry); c.expiredUnlocked(e, now) {
			c.removeUnlocked(e)
			c.evictionsExpired++
			return
		}
	}

	if el := c.lru.Back(); el != nil {
		c.removeUnlocked(el.Value.(*entry))
		c.evictionsCapacity++
	}
}

func (c *lruCache) expiredUnlocked(e *entry, now time.Time) bool {
	return now.Sub(e.createdAt) > c.ttl
}

func (c *lruCache) touchUnlocked(e *entry, now time.Time) {
	c.seq++
	e.recency = c.seq
	e.accessedAt = now
	c.lru.MoveToFront(e.lruElem)
}

func (c *lruCache) removeUnlocked(e *entry) {
	c.lru.Remove(e.lruElem)
	c.age.Remove(e.ageElem)
	delete(c.items, e.key.hash)
}
