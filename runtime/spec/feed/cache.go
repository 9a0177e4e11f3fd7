package feed

import (
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/singleflight"

	"github.com/chronofact/fact/runtime/fact"
)

// Entry is one cached feed, keyed by its identifier hash.
type Entry struct {
	Hash string
	Feed Feed
}

// Cache is the process-wide feed-hash → feed mapping of §4.J. Insertion
// is monotone — entries are never mutated or evicted, only added — and
// safe for concurrent use: a sync.RWMutex guards the map, and a
// singleflight.Group deduplicates concurrent insertion attempts for the
// same hash so the map is only ever written once per feed.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	group   singleflight.Group
	logger  hclog.Logger
}

// New returns an empty feed cache logging through logger.
func New(logger hclog.Logger) *Cache {
	return &Cache{entries: map[string]Entry{}, logger: logger}
}

// NewCache returns an empty feed cache with a null logger, for callers
// that don't care about cache activity.
func NewCache() *Cache {
	return New(hclog.NewNullLogger())
}

// Lookup returns the cached entry for hash, if present.
func (c *Cache) Lookup(hash string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[hash]
	return e, ok
}

// Len reports how many feeds are currently cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// AddFeeds inserts every feed in feeds, keyed by the hash of its
// identifier (feed's skeleton plus start, indexed by skeleton input
// position). Concurrent calls racing to insert the same hash collapse
// into a single actual insertion via singleflight; the cache's contents
// after any set of concurrent AddFeeds calls equal those of any serial
// interleaving of the same calls.
func (c *Cache) AddFeeds(feeds []Feed, start []fact.Reference) error {
	for _, f := range feeds {
		hash, err := HashIdentifier(FeedIdentifier{Start: start, Skeleton: f.Skeleton})
		if err != nil {
			return err
		}
		if _, ok := c.Lookup(hash); ok {
			continue
		}

		entry := f
		_, err, _ = c.group.Do(hash, func() (any, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.entries[hash]; !ok {
				c.entries[hash] = Entry{Hash: hash, Feed: entry}
				c.logger.Debug("cached feed", "name", entry.Name, "hash", hash)
			}
			return nil, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
