/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package cloud

import (
	"fmt"
	"sort"
	"time"

	units "github.com/docker/go-units"
)

// cacheItem tracks one persistent-cache entry: a locally-cached block or
// table file keyed by its object-store name.
type cacheItem struct {
	key      string
	size     int64
	lastUsed time.Time
	cleanup  func(key string)
}

type cacheOp struct {
	add  *cacheItem
	del  string
	done chan struct{}
}

// PersistentCache is a memory-budgeted soft cache of downloaded blocks,
// adapted from storage/cache.go's CacheManager (same budget-and-evict
// shape, keyed by object name instead of an arbitrary pointer since this
// core's cache only ever holds cloud-downloaded bytes).
type PersistentCache struct {
	path   string
	budget int64

	current  int64
	items    []cacheItem
	indexMap map[string]int

	opChan chan cacheOp
}

// NewPersistentCache builds a PersistentCache rooted at path, sized via
// sizeGB — parsed/formatted through docker/go-units the way a human-facing
// config value for disk size should be, rather than hand-rolled GiB
// arithmetic.
func NewPersistentCache(path string, sizeGB float64) (*PersistentCache, error) {
	budget, err := units.RAMInBytes(fmt.Sprintf("%.6fGiB", sizeGB))
	if err != nil {
		return nil, errInvalidArg("persistent_cache_size_gb", err)
	}
	pc := &PersistentCache{
		path:     path,
		budget:   budget,
		indexMap: make(map[string]int),
		opChan:   make(chan cacheOp, 256),
	}
	go pc.run()
	return pc, nil
}

// Path returns the local directory the cache persists blocks under.
func (c *PersistentCache) Path() string { return c.path }

// BudgetBytes returns the configured memory budget in bytes.
func (c *PersistentCache) BudgetBytes() int64 { return c.budget }

// HumanBudget renders the budget the way operators read it in logs.
func (c *PersistentCache) HumanBudget() string { return units.BytesSize(float64(c.budget)) }

// Add records a freshly-cached item, evicting older entries if doing so
// pushes the cache over budget.
func (c *PersistentCache) Add(key string, size int64, cleanup func(key string)) {
	done := make(chan struct{})
	c.opChan <- cacheOp{add: &cacheItem{key: key, size: size, lastUsed: time.Now(), cleanup: cleanup}, done: done}
	<-done
}

// Evict removes one item immediately (e.g. the underlying object was
// invalidated upstream).
func (c *PersistentCache) Evict(key string) {
	done := make(chan struct{})
	c.opChan <- cacheOp{del: key, done: done}
	<-done
}

func (c *PersistentCache) run() {
	for op := range c.opChan {
		if op.add != nil {
			c.add(*op.add)
		} else if op.del != "" {
			c.evict(op.del)
		}
		if op.done != nil {
			close(op.done)
		}
	}
}

func (c *PersistentCache) add(item cacheItem) {
	idx := len(c.items)
	c.items = append(c.items, item)
	c.indexMap[item.key] = idx
	c.current += item.size

	if c.current > c.budget {
		c.reclaim()
	}
}

func (c *PersistentCache) evict(key string) {
	idx, ok := c.indexMap[key]
	if !ok {
		return
	}
	item := c.items[idx]
	if item.cleanup != nil {
		item.cleanup(item.key)
	}
	c.current -= item.size

	last := len(c.items) - 1
	if idx != last {
		c.items[idx] = c.items[last]
		c.indexMap[c.items[idx].key] = idx
	}
	c.items = c.items[:last]
	delete(c.indexMap, key)
}

// reclaim frees memory down to 75% of budget, oldest-used first.
func (c *PersistentCache) reclaim() {
	if c.current <= c.budget {
		return
	}
	target := c.budget * 75 / 100

	sort.Slice(c.items, func(i, j int) bool { return c.items[i].lastUsed.Before(c.items[j].lastUsed) })

	i := 0
	for c.current > target && i < len(c.items) {
		item := c.items[i]
		if item.cleanup != nil {
			item.cleanup(item.key)
		}
		c.current -= item.size
		delete(c.indexMap, item.key)
		i++
	}
	c.items = c.items[i:]
	for idx, item := range c.items {
		c.indexMap[item.key] = idx
	}
}
