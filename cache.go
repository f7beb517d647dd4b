package inject

import (
	"cmp"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// CacheEntry is an instance cached for a scope and binding.
type CacheEntry struct {
	Scope    any
	Binding  *Binding
	Instance any
	Context  *Context

	key cacheKey
	seq uint64
}

// cacheKey includes the requested service so that the instantiations of an
// open binding are cached apart.
type cacheKey struct {
	scope   any
	binding *Binding
	service reflect.Type
}

func keyOf(ctx *Context) cacheKey {
	return cacheKey{scope: ctx.Scope(), binding: ctx.Binding, service: ctx.Request.Service}
}

// slot guards one cache key. The creating goroutine holds lock from
// construction until its instance is committed.
type slot struct {
	lock  sync.Mutex
	owner goroutineKey
	entry *CacheEntry
}

// Cache stores scoped instances. At most one instance is committed per
// scope and binding, however many goroutines resolve it concurrently.
type Cache struct {
	mu      sync.Mutex
	slots   map[cacheKey]*slot
	scopes  map[any][]cacheKey
	waiting map[goroutineKey]*slot
	seq     uint64

	pipeline *Pipeline
	logger   *zap.Logger
}

func newCache(pipeline *Pipeline, logger *zap.Logger) *Cache {
	return &Cache{
		slots:    make(map[cacheKey]*slot),
		scopes:   make(map[any][]cacheKey),
		waiting:  make(map[goroutineKey]*slot),
		pipeline: pipeline,
		logger:   logger,
	}
}

// TryGet returns the instance cached for the scope and binding of ctx.
// A committed instance is visible to every resolution, even while it is
// still being activated.
func (c *Cache) TryGet(ctx *Context) (any, bool) {
	scope := ctx.Scope()
	if scope == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slots[keyOf(ctx)]
	if s == nil || s.entry == nil {
		return nil, false
	}
	return s.entry.Instance, true
}

// acquire takes the slot of ctx for the calling goroutine and returns the
// function giving it back. The function may be called more than once.
//
// It fails with a CyclicDependencyError instead of blocking when the slot is
// held, directly or through other waiting goroutines, by the caller.
func (c *Cache) acquire(ctx *Context) (func(), error) {
	key := keyOf(ctx)
	g := goroutineKey(goid())

	c.mu.Lock()
	s := c.slots[key]
	if s == nil {
		s = &slot{}
		c.insert(key, s)
	}
	if c.blockedBy(s, g) {
		c.mu.Unlock()
		return nil, newCyclicDependencyError(ctx.Request)
	}
	c.waiting[g] = s
	c.mu.Unlock()

	s.lock.Lock()
	c.mu.Lock()
	delete(c.waiting, g)
	s.owner = g
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			s.owner = 0
			c.mu.Unlock()
			s.lock.Unlock()
		})
	}, nil
}

// blockedBy follows the chain of slot owners waiting on other slots, starting
// at s, and reports whether it leads back to g. It must be called with c.mu
// held.
func (c *Cache) blockedBy(s *slot, g goroutineKey) bool {
	for range len(c.waiting) + 1 {
		if s == nil || s.owner == 0 {
			return false
		}
		if s.owner == g {
			return true
		}
		s = c.waiting[s.owner]
	}
	return false
}

// insert must be called with c.mu held.
func (c *Cache) insert(key cacheKey, s *slot) {
	c.slots[key] = s
	c.scopes[key.scope] = append(c.scopes[key.scope], key)
}

// Remember caches instance for the scope and binding of ctx.
func (c *Cache) Remember(ctx *Context, instance any) {
	scope := ctx.Scope()
	if scope == nil {
		return
	}
	if l, ok := scope.(Lifetime); ok && l.Released() {
		return
	}
	key := keyOf(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slots[key]
	if s == nil {
		s = &slot{}
		c.insert(key, s)
	}
	c.seq++
	s.entry = &CacheEntry{
		Scope:    scope,
		Binding:  ctx.Binding,
		Instance: instance,
		Context:  ctx,
		key:      key,
		seq:      c.seq,
	}
}

// Owns reports whether instance is cached for a scope that is still live.
func (c *Cache) Owns(instance any) bool {
	if !isComparable(instance) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, s := range c.slots {
		if s.entry != nil && s.entry.Instance == instance && !isReleased(key.scope) {
			return true
		}
	}
	return false
}

// Release deactivates instance if it is cached for a released scope.
// Instances owned by live scopes are left alone.
func (c *Cache) Release(instance any) (bool, error) {
	if !isComparable(instance) {
		return false, nil
	}
	var entries []*CacheEntry
	c.mu.Lock()
	for key, s := range c.slots {
		if s.entry == nil || s.entry.Instance != instance {
			continue
		}
		if !isReleased(key.scope) {
			c.mu.Unlock()
			return false, nil
		}
		entries = append(entries, s.entry)
	}
	for _, e := range entries {
		c.remove(e.key)
	}
	c.mu.Unlock()
	if len(entries) == 0 {
		return false, nil
	}
	return true, c.deactivate(entries)
}

// Clear removes and deactivates every instance cached for scope.
func (c *Cache) Clear(scope any) error {
	c.mu.Lock()
	keys := c.scopes[scope]
	delete(c.scopes, scope)
	var entries []*CacheEntry
	for _, key := range keys {
		if s := c.slots[key]; s != nil {
			delete(c.slots, key)
			if s.entry != nil {
				entries = append(entries, s.entry)
			}
		}
	}
	c.mu.Unlock()
	return c.deactivate(entries)
}

// RemoveBinding removes and deactivates every instance cached for b.
func (c *Cache) RemoveBinding(b *Binding) error {
	var entries []*CacheEntry
	c.mu.Lock()
	for key, s := range c.slots {
		if key.binding != b {
			continue
		}
		c.remove(key)
		if s.entry != nil {
			entries = append(entries, s.entry)
		}
	}
	c.mu.Unlock()
	return c.deactivate(entries)
}

// Prune clears every scope whose key reports that it has been released,
// and the goroutine scopes of goroutines that are no longer running.
func (c *Cache) Prune() error {
	c.mu.Lock()
	var released, goroutines []any
	for scope := range c.scopes {
		switch {
		case isReleased(scope):
			released = append(released, scope)
		case isGoroutineKey(scope):
			goroutines = append(goroutines, scope)
		}
	}
	c.mu.Unlock()

	if len(goroutines) > 0 {
		live := liveGoroutines()
		for _, scope := range goroutines {
			if !live[scope.(goroutineKey)] {
				released = append(released, scope)
			}
		}
	}

	var err error
	for _, scope := range released {
		err = multierr.Append(err, c.Clear(scope))
	}
	if len(released) > 0 {
		c.logger.Debug("cache pruned", zap.Int("scopes", len(released)))
	}
	return err
}

// ClearAll removes and deactivates every cached instance.
func (c *Cache) ClearAll() error {
	c.mu.Lock()
	var entries []*CacheEntry
	for _, s := range c.slots {
		if s.entry != nil {
			entries = append(entries, s.entry)
		}
	}
	c.slots = make(map[cacheKey]*slot)
	c.scopes = make(map[any][]cacheKey)
	c.mu.Unlock()
	return c.deactivate(entries)
}

// Count returns the number of cached instances.
func (c *Cache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.slots {
		if s.entry != nil {
			n++
		}
	}
	return n
}

// remove must be called with c.mu held.
func (c *Cache) remove(key cacheKey) {
	delete(c.slots, key)
	keys := slices.DeleteFunc(c.scopes[key.scope], func(k cacheKey) bool { return k == key })
	if len(keys) == 0 {
		delete(c.scopes, key.scope)
	} else {
		c.scopes[key.scope] = keys
	}
}

// deactivate runs deactivation for entries, newest first.
func (c *Cache) deactivate(entries []*CacheEntry) error {
	slices.SortFunc(entries, func(a, b *CacheEntry) int {
		return cmp.Compare(b.seq, a.seq)
	})
	var err error
	for _, e := range entries {
		err = multierr.Append(err, c.pipeline.Deactivate(e.Context, e.Instance))
	}
	return err
}

func isReleased(scope any) bool {
	l, ok := scope.(Lifetime)
	return ok && l.Released()
}

func isGoroutineKey(scope any) bool {
	_, ok := scope.(goroutineKey)
	return ok
}

func isComparable(v any) bool {
	return v != nil && reflect.TypeOf(v).Comparable()
}
