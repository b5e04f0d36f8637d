// Package builder turns resolved directive values into CSS property maps.
//
// Builders are pure: the same value and parent context always produce the
// same map, so results are cached per context partition.
package builder

import (
	"maps"
	"slices"
)

// StyleMap maps CSS property to value. Empty value means the property must
// be removed.
type StyleMap map[string]string

// Properties returns map keys in sorted order.
func (s StyleMap) Properties() []string {
	return slices.Sorted(maps.Keys(s))
}

// Builder converts resolved value into styles in the context of parent P.
type Builder[P any] interface {
	Build(value string, parent P) StyleMap
	// SideEffect runs after styles are computed, cached or not.
	SideEffect(value string, styles StyleMap, parent P)
}

// NoSideEffect provides empty SideEffect for embedding.
type NoSideEffect[P any] struct{}

func (NoSideEffect[P]) SideEffect(string, StyleMap, P) {}

// Cache keeps built style maps keyed by value. Entries are never invalidated.
type Cache struct {
	name    string
	entries map[string]StyleMap
	hits    int
	misses  int
}

func NewCache(name string) *Cache {
	return &Cache{name: name, entries: make(map[string]StyleMap)}
}

func (c *Cache) Name() string {
	return c.name
}

func (c *Cache) Get(value string) (StyleMap, bool) {
	s, ok := c.entries[value]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return s, ok
}

func (c *Cache) Put(value string, styles StyleMap) {
	c.entries[value] = styles
}

func (c *Cache) Len() int {
	return len(c.entries)
}

// Stats returns hit and miss counters.
func (c *Cache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

// Caches is a set of cache partitions, one per parent context.
type Caches struct {
	name  string
	parts map[string]*Cache
}

func NewCaches(name string) *Caches {
	return &Caches{name: name, parts: make(map[string]*Cache)}
}

// For returns partition for context creating it when necessary.
func (c *Caches) For(context string) *Cache {
	p, ok := c.parts[context]
	if !ok {
		p = NewCache(c.name + "/" + context)
		c.parts[context] = p
	}
	return p
}

// Partitions returns existing partition names, sorted.
func (c *Caches) Partitions() []string {
	return slices.Sorted(maps.Keys(c.parts))
}

// Compute returns styles for value: cached ones when present, freshly built
// otherwise. SideEffect is always invoked. Callers get their own copy of the
// map.
func Compute[P any](b Builder[P], cache *Cache, value string, parent P) StyleMap {
	styles, ok := StyleMap(nil), false
	if cache != nil {
		styles, ok = cache.Get(value)
	}
	if !ok {
		styles = b.Build(value, parent)
		if cache != nil {
			cache.Put(value, styles)
		}
	}
	styles = maps.Clone(styles)
	b.SideEffect(value, styles, parent)
	return styles
}

func isFlowHorizontal(direction string) bool {
	return direction == "" || direction == "row" || direction == "row-reverse"
}
