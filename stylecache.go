package canopy

import (
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// StyleKey identifies one style resolution: the element's tag, id, class
// list, active class and inline declarations.
type StyleKey struct {
	Tag         string
	ID          string
	Class       string
	ActiveClass string
	Inline      string
}

// String renders the cache key as tag#id.class[style=...].
func (k StyleKey) String() string {
	return k.key(false)
}

func (k StyleKey) key(active bool) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(k.Tag))
	if k.ID != "" {
		b.WriteString("#" + k.ID)
	}
	for _, c := range strings.Fields(k.Class) {
		b.WriteString("." + c)
	}
	if active {
		for _, c := range strings.Fields(k.ActiveClass) {
			b.WriteString("." + c)
		}
	}
	if k.Inline != "" {
		b.WriteString("[style=" + normalizeInline(k.Inline) + "]")
	}
	return b.String()
}

// normalizeInline rewrites declarations as "prop:value;" so that spacing
// differences map to the same cache entry.
func normalizeInline(s string) string {
	var b strings.Builder
	for _, decl := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if prop == "" || val == "" {
			continue
		}
		b.WriteString(prop + ":" + val + ";")
	}
	return b.String()
}

// StyleCache memoizes resolved styles per StyleKey. Every Stage owns one by
// default; one cache may be shared by several stages through
// StageConfig.StyleCache, in which case concurrent resolution of the same
// key runs only once.
type StyleCache struct {
	sheet *StyleSheet

	mu      sync.RWMutex
	entries map[string]*Style
	group   singleflight.Group

	hits, misses int
}

// NewStyleCache returns an empty cache resolving against sheet.
func NewStyleCache(sheet *StyleSheet) *StyleCache {
	return &StyleCache{sheet: sheet, entries: make(map[string]*Style)}
}

// Resolve returns the base and active styles for k. The active style equals
// the base style except for the background and text colors, which come from
// the rules matching the class list extended with k.ActiveClass. The returned
// styles are shared and must not be modified.
func (c *StyleCache) Resolve(k StyleKey) (base, active *Style) {
	baseKey := k.key(false)
	base = c.lookup(baseKey, func() *Style {
		return c.compute(k.Tag, k.ID, strings.Fields(k.Class), k.Inline)
	})
	if strings.TrimSpace(k.ActiveClass) == "" {
		return base, base
	}
	activeKey := k.key(true)
	active = c.lookup(activeKey, func() *Style {
		classes := append(strings.Fields(k.Class), strings.Fields(k.ActiveClass)...)
		full := c.compute(k.Tag, k.ID, classes, k.Inline)
		st := *base
		st.Background = full.Background
		st.Color = full.Color
		return &st
	})
	return base, active
}

func (c *StyleCache) lookup(key string, compute func() *Style) *Style {
	c.mu.RLock()
	st, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return st
	}
	v, _, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		st, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return st, nil
		}
		st = compute()
		c.mu.Lock()
		c.entries[key] = st
		c.misses++
		c.mu.Unlock()
		return st, nil
	})
	return v.(*Style)
}

func (c *StyleCache) compute(tag, id string, classes []string, inline string) *Style {
	st := DefaultStyle()
	for _, d := range c.sheet.Match(tag, id, classes) {
		st.Apply(d)
	}
	for _, d := range ParseDeclarations(inline) {
		st.Apply(d)
	}
	st.finish()
	return &st
}

// Len returns the number of cached entries.
func (c *StyleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the number of cache hits and misses so far.
func (c *StyleCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Reset drops every cached entry. Boxes keep the styles they already
// resolved until they are re-resolved.
func (c *StyleCache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]*Style)
	c.mu.Unlock()
}
