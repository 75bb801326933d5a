// Package cache provides the rendered artifact cache.
//
// An artifact is the materialized *html.Node tree of an icon after the fixed
// post-processing pipeline (1em sizing, currentColor fill). The cache owns
// the canonical artifact for each identity key and only ever hands out deep
// copies, because callers insert the returned tree into documents and mutate
// it. Entries are never evicted; they live until Invalidate or Clear.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	glypherrors "github.com/conneroisu/glyph/internal/errors"
	"github.com/conneroisu/glyph/internal/markup"
	"github.com/conneroisu/glyph/internal/renderer"
	"github.com/conneroisu/glyph/internal/types"
	"golang.org/x/net/html"
)

// SizeAttrs are injected into the root element of every rendered icon.
var SizeAttrs = types.A("width", "1em", "height", "1em")

const (
	fillAttr  = "fill"
	fillColor = "currentColor"
)

// ArtifactCache caches rendered icon artifacts by identity key
type ArtifactCache struct {
	entries map[string]*cachedArtifact
	mutex   sync.Mutex
	// Statistics tracking (atomic for thread safety)
	hits    int64
	misses  int64
	renders int64
}

type cachedArtifact struct {
	key       string
	element   *html.Node
	createdAt time.Time
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Renders int64 `json:"renders"`
}

// NewArtifactCache creates an empty artifact cache
func NewArtifactCache() *ArtifactCache {
	return &ArtifactCache{
		entries: make(map[string]*cachedArtifact),
	}
}

// GetOrRender returns a copy of the cached artifact for def, rendering and
// storing it first on a miss. def.Icon is never modified.
func (c *ArtifactCache) GetOrRender(def *types.IconDefinition) (*html.Node, error) {
	key := def.Key()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if entry, ok := c.entries[key]; ok {
		atomic.AddInt64(&c.hits, 1)
		return markup.Clone(entry.element), nil
	}
	atomic.AddInt64(&c.misses, 1)

	element, err := build(def)
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&c.renders, 1)

	c.entries[key] = &cachedArtifact{
		key:       key,
		element:   element,
		createdAt: time.Now(),
	}
	return markup.Clone(element), nil
}

// build runs the structural renderer with the size attributes, materializes
// the markup and colorizes the root.
func build(def *types.IconDefinition) (*html.Node, error) {
	source := renderer.RenderDefinition(def, SizeAttrs)

	element, err := markup.Materialize(source)
	if err != nil {
		return nil, glypherrors.ErrSourceMalformed(def.Key(), err)
	}
	markup.SetAttr(element, fillAttr, fillColor)
	return element, nil
}

// Contains reports whether an artifact is cached for key.
func (c *ArtifactCache) Contains(key string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, ok := c.entries[key]
	return ok
}

// Invalidate drops the artifact for each key.
func (c *ArtifactCache) Invalidate(keys ...string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, key := range keys {
		delete(c.entries, key)
	}
}

// Clear drops every artifact and resets statistics
func (c *ArtifactCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]*cachedArtifact)

	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.renders, 0)
}

// Stats returns cache statistics
func (c *ArtifactCache) Stats() Stats {
	c.mutex.Lock()
	count := len(c.entries)
	c.mutex.Unlock()

	return Stats{
		Entries: count,
		Hits:    atomic.LoadInt64(&c.hits),
		Misses:  atomic.LoadInt64(&c.misses),
		Renders: atomic.LoadInt64(&c.renders),
	}
}
