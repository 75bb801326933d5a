// Package registry holds icon definitions keyed by identity key.
//
// The registry is populated in bulk at start-up (definition packs) and by
// the fetch coordinator when an icon is resolved remotely. Entries are
// replaced wholesale and only removed by Clear or Remove. Watchers receive
// change events on buffered channels; a full channel drops the event.
package registry

import (
	"sort"
	"sync"
	"time"

	glypherrors "github.com/conneroisu/glyph/internal/errors"
	"github.com/conneroisu/glyph/internal/types"
)

// DefinitionRegistry manages all known icon definitions
type DefinitionRegistry struct {
	definitions map[string]*types.IconDefinition
	mutex       sync.RWMutex
	watchers    []chan types.IconEvent
}

// NewDefinitionRegistry creates a new definition registry
func NewDefinitionRegistry() *DefinitionRegistry {
	return &DefinitionRegistry{
		definitions: make(map[string]*types.IconDefinition),
		watchers:    make([]chan types.IconEvent, 0),
	}
}

// Add inserts or replaces each definition under its identity key. The
// registry stores its own copy, so later changes to defs are not seen. It
// returns the keys that replaced an existing entry.
func (r *DefinitionRegistry) Add(defs ...*types.IconDefinition) []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var updated []string
	for _, def := range defs {
		if def == nil {
			continue
		}
		def = def.Clone()
		key := def.Key()

		eventType := types.EventTypeAdded
		if _, exists := r.definitions[key]; exists {
			eventType = types.EventTypeUpdated
			updated = append(updated, key)
		}

		r.definitions[key] = def

		r.notify(types.IconEvent{
			Type:       eventType,
			Key:        key,
			Definition: def.Clone(),
			Timestamp:  time.Now(),
		})
	}
	return updated
}

// AddLiteral registers content under a "name:type" identifier. An
// identifier without a namespaced type fails with a NameSpaceMissing error.
func (r *DefinitionRegistry) AddLiteral(identifier string, content *types.AbstractNode) (*types.IconDefinition, error) {
	ref, err := types.ParseRef(identifier)
	if err != nil {
		return nil, err
	}
	if ref.Kind != types.RefNamespaced || !ref.HasType() {
		return nil, glypherrors.ErrNameSpaceMissing(identifier)
	}

	def := &types.IconDefinition{Name: ref.Name, Type: ref.Type, Icon: content.Clone()}
	r.Add(def)
	return def, nil
}

// Get retrieves a copy of the definition stored under key
func (r *DefinitionRegistry) Get(key string) (*types.IconDefinition, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	def, exists := r.definitions[key]
	if !exists {
		return nil, false
	}
	return def.Clone(), true
}

// GetAll returns copies of all registered definitions sorted by key
func (r *DefinitionRegistry) GetAll() []*types.IconDefinition {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*types.IconDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		result = append(result, def.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key() < result[j].Key()
	})
	return result
}

// Remove removes a definition from the registry
func (r *DefinitionRegistry) Remove(key string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.definitions[key]; !exists {
		return
	}

	delete(r.definitions, key)

	r.notify(types.IconEvent{
		Type:      types.EventTypeRemoved,
		Key:       key,
		Timestamp: time.Now(),
	})
}

// Clear removes every definition
func (r *DefinitionRegistry) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.definitions = make(map[string]*types.IconDefinition)

	r.notify(types.IconEvent{
		Type:      types.EventTypeCleared,
		Timestamp: time.Now(),
	})
}

// Watch returns a channel that receives registry events
func (r *DefinitionRegistry) Watch() <-chan types.IconEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan types.IconEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *DefinitionRegistry) UnWatch(ch <-chan types.IconEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered definitions
func (r *DefinitionRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.definitions)
}

// notify must be called with the write lock held.
func (r *DefinitionRegistry) notify(event types.IconEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
