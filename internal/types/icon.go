// Package types provides the icon data model shared by the registry, the
// renderer, the artifact cache and the fetch coordinator.
// It lives in its own package to avoid circular dependencies between them.
package types

import (
	"time"
)

// IconDefinition describes one icon: its identity (Name and Type) and its
// structural content.
type IconDefinition struct {
	// Name is the icon name, e.g. "account-book"
	Name string `yaml:"name" json:"name"`
	// Type is the icon set or theme, e.g. "outline"
	Type string `yaml:"type" json:"type"`
	// Icon is the structural tree of the icon markup
	Icon *AbstractNode `yaml:"icon" json:"icon"`
}

// Key returns the identity key of the definition.
func (d *IconDefinition) Key() string {
	return KeyOf(d.Name, d.Type)
}

// Clone returns a deep copy of the definition.
func (d *IconDefinition) Clone() *IconDefinition {
	if d == nil {
		return nil
	}
	return &IconDefinition{
		Name: d.Name,
		Type: d.Type,
		Icon: d.Icon.Clone(),
	}
}

// KeyOf builds the identity key for a name and type.
func KeyOf(name, iconType string) string {
	return name + "-" + iconType
}

// AbstractNode is one markup element. Attribute order is preserved and
// children are rendered in order.
type AbstractNode struct {
	Tag      string          `yaml:"tag" json:"tag"`
	Attrs    Attrs           `yaml:"attrs,omitempty" json:"attrs,omitempty"`
	Children []*AbstractNode `yaml:"children,omitempty" json:"children,omitempty"`
}

// Clone returns a deep copy of the node tree.
func (n *AbstractNode) Clone() *AbstractNode {
	if n == nil {
		return nil
	}
	clone := &AbstractNode{
		Tag:   n.Tag,
		Attrs: n.Attrs.Clone(),
	}
	if len(n.Children) > 0 {
		clone.Children = make([]*AbstractNode, len(n.Children))
		for i, child := range n.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return clone
}

// EventType represents the type of registry change event.
type EventType string

const (
	EventTypeAdded   EventType = "added"
	EventTypeUpdated EventType = "updated"
	EventTypeRemoved EventType = "removed"
	EventTypeCleared EventType = "cleared"
)

// IconEvent represents a change in the definition registry, used for
// notifications to watchers like the icon server.
type IconEvent struct {
	// Type indicates the kind of change
	Type EventType `json:"type"`
	// Key is the identity key of the affected icon (empty for cleared events)
	Key string `json:"key,omitempty"`
	// Definition is the new definition (nil for removed and cleared events)
	Definition *IconDefinition `json:"-"`
	// Timestamp records when the event occurred
	Timestamp time.Time `json:"timestamp"`
}
