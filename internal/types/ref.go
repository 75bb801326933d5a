package types

import (
	"strings"

	glypherrors "github.com/conneroisu/glyph/internal/errors"
)

// RefKind classifies an icon reference.
type RefKind int

const (
	// RefBare is a plain name with no type; it can only be looked up.
	RefBare RefKind = iota
	// RefNamespaced is "name:type".
	RefNamespaced
	// RefAbbreviated is "name-type", split on the last hyphen.
	RefAbbreviated
	// RefDefinition carries a complete definition.
	RefDefinition
)

// String returns the string representation of the kind
func (k RefKind) String() string {
	switch k {
	case RefBare:
		return "bare"
	case RefNamespaced:
		return "namespaced"
	case RefAbbreviated:
		return "abbreviated"
	case RefDefinition:
		return "definition"
	default:
		return "unknown"
	}
}

// Ref is a parsed icon reference. It is classified once, at parse time.
type Ref struct {
	Kind       RefKind
	Name       string
	Type       string
	Definition *IconDefinition
	raw        string
}

// ParseRef parses an identifier into a Ref.
//
// Grammar: "name:type" is namespaced; more than one colon is invalid;
// without a colon, a hyphenated "name-type" is split on its last hyphen;
// anything else is a bare name.
func ParseRef(identifier string) (Ref, error) {
	parts := strings.Split(identifier, ":")
	switch len(parts) {
	case 1:
	case 2:
		return Ref{Kind: RefNamespaced, Name: parts[0], Type: parts[1], raw: identifier}, nil
	default:
		return Ref{}, glypherrors.ErrInvalidIdentifier(identifier)
	}

	idx := strings.LastIndex(identifier, "-")
	if idx <= 0 || idx == len(identifier)-1 {
		return Ref{Kind: RefBare, Name: identifier, raw: identifier}, nil
	}
	return Ref{
		Kind: RefAbbreviated,
		Name: identifier[:idx],
		Type: identifier[idx+1:],
		raw:  identifier,
	}, nil
}

// DefinitionRef wraps a complete definition.
func DefinitionRef(def *IconDefinition) Ref {
	return Ref{Kind: RefDefinition, Name: def.Name, Type: def.Type, Definition: def}
}

// HasType reports whether the reference names a type and can therefore be
// resolved remotely.
func (r Ref) HasType() bool {
	return r.Type != ""
}

// Key returns the identity key the reference is looked up under. Bare
// references are looked up under their literal text.
func (r Ref) Key() string {
	if r.Kind == RefBare {
		return r.Name
	}
	return KeyOf(r.Name, r.Type)
}

// String returns the reference as the caller wrote it.
func (r Ref) String() string {
	if r.raw != "" {
		return r.raw
	}
	return r.Key()
}
