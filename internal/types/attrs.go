package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Attr is a single markup attribute.
type Attr struct {
	Key   string
	Value string
}

// Attrs is an ordered attribute list. Keys are unique; the order of first
// insertion is the rendering order.
type Attrs []Attr

// A is a shorthand for building Attrs from alternating key/value strings.
// A trailing key without a value is ignored.
func A(kv ...string) Attrs {
	attrs := make(Attrs, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs = attrs.Set(kv[i], kv[i+1])
	}
	return attrs
}

// Get returns the value for key.
func (a Attrs) Get(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Set returns a with key set to value. An existing key keeps its position.
func (a Attrs) Set(key, value string) Attrs {
	for i := range a {
		if a[i].Key == key {
			a[i].Value = value
			return a
		}
	}
	return append(a, Attr{Key: key, Value: value})
}

// Merge returns a new list holding a overlaid with extra. Colliding keys keep
// their position in a and take the value from extra; new keys are appended in
// extra's order. Neither input is modified.
func (a Attrs) Merge(extra Attrs) Attrs {
	merged := make(Attrs, 0, len(a)+len(extra))
	merged = append(merged, a...)
	for _, attr := range extra {
		merged = merged.Set(attr.Key, attr.Value)
	}
	return merged
}

// Clone returns a copy of the list.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	clone := make(Attrs, len(a))
	copy(clone, a)
	return clone
}

// UnmarshalYAML decodes a YAML mapping keeping the document order.
func (a *Attrs) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("attrs: expected a mapping, got %s at line %d", kindName(value.Kind), value.Line)
	}

	attrs := make(Attrs, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode, valueNode := value.Content[i], value.Content[i+1]
		if valueNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("attrs: value of %q must be a scalar (line %d)", keyNode.Value, valueNode.Line)
		}
		attrs = attrs.Set(keyNode.Value, valueNode.Value)
	}
	*a = attrs
	return nil
}

// MarshalYAML encodes the list as an ordered mapping.
func (a Attrs) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, attr := range a {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: attr.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: attr.Value},
		)
	}
	return node, nil
}

// UnmarshalJSON decodes a JSON object keeping the document order.
func (a *Attrs) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("attrs: %w", err)
	}
	if tok == nil {
		*a = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("attrs: expected an object, got %v", tok)
	}

	attrs := make(Attrs, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("attrs: %w", err)
		}
		key, _ := keyTok.(string)

		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("attrs: value of %q: %w", key, err)
		}
		switch v := value.(type) {
		case string:
			attrs = attrs.Set(key, v)
		case float64, bool:
			attrs = attrs.Set(key, fmt.Sprint(v))
		default:
			return fmt.Errorf("attrs: value of %q must be a scalar", key)
		}
	}
	*a = attrs
	return nil
}

// MarshalJSON encodes the list as an ordered JSON object.
func (a Attrs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, attr := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(attr.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(attr.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
