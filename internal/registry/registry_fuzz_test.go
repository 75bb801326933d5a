package registry

import (
	"testing"

	"github.com/conneroisu/glyph/internal/types"
)

// FuzzAddLiteral checks that any accepted literal is retrievable under
// name-type and that rejected literals leave the registry empty.
func FuzzAddLiteral(f *testing.F) {
	seeds := []string{"foo:bar", "foo", "foo-bar", "a:b:c", ":", "account-book:fill", ""}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, identifier string) {
		registry := NewDefinitionRegistry()
		def, err := registry.AddLiteral(identifier, &types.AbstractNode{Tag: "svg"})
		if err != nil {
			if registry.Count() != 0 {
				t.Fatalf("rejected literal %q was registered", identifier)
			}
			return
		}
		if def.Type == "" {
			t.Fatalf("literal %q accepted without a type", identifier)
		}
		if _, ok := registry.Get(def.Name + "-" + def.Type); !ok {
			t.Fatalf("literal %q not retrievable", identifier)
		}
	})
}
