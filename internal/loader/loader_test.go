package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	glypherrors "github.com/conneroisu/glyph/internal/errors"
	"github.com/conneroisu/glyph/internal/types"
)

const yamlPack = `
icons:
  - name: home
    type: outline
    icon:
      tag: svg
      attrs:
        viewBox: "0 0 24 24"
        fill-rule: evenodd
      children:
        - tag: path
          attrs:
            d: "M1 1"
  - name: user
    type: solid
    icon:
      tag: svg
`

const jsonPack = `{"icons":[{"name":"home","type":"outline","icon":{"tag":"svg","attrs":{"viewBox":"0 0 48 48"}}}]}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParsePackYAML(t *testing.T) {
	pack, err := ParsePack([]byte(yamlPack), FormatYAML)
	require.NoError(t, err)
	require.Len(t, pack.Icons, 2)

	home := pack.Icons[0]
	assert.Equal(t, "home-outline", home.Key())
	assert.Equal(t, types.A("viewBox", "0 0 24 24", "fill-rule", "evenodd"), home.Icon.Attrs)
	require.Len(t, home.Icon.Children, 1)
	assert.Equal(t, types.A("d", "M1 1"), home.Icon.Children[0].Attrs)
}

func TestParsePackJSON(t *testing.T) {
	pack, err := ParsePack([]byte(jsonPack), FormatJSON)
	require.NoError(t, err)
	require.Len(t, pack.Icons, 1)
	assert.Equal(t, types.A("viewBox", "0 0 48 48"), pack.Icons[0].Icon.Attrs)
}

func TestParsePackRejectsIncompleteDefinitions(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing type", "icons:\n  - name: home\n    icon: {tag: svg}\n"},
		{"missing name", "icons:\n  - type: outline\n    icon: {tag: svg}\n"},
		{"missing icon", "icons:\n  - name: home\n    type: outline\n"},
		{"colon in name", "icons:\n  - name: 'a:b'\n    type: outline\n    icon: {tag: svg}\n"},
		{"nested attr value", "icons:\n  - name: home\n    type: outline\n    icon: {tag: svg, attrs: {d: [1, 2]}}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePack([]byte(tt.doc), FormatYAML)
			assert.Error(t, err)
		})
	}
}

func TestFormatOf(t *testing.T) {
	f, ok := FormatOf("icons.YAML")
	assert.True(t, ok)
	assert.Equal(t, FormatYAML, f)

	f, ok = FormatOf("pack.json")
	assert.True(t, ok)
	assert.Equal(t, FormatJSON, f)

	_, ok = FormatOf("home.svg")
	assert.False(t, ok)
	assert.True(t, IsSource("home.svg"))
	assert.False(t, IsSource("README.md"))
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pack.yml"), yamlPack)
	writeFile(t, filepath.Join(dir, "outline", "star.svg"), `<svg viewBox="0 0 24 24"><path d="M2 2"/></svg>`)
	writeFile(t, filepath.Join(dir, "deep", "nested", "skip.svg"), `<svg></svg>`)
	writeFile(t, filepath.Join(dir, ".hidden", "ignored.yml"), "not: [valid")
	writeFile(t, filepath.Join(dir, "README.md"), "# icons")

	defs, err := New(nil).Load(context.Background(), dir)
	require.NoError(t, err)

	keys := make(map[string]*types.IconDefinition)
	for _, def := range defs {
		keys[def.Key()] = def
	}
	assert.Len(t, keys, 3)
	assert.Contains(t, keys, "home-outline")
	assert.Contains(t, keys, "user-solid")
	require.Contains(t, keys, "star-outline")

	star := keys["star-outline"]
	assert.Equal(t, "svg", star.Icon.Tag)
	assert.Equal(t, types.A("viewBox", "0 0 24 24"), star.Icon.Attrs)
}

func TestLoadLaterPathsReplaceEarlier(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.yml")
	second := filepath.Join(dir, "b.json")
	writeFile(t, first, yamlPack)
	writeFile(t, second, jsonPack)

	defs, err := New(nil).Load(context.Background(), first, second)
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "home-outline", defs[0].Key())
	assert.Equal(t, types.A("viewBox", "0 0 48 48"), defs[0].Icon.Attrs)
}

func TestLoadSingleSVGFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solid", "bell.svg")
	writeFile(t, path, `<svg><circle r="1"/></svg>`)

	defs, err := New(nil).Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "bell-solid", defs[0].Key())
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	l := New(nil)

	_, err := l.Load(context.Background(), filepath.Join(dir, "missing.yml"))
	assert.True(t, glypherrors.IsCode(err, glypherrors.ErrCodeFileNotFound))

	bad := filepath.Join(dir, "bad.yml")
	writeFile(t, bad, "icons:\n  - name: home\n")
	_, err = l.Load(context.Background(), bad)
	assert.True(t, glypherrors.IsCode(err, glypherrors.ErrCodeSourceMalformed))

	_, err = l.Load(context.Background(), "../outside")
	assert.True(t, glypherrors.IsCode(err, glypherrors.ErrCodeValidationFailed))

	txt := filepath.Join(dir, "notes.txt")
	writeFile(t, txt, "hello")
	_, err = l.Load(context.Background(), txt)
	assert.Error(t, err)
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		iconType string
		expected string
	}{
		{"home", "outline", "HomeOutline"},
		{"account-book", "twotone", "AccountBookTwotone"},
		{"arrow_up", "fill", "ArrowUpFill"},
		{"24", "solid", "Icon24Solid"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			def := &types.IconDefinition{Name: tt.name, Type: tt.iconType}
			assert.Equal(t, tt.expected, Identifier(def))
		})
	}
}
