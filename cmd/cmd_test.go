package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/glyph/internal/config"
	"github.com/conneroisu/glyph/internal/fetch"
	"github.com/conneroisu/glyph/internal/icons"
	"github.com/conneroisu/glyph/internal/logging"
	"github.com/conneroisu/glyph/internal/types"
)

const testPack = `
icons:
  - name: home
    type: outline
    icon:
      tag: svg
      attrs:
        viewBox: "0 0 24 24"
      children:
        - tag: path
          attrs:
            d: "M1 1"
  - name: bell
    type: solid
    icon:
      tag: svg
      attrs:
        viewBox: "0 0 16 16"
`

func writePack(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pack.yml")
	require.NoError(t, os.WriteFile(path, []byte(testPack), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"render", "list", "generate", "serve", "version"} {
		assert.True(t, names[name], "missing command %s", name)
	}

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log-level"))
}

func TestListCommand(t *testing.T) {
	pack := writePack(t)

	out, err := execute(t, "list", "--format", "json", "--type", "", pack)
	require.NoError(t, err)

	var entries []listEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, listEntry{Key: "home-outline", Name: "home", Type: "outline", Identifier: "HomeOutline"}, entries[0])
	assert.Equal(t, "BellSolid", entries[1].Identifier)
}

func TestListCommandRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "list", "--format", "xml", writePack(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestWriteList(t *testing.T) {
	defs := []*types.IconDefinition{
		{Name: "home", Type: "outline", Icon: &types.AbstractNode{Tag: "svg"}},
		{Name: "bell", Type: "solid", Icon: &types.AbstractNode{Tag: "svg"}},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeList(&buf, listEntries(defs, ""), "table"))
		assert.Contains(t, buf.String(), "KEY")
		assert.Contains(t, buf.String(), "home-outline")
		assert.Contains(t, buf.String(), "BellSolid")
	})

	t.Run("type filter", func(t *testing.T) {
		entries := listEntries(defs, "solid")
		require.Len(t, entries, 1)
		assert.Equal(t, "bell-solid", entries[0].Key)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeList(&buf, listEntries(defs, ""), "yaml"))

		var entries []listEntry
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &entries))
		assert.Len(t, entries, 2)
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeList(&buf, nil, "table"))
		assert.Equal(t, "No icons found.\n", buf.String())
	})
}

func TestGenerateCommand(t *testing.T) {
	pack := writePack(t)
	outDir := filepath.Join(t.TempDir(), "out")

	out, err := execute(t, "generate", "-o", outDir, "--attr", "aria-hidden=true", pack)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 2 icons")

	data, err := os.ReadFile(filepath.Join(outDir, "svg", "outline", "home.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `focusable="false"`)
	assert.Contains(t, string(data), `aria-hidden="true"`)

	assert.FileExists(t, filepath.Join(outDir, "svg", "solid", "bell.svg"))
	assert.FileExists(t, filepath.Join(outDir, "manifest.json"))
}

func TestSortedAttrs(t *testing.T) {
	attrs := sortedAttrs(map[string]string{"role": "img", "aria-hidden": "true"})
	assert.Equal(t, types.A("aria-hidden", "true", "role", "img"), attrs)
	assert.Empty(t, sortedAttrs(nil))
}

func TestRenderIcons(t *testing.T) {
	svc, err := icons.New(icons.WithDefinitions(&types.IconDefinition{
		Name: "home",
		Type: "outline",
		Icon: &types.AbstractNode{Tag: "svg", Attrs: types.A("viewBox", "0 0 24 24")},
	}))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, renderIcons(context.Background(), &buf, svc, []string{"home-outline", "home:outline"}))
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), `viewBox="0 0 24 24"`)
	assert.Equal(t, lines[0], lines[1])

	err = renderIcons(context.Background(), &buf, svc, []string{"missing-outline"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing-outline")
}

func TestNewFetcher(t *testing.T) {
	t.Run("directory", func(t *testing.T) {
		f, err := newFetcher(&config.Config{Assets: config.AssetsConfig{Dir: t.TempDir()}})
		require.NoError(t, err)
		assert.IsType(t, &fetch.FSFetcher{}, f)
	})

	t.Run("http", func(t *testing.T) {
		f, err := newFetcher(&config.Config{
			Assets: config.AssetsConfig{BaseURL: "https://cdn.example.com"},
			Fetch:  config.FetchConfig{Enabled: true, UserAgent: "glyph"},
		})
		require.NoError(t, err)
		assert.IsType(t, &fetch.HTTPFetcher{}, f)
	})

	t.Run("disabled", func(t *testing.T) {
		f, err := newFetcher(&config.Config{})
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("bad base URL", func(t *testing.T) {
		_, err := newFetcher(&config.Config{
			Assets: config.AssetsConfig{BaseURL: "ftp://example.com"},
			Fetch:  config.FetchConfig{Enabled: true},
		})
		assert.Error(t, err)
	})
}

func TestLoadDefinitionsSkipsMissingPaths(t *testing.T) {
	pack := writePack(t)
	logger := logging.NewNopLogger()

	defs, err := loadDefinitions(context.Background(), logger, []string{filepath.Join(t.TempDir(), "absent"), pack})
	require.NoError(t, err)
	assert.Len(t, defs, 2)

	defs, err = loadDefinitions(context.Background(), logger, []string{filepath.Join(t.TempDir(), "absent")})
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeVersion(&buf, "text", false, false))
	assert.Contains(t, buf.String(), "glyph ")
	assert.Contains(t, buf.String(), "Platform: ")

	buf.Reset()
	require.NoError(t, writeVersion(&buf, "json", false, false))
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "go_version")

	assert.Error(t, writeVersion(&buf, "xml", false, false))
}

func TestFlagValidation(t *testing.T) {
	assert.NoError(t, ValidatePort("8080"))
	assert.Error(t, ValidatePort("0"))
	assert.Error(t, ValidatePort("http"))

	assert.NoError(t, ValidateFormat("JSON", []string{"table", "json"}))
	assert.Error(t, ValidateFormat("csv", []string{"table", "json"}))

	c := &cobra.Command{Use: "sample"}
	var port int
	c.Flags().IntVar(&port, "port", 1, "")
	AddFlagValidation(c, "port", ValidatePort)

	require.NoError(t, c.Flags().Set("port", "3000"))
	assert.Equal(t, 3000, port)
	assert.Error(t, c.Flags().Set("port", "70000"))
	assert.Equal(t, 3000, port)
}
