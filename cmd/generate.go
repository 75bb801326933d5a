package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/conneroisu/glyph/internal/build"
	"github.com/conneroisu/glyph/internal/types"
)

var (
	generateOutput string
	generateAttrs  map[string]string
)

// generateCmd represents the generate command.
var generateCmd = &cobra.Command{
	Use:     "generate [path...]",
	Aliases: []string{"g"},
	Short:   "Write every icon as an SVG file plus a manifest",
	Long: `Render every icon from the definition packs and write:

- svg/{type}/{name}.svg for each icon
- manifest.json listing icon names per type

Extra root attributes from icons.extra_svg_attrs (focusable="false" by
default) are added to every generated file; --attr adds or overrides them.

Examples:
  glyph generate                       # Read icons.paths, write to ./dist
  glyph generate -o public/icons       # Choose the output directory
  glyph generate --attr aria-hidden=true ./packs`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "dist", "Output directory")
	generateCmd.Flags().StringToStringVar(&generateAttrs, "attr", nil, "Extra root attribute (key=value), may be repeated")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Icons.Paths
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	defs, err := loadDefinitions(ctx, logger, paths)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		return fmt.Errorf("no icons found in %v", paths)
	}

	extra := cfg.ExtraAttrs().Merge(sortedAttrs(generateAttrs))
	result, err := build.NewGenerator(extra, logger).Generate(ctx, defs, generateOutput)
	if err != nil {
		return err
	}
	return printGenerateSummary(cmd.OutOrStdout(), result)
}

// sortedAttrs orders flag attributes by key; map iteration order is random.
func sortedAttrs(m map[string]string) types.Attrs {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	attrs := make(types.Attrs, 0, len(keys))
	for _, key := range keys {
		attrs = attrs.Set(key, m[key])
	}
	return attrs
}

func printGenerateSummary(w io.Writer, result *build.Result) error {
	iconTypes := make([]string, 0, len(result.Manifest))
	for iconType := range result.Manifest {
		iconTypes = append(iconTypes, iconType)
	}
	sort.Strings(iconTypes)

	for _, iconType := range iconTypes {
		if _, err := fmt.Fprintf(w, "  %-12s %d icons\n", iconType, len(result.Manifest[iconType])); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Generated %d icons in %s\n", len(result.Files), result.OutputDir)
	return err
}
