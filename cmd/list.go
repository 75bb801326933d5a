package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/glyph/internal/loader"
	"github.com/conneroisu/glyph/internal/types"
)

var listCmd = &cobra.Command{
	Use:     "list [path...]",
	Aliases: []string{"l"},
	Short:   "List icons from definition packs",
	Long: `List the icons found in definition packs and SVG trees with their keys
and Go identifiers. Without arguments the configured icons.paths are read.

Examples:
  glyph list                      # List all icons in table format
  glyph list -f json              # Output as JSON
  glyph list --type outline       # Only outline icons
  glyph list ./packs/extra.yml    # List a specific pack`,
	RunE: runList,
}

var (
	listFormat string
	listType   string
)

// listEntry is one row of list output.
type listEntry struct {
	Key        string `json:"key" yaml:"key"`
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	Identifier string `json:"identifier" yaml:"identifier"`
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "Output format (table, json, yaml)")
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "Only list icons of this type")

	AddFlagValidation(listCmd, "format", func(format string) error {
		return ValidateFormat(format, []string{"table", "json", "yaml"})
	})
}

func runList(cmd *cobra.Command, args []string) error {
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

	return writeList(cmd.OutOrStdout(), listEntries(defs, listType), listFormat)
}

func listEntries(defs []*types.IconDefinition, iconType string) []listEntry {
	entries := make([]listEntry, 0, len(defs))
	for _, def := range defs {
		if iconType != "" && def.Type != iconType {
			continue
		}
		entries = append(entries, listEntry{
			Key:        def.Key(),
			Name:       def.Name,
			Type:       def.Type,
			Identifier: loader.Identifier(def),
		})
	}
	return entries
}

func writeList(w io.Writer, entries []listEntry, format string) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(entries)
	case "table", "":
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, "No icons found.")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tTYPE\tIDENTIFIER")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Key, e.Type, e.Identifier)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
