package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/glyph/internal/icons"
)

var renderCmd = &cobra.Command{
	Use:     "render <identifier>...",
	Aliases: []string{"r"},
	Short:   "Print the SVG markup of icons",
	Long: `Render icons and print their SVG markup, one per line.

Identifiers are "name:type", "name-type" or a bare registered key. Icons that
are not in a definition pack are fetched from the configured asset source.

Examples:
  glyph render home-outline
  glyph render home:outline bell:solid
  GLYPH_ASSETS_SOURCE=https://cdn.example.com/ glyph render star-filled`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, err := newService(ctx, cfg, logger, cfg.Icons.Paths)
	if err != nil {
		return err
	}
	return renderIcons(ctx, cmd.OutOrStdout(), svc, args)
}

func renderIcons(ctx context.Context, w io.Writer, svc *icons.Service, identifiers []string) error {
	for _, identifier := range identifiers {
		markup, err := svc.RenderMarkup(ctx, identifier)
		if err != nil {
			return fmt.Errorf("render %s: %w", identifier, err)
		}
		if _, err := fmt.Fprintln(w, markup); err != nil {
			return err
		}
	}
	return nil
}
