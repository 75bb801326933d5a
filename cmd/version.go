package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/glyph/internal/version"
)

var (
	versionFormat   string
	versionShort    bool
	versionDetailed bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for glyph including:

- Semantic version number
- Git commit hash
- Build timestamp
- Go version used for compilation
- Target platform (OS/architecture)

Examples:
  glyph version                # Show version
  glyph version --detailed     # Show detailed version info
  glyph version --format json  # Output as JSON`,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text, json)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
	versionCmd.Flags().BoolVar(&versionDetailed, "detailed", false, "Show detailed version information")
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	return writeVersion(cmd.OutOrStdout(), versionFormat, versionShort, versionDetailed)
}

func writeVersion(w io.Writer, format string, short, detailed bool) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(version.GetBuildInfo())
	case "text":
		switch {
		case short:
			_, err := fmt.Fprintln(w, version.GetShortVersion())
			return err
		case detailed:
			_, err := fmt.Fprintln(w, version.GetDetailedVersion())
			return err
		default:
			return writeVersionDefault(w)
		}
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", format)
	}
}

func writeVersionDefault(w io.Writer) error {
	info := version.GetBuildInfo()

	fmt.Fprintf(w, "glyph %s", info.Version)
	if info.GitCommit != "unknown" && len(info.GitCommit) >= 7 {
		fmt.Fprintf(w, " (%s)", info.GitCommit[:7])
	}
	fmt.Fprintln(w)

	if !info.BuildTime.IsZero() {
		fmt.Fprintf(w, "Built: %s\n", info.BuildTime.Format("2006-01-02 15:04:05 UTC"))
	}
	fmt.Fprintf(w, "Go: %s\n", info.GoVersion)
	_, err := fmt.Fprintf(w, "Platform: %s\n", info.Platform)
	return err
}
