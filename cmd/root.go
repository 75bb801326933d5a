package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	glypherrors "github.com/conneroisu/glyph/internal/errors"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "glyph",
	Short: "Render SVG icons from definitions with a deduplicating fetch cache",
	Long: `glyph renders SVG icons from structural definitions. Icons are registered
from definition packs or fetched on demand from an asset source; every icon is
rendered once and fetched at most once, however many callers ask for it.

Quick Start:
  glyph render home-outline       Print the SVG markup of an icon
  glyph list                      List registered icons
  glyph generate -o dist          Write every icon and a manifest to disk
  glyph serve --watch             Serve icons over HTTP and reload packs

Command Aliases (for faster typing):
  render (r), list (l), generate (g), serve (s)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Errors are printed with their validation suggestions.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", glypherrors.FormatErrorWithSuggestions(err))
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .glyph.yml, can also use GLYPH_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig points viper at the configuration file.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. GLYPH_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .glyph.yml in current directory
//
// Values can also be set with GLYPH_ prefixed environment variables, where
// dots in the key become underscores (GLYPH_FETCH_CACHE_TTL=1m).
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("GLYPH_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".glyph")
	}

	viper.SetEnvPrefix("GLYPH")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or unreadable file leaves the defaults in place.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
