// Package cmd provides the command-line interface for glyph.
//
// This package implements all CLI commands using the Cobra framework.
//
// # Available Commands
//
//   - render: Print the SVG markup of one or more icons
//   - list: List icons found in definition packs
//   - generate: Write every icon and a manifest to an output directory
//   - serve: Serve icons over HTTP with live registry updates
//   - version: Show build information
//
// # Command Examples
//
//	// Render an icon, fetching it from the asset source if needed
//	glyph render home-outline
//
//	// List outline icons as JSON
//	glyph list --type outline --format json
//
//	// Generate files for a web build
//	glyph generate -o public/icons --attr aria-hidden=true
//
//	// Serve and reload packs on change
//	glyph serve --port 3000 --watch
//
// # Configuration
//
// Configuration is read from several sources with clear precedence:
//  1. Command-line flags (--config, --port, etc.) - highest priority
//  2. GLYPH_ prefixed environment variables (GLYPH_SERVER_PORT, GLYPH_FETCH_TIMEOUT)
//  3. The configuration file: --config, else GLYPH_CONFIG_FILE, else .glyph.yml
//  4. Built-in defaults - lowest priority
package cmd
