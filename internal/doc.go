// Package internal contains the core implementation packages for glyph.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the glyph CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - types: Icon definitions, ordered attributes and icon references
//   - errors: Error taxonomy with stable codes and HTTP status mapping
//   - markup: Parsing, building and serializing SVG node trees
//   - renderer: Turning definitions into artifacts with root attribute defaults
//   - registry: Definition storage keyed by name-type with change events
//   - cache: One artifact per key, rendered once
//   - fetch: Deduplicating fetch coordinator and HTTP and file system fetchers
//   - icons: The service that resolves references to artifacts
//   - loader: Definition packs (YAML, JSON) and SVG directory trees
//   - build: Writing rendered icons and a manifest to disk
//   - watcher: Debounced file watching and pack reloading
//   - server: HTTP server, gallery and WebSocket change events
//   - config, logging, validation, version: Supporting infrastructure
//
// # Data Flow
//
// A request names an icon by reference. The icons service looks the key up in
// the artifact cache, then in the registry, and only then asks the fetch
// coordinator, which runs at most one fetch per key no matter how many
// callers are waiting. Fetched definitions are registered, so every later
// request is served locally.
//
// # Security Considerations
//
//   - Asset locators are checked before any fetch is started
//   - Config and definition paths are validated against traversal
//   - The server checks WebSocket and CORS origins against an allowlist
//
// For detailed documentation, see the individual package documentation.
package internal
