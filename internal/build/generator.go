// Package build generates static icon assets.
//
// The generator renders every definition through the structural renderer and
// writes the layout the fetch coordinator reads at run time:
//
//	{out}/svg/{type}/{name}.svg
//	{out}/manifest.json
//
// Serving {out}/svg as "assets" therefore makes every generated icon
// loadable on demand.
package build

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	glypherrors "github.com/conneroisu/glyph/internal/errors"
	"github.com/conneroisu/glyph/internal/loader"
	"github.com/conneroisu/glyph/internal/logging"
	"github.com/conneroisu/glyph/internal/renderer"
	"github.com/conneroisu/glyph/internal/types"
	"github.com/conneroisu/glyph/internal/validation"
)

// DefaultExtraAttrs are added to the root of every generated icon.
var DefaultExtraAttrs = types.A("focusable", "false")

// Manifest lists generated icon names per type.
type Manifest map[string][]string

// Entry describes one generated file.
type Entry struct {
	Key        string `json:"key"`
	Identifier string `json:"identifier"`
	Path       string `json:"path"`
	Size       int    `json:"size"`
}

// Result summarizes a generation run.
type Result struct {
	OutputDir string   `json:"output_dir"`
	Manifest  Manifest `json:"manifest"`
	Files     []Entry  `json:"files"`
}

// Generator writes rendered icons to disk.
type Generator struct {
	extraAttrs types.Attrs
	logger     logging.Logger
}

// NewGenerator creates a generator. A nil extraAttrs uses DefaultExtraAttrs.
func NewGenerator(extraAttrs types.Attrs, logger logging.Logger) *Generator {
	if extraAttrs == nil {
		extraAttrs = DefaultExtraAttrs
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Generator{
		extraAttrs: extraAttrs,
		logger:     logger.WithComponent("generate"),
	}
}

// Generate renders defs into outDir. The svg directory is recreated on every
// run so removed icons do not linger.
func (g *Generator) Generate(ctx context.Context, defs []*types.IconDefinition, outDir string) (*Result, error) {
	if err := validation.ValidatePath(outDir); err != nil {
		return nil, glypherrors.NewValidationError(glypherrors.ErrCodeValidationFailed, err.Error()).
			WithContext("output", outDir)
	}

	op := logging.StartOperation(g.logger, "generate")

	svgDir := filepath.Join(outDir, "svg")
	if err := os.RemoveAll(svgDir); err != nil {
		op.EndWithError(ctx, err)
		return nil, glypherrors.WrapIO(err, glypherrors.ErrCodeInternalError, "failed to clean "+svgDir)
	}

	sorted := make([]*types.IconDefinition, len(defs))
	copy(sorted, defs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key() < sorted[j].Key() })

	result := &Result{OutputDir: outDir, Manifest: Manifest{}}
	for _, def := range sorted {
		if err := ctx.Err(); err != nil {
			op.EndWithError(ctx, err)
			return nil, err
		}

		entry, err := g.writeIcon(svgDir, def)
		if err != nil {
			op.EndWithError(ctx, err)
			return nil, err
		}
		result.Files = append(result.Files, entry)
		result.Manifest[def.Type] = append(result.Manifest[def.Type], def.Name)
	}

	for _, names := range result.Manifest {
		sort.Strings(names)
	}

	if err := writeJSON(filepath.Join(outDir, "manifest.json"), result.Manifest); err != nil {
		op.EndWithError(ctx, err)
		return nil, err
	}

	op.End(ctx, "icons", len(result.Files), "types", len(result.Manifest))
	return result, nil
}

func (g *Generator) writeIcon(svgDir string, def *types.IconDefinition) (Entry, error) {
	if def.Icon == nil || def.Type == "" {
		return Entry{}, glypherrors.ErrSourceMalformed(def.Key(), fmt.Errorf("definition is incomplete"))
	}

	dir := filepath.Join(svgDir, sanitizeFileName(def.Type))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Entry{}, glypherrors.WrapIO(err, glypherrors.ErrCodeInternalError, "failed to create "+dir)
	}

	path := filepath.Join(dir, sanitizeFileName(def.Name)+".svg")
	content := renderer.RenderDefinition(def, g.extraAttrs)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return Entry{}, glypherrors.WrapIO(err, glypherrors.ErrCodeInternalError, "failed to write "+path)
	}

	return Entry{
		Key:        def.Key(),
		Identifier: loader.Identifier(def),
		Path:       path,
		Size:       len(content),
	}, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return glypherrors.WrapIO(err, glypherrors.ErrCodeInternalError, "failed to create "+filepath.Dir(path))
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return glypherrors.WrapIO(err, glypherrors.ErrCodeInternalError, "failed to write "+path)
	}
	return nil
}

// sanitizeFileName keeps names usable as path segments.
func sanitizeFileName(name string) string {
	clean := filepath.Base(filepath.Clean("/" + name))
	if clean == "/" || clean == "." {
		return "_"
	}
	return clean
}
