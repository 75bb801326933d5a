// Package loader reads icon definitions from disk.
//
// Two sources are supported. Definition packs are YAML or JSON documents
// listing complete definitions:
//
//	icons:
//	  - name: home
//	    type: outline
//	    icon:
//	      tag: svg
//	      attrs: {viewBox: "0 0 24 24"}
//	      children:
//	        - tag: path
//	          attrs: {d: "M1 1"}
//
// SVG trees are directories laid out as {type}/{name}.svg; every file is
// parsed into the structural model.
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	glypherrors "github.com/conneroisu/glyph/internal/errors"
	"github.com/conneroisu/glyph/internal/logging"
	"github.com/conneroisu/glyph/internal/markup"
	"github.com/conneroisu/glyph/internal/types"
	"github.com/conneroisu/glyph/internal/validation"
)

// Pack is a definition pack document.
type Pack struct {
	Icons []*types.IconDefinition `yaml:"icons" json:"icons"`
}

// Format is a pack encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf returns the pack format for a file name.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	default:
		return "", false
	}
}

var sourceExtensions = []string{".yml", ".yaml", ".json", ".svg"}

// IsSource reports whether path names a file the loader reads.
func IsSource(path string) bool {
	return validation.ValidateFileExtension(path, sourceExtensions) == nil
}

// ParsePack decodes a pack and checks that every definition is complete.
func ParsePack(data []byte, format Format) (*Pack, error) {
	var pack Pack
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &pack); err != nil {
			return nil, fmt.Errorf("decoding yaml pack: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&pack); err != nil {
			return nil, fmt.Errorf("decoding json pack: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown pack format %q", format)
	}

	for i, def := range pack.Icons {
		if err := checkDefinition(def); err != nil {
			return nil, fmt.Errorf("icon %d: %w", i, err)
		}
	}
	return &pack, nil
}

func checkDefinition(def *types.IconDefinition) error {
	switch {
	case def == nil:
		return fmt.Errorf("empty definition")
	case def.Name == "":
		return fmt.Errorf("missing name")
	case def.Type == "":
		return fmt.Errorf("icon %s has no type", def.Name)
	case def.Icon == nil || def.Icon.Tag == "":
		return fmt.Errorf("icon %s has no content", def.Key())
	case strings.ContainsAny(def.Name+def.Type, ":/\\ "):
		return fmt.Errorf("icon %s has an invalid name or type", def.Key())
	}
	return nil
}

// Loader reads definitions from files and directories.
type Loader struct {
	logger logging.Logger
}

// New creates a loader.
func New(logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Loader{logger: logger.WithComponent("loader")}
}

// Load reads every path. A file is read according to its extension; a
// directory is walked for packs and SVG trees. Later definitions with the
// same key replace earlier ones.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*types.IconDefinition, error) {
	var defs []*types.IconDefinition
	for _, path := range paths {
		if err := validation.ValidatePath(path); err != nil {
			return nil, glypherrors.NewValidationError(glypherrors.ErrCodeValidationFailed, err.Error()).
				WithContext("path", path)
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, glypherrors.WrapIO(err, glypherrors.ErrCodeFileNotFound, "cannot read icon path "+path)
		}

		var loaded []*types.IconDefinition
		if info.IsDir() {
			loaded, err = l.loadDir(ctx, path)
		} else {
			loaded, err = l.LoadFile(path, "")
		}
		if err != nil {
			return nil, err
		}
		defs = append(defs, loaded...)
	}
	return dedupe(defs), nil
}

// LoadFile reads a pack or a single SVG file. For SVG files the name is the
// file's base name and the type is iconType, or the parent directory name
// when iconType is empty.
func (l *Loader) LoadFile(path, iconType string) ([]*types.IconDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, glypherrors.WrapIO(err, glypherrors.ErrCodeFileNotFound, "cannot read "+path)
	}

	if format, ok := FormatOf(path); ok {
		pack, err := ParsePack(data, format)
		if err != nil {
			return nil, glypherrors.ErrSourceMalformed(path, err)
		}
		l.logger.Debug(context.Background(), "Loaded definition pack", "path", path, "icons", len(pack.Icons))
		return pack.Icons, nil
	}

	if err := validation.ValidateFileExtension(path, sourceExtensions); err != nil {
		return nil, glypherrors.NewValidationError(glypherrors.ErrCodeValidationFailed,
			"unsupported icon file "+path+": "+err.Error()).WithContext("path", path)
	}

	if iconType == "" {
		iconType = filepath.Base(filepath.Dir(path))
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	icon, err := markup.ParseIcon(string(data))
	if err != nil {
		return nil, glypherrors.ErrSourceMalformed(path, err)
	}
	return []*types.IconDefinition{{Name: name, Type: iconType, Icon: icon}}, nil
}

// loadDir walks dir. SVG files are only taken from exactly one level below
// the root ({type}/{name}.svg); packs are taken from anywhere.
func (l *Loader) loadDir(ctx context.Context, dir string) ([]*types.IconDefinition, error) {
	var defs []*types.IconDefinition
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSource(path) {
			return nil
		}

		if strings.EqualFold(filepath.Ext(path), ".svg") {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			parts := strings.Split(filepath.ToSlash(rel), "/")
			if len(parts) != 2 {
				l.logger.Debug(ctx, "Skipping svg outside {type}/{name}.svg layout", "path", path)
				return nil
			}
			loaded, err := l.LoadFile(path, parts[0])
			if err != nil {
				l.logger.Warn(ctx, err, "Skipping unreadable svg", "path", path)
				return nil
			}
			defs = append(defs, loaded...)
			return nil
		}

		loaded, err := l.LoadFile(path, "")
		if err != nil {
			return err
		}
		defs = append(defs, loaded...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defs, nil
}

func dedupe(defs []*types.IconDefinition) []*types.IconDefinition {
	index := make(map[string]int, len(defs))
	out := make([]*types.IconDefinition, 0, len(defs))
	for _, def := range defs {
		if i, ok := index[def.Key()]; ok {
			out[i] = def
			continue
		}
		index[def.Key()] = len(out)
		out = append(out, def)
	}
	return out
}
