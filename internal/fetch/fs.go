package fetch

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// FSFetcher reads icon bodies from a file system. Locators are treated as
// slash-separated paths relative to the file system root.
type FSFetcher struct {
	fsys fs.FS
}

// NewFSFetcher creates a fetcher over fsys, typically os.DirFS(dir).
func NewFSFetcher(fsys fs.FS) *FSFetcher {
	return &FSFetcher{fsys: fsys}
}

// Fetch reads the file named by locator.
func (f *FSFetcher) Fetch(ctx context.Context, locator string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := path.Clean(strings.TrimPrefix(locator, "/"))
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("invalid asset path %q", locator)
	}

	data, err := fs.ReadFile(f.fsys, name)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return string(data), nil
}
