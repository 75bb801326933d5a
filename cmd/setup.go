package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/conneroisu/glyph/internal/config"
	"github.com/conneroisu/glyph/internal/fetch"
	"github.com/conneroisu/glyph/internal/icons"
	"github.com/conneroisu/glyph/internal/loader"
	"github.com/conneroisu/glyph/internal/logging"
	"github.com/conneroisu/glyph/internal/types"
)

// loadConfig reads the configuration and builds the logger it describes.
func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, logging.NewLogger(cfg.LoggerConfig()), nil
}

// newFetcher picks the asset source: a local directory when assets.dir is
// set, otherwise HTTP when fetching is enabled. It returns nil when icons can
// only come from definition packs.
func newFetcher(cfg *config.Config) (fetch.Fetcher, error) {
	if cfg.Assets.Dir != "" {
		return fetch.NewFSFetcher(os.DirFS(cfg.Assets.Dir)), nil
	}
	if !cfg.Fetch.Enabled {
		return nil, nil
	}

	opts := []fetch.HTTPOption{fetch.WithUserAgent(cfg.Fetch.UserAgent)}
	if cfg.Fetch.CacheTTL > 0 {
		opts = append(opts, fetch.WithBodyCache(cfg.Fetch.CacheTTL))
	}
	f, err := fetch.NewHTTPFetcher(cfg.Assets.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// newService builds the icon service with every definition found under
// paths registered up front.
func newService(ctx context.Context, cfg *config.Config, logger logging.Logger, paths []string) (*icons.Service, error) {
	defs, err := loadDefinitions(ctx, logger, paths)
	if err != nil {
		return nil, err
	}

	opts := []icons.Option{
		icons.WithLogger(logger),
		icons.WithFetchTimeout(cfg.Fetch.Timeout),
		icons.WithAssetsSource(cfg.Assets.Source),
		icons.WithDefinitions(defs...),
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure asset fetching: %w", err)
	}
	if fetcher != nil {
		opts = append(opts, icons.WithFetcher(fetcher))
	}

	return icons.New(opts...)
}

// loadDefinitions reads the icon sources that exist. Missing paths are
// skipped so the default ./icons may be absent.
func loadDefinitions(ctx context.Context, logger logging.Logger, paths []string) ([]*types.IconDefinition, error) {
	existing := existingPaths(ctx, logger, paths)
	if len(existing) == 0 {
		return nil, nil
	}
	return loader.New(logger).Load(ctx, existing...)
}

func existingPaths(ctx context.Context, logger logging.Logger, paths []string) []string {
	existing := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			logger.Debug(ctx, "Skipping missing icon path", "path", path)
			continue
		}
		existing = append(existing, path)
	}
	return existing
}
