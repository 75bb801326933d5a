// Package fetch resolves icons that are not registered yet.
//
// The Coordinator turns a typed reference into an asset locator, validates
// it, and fetches the SVG through a Fetcher. Concurrent requests for the same
// identity key share a single fetch. A fetched icon is parsed and added to
// the definition registry before the shared flight ends, so a caller that
// arrives after the flight finds it registered.
package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	glypherrors "github.com/conneroisu/glyph/internal/errors"
	"github.com/conneroisu/glyph/internal/logging"
	"github.com/conneroisu/glyph/internal/markup"
	"github.com/conneroisu/glyph/internal/registry"
	"github.com/conneroisu/glyph/internal/types"
)

// DefaultTimeout bounds a shared fetch.
const DefaultTimeout = 10 * time.Second

// Fetcher retrieves the body behind an asset locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, locator string) (string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, locator string) (string, error) {
	return f(ctx, locator)
}

// URLValidator sanitizes a locator or rejects it.
type URLValidator interface {
	Sanitize(locator string) (string, error)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithFetcher sets the network collaborator. Without one every resolution
// settles absent.
func WithFetcher(f Fetcher) Option {
	return func(c *Coordinator) { c.fetcher = f }
}

// WithValidator replaces the locator policy.
func WithValidator(v URLValidator) Option {
	return func(c *Coordinator) { c.validator = v }
}

// WithLogger sets the logger used for fetch warnings.
func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.logger = l.WithComponent("fetch") }
}

// WithTimeout bounds every shared fetch. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

// WithAssetsRoot sets the locator prefix.
func WithAssetsRoot(root string) Option {
	return func(c *Coordinator) { c.root = root }
}

// Coordinator deduplicates remote icon resolution per identity key.
type Coordinator struct {
	registry  *registry.DefinitionRegistry
	fetcher   Fetcher
	validator URLValidator
	logger    logging.Logger
	timeout   time.Duration

	mu    sync.RWMutex
	root  string
	group singleflight.Group
}

// NewCoordinator creates a coordinator that registers resolved icons into reg.
func NewCoordinator(reg *registry.DefinitionRegistry, validator URLValidator, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry:  reg,
		validator: validator,
		logger:    logging.NewNopLogger(),
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAssetsRoot changes the locator prefix for fetches started afterwards.
func (c *Coordinator) SetAssetsRoot(root string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.root = root
}

// AssetsRoot returns the current locator prefix.
func (c *Coordinator) AssetsRoot() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.root
}

// Locator builds the asset locator for an icon.
func Locator(root, name, iconType string) string {
	return fmt.Sprintf("%sassets/%s/%s.svg", root, iconType, name)
}

// Resolve fetches, parses and registers the icon named by ref.
//
// It returns (nil, nil) when the icon cannot be resolved: no fetcher, a
// reference without a type, or a failed fetch. Failures are logged and never
// remembered, so the next call fetches again. An unsafe locator is returned
// as an error before anything is fetched. If ctx ends first, Resolve returns
// ctx.Err() while the shared fetch carries on for the other callers. Each
// caller receives its own copy of the definition.
func (c *Coordinator) Resolve(ctx context.Context, ref types.Ref) (*types.IconDefinition, error) {
	if !ref.HasType() {
		return nil, nil
	}
	key := ref.Key()

	if c.fetcher == nil {
		c.logger.Warn(ctx, glypherrors.ErrNetworkAdapterMissing(),
			"No fetcher configured, icon cannot be resolved", "key", key)
		return nil, nil
	}

	raw := Locator(c.AssetsRoot(), ref.Name, ref.Type)
	locator, err := c.validator.Sanitize(raw)
	if err != nil {
		return nil, glypherrors.ErrUnsafeURL(raw, err).WithIcon(key)
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.fetchAndRegister(ctx, ref, key, locator), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		def, _ := res.Val.(*types.IconDefinition)
		return def.Clone(), nil
	}
}

// fetchAndRegister runs once per flight on the context of the caller that
// started it, detached from that caller's cancellation. A panicking fetcher
// settles the flight absent like any other failure.
func (c *Coordinator) fetchAndRegister(parent context.Context, ref types.Ref, key, locator string) (def *types.IconDefinition) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn(parent, glypherrors.ErrFetchFailed(locator, fmt.Errorf("fetcher panicked: %v", r)),
				"Icon fetch panicked", "key", key, "locator", locator)
			def = nil
		}
	}()

	// A flight that finished between the caller's registry miss and this one
	// starting has already registered the icon.
	if existing, ok := c.registry.Get(key); ok {
		return existing
	}

	ctx := context.WithoutCancel(parent)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	body, err := c.fetcher.Fetch(ctx, locator)
	if err != nil {
		c.logger.Warn(ctx, glypherrors.ErrFetchFailed(locator, err),
			"Icon fetch failed", "key", key, "locator", locator)
		return nil
	}

	icon, err := markup.ParseIcon(body)
	if err != nil {
		c.logger.Warn(ctx, glypherrors.ErrSourceMalformed(key, err),
			"Fetched icon is not valid SVG", "key", key, "locator", locator)
		return nil
	}

	def = &types.IconDefinition{Name: ref.Name, Type: ref.Type, Icon: icon}
	c.registry.Add(def)

	c.logger.Debug(ctx, "Icon fetched", "key", key, "locator", locator,
		"duration_ms", time.Since(start).Milliseconds())
	return def
}
