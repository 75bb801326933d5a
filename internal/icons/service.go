// Package icons is the consumer-facing entry point of glyph.
//
// A Service owns one definition registry, one artifact cache and one fetch
// coordinator. Callers ask it for an icon by identifier and receive an
// independent copy of the rendered artifact, fetched and rendered at most
// once however many callers ask concurrently.
package icons

import (
	"context"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/conneroisu/glyph/internal/cache"
	glypherrors "github.com/conneroisu/glyph/internal/errors"
	"github.com/conneroisu/glyph/internal/fetch"
	"github.com/conneroisu/glyph/internal/logging"
	"github.com/conneroisu/glyph/internal/markup"
	"github.com/conneroisu/glyph/internal/registry"
	"github.com/conneroisu/glyph/internal/types"
	"github.com/conneroisu/glyph/internal/validation"
)

// Service resolves and renders icons.
type Service struct {
	registry    *registry.DefinitionRegistry
	cache       *cache.ArtifactCache
	coordinator *fetch.Coordinator
	logger      logging.Logger
}

type options struct {
	fetcher      fetch.Fetcher
	validator    fetch.URLValidator
	logger       logging.Logger
	fetchTimeout time.Duration
	assetsRoot   string
	definitions  []*types.IconDefinition
}

// Option configures a Service.
type Option func(*options)

// WithFetcher enables dynamic loading through f.
func WithFetcher(f fetch.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithURLValidator replaces the default locator policy.
func WithURLValidator(v fetch.URLValidator) Option {
	return func(o *options) { o.validator = v }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithFetchTimeout bounds every shared fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) { o.fetchTimeout = d }
}

// WithAssetsSource sets the initial locator prefix.
func WithAssetsSource(prefix string) Option {
	return func(o *options) { o.assetsRoot = normalizeSource(prefix) }
}

// WithDefinitions registers definitions at construction.
func WithDefinitions(defs ...*types.IconDefinition) Option {
	return func(o *options) { o.definitions = append(o.definitions, defs...) }
}

// New creates a Service.
func New(opts ...Option) (*Service, error) {
	o := &options{
		validator:    validation.URLPolicy{},
		logger:       logging.NewNopLogger(),
		fetchTimeout: fetch.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}

	reg := registry.NewDefinitionRegistry()
	coordinatorOpts := []fetch.Option{
		fetch.WithLogger(o.logger),
		fetch.WithTimeout(o.fetchTimeout),
		fetch.WithAssetsRoot(o.assetsRoot),
	}
	if o.fetcher != nil {
		coordinatorOpts = append(coordinatorOpts, fetch.WithFetcher(o.fetcher))
	}

	s := &Service{
		registry:    reg,
		cache:       cache.NewArtifactCache(),
		coordinator: fetch.NewCoordinator(reg, o.validator, coordinatorOpts...),
		logger:      o.logger.WithComponent("icons"),
	}

	if err := s.AddIcon(o.definitions...); err != nil {
		return nil, err
	}
	return s, nil
}

// GetRenderedContent returns a fresh copy of the artifact for ref.
//
// A definition reference is rendered directly. Otherwise the registry is
// consulted, then the fetch coordinator. An icon that cannot be resolved
// yields an IconNotFound error.
func (s *Service) GetRenderedContent(ctx context.Context, ref types.Ref) (*html.Node, error) {
	def, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.cache.GetOrRender(def)
}

// GetRenderedContentByName parses identifier and calls GetRenderedContent.
func (s *Service) GetRenderedContentByName(ctx context.Context, identifier string) (*html.Node, error) {
	ref, err := types.ParseRef(identifier)
	if err != nil {
		return nil, err
	}
	return s.GetRenderedContent(ctx, ref)
}

// RenderMarkup returns the serialized artifact for identifier.
func (s *Service) RenderMarkup(ctx context.Context, identifier string) (string, error) {
	node, err := s.GetRenderedContentByName(ctx, identifier)
	if err != nil {
		return "", err
	}
	return markup.Serialize(node)
}

func (s *Service) resolve(ctx context.Context, ref types.Ref) (*types.IconDefinition, error) {
	if ref.Kind == types.RefDefinition {
		if ref.Definition == nil {
			return nil, glypherrors.ErrIconNotFound(ref.String())
		}
		return ref.Definition, nil
	}

	if def, ok := s.registry.Get(ref.Key()); ok {
		return def, nil
	}

	def, err := s.coordinator.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, glypherrors.ErrIconNotFound(ref.String())
	}
	return def, nil
}

// AddIcon registers definitions, replacing existing ones wholesale. Cached
// artifacts of replaced keys are dropped so the next request renders the new
// definition.
func (s *Service) AddIcon(defs ...*types.IconDefinition) error {
	vec := &glypherrors.ValidationErrorCollection{}
	for i, def := range defs {
		switch {
		case def == nil:
			vec.AddField("icons", i, "definition is nil")
		case def.Name == "":
			vec.AddField("name", def.Key(), "icon name is required")
		case def.Type == "":
			vec.AddField("type", def.Name, "icon type is required")
		case def.Icon == nil:
			vec.AddField("icon", def.Key(), "icon content is required")
		}
	}
	if vec.HasErrors() {
		ge := vec.ToGlyphError("invalid icon definitions")
		ge.Type = glypherrors.ErrorTypeValidation
		ge.Code = glypherrors.ErrCodeValidationFailed
		return ge
	}
	if len(defs) == 0 {
		return nil
	}

	updated := s.registry.Add(defs...)
	s.cache.Invalidate(updated...)
	s.logger.Debug(context.Background(), "Icons added", "count", len(defs), "updated", len(updated))
	return nil
}

// AddIconLiteral registers content under a "name:type" identifier.
func (s *Service) AddIconLiteral(identifier string, content *types.AbstractNode) error {
	def, err := s.registry.AddLiteral(identifier, content)
	if err != nil {
		return err
	}
	s.cache.Invalidate(def.Key())
	return nil
}

// ChangeAssetsSource sets the prefix used to build asset locators. A
// non-empty prefix always ends with "/".
func (s *Service) ChangeAssetsSource(prefix string) {
	s.coordinator.SetAssetsRoot(normalizeSource(prefix))
}

// AssetsSource returns the current locator prefix.
func (s *Service) AssetsSource() string {
	return s.coordinator.AssetsRoot()
}

func normalizeSource(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}

// Clear removes every definition and every cached artifact.
func (s *Service) Clear() {
	s.registry.Clear()
	s.cache.Clear()
}

// Definition returns the definition registered for ref.
func (s *Service) Definition(ref types.Ref) (*types.IconDefinition, bool) {
	return s.registry.Get(ref.Key())
}

// Definitions returns all registered definitions sorted by key.
func (s *Service) Definitions() []*types.IconDefinition {
	return s.registry.GetAll()
}

// Stats describes the service state.
type Stats struct {
	Definitions int         `json:"definitions"`
	AssetsRoot  string      `json:"assets_root"`
	Cache       cache.Stats `json:"cache"`
}

// Stats returns a snapshot of the service state.
func (s *Service) Stats() Stats {
	return Stats{
		Definitions: s.registry.Count(),
		AssetsRoot:  s.AssetsSource(),
		Cache:       s.cache.Stats(),
	}
}

// Watch subscribes to registry events.
func (s *Service) Watch() <-chan types.IconEvent {
	return s.registry.Watch()
}

// UnWatch cancels a subscription returned by Watch.
func (s *Service) UnWatch(ch <-chan types.IconEvent) {
	s.registry.UnWatch(ch)
}
