package icons

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	glypherrors "github.com/conneroisu/glyph/internal/errors"
	"github.com/conneroisu/glyph/internal/fetch"
	"github.com/conneroisu/glyph/internal/markup"
	"github.com/conneroisu/glyph/internal/types"
)

const remoteSVG = `<svg viewBox="0 0 16 16"><circle r="4"></circle></svg>`

func homeIcon() *types.IconDefinition {
	return &types.IconDefinition{
		Name: "home",
		Type: "outline",
		Icon: &types.AbstractNode{
			Tag:   "svg",
			Attrs: types.A("viewBox", "0 0 24 24"),
			Children: []*types.AbstractNode{
				{Tag: "path", Attrs: types.A("d", "M1 1")},
			},
		},
	}
}

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	s, err := New(opts...)
	require.NoError(t, err)
	return s
}

func mustRef(t *testing.T, identifier string) types.Ref {
	t.Helper()
	ref, err := types.ParseRef(identifier)
	require.NoError(t, err)
	return ref
}

func attr(t *testing.T, n *html.Node, key string) string {
	t.Helper()
	v, ok := markup.GetAttr(n, key)
	require.True(t, ok, "attribute %s missing", key)
	return v
}

func TestGetRenderedContentRegistered(t *testing.T) {
	s := newService(t, WithDefinitions(homeIcon()))

	node, err := s.GetRenderedContentByName(context.Background(), "home-outline")
	require.NoError(t, err)

	assert.Equal(t, "svg", node.Data)
	assert.Equal(t, "0 0 24 24", attr(t, node, "viewBox"))
	assert.Equal(t, "1em", attr(t, node, "width"))
	assert.Equal(t, "1em", attr(t, node, "height"))
	assert.Equal(t, "currentColor", attr(t, node, "fill"))
}

func TestGetRenderedContentNamespacedAndAbbreviatedAgree(t *testing.T) {
	s := newService(t, WithDefinitions(homeIcon()))

	a, err := s.RenderMarkup(context.Background(), "home:outline")
	require.NoError(t, err)
	b, err := s.RenderMarkup(context.Background(), "home-outline")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGetRenderedContentDefinitionRef(t *testing.T) {
	s := newService(t)
	def := homeIcon()

	node, err := s.GetRenderedContent(context.Background(), types.DefinitionRef(def))
	require.NoError(t, err)
	assert.Equal(t, "svg", node.Data)
	assert.Equal(t, 0, s.Stats().Definitions)
}

func TestGetRenderedContentReturnsDistinctCopies(t *testing.T) {
	s := newService(t, WithDefinitions(homeIcon()))
	ctx := context.Background()

	first, err := s.GetRenderedContentByName(ctx, "home-outline")
	require.NoError(t, err)
	second, err := s.GetRenderedContentByName(ctx, "home-outline")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	a, err := markup.Serialize(first)
	require.NoError(t, err)
	b, err := markup.Serialize(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	markup.SetAttr(first, "class", "mutated")
	third, err := s.GetRenderedContentByName(ctx, "home-outline")
	require.NoError(t, err)
	_, ok := markup.GetAttr(third, "class")
	assert.False(t, ok)

	assert.Equal(t, int64(1), s.Stats().Cache.Renders)
}

func TestGetRenderedContentNotFound(t *testing.T) {
	s := newService(t)

	_, err := s.GetRenderedContentByName(context.Background(), "missing-outline")
	require.Error(t, err)
	assert.True(t, glypherrors.IsCode(err, glypherrors.ErrCodeIconNotFound))
	assert.Contains(t, err.Error(), "missing-outline")
}

func TestGetRenderedContentInvalidIdentifier(t *testing.T) {
	s := newService(t)

	_, err := s.GetRenderedContentByName(context.Background(), "a:b:c")
	require.Error(t, err)
	assert.True(t, glypherrors.IsCode(err, glypherrors.ErrCodeInvalidIdentifier))
}

func TestGetRenderedContentBareName(t *testing.T) {
	var calls int64
	f := fetch.FetcherFunc(func(ctx context.Context, locator string) (string, error) {
		atomic.AddInt64(&calls, 1)
		return remoteSVG, nil
	})
	s := newService(t, WithFetcher(f))

	_, err := s.GetRenderedContentByName(context.Background(), "home")
	assert.True(t, glypherrors.IsCode(err, glypherrors.ErrCodeIconNotFound))
	assert.Equal(t, int64(0), atomic.LoadInt64(&calls))
}

func TestGetRenderedContentConcurrentFetch(t *testing.T) {
	var calls int64
	release := make(chan struct{})
	f := fetch.FetcherFunc(func(ctx context.Context, locator string) (string, error) {
		atomic.AddInt64(&calls, 1)
		<-release
		return remoteSVG, nil
	})
	s := newService(t, WithFetcher(f))

	const callers = 20
	markups := make([]string, callers)
	nodes := make([]*html.Node, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			node, err := s.GetRenderedContentByName(context.Background(), "dot:solid")
			if !assert.NoError(t, err) {
				return
			}
			nodes[i] = node
			markups[i], _ = markup.Serialize(node)
		}(i)
	}

	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	assert.Equal(t, int64(1), s.Stats().Cache.Renders)
	for i := 1; i < callers; i++ {
		assert.Equal(t, markups[0], markups[i])
		assert.NotSame(t, nodes[0], nodes[i])
	}

	_, ok := s.Definition(mustRef(t, "dot-solid"))
	assert.True(t, ok)
}

func TestGetRenderedContentFailedFetchIsRetried(t *testing.T) {
	var calls int64
	f := fetch.FetcherFunc(func(ctx context.Context, locator string) (string, error) {
		if atomic.AddInt64(&calls, 1) == 1 {
			return "", errors.New("temporary failure")
		}
		return remoteSVG, nil
	})
	s := newService(t, WithFetcher(f))
	ctx := context.Background()

	_, err := s.GetRenderedContentByName(ctx, "dot:solid")
	assert.True(t, glypherrors.IsCode(err, glypherrors.ErrCodeIconNotFound))

	node, err := s.GetRenderedContentByName(ctx, "dot:solid")
	require.NoError(t, err)
	assert.Equal(t, "svg", node.Data)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestGetRenderedContentWithoutFetcher(t *testing.T) {
	s := newService(t)

	_, err := s.GetRenderedContentByName(context.Background(), "dot:solid")
	assert.True(t, glypherrors.IsCode(err, glypherrors.ErrCodeIconNotFound))
}

func TestChangeAssetsSource(t *testing.T) {
	var seen atomic.Value
	f := fetch.FetcherFunc(func(ctx context.Context, locator string) (string, error) {
		seen.Store(locator)
		return remoteSVG, nil
	})
	s := newService(t, WithFetcher(f))

	s.ChangeAssetsSource("https://cdn.example.com/icons")
	assert.Equal(t, "https://cdn.example.com/icons/", s.AssetsSource())

	_, err := s.GetRenderedContentByName(context.Background(), "dot:solid")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/icons/assets/solid/dot.svg", seen.Load())

	s.ChangeAssetsSource("")
	assert.Equal(t, "", s.AssetsSource())
}

func TestChangeAssetsSourceUnsafe(t *testing.T) {
	var calls int64
	f := fetch.FetcherFunc(func(ctx context.Context, locator string) (string, error) {
		atomic.AddInt64(&calls, 1)
		return remoteSVG, nil
	})
	s := newService(t, WithFetcher(f))
	s.ChangeAssetsSource("javascript:alert(1)")

	_, err := s.GetRenderedContentByName(context.Background(), "dot:solid")
	assert.True(t, glypherrors.IsCode(err, glypherrors.ErrCodeUnsafeURL))
	assert.Equal(t, int64(0), atomic.LoadInt64(&calls))
}

func TestAddIconLiteral(t *testing.T) {
	s := newService(t)
	content := homeIcon().Icon

	err := s.AddIconLiteral("foo", content)
	assert.True(t, glypherrors.IsCode(err, glypherrors.ErrCodeNameSpaceMissing))

	require.NoError(t, s.AddIconLiteral("foo:bar", content))
	def, ok := s.Definition(mustRef(t, "foo-bar"))
	require.True(t, ok)
	assert.Equal(t, content, def.Icon)
	assert.NotSame(t, content, def.Icon)
}

func TestRegisteredIconIsIsolatedFromCallers(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	def := homeIcon()
	require.NoError(t, s.AddIcon(def))
	def.Icon.Attrs.Set("viewBox", "0 0 99 99")
	def.Icon.Children[0].Tag = "rect"

	got, ok := s.Definition(mustRef(t, "home:outline"))
	require.True(t, ok)
	got.Icon.Tag = "div"
	got.Icon.Attrs.Set("viewBox", "1 1 1 1")

	for _, d := range s.Definitions() {
		d.Icon.Children = nil
	}

	stored, ok := s.Definition(mustRef(t, "home:outline"))
	require.True(t, ok)
	assert.Equal(t, homeIcon(), stored)

	node, err := s.GetRenderedContentByName(ctx, "home-outline")
	require.NoError(t, err)
	assert.Equal(t, "svg", node.Data)
	assert.Equal(t, "0 0 24 24", attr(t, node, "viewBox"))
	require.NotNil(t, node.FirstChild)
	assert.Equal(t, "path", node.FirstChild.Data)
}

func TestAddIconLiteralIsIsolatedFromCaller(t *testing.T) {
	s := newService(t)
	content := homeIcon().Icon

	require.NoError(t, s.AddIconLiteral("home:outline", content))
	content.Attrs.Set("viewBox", "0 0 99 99")

	node, err := s.GetRenderedContentByName(context.Background(), "home:outline")
	require.NoError(t, err)
	assert.Equal(t, "0 0 24 24", attr(t, node, "viewBox"))
}

func TestAddIconValidation(t *testing.T) {
	s := newService(t)

	err := s.AddIcon(&types.IconDefinition{Name: "home", Icon: &types.AbstractNode{Tag: "svg"}})
	require.Error(t, err)
	assert.True(t, glypherrors.IsCode(err, glypherrors.ErrCodeValidationFailed))
	assert.Equal(t, 0, s.Stats().Definitions)

	_, err = New(WithDefinitions(nil))
	assert.Error(t, err)
}

func TestAddIconReplacesCachedArtifact(t *testing.T) {
	s := newService(t, WithDefinitions(homeIcon()))
	ctx := context.Background()

	node, err := s.GetRenderedContentByName(ctx, "home-outline")
	require.NoError(t, err)
	assert.Equal(t, "0 0 24 24", attr(t, node, "viewBox"))

	updated := homeIcon()
	updated.Icon.Attrs = types.A("viewBox", "0 0 48 48")
	require.NoError(t, s.AddIcon(updated))

	node, err = s.GetRenderedContentByName(ctx, "home-outline")
	require.NoError(t, err)
	assert.Equal(t, "0 0 48 48", attr(t, node, "viewBox"))
	assert.Equal(t, int64(2), s.Stats().Cache.Renders)
}

func TestClear(t *testing.T) {
	s := newService(t, WithDefinitions(homeIcon()))
	ctx := context.Background()

	_, err := s.GetRenderedContentByName(ctx, "home-outline")
	require.NoError(t, err)

	s.Clear()
	assert.Equal(t, 0, s.Stats().Definitions)
	assert.Equal(t, 0, s.Stats().Cache.Entries)

	_, err = s.GetRenderedContentByName(ctx, "home-outline")
	assert.True(t, glypherrors.IsCode(err, glypherrors.ErrCodeIconNotFound))

	require.NoError(t, s.AddIcon(homeIcon()))
	_, err = s.GetRenderedContentByName(ctx, "home-outline")
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Stats().Cache.Renders)
}

func TestWatch(t *testing.T) {
	s := newService(t)
	ch := s.Watch()
	defer s.UnWatch(ch)

	require.NoError(t, s.AddIcon(homeIcon()))
	event := <-ch
	assert.Equal(t, types.EventTypeAdded, event.Type)
	assert.Equal(t, "home-outline", event.Key)
}

func TestDefinitionsSorted(t *testing.T) {
	s := newService(t)
	a := homeIcon()
	b := homeIcon()
	b.Name = "arrow"
	require.NoError(t, s.AddIcon(a, b))

	defs := s.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "arrow-outline", defs[0].Key())
	assert.Equal(t, "home-outline", defs[1].Key())
}
