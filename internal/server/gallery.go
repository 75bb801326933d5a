package server

import (
	"context"
	"fmt"
	"html"
	"io"
	"sort"

	"github.com/a-h/templ"

	"github.com/conneroisu/glyph/internal/loader"
	"github.com/conneroisu/glyph/internal/types"
)

const galleryStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#222}
h2{margin-top:2rem;text-transform:capitalize}
.grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(8rem,1fr));gap:1rem}
.icon{display:flex;flex-direction:column;align-items:center;padding:1rem;border:1px solid #ddd;border-radius:6px}
.icon img{width:2rem;height:2rem}
.icon code{margin-top:.5rem;font-size:.75rem;word-break:break-all}`

// liveReload refreshes the gallery when the registry changes.
const liveReload = `(function(){var p=location.protocol==="https:"?"wss://":"ws://";
var ws=new WebSocket(p+location.host+"/ws");ws.onmessage=function(){location.reload()};})();`

// galleryPage lists every definition grouped by type.
func galleryPage(defs []*types.IconDefinition, ver string) templ.Component {
	byType := make(map[string][]*types.IconDefinition)
	for _, def := range defs {
		byType[def.Type] = append(byType[def.Type], def)
	}
	iconTypes := make([]string, 0, len(byType))
	for t := range byType {
		iconTypes = append(iconTypes, t)
	}
	sort.Strings(iconTypes)

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>glyph</title><style>%s</style></head><body>", galleryStyle); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<h1>glyph <small>%s</small></h1><p>%d icons</p>", html.EscapeString(ver), len(defs)); err != nil {
			return err
		}

		for _, t := range iconTypes {
			if _, err := fmt.Fprintf(w, "<h2>%s</h2><div class=\"grid\">", html.EscapeString(t)); err != nil {
				return err
			}
			for _, def := range byType[t] {
				if err := iconCard(def).Render(ctx, w); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</div>"); err != nil {
				return err
			}
		}

		_, err := fmt.Fprintf(w, "<script>%s</script></body></html>", liveReload)
		return err
	})
}

func iconCard(def *types.IconDefinition) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		key := html.EscapeString(def.Key())
		_, err := fmt.Fprintf(w,
			"<div class=\"icon\" title=\"%s\"><img src=\"%s\" alt=\"%s\"><code>%s</code></div>",
			html.EscapeString(loader.Identifier(def)),
			html.EscapeString(iconURL(def.Key())),
			key, key,
		)
		return err
	})
}
