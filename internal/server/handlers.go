package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	glypherrors "github.com/conneroisu/glyph/internal/errors"
	"github.com/conneroisu/glyph/internal/loader"
	"github.com/conneroisu/glyph/internal/markup"
	"github.com/conneroisu/glyph/internal/version"
)

const svgNamespace = "http://www.w3.org/2000/svg"

// IconInfo describes a registered icon in API responses.
type IconInfo struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
	URL        string `json:"url"`
}

func (s *IconServer) handleIcon(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	identifier, ok := strings.CutSuffix(file, ".svg")
	if !ok || identifier == "" {
		http.NotFound(w, r)
		return
	}

	node, err := s.service.GetRenderedContentByName(r.Context(), identifier)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Standalone SVG documents need the namespace declaration.
	if _, ok := markup.GetAttr(node, "xmlns"); !ok {
		markup.SetAttr(node, "xmlns", svgNamespace)
	}

	body, err := markup.Serialize(node)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(body))
}

func (s *IconServer) handleIcons(w http.ResponseWriter, r *http.Request) {
	defs := s.service.Definitions()
	infos := make([]IconInfo, 0, len(defs))
	typeFilter := r.URL.Query().Get("type")
	for _, def := range defs {
		if typeFilter != "" && def.Type != typeFilter {
			continue
		}
		infos = append(infos, IconInfo{
			Key:        def.Key(),
			Name:       def.Name,
			Type:       def.Type,
			Identifier: loader.Identifier(def),
			URL:        iconURL(def.Key()),
		})
	}
	s.writeJSON(w, r, http.StatusOK, infos)
}

func (s *IconServer) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"icons":   s.service.Stats(),
		"clients": s.hub.Count(),
	})
}

// handleHealth returns the server health status for health checks
func (s *IconServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.service.Stats()
	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   version.GetShortVersion(),
		"checks": map[string]interface{}{
			"registry": map[string]interface{}{"status": "healthy", "icons": stats.Definitions},
			"cache":    map[string]interface{}{"status": "healthy", "entries": stats.Cache.Entries},
		},
	})
}

func (s *IconServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := galleryPage(s.service.Definitions(), version.GetShortVersion())
	templ.Handler(page, templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
		s.logger.Error(r.Context(), err, "Failed to render gallery")
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "failed to render gallery", http.StatusInternalServerError)
		})
	})).ServeHTTP(w, r)
}

// errorResponse is the JSON body of failed requests.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *IconServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := glypherrors.HTTPStatus(err)
	s.errors.Handle(r.Context(), err)

	resp := errorResponse{Error: err.Error()}
	if ctx := glypherrors.GetErrorContext(err); ctx["code"] != nil {
		resp.Code, _ = ctx["code"].(string)
	}
	s.writeJSON(w, r, status, resp)
}

func (s *IconServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(r.Context(), err, "Failed to encode response")
	}
}
