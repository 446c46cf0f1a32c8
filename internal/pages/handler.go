package pages

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/flosch/pongo2/v6"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"absolute/pkg/absolute"
	"absolute/pkg/middleware"
	"absolute/pkg/problems"
	"absolute/pkg/tags"
	"absolute/pkg/urls"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Deps are what the page handlers need from the application.
type Deps struct {
	Log        *zap.SugaredLogger
	Tags       *tags.Library
	Sites      absolute.SiteLookup
	Settings   absolute.Settings
	TrustProxy bool
}

type handler struct {
	Deps
}

// Loader serves the page templates from dir, or the embedded ones when dir
// is empty. Pass it to tags.NewLibrary.
func Loader(dir string) (pongo2.TemplateLoader, error) {
	if dir != "" {
		return tags.NewFSLoader(os.DirFS(dir)), nil
	}
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	return tags.NewFSLoader(sub), nil
}

var pageTemplates = []string{"index.html", "test.html", "article.html"}

// RegisterRoutes adds the named page routes to r. The page templates must
// be reachable through the loaders of d.Tags.
func RegisterRoutes(r *urls.Router, d Deps) error {
	for _, name := range pageTemplates {
		if _, err := d.Tags.FromFile(name); err != nil {
			return fmt.Errorf("load templates: %w", err)
		}
	}
	h := &handler{Deps: d}
	routes := []struct {
		name, path string
		fn         http.HandlerFunc
	}{
		{"home", "/", h.page("index.html", nil)},
		{"test_url", "/test", h.page("test.html", nil)},
		{"article", "/articles/{year:[0-9]+}/{slug}", h.page("article.html", []string{"year", "slug"})},
		{"roots", "/roots", h.roots},
	}
	for _, rt := range routes {
		if err := r.Named(rt.name, http.MethodGet, rt.path, rt.fn); err != nil {
			return err
		}
	}
	return nil
}

// templateContext builds the rendering context: the request, the root URL
// variables and the current site.
func (h *handler) templateContext(r *http.Request) (tags.Context, error) {
	req := absolute.FromHTTP(r, h.TrustProxy)
	vars, err := absolute.ContextVars(r.Context(), req, h.Settings, h.Sites)
	if err != nil {
		return nil, err
	}
	c := tags.NewContext(req, nil).Update(vars)
	if s, ok := middleware.SiteFrom(r.Context()); ok {
		c["current_site"] = s
	}
	return c, nil
}

func (h *handler) page(name string, params []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := h.templateContext(r)
		if err != nil {
			h.Log.Errorw("template context", "page", name, "err", err)
			problems.Write(w, r, http.StatusInternalServerError, "site-lookup-failed", "")
			return
		}
		for _, p := range params {
			c[p] = chi.URLParam(r, p)
		}
		tpl, err := h.Tags.FromFile(name)
		if err != nil {
			h.Log.Errorw("load template", "page", name, "err", err)
			problems.Write(w, r, http.StatusInternalServerError, "render-failed", "")
			return
		}
		var buf bytes.Buffer
		if err := h.Tags.ExecuteWriter(tpl, c, &buf); err != nil {
			h.Log.Errorw("render", "page", name, "request_id", middleware.RequestIDFrom(r.Context()), "err", err)
			problems.Write(w, r, http.StatusInternalServerError, "render-failed", "")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	}
}

func (h *handler) roots(w http.ResponseWriter, r *http.Request) {
	vars, err := absolute.ContextVars(r.Context(), absolute.FromHTTP(r, h.TrustProxy), h.Settings, h.Sites)
	if err != nil {
		h.Log.Errorw("roots", "err", err)
		problems.Write(w, r, http.StatusInternalServerError, "site-lookup-failed", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(vars)
}
