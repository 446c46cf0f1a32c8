// Package tags registers the url, absolute and site template tags with
// pongo2.
//
// A tag takes a route name followed by positional or keyword arguments and
// an optional "as name" clause:
//
//	{% absolute "article" 2024 "hello" %}
//	{% site "article" year=2024 slug="hello" as link %}{{ link }}
//	{% site "home" site other_site %}
package tags

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/prometheus/client_golang/prometheus"

	"absolute/pkg/absolute"
	"absolute/pkg/sites"
	"absolute/pkg/urls"
)

var renders = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "absolute",
	Name:      "directive_renders_total",
	Help:      "Directive renders by directive and outcome.",
}, []string{"directive", "outcome"})

func init() {
	prometheus.MustRegister(renders)
	for name, fn := range map[string]pongo2.TagParser{
		"url":      parseURL,
		"absolute": parseAbsolute,
		"site":     parseSite,
	} {
		if err := pongo2.RegisterTag(name, fn); err != nil {
			panic(err)
		}
	}
}

// Library owns a pongo2 template set whose templates resolve their tags
// against one route table and site registry.
type Library struct {
	Reverser urls.Reverser
	Settings absolute.Settings
	Sites    absolute.SiteLookup

	set   *pongo2.TemplateSet
	cache sync.Map // src -> *pongo2.Template
}

// NewLibrary returns a Library. A nil lookup treats the request host as the
// current site. Without loaders, template files are read relative to the
// working directory.
func NewLibrary(rev urls.Reverser, settings absolute.Settings, lookup absolute.SiteLookup, loaders ...pongo2.TemplateLoader) *Library {
	if lookup == nil {
		lookup = sites.NewRegistry(nil, "", false)
	}
	if len(loaders) == 0 {
		loaders = []pongo2.TemplateLoader{NewFSLoader(os.DirFS("."))}
	}
	l := &Library{Reverser: rev, Settings: settings, Sites: lookup}
	l.set = pongo2.NewSet("absolute", loaders...)
	if l.set.Globals == nil {
		l.set.Globals = pongo2.Context{}
	}
	l.set.Globals[libraryKey] = l
	return l
}

// Compile parses a template from source. Templates are cached per source.
func (l *Library) Compile(src string) (*pongo2.Template, error) {
	if cached, ok := l.cache.Load(src); ok {
		return cached.(*pongo2.Template), nil
	}
	tpl, err := l.set.FromString(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	l.cache.Store(src, tpl)
	return tpl, nil
}

// FromFile loads a template through the library's loaders.
func (l *Library) FromFile(name string) (*pongo2.Template, error) {
	tpl, err := l.set.FromCache(name)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	return tpl, nil
}

// Execute renders tpl against c.
func (l *Library) Execute(tpl *pongo2.Template, c Context) (string, error) {
	out, err := tpl.Execute(pongo2.Context(c))
	if err != nil {
		return "", cause(err)
	}
	return out, nil
}

// ExecuteWriter renders tpl into w. Nothing is written when rendering fails.
func (l *Library) ExecuteWriter(tpl *pongo2.Template, c Context, w io.Writer) error {
	if err := tpl.ExecuteWriter(pongo2.Context(c), w); err != nil {
		return cause(err)
	}
	return nil
}

// Render compiles src and renders it against c.
func (l *Library) Render(src string, c Context) (string, error) {
	tpl, err := l.Compile(src)
	if err != nil {
		return "", err
	}
	return l.Execute(tpl, c)
}
