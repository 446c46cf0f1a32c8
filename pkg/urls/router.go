// Package urls keeps named chi routes so that paths can be rebuilt from a
// route name and its parameters.
package urls

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// ErrNoReverseMatch is returned when a name and arguments do not produce a path.
var ErrNoReverseMatch = errors.New("no reverse match")

// Reverser turns a route name plus arguments into a URL path.
type Reverser interface {
	Reverse(name string, args []any, kwargs map[string]any) (string, error)
}

// Router registers handlers on a chi.Router and remembers named patterns.
type Router struct {
	chi.Router

	mu     sync.RWMutex
	routes map[string]*pattern
}

func NewRouter(r chi.Router) *Router {
	if r == nil {
		r = chi.NewRouter()
	}
	return &Router{Router: r, routes: map[string]*pattern{}}
}

// Named registers handler for method+path on the underlying router and
// makes path reversible under name. An empty method matches all methods.
func (r *Router) Named(name, method, path string, handler http.HandlerFunc) error {
	if err := r.Name(name, path); err != nil {
		return err
	}
	if method == "" {
		r.Router.HandleFunc(path, handler)
	} else {
		r.Router.MethodFunc(method, path, handler)
	}
	return nil
}

// Name makes path reversible without registering a handler.
func (r *Router) Name(name, path string) error {
	p, err := compile(path)
	if err != nil {
		return fmt.Errorf("route %q: %w", name, err)
	}
	r.mu.Lock()
	r.routes[name] = p
	r.mu.Unlock()
	return nil
}

func (r *Router) Reverse(name string, args []any, kwargs map[string]any) (string, error) {
	r.mu.RLock()
	p, ok := r.routes[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("reverse for %q: %w: not a registered route name", name, ErrNoReverseMatch)
	}
	if len(args) > 0 && len(kwargs) > 0 {
		return "", fmt.Errorf("reverse for %q: don't mix positional and keyword arguments", name)
	}
	path, err := p.build(args, kwargs)
	if err != nil {
		return "", fmt.Errorf("reverse for %q: %w: %s", name, ErrNoReverseMatch, err)
	}
	return path, nil
}

type param struct {
	name string
	re   *regexp.Regexp // nil when unconstrained
}

// pattern is a chi route pattern split into literal text and {params}.
type pattern struct {
	literals []string // len(literals) == len(params)+1
	params   []param
}

func compile(path string) (*pattern, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("pattern %q must begin with '/'", path)
	}
	p := &pattern{}
	rest := path
	for {
		i := strings.IndexByte(rest, '{')
		if i < 0 {
			p.literals = append(p.literals, rest)
			break
		}
		// chi allows braces inside a regexp, so match them up.
		depth, end := 0, -1
		for j := i; j < len(rest); j++ {
			switch rest[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				end = j
				break
			}
		}
		if end < 0 {
			return nil, fmt.Errorf("pattern %q: unclosed '{'", path)
		}
		p.literals = append(p.literals, rest[:i])
		body := rest[i+1 : end]
		prm := param{name: body}
		if k := strings.IndexByte(body, ':'); k >= 0 {
			prm.name = body[:k]
			re, err := regexp.Compile("^(?:" + body[k+1:] + ")$")
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", path, err)
			}
			prm.re = re
		}
		if prm.name == "" {
			return nil, fmt.Errorf("pattern %q: empty parameter name", path)
		}
		p.params = append(p.params, prm)
		rest = rest[end+1:]
	}
	// Trailing "/*" is a chi catch-all; it reverses to the prefix.
	last := len(p.literals) - 1
	p.literals[last] = strings.TrimSuffix(p.literals[last], "*")
	return p, nil
}

// segment formats a reverse argument. nil stands for an undefined template
// variable and yields an empty segment, which build rejects.
func segment(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (p *pattern) build(args []any, kwargs map[string]any) (string, error) {
	values := make([]string, len(p.params))
	switch {
	case len(kwargs) > 0:
		if len(kwargs) != len(p.params) {
			return "", fmt.Errorf("expected %d keyword arguments, got %d", len(p.params), len(kwargs))
		}
		for i, prm := range p.params {
			v, ok := kwargs[prm.name]
			if !ok {
				return "", fmt.Errorf("missing keyword argument %q", prm.name)
			}
			values[i] = segment(v)
		}
	default:
		if len(args) != len(p.params) {
			return "", fmt.Errorf("expected %d arguments, got %d", len(p.params), len(args))
		}
		for i := range p.params {
			values[i] = segment(args[i])
		}
	}

	var b strings.Builder
	b.WriteString(p.literals[0])
	for i, prm := range p.params {
		if prm.re != nil && !prm.re.MatchString(values[i]) {
			return "", fmt.Errorf("argument %q=%q does not match %s", prm.name, values[i], prm.re)
		}
		if values[i] == "" {
			return "", fmt.Errorf("argument %q is empty", prm.name)
		}
		b.WriteString(url.PathEscape(values[i]))
		b.WriteString(p.literals[i+1])
	}
	return b.String(), nil
}
