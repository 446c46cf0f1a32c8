package tags

import (
	"fmt"

	"github.com/flosch/pongo2/v6"

	"absolute/pkg/absolute"
)

// directive is the parsed argument list shared by url, absolute and site:
//
//	{% <tag> view [site expr] {arg | name=expr} [as ident] %}
//
// The site clause is only accepted by the site tag and only directly after
// the view.
type directive struct {
	tag    string
	token  *pongo2.Token
	view   pongo2.IEvaluator
	site   pongo2.IEvaluator
	args   []pongo2.IEvaluator
	kwargs []kwarg
	asVar  string
}

type kwarg struct {
	name string
	val  pongo2.IEvaluator
}

func parseDirective(tag string, start *pongo2.Token, arguments *pongo2.Parser, allowSite bool) (*directive, *pongo2.Error) {
	if arguments.Remaining() == 0 {
		return nil, arguments.Error(fmt.Sprintf("'%s' takes at least one argument, a route name.", tag), nil)
	}
	d := &directive{tag: tag, token: start}
	view, err := arguments.ParseExpression()
	if err != nil {
		return nil, err
	}
	d.view = view

	if allowSite && arguments.Peek(pongo2.TokenIdentifier, "site") != nil && arguments.PeekN(1, pongo2.TokenSymbol, "=") == nil {
		arguments.Consume()
		if arguments.Remaining() == 0 {
			return nil, arguments.Error("Expected an expression after 'site'.", nil)
		}
		if d.site, err = arguments.ParseExpression(); err != nil {
			return nil, err
		}
	}

	for arguments.Remaining() > 0 {
		// "as name" is only meaningful as the final two tokens.
		if arguments.Remaining() == 2 && arguments.Match(pongo2.TokenKeyword, "as") != nil {
			name := arguments.MatchType(pongo2.TokenIdentifier)
			if name == nil {
				return nil, arguments.Error("Expected a variable name after 'as'.", nil)
			}
			d.asVar = name.Val
			break
		}
		if arguments.PeekType(pongo2.TokenIdentifier) != nil && arguments.PeekN(1, pongo2.TokenSymbol, "=") != nil {
			name := arguments.MatchType(pongo2.TokenIdentifier)
			arguments.Consume()
			val, err := arguments.ParseExpression()
			if err != nil {
				return nil, err
			}
			d.kwargs = append(d.kwargs, kwarg{name: name.Val, val: val})
			continue
		}
		val, err := arguments.ParseExpression()
		if err != nil {
			return nil, err
		}
		d.args = append(d.args, val)
	}
	return d, nil
}

// value turns an evaluated argument into a reverse argument. Undefined
// variables become "", which no route accepts as a path segment.
func value(v *pongo2.Value) any {
	if v == nil || v.IsNil() {
		return ""
	}
	return v.Interface()
}

// path reverses the route with arguments evaluated against ctx.
func (d *directive) path(ctx *pongo2.ExecutionContext, l *Library) (string, error) {
	v, perr := d.view.Evaluate(ctx)
	if perr != nil {
		return "", perr
	}
	name := ""
	if !v.IsNil() {
		name = v.String()
	}
	var args []any
	for _, a := range d.args {
		val, perr := a.Evaluate(ctx)
		if perr != nil {
			return "", perr
		}
		args = append(args, value(val))
	}
	var kwargs map[string]any
	if len(d.kwargs) > 0 {
		kwargs = make(map[string]any, len(d.kwargs))
		for _, kw := range d.kwargs {
			val, perr := kw.val.Evaluate(ctx)
			if perr != nil {
				return "", perr
			}
			kwargs[kw.name] = value(val)
		}
	}
	return l.Reverser.Reverse(name, args, kwargs)
}

// execute reverses the route, lets build turn the path into the final URL
// and then binds or writes it.
func (d *directive) execute(ctx *pongo2.ExecutionContext, w pongo2.TemplateWriter, build func(*Library, string) (string, error)) *pongo2.Error {
	l, err := libraryFrom(ctx)
	if err != nil {
		return tagError(d.tag, d.token, err)
	}
	out, err := d.path(ctx, l)
	if err == nil {
		out, err = build(l, out)
	}
	if err != nil {
		renders.WithLabelValues(d.tag, "error").Inc()
		return tagError(d.tag, d.token, err)
	}
	renders.WithLabelValues(d.tag, "ok").Inc()

	if d.asVar != "" {
		ctx.Public[d.asVar] = out
		return nil
	}
	if ctx.Autoescape {
		escaped, perr := pongo2.ApplyFilter("escape", pongo2.AsValue(out), nil)
		if perr != nil {
			return perr
		}
		out = escaped.String()
	}
	if _, err := w.WriteString(out); err != nil {
		return tagError(d.tag, d.token, err)
	}
	return nil
}

// URLNode renders the route path.
type URLNode struct {
	d *directive
}

func (n *URLNode) Execute(ctx *pongo2.ExecutionContext, w pongo2.TemplateWriter) *pongo2.Error {
	return n.d.execute(ctx, w, func(_ *Library, path string) (string, error) {
		return path, nil
	})
}

// AbsoluteNode prefixes the path with the request's scheme and host.
type AbsoluteNode struct {
	d *directive
}

func (n *AbsoluteNode) Execute(ctx *pongo2.ExecutionContext, w pongo2.TemplateWriter) *pongo2.Error {
	return n.d.execute(ctx, w, func(_ *Library, path string) (string, error) {
		req := requestFrom(ctx)
		if req == nil {
			return "", ErrNoRequest
		}
		return absolute.AbsoluteURL(req, path), nil
	})
}

// SiteNode prefixes the path with a site's domain: the one named by the
// site clause, or else the current site.
type SiteNode struct {
	d *directive
}

func (n *SiteNode) Execute(ctx *pongo2.ExecutionContext, w pongo2.TemplateWriter) *pongo2.Error {
	return n.d.execute(ctx, w, func(l *Library, path string) (string, error) {
		req := requestFrom(ctx)

		var site any
		if n.d.site != nil {
			v, perr := n.d.site.Evaluate(ctx)
			if perr != nil {
				return "", perr
			}
			site = v.Interface()
		} else {
			host := ""
			if req != nil {
				host = req.Host()
			}
			s, err := l.Sites.Current(stdContext(ctx), host)
			if err != nil {
				return "", err
			}
			site = s
		}
		domain, err := absolute.SiteDomain(site)
		if err != nil {
			return "", err
		}
		return absolute.SiteURL(absolute.SiteProtocol(l.Settings, req), domain, path), nil
	})
}

func parseURL(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	d, err := parseDirective("url", start, arguments, false)
	if err != nil {
		return nil, err
	}
	return &URLNode{d: d}, nil
}

func parseAbsolute(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	d, err := parseDirective("absolute", start, arguments, false)
	if err != nil {
		return nil, err
	}
	return &AbsoluteNode{d: d}, nil
}

func parseSite(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	d, err := parseDirective("site", start, arguments, true)
	if err != nil {
		return nil, err
	}
	return &SiteNode{d: d}, nil
}
