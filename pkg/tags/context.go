package tags

import (
	"context"

	"github.com/flosch/pongo2/v6"

	"absolute/pkg/absolute"
)

// RequestKey is where the current request lives in a Context.
const RequestKey = "request"

// libraryKey carries the owning Library into every template of its set.
const libraryKey = "absolute_library"

// Context is the rendering context of a template. Directives with an
// "as name" clause store their result in the execution's copy of it.
type Context map[string]any

// NewContext returns a context holding req (may be nil) and a copy of vars.
func NewContext(req absolute.Request, vars map[string]any) Context {
	c := make(Context, len(vars)+1)
	for k, v := range vars {
		c[k] = v
	}
	if req != nil {
		c[RequestKey] = req
	}
	return c
}

// Update copies root URLs (see absolute.ContextVars) into the context.
func (c Context) Update(vars map[string]string) Context {
	for k, v := range vars {
		c[k] = v
	}
	return c
}

// Request returns the current request or nil outside a request cycle.
func (c Context) Request() absolute.Request {
	req, _ := c[RequestKey].(absolute.Request)
	return req
}

func requestFrom(ctx *pongo2.ExecutionContext) absolute.Request {
	req, _ := ctx.Public[RequestKey].(absolute.Request)
	return req
}

func stdContext(ctx *pongo2.ExecutionContext) context.Context {
	if rc, ok := ctx.Public[RequestKey].(interface{ Context() context.Context }); ok {
		return rc.Context()
	}
	return context.Background()
}

func libraryFrom(ctx *pongo2.ExecutionContext) (*Library, error) {
	if l, ok := ctx.Public[libraryKey].(*Library); ok {
		return l, nil
	}
	return nil, ErrNoLibrary
}
