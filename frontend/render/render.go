// Package render turns a content resource carried on a Context into an HTML
// response fragment.
package render

import (
	"context"
	"log/slog"
	"strings"

	reqcontext "microsling/frontend/shared/context"
	"microsling/frontend/shared/html"
)

// Diagnostics receives the resolved resource before it is rendered.
type Diagnostics interface {
	ResourceResolved(ctx context.Context, resource Resource)
}

// DiagnosticsFunc adapts a function to Diagnostics.
type DiagnosticsFunc func(ctx context.Context, resource Resource)

func (f DiagnosticsFunc) ResourceResolved(ctx context.Context, resource Resource) {
	f(ctx, resource)
}

// SlogDiagnostics logs the resource through the request logger.
type SlogDiagnostics struct{}

func (SlogDiagnostics) ResourceResolved(ctx context.Context, resource Resource) {
	reqcontext.LoggerFromContext(ctx).Info("resource resolved",
		slog.String("title", resource.Title),
		slog.String("body", resource.Body),
	)
}

// Renderer holds no per-call state and is safe for concurrent use on distinct
// contexts.
type Renderer struct {
	// Diagnostics may be nil.
	Diagnostics Diagnostics
	// EscapeHTML escapes title and body. Off by default: values are embedded
	// verbatim and must come from trusted content.
	EscapeHTML bool
}

var defaultRenderer = &Renderer{Diagnostics: SlogDiagnostics{}}

// Render uses the default renderer.
func Render(ctx context.Context, c *Context) (*Context, error) {
	return defaultRenderer.Render(ctx, c)
}

// Render writes the HTML document for c's resource to c.Response and returns
// c. A malformed context is returned untouched together with an error
// matching ErrMalformedInput.
func (r *Renderer) Render(ctx context.Context, c *Context) (*Context, error) {
	resource, err := ResolveResource(c)
	if err != nil {
		return c, err
	}

	if r.Diagnostics != nil {
		r.Diagnostics.ResourceResolved(ctx, resource)
	}

	markup, err := r.Markup(ctx, resource)
	if err != nil {
		return c, err
	}

	c.Response = &Response{
		Body: markup,
		Headers: map[string]string{
			"Content-Type": ContentTypeHTML,
		},
	}
	return c, nil
}

// Markup renders resource without touching any context.
func (r *Renderer) Markup(ctx context.Context, resource Resource) (string, error) {
	title, body := resource.Title, resource.Body
	if r.EscapeHTML {
		title, body = html.Escape(title), html.Escape(body)
	}
	var sb strings.Builder
	if err := html.Document(title, body).Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ResolveResource walks content.resource.content.
func ResolveResource(c *Context) (Resource, error) {
	switch {
	case c == nil:
		return Resource{}, &MalformedInputError{Path: "context"}
	case c.Content == nil:
		return Resource{}, &MalformedInputError{Path: "content"}
	case c.Content.Resource == nil:
		return Resource{}, &MalformedInputError{Path: "content.resource"}
	case c.Content.Resource.Content == nil:
		return Resource{}, &MalformedInputError{Path: "content.resource.content"}
	}
	return *c.Content.Resource.Content, nil
}
