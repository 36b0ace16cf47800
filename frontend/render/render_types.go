package render

import (
	"errors"
	"fmt"
)

// ContentTypeHTML is the only header the renderer sets.
const ContentTypeHTML = "text/html"

// Context is the caller-owned carrier passed into and returned from Render.
type Context struct {
	Content  *ContentEnvelope `json:"content,omitempty"`
	Response *Response        `json:"response,omitempty"`
}

type ContentEnvelope struct {
	Resource *ResourceEnvelope `json:"resource,omitempty"`
}

type ResourceEnvelope struct {
	Content *Resource `json:"content,omitempty"`
}

// Resource is the record being rendered.
type Resource struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Response is the fragment Render replaces on every call.
type Response struct {
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// NewContext builds a context carrying title and body.
func NewContext(title, body string) *Context {
	return &Context{
		Content: &ContentEnvelope{
			Resource: &ResourceEnvelope{
				Content: &Resource{Title: title, Body: body},
			},
		},
	}
}

// ErrMalformedInput is matched by every input validation failure.
var ErrMalformedInput = errors.New("malformed input")

// MalformedInputError names the first missing segment of the resource path.
type MalformedInputError struct {
	Path string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("%s: %s is missing", ErrMalformedInput, e.Path)
}

func (e *MalformedInputError) Unwrap() error {
	return ErrMalformedInput
}
