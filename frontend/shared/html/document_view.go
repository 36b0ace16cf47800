package html

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Document writes the fixed page skeleton. title appears in <title> and <h1>,
// body inside the <div>. Values are written as given; callers that want
// escaping pass them through Escape first.
func Document(title, body string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		parts := []string{
			"<html>\n<head>\n<title>", title, "</title>\n</head>\n<body>\n<h1>\n    ",
			title, "\n</h1>\n<div>", body, "</div>\n</body>\n</html>",
		}
		for _, p := range parts {
			if _, err := io.WriteString(w, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// Escape HTML-escapes s.
func Escape(s string) string {
	return templ.EscapeString(s)
}
