package http

import (
	"microsling/frontend/render"

	"github.com/go-chi/chi/v5"
)

// RegisterRenderRoutes registers the action endpoints. The render log is only
// served when auditing is enabled.
func (s *Server) RegisterRenderRoutes(r chi.Router) chi.Router {
	r.Post("/render", render.RenderCommandHandler(s.Renderer, s.DB, s.Audit))
	r.Post("/invoke", render.InvokeCommandHandler(s.Renderer, s.DB, s.Audit))

	if s.DB != nil {
		r.Get("/renders", render.RenderLogQueryHandler(s.DB))
	}
	return r
}
