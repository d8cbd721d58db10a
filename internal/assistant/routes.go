package assistant

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the pipeline and account endpoints. guard wraps the
// routes keyed by a caller-supplied user id; authLimit wraps the credential
// endpoints. Either may be nil.
func RegisterRoutes(r chi.Router, h *Handler, guard, authLimit func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if guard != nil {
			r.Use(guard)
		}
		r.Post("/process", h.HandleProcess)
		r.Post("/users/{userID}/refresh", h.HandleRefresh)
		r.Delete("/users/{userID}/cache", h.HandleInvalidate)
	})

	r.Group(func(r chi.Router) {
		if authLimit != nil {
			r.Use(authLimit)
		}
		r.Post("/auth/login", h.HandleLogin)
		r.Post("/auth/register", h.HandleRegister)
	})
}
