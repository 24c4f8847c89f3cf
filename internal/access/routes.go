package access

import (
	"github.com/go-chi/chi/v5"

	"github.com/widya-sms/widya-sms/internal/shared"
)

// MountRoutes attaches access endpoints. Administration lives under the
// settings module; evaluation is open to any authenticated principal.
func (h *Handler) MountRoutes(r chi.Router, guard Middleware) {
	r.Get("/access/evaluate", h.Evaluate)

	r.Group(func(r chi.Router) {
		r.Use(guard.RequireView(shared.ModuleSettings))
		r.Get("/access/roles/{role}/permissions", h.RolePermissions)
		r.Get("/access/users/{id}/overrides", h.UserOverrides)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireEdit(shared.ModuleSettings))
		r.Put("/access/roles/{role}/permissions/{module}", h.SetRolePermission)
		r.Put("/access/users/{id}/overrides", h.ReplaceUserOverrides)
	})
}
