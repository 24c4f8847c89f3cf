package assignment

import (
	"github.com/go-chi/chi/v5"

	"github.com/widya-sms/widya-sms/internal/access"
	"github.com/widya-sms/widya-sms/internal/shared"
)

// MountRoutes attaches assignment endpoints under the classes module.
func (h *Handler) MountRoutes(r chi.Router, guard access.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireView(shared.ModuleClasses))
		r.Get("/assignments", h.List)
		r.Get("/assignments/available", h.AvailableTeachers)
		r.Get("/assignments/slot", h.SlotHolder)
		r.Get("/qualifications", h.QualifiedTeachers)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireEdit(shared.ModuleClasses))
		r.Post("/assignments", h.Create)
		r.Delete("/assignments/{id}", h.Delete)
		r.Post("/qualifications", h.GrantQualification)
		r.Delete("/qualifications/{teacher}/{subject}", h.RevokeQualification)
	})
}
