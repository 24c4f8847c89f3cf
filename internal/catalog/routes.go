package catalog

import (
	"github.com/go-chi/chi/v5"

	"github.com/widya-sms/widya-sms/internal/access"
	"github.com/widya-sms/widya-sms/internal/shared"
)

// MountRoutes attaches lookup endpoints, gated on the classes module since
// they exist to populate assignment pickers.
func (h *Handler) MountRoutes(r chi.Router, guard access.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireView(shared.ModuleClasses))
		r.Get("/catalog/subjects", h.Subjects)
		r.Get("/catalog/grade-levels", h.GradeLevels)
		r.Get("/catalog/academic-years", h.AcademicYears)
		r.Get("/catalog/teachers", h.Teachers)
	})
}
