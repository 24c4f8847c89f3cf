package access

import (
	"net/http"

	"log/slog"

	"github.com/widya-sms/widya-sms/internal/shared"
)

// Middleware gates routes on module access for the session principal.
type Middleware struct {
	Evaluator *Evaluator
	Logger    *slog.Logger
	// OnDenied is invoked with the module key for every denied check.
	// Used to feed metrics without coupling this package to them.
	OnDenied func(module string)
}

// RequireView blocks requests from principals that may not see the module.
func (m Middleware) RequireView(moduleKey string) func(http.Handler) http.Handler {
	return m.require(moduleKey, false)
}

// RequireEdit blocks requests from principals that may not change the module.
func (m Middleware) RequireEdit(moduleKey string) func(http.Handler) http.Handler {
	return m.require(moduleKey, true)
}

func (m Middleware) require(moduleKey string, edit bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				// No authenticated principal is 401; 403 is reserved
				// for principals the evaluator denies.
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			var (
				allowed bool
				err     error
			)
			if edit {
				allowed, err = m.Evaluator.CanEdit(r.Context(), principal, moduleKey)
			} else {
				allowed, err = m.Evaluator.CanView(r.Context(), principal, moduleKey)
			}
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("access check", slog.String("module", moduleKey), slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if !allowed {
				if m.OnDenied != nil {
					m.OnDenied(moduleKey)
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
