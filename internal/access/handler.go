package access

import (
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/widya-sms/widya-sms/internal/platform/httpx"
	"github.com/widya-sms/widya-sms/internal/shared"
)

// Handler exposes permission administration and evaluation over HTTP.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	evaluator *Evaluator
	validate  *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, evaluator *Evaluator) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		evaluator: evaluator,
		validate:  validator.New(),
	}
}

// RolePermissions returns the configured rules for a role.
func (h *Handler) RolePermissions(w http.ResponseWriter, r *http.Request) {
	role := NormalizeRole(chi.URLParam(r, "role"))
	if role == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "role is required")
		return
	}
	rules, err := h.service.RolePermissions(r.Context(), role)
	if err != nil {
		h.logger.Error("list role permissions", slog.String("role", role), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if rules == nil {
		rules = []RoleRule{}
	}
	httpx.JSON(w, http.StatusOK, rolePermissionsResponse{Role: role, Rules: rules})
}

// SetRolePermission upserts one (role, module) rule.
func (h *Handler) SetRolePermission(w http.ResponseWriter, r *http.Request) {
	role := NormalizeRole(chi.URLParam(r, "role"))
	moduleKey := NormalizeModuleKey(chi.URLParam(r, "module"))
	if role == "" || moduleKey == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "role and module are required")
		return
	}

	var req setRolePermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	principal, _ := shared.PrincipalFromContext(r.Context())
	if err := h.service.SetRolePermission(r.Context(), role, moduleKey, *req.Enabled, principal.UserID); err != nil {
		h.logger.Error("set role permission", slog.String("role", role), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UserOverrides returns a user's full override set.
func (h *Handler) UserOverrides(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	overrides, err := h.service.UserOverrides(r.Context(), userID)
	if err != nil {
		h.logger.Error("list user overrides", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if overrides == nil {
		overrides = []UserOverride{}
	}
	httpx.JSON(w, http.StatusOK, userOverridesResponse{UserID: userID, Overrides: overrides})
}

// ReplaceUserOverrides replaces a user's whole override set. An empty
// list clears every override.
func (h *Handler) ReplaceUserOverrides(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}

	var req replaceOverridesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	overrides := make([]UserOverride, 0, len(req.Overrides))
	for _, entry := range req.Overrides {
		overrides = append(overrides, UserOverride{
			UserID:    userID,
			ModuleKey: entry.ModuleKey,
			CanView:   entry.CanView,
			CanEdit:   entry.CanEdit,
		})
	}

	principal, _ := shared.PrincipalFromContext(r.Context())
	if err := h.service.ReplaceUserOverrides(r.Context(), userID, overrides, principal.UserID); err != nil {
		h.logger.Error("replace user overrides", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Evaluate answers a view/edit check for the current principal. Used by
// the UI shell to decide which navigation entries to draw.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no authenticated principal")
		return
	}
	moduleKey := NormalizeModuleKey(r.URL.Query().Get("module"))
	if moduleKey == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "module is required")
		return
	}

	canView, err := h.evaluator.CanView(r.Context(), principal, moduleKey)
	if err != nil {
		h.logger.Error("evaluate view", slog.String("module", moduleKey), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	canEdit, err := h.evaluator.CanEdit(r.Context(), principal, moduleKey)
	if err != nil {
		h.logger.Error("evaluate edit", slog.String("module", moduleKey), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, evaluateResponse{ModuleKey: moduleKey, CanView: canView, CanEdit: canEdit})
}
