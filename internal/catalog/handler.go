package catalog

import (
	"net/http"
	"strconv"

	"log/slog"

	"github.com/widya-sms/widya-sms/internal/platform/httpx"
	"github.com/widya-sms/widya-sms/internal/shared"
)

// Handler serves the lookup lists the assignment screens need.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

func (h *Handler) Subjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.repo.ListSubjects(r.Context())
	if err != nil {
		h.logger.Error("list subjects", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if subjects == nil {
		subjects = []Subject{}
	}
	httpx.JSON(w, http.StatusOK, subjects)
}

func (h *Handler) GradeLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.repo.ListGradeLevels(r.Context())
	if err != nil {
		h.logger.Error("list grade levels", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if levels == nil {
		levels = []GradeLevel{}
	}
	httpx.JSON(w, http.StatusOK, levels)
}

func (h *Handler) AcademicYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.repo.ListAcademicYears(r.Context())
	if err != nil {
		h.logger.Error("list academic years", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if years == nil {
		years = []AcademicYear{}
	}
	httpx.JSON(w, http.StatusOK, years)
}

func (h *Handler) Teachers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	teachers, total, err := h.repo.ListTeachers(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		h.logger.Error("list teachers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if teachers == nil {
		teachers = []Teacher{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"teachers":   teachers,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}
