package assignment

import (
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/widya-sms/widya-sms/internal/platform/httpx"
	"github.com/widya-sms/widya-sms/internal/shared"
)

// Handler exposes assignment and qualification operations over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// AvailableTeachers lists qualified teachers not holding the given slot.
func (h *Handler) AvailableTeachers(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.slotFromQuery(w, r)
	if !ok {
		return
	}
	teachers, err := h.service.AvailableTeachers(r.Context(), slot)
	if err != nil {
		h.logger.Error("available teachers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if teachers == nil {
		teachers = []int64{}
	}
	httpx.JSON(w, http.StatusOK, availableTeachersResponse{Slot: slot, Teachers: teachers})
}

// SlotHolder reports whether a slot is occupied and by whom.
func (h *Handler) SlotHolder(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.slotFromQuery(w, r)
	if !ok {
		return
	}
	holder, err := h.service.SlotHolder(r.Context(), slot)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSON(w, http.StatusOK, slotHolderResponse{Slot: slot, Occupied: false})
			return
		}
		h.logger.Error("slot holder", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, slotHolderResponse{Slot: slot, Occupied: true, Holder: holder})
}

// Create commits a new assignment. NotQualified and SlotOccupied map to
// distinct statuses so the UI renders the right message.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAssignmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	principal, _ := shared.PrincipalFromContext(r.Context())
	slot := Slot{SubjectID: req.SubjectID, GradeLevelID: req.GradeLevelID, AcademicYearID: req.AcademicYearID}
	id, err := h.service.RequestAssignment(r.Context(), req.TeacherID, slot, principal.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotQualified):
			httpx.Problem(w, http.StatusUnprocessableEntity, "Not Qualified", "teacher is not qualified for this subject")
		case errors.Is(err, ErrSlotOccupied):
			httpx.Problem(w, http.StatusConflict, "Slot Occupied", "another teacher already holds this slot")
		default:
			h.logger.Error("create assignment", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, createAssignmentResponse{ID: id})
}

// Delete removes an assignment by id, freeing its slot.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid assignment id")
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	if err := h.service.RemoveAssignment(r.Context(), id, principal.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "assignment already removed or never existed")
			return
		}
		h.logger.Error("remove assignment", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List returns assignments for an academic year.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	yearID, err := strconv.ParseInt(r.URL.Query().Get("academic_year_id"), 10, 64)
	if err != nil || yearID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "academic_year_id is required")
		return
	}
	assignments, err := h.service.ListByYear(r.Context(), yearID)
	if err != nil {
		h.logger.Error("list assignments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if assignments == nil {
		assignments = []Assignment{}
	}
	httpx.JSON(w, http.StatusOK, assignments)
}

// GrantQualification records teacher eligibility for a subject.
func (h *Handler) GrantQualification(w http.ResponseWriter, r *http.Request) {
	var req grantQualificationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	q := Qualification{TeacherID: req.TeacherID, SubjectID: req.SubjectID}
	if err := h.service.GrantQualification(r.Context(), q, principal.UserID); err != nil {
		h.logger.Error("grant qualification", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RevokeQualification removes teacher eligibility for a subject.
func (h *Handler) RevokeQualification(w http.ResponseWriter, r *http.Request) {
	teacherID, err1 := strconv.ParseInt(chi.URLParam(r, "teacher"), 10, 64)
	subjectID, err2 := strconv.ParseInt(chi.URLParam(r, "subject"), 10, 64)
	if err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid teacher or subject id")
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	if err := h.service.RevokeQualification(r.Context(), teacherID, subjectID, principal.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "qualification not found")
			return
		}
		h.logger.Error("revoke qualification", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QualifiedTeachers lists teacher ids eligible for a subject.
func (h *Handler) QualifiedTeachers(w http.ResponseWriter, r *http.Request) {
	subjectID, err := strconv.ParseInt(r.URL.Query().Get("subject_id"), 10, 64)
	if err != nil || subjectID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "subject_id is required")
		return
	}
	teachers, err := h.service.QualifiedTeachers(r.Context(), subjectID)
	if err != nil {
		h.logger.Error("qualified teachers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if teachers == nil {
		teachers = []int64{}
	}
	httpx.JSON(w, http.StatusOK, teachers)
}

func (h *Handler) slotFromQuery(w http.ResponseWriter, r *http.Request) (Slot, bool) {
	q := r.URL.Query()
	subjectID, err1 := strconv.ParseInt(q.Get("subject_id"), 10, 64)
	gradeID, err2 := strconv.ParseInt(q.Get("grade_level_id"), 10, 64)
	yearID, err3 := strconv.ParseInt(q.Get("academic_year_id"), 10, 64)
	if err1 != nil || err2 != nil || err3 != nil || subjectID <= 0 || gradeID <= 0 || yearID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "subject_id, grade_level_id and academic_year_id are required")
		return Slot{}, false
	}
	return Slot{SubjectID: subjectID, GradeLevelID: gradeID, AcademicYearID: yearID}, true
}
