package assignment

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/widya-sms/widya-sms/internal/shared"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

func testHandler(t *testing.T) (*Handler, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(logger, svc), repo
}

func withPrincipal(r *http.Request, userID, role string) *http.Request {
	sess := &shared.Session{ID: "test-session"}
	sess.SetUser(userID, role)
	return r.WithContext(shared.ContextWithSession(r.Context(), sess))
}

func TestHandlerCreateStatusMapping(t *testing.T) {
	handler, repo := testHandler(t)
	ctx := context.Background()
	if err := repo.GrantQualification(ctx, Qualification{TeacherID: teacher1, SubjectID: math}); err != nil {
		t.Fatalf("GrantQualification() error = %v", err)
	}
	if err := repo.GrantQualification(ctx, Qualification{TeacherID: teacher2, SubjectID: math}); err != nil {
		t.Fatalf("GrantQualification() error = %v", err)
	}

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/assignments", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = withPrincipal(req, "1", "admin")
		rr := httptest.NewRecorder()
		handler.Create(rr, req)
		return rr
	}

	// Qualified teacher on a free slot.
	rr := post(`{"teacher_id":101,"subject_id":1,"grade_level_id":10,"academic_year_id":2026}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var created createAssignmentResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected a non-zero assignment id")
	}

	// Second qualified teacher on the same slot.
	rr = post(`{"teacher_id":102,"subject_id":1,"grade_level_id":10,"academic_year_id":2026}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("occupied slot status = %d, want %d", rr.Code, http.StatusConflict)
	}

	// Unqualified teacher on a free slot.
	rr = post(`{"teacher_id":999,"subject_id":1,"grade_level_id":20,"academic_year_id":2026}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unqualified status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}

	// Missing fields fail validation before the service runs.
	rr = post(`{"teacher_id":101}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid body status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestHandlerDeleteNotFound(t *testing.T) {
	handler, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodDelete, "/assignments/123", nil)
	req = withPrincipal(req, "1", "admin")
	req = withURLParam(req, "id", "123")
	rr := httptest.NewRecorder()
	handler.Delete(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("delete unknown id status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestHandlerSlotHolderFreeSlot(t *testing.T) {
	handler, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/assignments/slot?subject_id=1&grade_level_id=10&academic_year_id=2026", nil)
	rr := httptest.NewRecorder()
	handler.SlotHolder(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("slot holder status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp slotHolderResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Occupied {
		t.Fatal("expected free slot to report occupied=false")
	}
}

func TestHandlerAvailableTeachersRequiresSlot(t *testing.T) {
	handler, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/assignments/available?subject_id=1", nil)
	rr := httptest.NewRecorder()
	handler.AvailableTeachers(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("partial slot query status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
