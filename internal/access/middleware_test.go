package access

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/widya-sms/widya-sms/internal/shared"
)

func testMiddleware(t *testing.T) (Middleware, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	return Middleware{Evaluator: NewEvaluator(store, nil)}, store
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func withSessionPrincipal(r *http.Request, userID, role string) *http.Request {
	sess := &shared.Session{ID: "test-session"}
	sess.SetUser(userID, role)
	return r.WithContext(shared.ContextWithSession(r.Context(), sess))
}

func TestMiddlewareNoPrincipalIsUnauthorized(t *testing.T) {
	mw, _ := testMiddleware(t)
	req := httptest.NewRequest(http.MethodGet, "/finance", nil)
	rr := httptest.NewRecorder()

	mw.RequireView("finance")(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestMiddlewareDeniedPrincipalIsForbidden(t *testing.T) {
	mw, store := testMiddleware(t)
	if err := store.UpsertRoleRule(context.Background(), "teacher", "finance", false); err != nil {
		t.Fatalf("UpsertRoleRule() error = %v", err)
	}
	var deniedModule string
	mw.OnDenied = func(module string) { deniedModule = module }

	req := withSessionPrincipal(httptest.NewRequest(http.MethodGet, "/finance", nil), "7", "teacher")
	rr := httptest.NewRecorder()
	mw.RequireView("finance")(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("denied status = %d, want %d", rr.Code, http.StatusForbidden)
	}
	if deniedModule != "finance" {
		t.Fatalf("OnDenied module = %q, want %q", deniedModule, "finance")
	}
}

func TestMiddlewareAllowedPrincipalPasses(t *testing.T) {
	mw, _ := testMiddleware(t)
	req := withSessionPrincipal(httptest.NewRequest(http.MethodGet, "/finance", nil), "7", "teacher")
	rr := httptest.NewRecorder()

	mw.RequireView("finance")(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("allowed status = %d, want %d", rr.Code, http.StatusOK)
	}
}
