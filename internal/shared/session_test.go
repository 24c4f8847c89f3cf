package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestSessionManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "widya_session", "test-secret", time.Hour, false), mr
}

func TestRenewRotatesSessionID(t *testing.T) {
	sm, mr := newTestSessionManager(t)
	ctx := context.Background()

	// Anonymous session persisted before login.
	sess := sm.newSession()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	if err := sm.Commit(ctx, w, r, sess); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	oldID := sess.ID
	if !mr.Exists(sm.redisKey(oldID)) {
		t.Fatal("expected anonymous session to be stored")
	}

	if err := sm.Renew(ctx, sess); err != nil {
		t.Fatalf("Renew() error = %v", err)
	}
	if sess.ID == oldID {
		t.Fatal("expected Renew to issue a fresh session ID")
	}
	if mr.Exists(sm.redisKey(oldID)) {
		t.Fatal("expected the old session entry to be deleted")
	}

	sess.SetUser("7", "teacher")
	w = httptest.NewRecorder()
	if err := sm.Commit(ctx, w, r, sess); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if !mr.Exists(sm.redisKey(sess.ID)) {
		t.Fatal("expected the renewed session to be stored under the new ID")
	}

	cookie := findSessionCookie(t, w.Result().Cookies(), sm.CookieName())
	if cookie.Value != sess.ID {
		t.Fatalf("cookie value = %q, want renewed ID %q", cookie.Value, sess.ID)
	}
	if cookie.Value == oldID {
		t.Fatal("cookie must not reuse the pre-login session ID")
	}
}

func TestRenewNilSessionIsNoop(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	if err := sm.Renew(context.Background(), nil); err != nil {
		t.Fatalf("Renew(nil) error = %v", err)
	}
}

func findSessionCookie(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("session cookie %q not set", name)
	return nil
}
