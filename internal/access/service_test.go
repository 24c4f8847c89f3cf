package access

import (
	"context"
	"testing"

	"github.com/widya-sms/widya-sms/internal/shared"
)

type fakeAuditor struct {
	logs []shared.AuditLog
}

func (f *fakeAuditor) Record(ctx context.Context, log shared.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func TestServiceSetRolePermissionIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := svc.SetRolePermission(ctx, "teacher", "finance", false, 1); err != nil {
			t.Fatalf("SetRolePermission() error = %v", err)
		}
	}

	rules, err := svc.RolePermissions(ctx, "teacher")
	if err != nil {
		t.Fatalf("RolePermissions() error = %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected one rule after repeated upsert, got %d", len(rules))
	}
	if rules[0].Enabled {
		t.Fatal("expected rule to be disabled")
	}

	// Last write wins.
	if err := svc.SetRolePermission(ctx, "teacher", "finance", true, 1); err != nil {
		t.Fatalf("SetRolePermission() error = %v", err)
	}
	rules, err = svc.RolePermissions(ctx, "teacher")
	if err != nil {
		t.Fatalf("RolePermissions() error = %v", err)
	}
	if len(rules) != 1 || !rules[0].Enabled {
		t.Fatalf("expected single enabled rule, got %+v", rules)
	}
}

func TestServiceSetRolePermissionInvalidatesCache(t *testing.T) {
	store := newFakeStore()
	cache, _ := newTestCache(t)
	svc := NewService(store, cache, nil)
	eval := NewEvaluator(store, cache)
	ctx := context.Background()
	p := shared.Principal{UserID: 1, Role: "teacher"}

	// Prime the cache with the default (no rules) state.
	ok, err := eval.CanView(ctx, p, "finance")
	if err != nil {
		t.Fatalf("CanView() error = %v", err)
	}
	if !ok {
		t.Fatal("expected default allow before any rule exists")
	}

	if err := svc.SetRolePermission(ctx, "teacher", "finance", false, 1); err != nil {
		t.Fatalf("SetRolePermission() error = %v", err)
	}

	ok, err = eval.CanView(ctx, p, "finance")
	if err != nil {
		t.Fatalf("CanView() error = %v", err)
	}
	if ok {
		t.Fatal("expected the write to invalidate the cached rule set")
	}
}

func TestServiceReplaceUserOverridesNormalises(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	err := svc.ReplaceUserOverrides(ctx, 42, []UserOverride{
		{ModuleKey: "Finance", CanView: true, CanEdit: false},
	}, 1)
	if err != nil {
		t.Fatalf("ReplaceUserOverrides() error = %v", err)
	}

	got, err := svc.UserOverrides(ctx, 42)
	if err != nil {
		t.Fatalf("UserOverrides() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one override, got %d", len(got))
	}
	if got[0].ModuleKey != "finance" {
		t.Fatalf("expected normalised module key, got %q", got[0].ModuleKey)
	}
	if got[0].UserID != 42 {
		t.Fatalf("expected user id stamped onto the override, got %d", got[0].UserID)
	}
}

func TestServiceWritesAreAudited(t *testing.T) {
	store := newFakeStore()
	audit := &fakeAuditor{}
	svc := NewService(store, nil, audit)
	ctx := context.Background()

	if err := svc.SetRolePermission(ctx, "teacher", "finance", false, 9); err != nil {
		t.Fatalf("SetRolePermission() error = %v", err)
	}
	if err := svc.ReplaceUserOverrides(ctx, 42, nil, 9); err != nil {
		t.Fatalf("ReplaceUserOverrides() error = %v", err)
	}

	if len(audit.logs) != 2 {
		t.Fatalf("expected two audit entries, got %d", len(audit.logs))
	}
	if audit.logs[0].Action != "access.role_permission.set" || audit.logs[0].ActorID != 9 {
		t.Fatalf("unexpected first audit entry: %+v", audit.logs[0])
	}
	if audit.logs[1].Action != "access.user_overrides.replace" {
		t.Fatalf("unexpected second audit entry: %+v", audit.logs[1])
	}
}
