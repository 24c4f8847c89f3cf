package access

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/widya-sms/widya-sms/internal/shared"
)

type fakeStore struct {
	mu        sync.Mutex
	rules     map[string]map[string]RoleRule   // role -> module -> rule
	overrides map[int64]map[string]UserOverride // user -> module -> override

	listCalls int
	failWith  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rules:     make(map[string]map[string]RoleRule),
		overrides: make(map[int64]map[string]UserOverride),
	}
}

func (f *fakeStore) UpsertRoleRule(ctx context.Context, role, moduleKey string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	role = NormalizeRole(role)
	moduleKey = NormalizeModuleKey(moduleKey)
	if f.rules[role] == nil {
		f.rules[role] = make(map[string]RoleRule)
	}
	f.rules[role][moduleKey] = RoleRule{Role: role, ModuleKey: moduleKey, Enabled: enabled, UpdatedAt: time.Now()}
	return nil
}

func (f *fakeStore) ListRoleRules(ctx context.Context, role string) ([]RoleRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.listCalls++
	var rules []RoleRule
	for _, rule := range f.rules[NormalizeRole(role)] {
		rules = append(rules, rule)
	}
	return rules, nil
}

func (f *fakeStore) GetRoleRule(ctx context.Context, role, moduleKey string) (*RoleRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rule, ok := f.rules[NormalizeRole(role)][NormalizeModuleKey(moduleKey)]
	if !ok {
		return nil, ErrNotFound
	}
	return &rule, nil
}

func (f *fakeStore) ReplaceUserOverrides(ctx context.Context, userID int64, overrides []UserOverride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	set := make(map[string]UserOverride, len(overrides))
	for _, o := range overrides {
		o.UserID = userID
		o.ModuleKey = NormalizeModuleKey(o.ModuleKey)
		set[o.ModuleKey] = o
	}
	f.overrides[userID] = set
	return nil
}

func (f *fakeStore) ListUserOverrides(ctx context.Context, userID int64) ([]UserOverride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []UserOverride
	for _, o := range f.overrides[userID] {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeStore) GetUserOverride(ctx context.Context, userID int64, moduleKey string) (*UserOverride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	o, ok := f.overrides[userID][NormalizeModuleKey(moduleKey)]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

var _ Store = (*fakeStore)(nil)

func TestEvaluatorDefaultAllow(t *testing.T) {
	store := newFakeStore()
	eval := NewEvaluator(store, nil)
	p := shared.Principal{UserID: 1, Role: "librarian"}

	ok, err := eval.CanView(context.Background(), p, "finance")
	if err != nil {
		t.Fatalf("CanView() error = %v", err)
	}
	if !ok {
		t.Fatal("expected unknown (role, module) pair to be enabled by default")
	}

	ok, err = eval.CanEdit(context.Background(), p, "finance")
	if err != nil {
		t.Fatalf("CanEdit() error = %v", err)
	}
	if !ok {
		t.Fatal("expected edit check to default-allow as well")
	}
}

func TestEvaluatorRoleRule(t *testing.T) {
	store := newFakeStore()
	if err := store.UpsertRoleRule(context.Background(), "teacher", "finance", false); err != nil {
		t.Fatalf("UpsertRoleRule() error = %v", err)
	}
	eval := NewEvaluator(store, nil)

	ok, err := eval.CanView(context.Background(), shared.Principal{UserID: 7, Role: "teacher"}, "finance")
	if err != nil {
		t.Fatalf("CanView() error = %v", err)
	}
	if ok {
		t.Fatal("expected disabled role rule to deny")
	}

	// A different module for the same role still defaults to allow.
	ok, err = eval.CanView(context.Background(), shared.Principal{UserID: 7, Role: "teacher"}, "students")
	if err != nil {
		t.Fatalf("CanView() error = %v", err)
	}
	if !ok {
		t.Fatal("expected unconfigured module to stay enabled")
	}
}

func TestEvaluatorRoleCaseNormalisation(t *testing.T) {
	store := newFakeStore()
	if err := store.UpsertRoleRule(context.Background(), "Teacher", "finance", false); err != nil {
		t.Fatalf("UpsertRoleRule() error = %v", err)
	}
	eval := NewEvaluator(store, nil)

	ok, err := eval.CanView(context.Background(), shared.Principal{UserID: 7, Role: "TEACHER"}, "Finance")
	if err != nil {
		t.Fatalf("CanView() error = %v", err)
	}
	if ok {
		t.Fatal("expected rule lookup to be case-insensitive")
	}
}

func TestEvaluatorOverridePrecedence(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	// Role says no, override says view yes / edit no.
	if err := store.UpsertRoleRule(ctx, "teacher", "finance", false); err != nil {
		t.Fatalf("UpsertRoleRule() error = %v", err)
	}
	if err := store.ReplaceUserOverrides(ctx, 42, []UserOverride{
		{ModuleKey: "finance", CanView: true, CanEdit: false},
	}); err != nil {
		t.Fatalf("ReplaceUserOverrides() error = %v", err)
	}
	eval := NewEvaluator(store, nil)
	p := shared.Principal{UserID: 42, Role: "teacher"}

	ok, err := eval.CanView(ctx, p, "finance")
	if err != nil {
		t.Fatalf("CanView() error = %v", err)
	}
	if !ok {
		t.Fatal("expected override to win over the role rule for view")
	}

	ok, err = eval.CanEdit(ctx, p, "finance")
	if err != nil {
		t.Fatalf("CanEdit() error = %v", err)
	}
	if ok {
		t.Fatal("expected override can_edit=false to deny edit")
	}

	// Another user with the same role has no override and follows the rule.
	ok, err = eval.CanView(ctx, shared.Principal{UserID: 43, Role: "teacher"}, "finance")
	if err != nil {
		t.Fatalf("CanView() error = %v", err)
	}
	if ok {
		t.Fatal("expected role rule to apply without an override")
	}
}

func TestEvaluatorOverrideClearedWholesale(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	if err := store.UpsertRoleRule(ctx, "teacher", "finance", false); err != nil {
		t.Fatalf("UpsertRoleRule() error = %v", err)
	}
	if err := store.ReplaceUserOverrides(ctx, 42, []UserOverride{
		{ModuleKey: "finance", CanView: true, CanEdit: true},
	}); err != nil {
		t.Fatalf("ReplaceUserOverrides() error = %v", err)
	}
	// Saving an empty set clears everything.
	if err := store.ReplaceUserOverrides(ctx, 42, nil); err != nil {
		t.Fatalf("ReplaceUserOverrides() error = %v", err)
	}

	eval := NewEvaluator(store, nil)
	ok, err := eval.CanView(ctx, shared.Principal{UserID: 42, Role: "teacher"}, "finance")
	if err != nil {
		t.Fatalf("CanView() error = %v", err)
	}
	if ok {
		t.Fatal("expected evaluation to fall back to the role rule after clearing overrides")
	}
}

func TestEvaluatorPropagatesStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.failWith = errors.New("connection refused")
	eval := NewEvaluator(store, nil)

	_, err := eval.CanView(context.Background(), shared.Principal{UserID: 1, Role: "admin"}, "finance")
	if err == nil {
		t.Fatal("expected storage failure to surface as an error, not a decision")
	}
}
