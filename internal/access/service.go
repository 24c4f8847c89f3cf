package access

import (
	"context"
	"fmt"

	"github.com/widya-sms/widya-sms/internal/shared"
)

// Auditor records configuration changes. shared.AuditLogger satisfies it.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service owns writes to the permission store and keeps the rule cache
// coherent. Reads for evaluation go through Evaluator instead.
type Service struct {
	store Store
	cache *RuleCache
	audit Auditor
}

// NewService constructs a Service. cache and audit may be nil.
func NewService(store Store, cache *RuleCache, audit Auditor) *Service {
	return &Service{store: store, cache: cache, audit: audit}
}

// SetRolePermission upserts one (role, module) rule. Idempotent, last
// write wins, no error on unknown roles or modules.
func (s *Service) SetRolePermission(ctx context.Context, role, moduleKey string, enabled bool, actorID int64) error {
	role = NormalizeRole(role)
	moduleKey = NormalizeModuleKey(moduleKey)
	if err := s.store.UpsertRoleRule(ctx, role, moduleKey, enabled); err != nil {
		return fmt.Errorf("access: upsert role rule: %w", err)
	}
	_ = s.cache.Invalidate(ctx, role)
	s.record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   "access.role_permission.set",
		Entity:   "role_permission",
		EntityID: role + ":" + moduleKey,
		Meta:     map[string]any{"enabled": enabled},
	})
	return nil
}

// RolePermissions lists the configured rules for a role. Roles with no
// rules return an empty set; every module then falls back to default-allow.
func (s *Service) RolePermissions(ctx context.Context, role string) ([]RoleRule, error) {
	return s.store.ListRoleRules(ctx, role)
}

// ReplaceUserOverrides swaps a user's whole override set. Callers resend
// the complete desired state; omitted modules revert to role rules.
func (s *Service) ReplaceUserOverrides(ctx context.Context, userID int64, overrides []UserOverride, actorID int64) error {
	for i := range overrides {
		overrides[i].UserID = userID
		overrides[i].ModuleKey = NormalizeModuleKey(overrides[i].ModuleKey)
	}
	if err := s.store.ReplaceUserOverrides(ctx, userID, overrides); err != nil {
		return fmt.Errorf("access: replace overrides: %w", err)
	}
	s.record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   "access.user_overrides.replace",
		Entity:   "user_overrides",
		EntityID: fmt.Sprintf("%d", userID),
		Meta:     map[string]any{"count": len(overrides)},
	})
	return nil
}

// UserOverrides lists the user's override set.
func (s *Service) UserOverrides(ctx context.Context, userID int64) ([]UserOverride, error) {
	return s.store.ListUserOverrides(ctx, userID)
}

func (s *Service) record(ctx context.Context, log shared.AuditLog) {
	if s.audit == nil {
		return
	}
	// Best effort; audit failures must not fail the write.
	_ = s.audit.Record(ctx, log)
}
