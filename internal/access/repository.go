package access

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/widya-sms/widya-sms/internal/platform/db"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("access: not found")

// Store defines persistence for role rules and user overrides.
type Store interface {
	UpsertRoleRule(ctx context.Context, role, moduleKey string, enabled bool) error
	ListRoleRules(ctx context.Context, role string) ([]RoleRule, error)
	GetRoleRule(ctx context.Context, role, moduleKey string) (*RoleRule, error)
	ReplaceUserOverrides(ctx context.Context, userID int64, overrides []UserOverride) error
	ListUserOverrides(ctx context.Context, userID int64) ([]UserOverride, error)
	GetUserOverride(ctx context.Context, userID int64, moduleKey string) (*UserOverride, error)
}

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewStore constructs a PostgreSQL backed store.
func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// UpsertRoleRule writes a (role, module) rule, last write wins. Roles and
// module keys are open vocabularies so no existence check is performed.
func (s *PGStore) UpsertRoleRule(ctx context.Context, role, moduleKey string, enabled bool) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO role_permissions (role, module_key, is_enabled, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (role, module_key)
		DO UPDATE SET is_enabled = EXCLUDED.is_enabled, updated_at = NOW()`,
		NormalizeRole(role), NormalizeModuleKey(moduleKey), enabled)
	return err
}

// ListRoleRules returns every rule recorded for a role.
func (s *PGStore) ListRoleRules(ctx context.Context, role string) ([]RoleRule, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT role, module_key, is_enabled, updated_at
		FROM role_permissions
		WHERE role = $1
		ORDER BY module_key`, NormalizeRole(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var rules []RoleRule
	for rows.Next() {
		var rule RoleRule
		if err := rows.Scan(&rule.Role, &rule.ModuleKey, &rule.Enabled, &rule.UpdatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// GetRoleRule fetches a single rule, ErrNotFound when the pair has never
// been configured.
func (s *PGStore) GetRoleRule(ctx context.Context, role, moduleKey string) (*RoleRule, error) {
	var rule RoleRule
	err := s.pool.QueryRow(ctx, `
		SELECT role, module_key, is_enabled, updated_at
		FROM role_permissions
		WHERE role = $1 AND module_key = $2`,
		NormalizeRole(role), NormalizeModuleKey(moduleKey)).
		Scan(&rule.Role, &rule.ModuleKey, &rule.Enabled, &rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// ReplaceUserOverrides swaps a user's entire override set in one
// transaction. Passing an empty set clears the user back to role rules.
func (s *PGStore) ReplaceUserOverrides(ctx context.Context, userID int64, overrides []UserOverride) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_module_overrides WHERE user_id = $1`, userID); err != nil {
			return err
		}
		for _, o := range overrides {
			if _, err := tx.Exec(ctx, `
				INSERT INTO user_module_overrides (user_id, module_key, can_view, can_edit)
				VALUES ($1, $2, $3, $4)`,
				userID, NormalizeModuleKey(o.ModuleKey), o.CanView, o.CanEdit); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListUserOverrides returns the user's full override set.
func (s *PGStore) ListUserOverrides(ctx context.Context, userID int64) ([]UserOverride, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, module_key, can_view, can_edit
		FROM user_module_overrides
		WHERE user_id = $1
		ORDER BY module_key`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var overrides []UserOverride
	for rows.Next() {
		var o UserOverride
		if err := rows.Scan(&o.UserID, &o.ModuleKey, &o.CanView, &o.CanEdit); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

// GetUserOverride fetches the override for one (user, module) pair.
func (s *PGStore) GetUserOverride(ctx context.Context, userID int64, moduleKey string) (*UserOverride, error) {
	var o UserOverride
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, module_key, can_view, can_edit
		FROM user_module_overrides
		WHERE user_id = $1 AND module_key = $2`,
		userID, NormalizeModuleKey(moduleKey)).
		Scan(&o.UserID, &o.ModuleKey, &o.CanView, &o.CanEdit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

var _ Store = (*PGStore)(nil)
