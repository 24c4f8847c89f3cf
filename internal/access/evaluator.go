package access

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/widya-sms/widya-sms/internal/shared"
)

// Evaluator decides whether a principal may see or edit a module.
//
// Precedence: a user override for the exact (user, module) pair wins,
// then the role rule, and with neither present the module is enabled.
// The fail-open default is deliberate product behaviour: new modules are
// visible to every role until an administrator disables them.
type Evaluator struct {
	store Store
	cache *RuleCache
	group singleflight.Group
}

// NewEvaluator constructs an Evaluator. cache may be nil.
func NewEvaluator(store Store, cache *RuleCache) *Evaluator {
	return &Evaluator{store: store, cache: cache}
}

// CanView reports whether the principal may see the module.
func (e *Evaluator) CanView(ctx context.Context, p shared.Principal, moduleKey string) (bool, error) {
	return e.evaluate(ctx, p, moduleKey, false)
}

// CanEdit reports whether the principal may change data in the module.
func (e *Evaluator) CanEdit(ctx context.Context, p shared.Principal, moduleKey string) (bool, error) {
	return e.evaluate(ctx, p, moduleKey, true)
}

func (e *Evaluator) evaluate(ctx context.Context, p shared.Principal, moduleKey string, edit bool) (bool, error) {
	moduleKey = NormalizeModuleKey(moduleKey)

	if p.UserID != 0 {
		override, err := e.store.GetUserOverride(ctx, p.UserID, moduleKey)
		switch {
		case err == nil:
			if edit {
				return override.CanEdit, nil
			}
			return override.CanView, nil
		case errors.Is(err, ErrNotFound):
			// fall through to the role rule
		default:
			return false, fmt.Errorf("access: load override: %w", err)
		}
	}

	rules, err := e.roleRules(ctx, p.Role)
	if err != nil {
		return false, fmt.Errorf("access: load role rules: %w", err)
	}
	for _, rule := range rules {
		if rule.ModuleKey == moduleKey {
			return rule.Enabled, nil
		}
	}
	// No rule recorded for this pair: enabled by default.
	return true, nil
}

// roleRules loads the rule set for a role through the cache, collapsing
// concurrent loads for the same role into one store query.
func (e *Evaluator) roleRules(ctx context.Context, role string) ([]RoleRule, error) {
	role = NormalizeRole(role)

	if rules, ok, err := e.cache.Get(ctx, role); err == nil && ok {
		return rules, nil
	}

	result, err, _ := e.group.Do(role, func() (interface{}, error) {
		// Read the generation before the store query: if a write lands
		// while the query runs, this publish targets a retired key.
		gen, genErr := e.cache.Generation(ctx, role)
		rules, err := e.store.ListRoleRules(ctx, role)
		if err != nil {
			return nil, err
		}
		if genErr == nil {
			_ = e.cache.Set(ctx, role, gen, rules)
		}
		return rules, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]RoleRule), nil
}
