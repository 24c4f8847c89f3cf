package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RuleCache keeps per-role rule sets in Redis so evaluation does not hit
// PostgreSQL on every request. A nil cache (or nil client) degrades to
// direct store reads; it never changes a decision.
//
// Entries are keyed by a per-role generation that writers bump on every
// change. A load that started before a write can only publish under the
// generation it read first, which the write has already retired, so a
// stale snapshot can never overwrite fresher state.
type RuleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRuleCache instantiates the cache helper.
func NewRuleCache(client *redis.Client, ttl time.Duration) *RuleCache {
	return &RuleCache{client: client, ttl: ttl}
}

func genKey(role string) string {
	return "access:rules:gen:" + NormalizeRole(role)
}

func ruleKey(role string, gen int64) string {
	return fmt.Sprintf("access:rules:%s:%d", NormalizeRole(role), gen)
}

// Generation returns the role's current cache generation, zero when the
// role has never been invalidated. Loaders must read it before querying
// the store and pass it to Set.
func (c *RuleCache) Generation(ctx context.Context, role string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	gen, err := c.client.Get(ctx, genKey(role)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return gen, nil
}

// Get returns the cached rule set for a role under its current
// generation. The second result reports whether the entry was present.
func (c *RuleCache) Get(ctx context.Context, role string) ([]RoleRule, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	gen, err := c.Generation(ctx, role)
	if err != nil {
		return nil, false, err
	}
	payload, err := c.client.Get(ctx, ruleKey(role, gen)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var rules []RoleRule
	if err := json.Unmarshal(payload, &rules); err != nil {
		return nil, false, err
	}
	return rules, true, nil
}

// Set stores the rule set for a role under the generation the caller read
// before loading. An empty set is cached too so that roles with no rules
// still avoid repeated lookups. If a write bumped the generation in the
// meantime the entry lands on a retired key and is never read.
func (c *RuleCache) Set(ctx context.Context, role string, gen int64, rules []RoleRule) error {
	if c == nil || c.client == nil {
		return nil
	}
	if rules == nil {
		rules = []RoleRule{}
	}
	data, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ruleKey(role, gen), data, c.ttl).Err()
}

// Invalidate retires every published entry for a role by bumping its
// generation. The generation key never expires; retired rule entries age
// out through their own TTL.
func (c *RuleCache) Invalidate(ctx context.Context, role string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, genKey(role)).Err()
}
