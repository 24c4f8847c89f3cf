package access

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// RoleRule enables or disables a module for every user holding a role.
// The (role, module) pair is unique; the latest write wins and rules are
// never deleted, only flipped.
type RoleRule struct {
	Role      string    `json:"role"`
	ModuleKey string    `json:"module_key"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserOverride grants or withholds module access for a single user,
// taking precedence over the user's role rule. A user's override set is
// always replaced wholesale, never patched.
type UserOverride struct {
	UserID    int64  `json:"user_id"`
	ModuleKey string `json:"module_key"`
	CanView   bool   `json:"can_view"`
	CanEdit   bool   `json:"can_edit"`
}

var folder = cases.Fold()

// NormalizeRole canonicalises a role identifier. Roles are an open
// vocabulary, so normalisation is the only validation applied.
func NormalizeRole(role string) string {
	return folder.String(strings.TrimSpace(role))
}

// NormalizeModuleKey canonicalises a module key.
func NormalizeModuleKey(key string) string {
	return folder.String(strings.TrimSpace(key))
}
