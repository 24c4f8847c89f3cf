package access

type setRolePermissionRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type overrideEntryRequest struct {
	ModuleKey string `json:"module_key" validate:"required,max=64"`
	CanView   bool   `json:"can_view"`
	CanEdit   bool   `json:"can_edit"`
}

type replaceOverridesRequest struct {
	Overrides []overrideEntryRequest `json:"overrides" validate:"dive"`
}

type rolePermissionsResponse struct {
	Role  string     `json:"role"`
	Rules []RoleRule `json:"rules"`
}

type userOverridesResponse struct {
	UserID    int64          `json:"user_id"`
	Overrides []UserOverride `json:"overrides"`
}

type evaluateResponse struct {
	ModuleKey string `json:"module_key"`
	CanView   bool   `json:"can_view"`
	CanEdit   bool   `json:"can_edit"`
}
