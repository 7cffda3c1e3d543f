package models

// RoomConfig is the tenant-level configuration for one bookable room.
type RoomConfig struct {
	ID                   string `bson:"id" json:"id"`
	Name                 string `bson:"name,omitempty" json:"name,omitempty"`
	AutoApprovalEligible bool   `bson:"auto_approval_eligible" json:"auto_approval_eligible"`
}

// TenantConfig is the stored per-tenant rule set.
type TenantConfig struct {
	Tenant              string       `bson:"tenant" json:"tenant"`
	Rooms               []RoomConfig `bson:"rooms" json:"rooms"`
	UsesServiceWorkflow bool         `bson:"uses_service_workflow" json:"uses_service_workflow"`
}

// TenantRules is the slice of tenant configuration the lifecycle engine needs
// at start; it is passed in explicitly so the engine stays a pure function of
// its inputs.
type TenantRules struct {
	UsesServiceWorkflow bool `json:"usesServiceWorkflow"`
}

// RoomEligibility reports whether the given room is auto-approval eligible.
// Unknown rooms are not eligible.
func (t TenantConfig) RoomEligibility(roomID string) bool {
	for _, r := range t.Rooms {
		if r.ID == roomID {
			return r.AutoApprovalEligible
		}
	}
	return false
}
