package domain

// Capability identifies a single feature the UI can gate on.
type Capability string

const (
	CapManageUsers     Capability = "manage_users"
	CapViewReports     Capability = "view_reports"
	CapManageInventory Capability = "manage_inventory"
	CapProcessOrders   Capability = "process_orders"
	CapViewProduction  Capability = "view_production"
	CapManageSystem    Capability = "manage_system"
)

// PermissionSet is the fixed capability matrix attached to a session.
// One boolean per capability keeps the set exhaustive at compile time.
type PermissionSet struct {
	ManageUsers     bool `json:"manage_users"`
	ViewReports     bool `json:"view_reports"`
	ManageInventory bool `json:"manage_inventory"`
	ProcessOrders   bool `json:"process_orders"`
	ViewProduction  bool `json:"view_production"`
	ManageSystem    bool `json:"manage_system"`
}

// Allows reports whether the set grants the given capability.
// Unknown capabilities are denied.
func (p PermissionSet) Allows(c Capability) bool {
	switch c {
	case CapManageUsers:
		return p.ManageUsers
	case CapViewReports:
		return p.ViewReports
	case CapManageInventory:
		return p.ManageInventory
	case CapProcessOrders:
		return p.ProcessOrders
	case CapViewProduction:
		return p.ViewProduction
	case CapManageSystem:
		return p.ManageSystem
	default:
		return false
	}
}

// PermissionsFor resolves a role to its capability set. Total over the role
// enumeration; any unknown role resolves to the empty set so unrecognized
// records fail closed.
func PermissionsFor(role Role) PermissionSet {
	switch role {
	case RoleAdmin:
		return PermissionSet{
			ManageUsers:     true,
			ViewReports:     true,
			ManageInventory: true,
			ProcessOrders:   true,
			ViewProduction:  true,
			ManageSystem:    true,
		}
	case RoleCashier:
		return PermissionSet{
			ViewReports:   true,
			ProcessOrders: true,
		}
	case RoleKitchen:
		return PermissionSet{
			ViewProduction: true,
		}
	default:
		return PermissionSet{}
	}
}
