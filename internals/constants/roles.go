package constants

import "fmt"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Template for role error messages
const (
	ErrOnlyAdminsCanAccess = "❌ Only administrators can access %s."
	ErrMissingCapability   = "❌ You are not allowed to %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func CapabilityError(action string) string {
	return fmt.Sprintf(ErrMissingCapability, action)
}

type Capability string

const (
	CapManageUsers      Capability = "manage_users"
	CapManageMenus      Capability = "manage_menus"
	CapManageAttendance Capability = "manage_attendance"
	CapApproveExpenses  Capability = "approve_expenses"
	CapManageAnyExpense Capability = "manage_any_expense"
)

var (
	AllRoles  = []string{RoleAdmin, RoleStaff}
	AdminOnly = []string{RoleAdmin}
)

var roleCapabilities = map[string]map[Capability]struct{}{
	RoleAdmin: {
		CapManageUsers:      {},
		CapManageMenus:      {},
		CapManageAttendance: {},
		CapApproveExpenses:  {},
		CapManageAnyExpense: {},
	},
	RoleStaff: {},
}

func ValidRole(role string) bool {
	_, ok := roleCapabilities[role]
	return ok
}

// Can reports whether role grants capability.
func Can(role string, capability Capability) bool {
	caps, ok := roleCapabilities[role]
	if !ok {
		return false
	}
	_, ok = caps[capability]
	return ok
}
